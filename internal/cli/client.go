package cli

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var rpcURL string

func registerRPCFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&rpcURL, "rpc", "http://127.0.0.1:5005", "server RPC endpoint")
}

// rpcCall posts one JSON-RPC request and unwraps the result envelope.
func rpcCall(method string, params any) (map[string]any, error) {
	payload, err := json.Marshal(map[string]any{
		"method": method,
		"params": []any{params},
	})
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Post(rpcURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("rpc request failed: %w", err)
	}
	defer resp.Body.Close()

	var envelope struct {
		Result map[string]any `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("invalid rpc response: %w", err)
	}
	if envelope.Result == nil {
		return nil, fmt.Errorf("empty rpc response")
	}
	if envelope.Result["status"] != "success" {
		return nil, fmt.Errorf("%v: %v", envelope.Result["error"], envelope.Result["error_message"])
	}
	return envelope.Result, nil
}

// submitTx submits one transaction and fails when the engine rejects it.
func submitTx(txType string, fields map[string]any) error {
	result, err := rpcCall("submit", map[string]any{"tx_type": txType, "tx": fields})
	if err != nil {
		return err
	}
	if applied, ok := result["applied"].(bool); !ok || !applied {
		return fmt.Errorf("%s rejected: %v (%v)", txType,
			result["engine_result"], result["engine_result_message"])
	}
	return printResult(result)
}

// checkAddr validates a hex account address argument before it goes on the
// wire, so typos fail with a usable message instead of a server rejection.
func checkAddr(name, value string) error {
	raw, err := hex.DecodeString(value)
	if err != nil || len(raw) != 32 {
		return fmt.Errorf("%s must be 32 bytes of hex, got %q", name, value)
	}
	return nil
}

func printResult(result map[string]any) error {
	delete(result, "status")
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
