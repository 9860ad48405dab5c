package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func fakeServer(t *testing.T, respond func(method string, params map[string]any) map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string           `json:"method"`
			Params []map[string]any `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Params, 1)

		result := respond(req.Method, req.Params[0])
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"result": result}))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestKycApproveSubmitsTransaction(t *testing.T) {
	authority := strings.Repeat("ab", 32)
	user := strings.Repeat("cd", 32)

	var seen map[string]any
	srv := fakeServer(t, func(method string, params map[string]any) map[string]any {
		require.Equal(t, "submit", method)
		seen = params
		return map[string]any{
			"status":        "success",
			"applied":       true,
			"engine_result": "success",
			"tx_hash":       strings.Repeat("00", 32),
		}
	})
	rpcURL = srv.URL
	kycAccount = authority

	require.NoError(t, kycApproveCmd.RunE(kycApproveCmd, []string{user}))

	require.Equal(t, "KycCreate", seen["tx_type"])
	fields := seen["tx"].(map[string]any)
	require.Equal(t, authority, fields["account"])
	require.Equal(t, user, fields["user"])
}

func TestSubmitRejectionSurfacesEngineResult(t *testing.T) {
	srv := fakeServer(t, func(method string, params map[string]any) map[string]any {
		return map[string]any{
			"status":                "success",
			"applied":               false,
			"engine_result":         "unauthorized",
			"engine_result_message": "The caller is not the configured authority.",
		}
	})
	rpcURL = srv.URL
	poolAccount = strings.Repeat("ab", 32)

	err := poolDeactivateCmd.RunE(poolDeactivateCmd, []string{strings.Repeat("cd", 32)})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unauthorized")
}

func TestAdminArgumentsValidatedBeforeSubmission(t *testing.T) {
	rpcURL = "http://127.0.0.1:1" // must never be contacted
	kycAccount = strings.Repeat("ab", 32)

	require.Error(t, kycApproveCmd.RunE(kycApproveCmd, []string{"not-hex"}))
	require.Error(t, kycStatusCmd.RunE(kycStatusCmd, []string{"abcd"}))
}

func TestCommandTreeHasAdminSurface(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"serve", "version", "kyc", "pool"} {
		require.True(t, names[want], "missing %s subcommand", want)
	}

	var kycSubs []string
	for _, cmd := range kycCmd.Commands() {
		kycSubs = append(kycSubs, cmd.Name())
	}
	require.Subset(t, kycSubs, []string{"approve", "revoke", "status", "set-limits"})
}
