package rpc

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// Server handles HTTP JSON-RPC requests. Methods are registered by the
// Service; the server only does transport framing.
type Server struct {
	registry *MethodRegistry
	logger   *zap.Logger
}

// NewServer creates an RPC server over the given method registry.
func NewServer(registry *MethodRegistry, logger *zap.Logger) *Server {
	return &Server{registry: registry, logger: logger}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		s.handleGet(w, r)
	case http.MethodPost:
		s.handlePost(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGet serves parameterless queries like server_info.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("command")
	if method == "" {
		method = "server_info"
	}
	result, rpcErr := s.execute(r, method, nil)
	s.writeResponse(w, result, rpcErr)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeResponse(w, nil, errInternal("Failed to read request body"))
		return
	}
	defer r.Body.Close()

	var request Request
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeResponse(w, nil, errInvalidParams("Invalid JSON: "+err.Error()))
		return
	}
	if request.Method == "" {
		s.writeResponse(w, nil, errInvalidParams("Missing method field"))
		return
	}

	var params json.RawMessage
	if len(request.Params) > 0 {
		params = request.Params[0]
	}

	result, rpcErr := s.execute(r, request.Method, params)
	s.writeResponse(w, result, rpcErr)
}

func (s *Server) execute(r *http.Request, method string, params json.RawMessage) (any, *RpcError) {
	fn, exists := s.registry.Get(method)
	if !exists {
		return nil, errUnknownMethod(method)
	}
	s.logger.Debug("rpc request", zap.String("method", method))
	return fn(r.Context(), params)
}

// writeResponse emits {"result": {..., "status": "success"}} on success and
// {"result": {"status": "error", "error": ..., ...}} on failure.
func (s *Server) writeResponse(w http.ResponseWriter, result any, rpcErr *RpcError) {
	response := make(map[string]any)

	if rpcErr != nil {
		response["result"] = map[string]any{
			"status":        "error",
			"error":         rpcErr.ErrorString,
			"error_code":    rpcErr.Code,
			"error_message": rpcErr.Message,
		}
	} else if resultMap, ok := result.(map[string]any); ok {
		resultMap["status"] = "success"
		response["result"] = resultMap
	} else {
		response["result"] = map[string]any{
			"status": "success",
			"data":   result,
		}
	}

	data, err := json.Marshal(response)
	if err != nil {
		s.logger.Error("failed to marshal response", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
