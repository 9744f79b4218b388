package mcpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/FreePeak/dataverse-mcp-server/internal/infrastructure/logging"
)

// NewHTTPHandler returns the HTTP transport: JSON-RPC over POST /mcp plus a
// liveness probe.
func NewHTTPHandler(dispatcher *Dispatcher, logger *logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/mcp", func(w http.ResponseWriter, req *http.Request) {
		var rpcReq Request
		if err := json.NewDecoder(req.Body).Decode(&rpcReq); err != nil {
			writeJSON(w, logger, newErrorResponse(nil, ParseErrorCode, "parse error"))
			return
		}

		resp := dispatcher.Handle(req.Context(), &rpcReq)
		if resp == nil {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		writeJSON(w, logger, resp)
	})

	return r
}

func writeJSON(w http.ResponseWriter, logger *logging.Logger, resp *Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.WithError(err).Error("response write failed")
	}
}
