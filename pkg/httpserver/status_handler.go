package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/polymarket-mirror/internal/risk"
)

// StatusHandler serves the live bot status: who we mirror, how we size,
// and the current risk snapshot.
type StatusHandler struct {
	manager       *risk.Manager
	trader        string
	executionMode string
	sizing        string
	logger        *zap.Logger
}

// NewStatusHandler creates a status handler.
func NewStatusHandler(manager *risk.Manager, trader, executionMode, sizing string, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{
		manager:       manager,
		trader:        trader,
		executionMode: executionMode,
		sizing:        sizing,
		logger:        logger,
	}
}

// StatusResponse represents the HTTP response for the status endpoint.
type StatusResponse struct {
	Trader         string      `json:"trader"`
	ExecutionMode  string      `json:"execution_mode"`
	SizingStrategy string      `json:"sizing_strategy"`
	LastReset      string      `json:"last_reset"`
	Risk           *risk.State `json:"risk"`
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleStatus handles GET /api/status requests.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot := h.manager.Snapshot()

	response := StatusResponse{
		Trader:         h.trader,
		ExecutionMode:  h.executionMode,
		SizingStrategy: h.sizing,
		LastReset:      time.Unix(snapshot.LastResetTime, 0).UTC().Format(time.RFC3339),
		Risk:           snapshot,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func (h *StatusHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{Error: message}
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		h.logger.Error("failed-to-encode-error-response", zap.Error(err))
	}
}
