package api

import (
	"context"
	"net/http"
)

// SummaryDependencies defines the interface for window summaries.
type SummaryDependencies interface {
	Summary(ctx context.Context, raw []byte) (string, error)
}

// SummaryHandler handles summary requests.
type SummaryHandler struct {
	deps     SummaryDependencies
	maxBytes int64
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps SummaryDependencies, maxBytes int64) *SummaryHandler {
	return &SummaryHandler{deps: deps, maxBytes: maxBytes}
}

// HandleSummary handles POST /v1/summary requests.
func (h *SummaryHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	body, err := readBody(w, r, h.maxBytes)
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := h.deps.Summary(r.Context(), body)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}
