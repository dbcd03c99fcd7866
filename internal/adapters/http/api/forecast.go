package api

import (
	"context"
	"encoding/base64"
	"net/http"
	"strconv"

	service "github.com/okian/wxgrid/internal/app"
	"github.com/okian/wxgrid/internal/domain/failure"
	"github.com/okian/wxgrid/internal/domain/model"
)

// ForecastDependencies defines the interface for forecast rendering.
type ForecastDependencies interface {
	Forecast(ctx context.Context, req service.Request) (service.Result, error)
}

// ForecastHandler handles forecast requests.
type ForecastHandler struct {
	deps     ForecastDependencies
	maxBytes int64
}

// NewForecastHandler creates a new forecast handler.
func NewForecastHandler(deps ForecastDependencies, maxBytes int64) *ForecastHandler {
	return &ForecastHandler{deps: deps, maxBytes: maxBytes}
}

type imageResponse struct {
	ContentType string `json:"content_type"`
	ImageBase64 string `json:"image_base64"`
	Rows        int    `json:"rows"`
	Columns     int    `json:"columns"`
}

// HandleForecast handles POST /v1/forecast?horizon=...&mode=... requests.
func (h *ForecastHandler) HandleForecast(w http.ResponseWriter, r *http.Request) {
	const op = "api.forecast"
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	q := r.URL.Query()
	horizon, err := model.ParseHorizon(q.Get("horizon"))
	if err != nil {
		writeError(w, failure.Wrap(op, failure.ErrInvalidInput, err))
		return
	}
	mode, err := service.ParseMode(q.Get("mode"))
	if err != nil {
		writeError(w, failure.Wrap(op, failure.ErrInvalidInput, err))
		return
	}
	body, err := readBody(w, r, h.maxBytes)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := h.deps.Forecast(r.Context(), service.Request{Horizon: horizon, Mode: mode, Payload: body})
	if err != nil {
		writeError(w, err)
		return
	}

	if mode == service.ModeImage && acceptsJSON(r) {
		writeJSON(w, http.StatusOK, imageResponse{
			ContentType: res.ContentType,
			ImageBase64: base64.StdEncoding.EncodeToString(res.Body),
			Rows:        res.Rows,
			Columns:     res.Columns,
		})
		return
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("X-Forecast-Rows", strconv.Itoa(res.Rows))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Body)
}
