package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/wxgrid/internal/domain/model"
)

// Mode selects the forecast artifact.
type Mode string

const (
	ModeText  Mode = "text"
	ModeImage Mode = "image"
)

// ParseMode parses a mode name; the empty string means ModeText.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeText, nil
	case ModeText, ModeImage:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// Request is one forecast rendering job over an already fetched payload.
type Request struct {
	Horizon model.Horizon
	Mode    Mode
	Payload []byte
}

// Result is a rendered forecast.
type Result struct {
	ContentType string
	Body        []byte
	Rows        int
	Columns     int
}

type requestIDKey struct{}

// WithRequestID stores id in ctx for log correlation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
