package testpayloads

import (
	"fmt"
	"net/http"
)

// Payloads is one set of generated upstream documents.
type Payloads struct {
	Short   []byte
	Long    []byte
	Windows []byte
}

// Generate builds the three payload shapes.
func Generate(g *Generator, days int) (Payloads, error) {
	short, err := g.Short(days)
	if err != nil {
		return Payloads{}, fmt.Errorf("short payload: %w", err)
	}
	long, err := g.Long(7)
	if err != nil {
		return Payloads{}, fmt.Errorf("long payload: %w", err)
	}
	windows, err := g.Windows()
	if err != nil {
		return Payloads{}, fmt.Errorf("window payload: %w", err)
	}
	return Payloads{Short: short, Long: long, Windows: windows}, nil
}

// BuildCases returns the request matrix exercised by a smoke run.
func BuildCases(p Payloads) []Case {
	return []Case{
		{Name: "short-text", Method: http.MethodPost, Path: "/v1/forecast?horizon=short&mode=text", Body: p.Short,
			WantStatus: StatusOK, WantContentType: "text/plain"},
		{Name: "short-image", Method: http.MethodPost, Path: "/v1/forecast?horizon=short&mode=image", Body: p.Short,
			WantStatus: StatusOK, WantContentType: "image/png"},
		{Name: "short-image-json", Method: http.MethodPost, Path: "/v1/forecast?horizon=3&mode=image", Body: p.Short,
			Accept: "application/json", WantStatus: StatusOK, WantContentType: "application/json"},
		{Name: "long-text", Method: http.MethodPost, Path: "/v1/forecast?horizon=long", Body: p.Long,
			WantStatus: StatusOK, WantContentType: "text/plain"},
		{Name: "long-image", Method: http.MethodPost, Path: "/v1/forecast?horizon=long&mode=image", Body: p.Long,
			WantStatus: StatusBadRequest, WantContentType: "application/json"},
		{Name: "summary", Method: http.MethodPost, Path: "/v1/summary", Body: p.Windows,
			WantStatus: StatusOK, WantContentType: "text/plain"},
		{Name: "malformed", Method: http.MethodPost, Path: "/v1/forecast?horizon=short", Body: []byte(`{"records":{}}`),
			WantStatus: StatusUnprocessableEntity, WantContentType: "application/json"},
	}
}
