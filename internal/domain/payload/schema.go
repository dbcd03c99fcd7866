package payload

import (
	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/okian/wxgrid/internal/domain/failure"
)

// Shape names one of the two upstream payload layouts.
type Shape string

const (
	// ElementMajor payloads list elements, each with its own time series.
	ElementMajor Shape = "element-major"
	// WindowMajor payloads list elements, each with start/end keyed windows.
	WindowMajor Shape = "window-major"
)

//go:embed schemas/element_major.json
var elementMajorSchema string

//go:embed schemas/window_major.json
var windowMajorSchema string

var schemas = map[Shape]*jsonschema.Schema{
	ElementMajor: jsonschema.MustCompileString("element_major.json", elementMajorSchema),
	WindowMajor:  jsonschema.MustCompileString("window_major.json", windowMajorSchema),
}

// Validate checks doc against the JSON Schema of shape. The validation error
// lists every violated path and is kept as the cause.
func Validate(doc any, shape Shape) error {
	const op = "payload.validate"
	s, ok := schemas[shape]
	if !ok {
		return failure.Schemaf(op, "unknown payload shape %q", shape)
	}
	if err := s.Validate(doc); err != nil {
		return failure.Wrap(op, failure.ErrSchema, err)
	}
	return nil
}
