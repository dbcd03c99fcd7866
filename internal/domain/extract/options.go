package extract

import "github.com/okian/wxgrid/pkg/logger"

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for per-element debug output.
func WithLogger(l logger.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithSchemaGate toggles the JSON Schema check that runs before the walk.
// Disabled, malformed payloads still fail on the walk itself.
func WithSchemaGate(enabled bool) Option {
	return func(e *Extractor) {
		e.schemaGate = enabled
	}
}
