// Package failure defines the error kinds shared by the pipeline stages and
// the wrapper that carries an operation name, a kind and the cause.
package failure

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Match them with errors.Is.
var (
	// ErrSchema marks a raw payload whose expected key or path is absent or
	// has the wrong shape.
	ErrSchema = errors.New("payload schema error")
	// ErrRender marks a failure while formatting or drawing an artifact.
	ErrRender = errors.New("render error")
	// ErrUnsupported marks a horizon and mode combination that has no renderer.
	ErrUnsupported = errors.New("unsupported operation")
	// ErrInvalidInput marks caller input that cannot be interpreted.
	ErrInvalidInput = errors.New("invalid input")
)

// Error carries the failing operation, its kind and the underlying cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	case e.Kind == nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// New returns an error of the given kind with no further cause.
func New(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// Wrap attaches op and kind to err. A nil err yields nil.
func Wrap(op string, kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Schemaf is shorthand for a schema error with a formatted cause.
func Schemaf(op, format string, args ...any) error {
	return &Error{Op: op, Kind: ErrSchema, Err: fmt.Errorf(format, args...)}
}

// KindOf reports the first known kind found in err's chain, or nil.
func KindOf(err error) error {
	for _, k := range []error{ErrSchema, ErrRender, ErrUnsupported, ErrInvalidInput} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Label returns a short, metric-friendly name for err's kind.
func Label(err error) string {
	switch KindOf(err) {
	case ErrSchema:
		return "schema"
	case ErrRender:
		return "render"
	case ErrUnsupported:
		return "unsupported"
	case ErrInvalidInput:
		return "invalid_input"
	case nil:
		if err == nil {
			return "none"
		}
	}
	return "internal"
}

// Annotate prefixes err with op. The kind is attached only when err does
// not already carry it, so nested stages do not repeat the kind text.
func Annotate(op string, kind, err error) error {
	if err == nil {
		return nil
	}
	if kind != nil && errors.Is(err, kind) {
		return &Error{Op: op, Err: err}
	}
	return &Error{Op: op, Kind: kind, Err: err}
}
