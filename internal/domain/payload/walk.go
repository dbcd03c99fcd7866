package payload

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/okian/wxgrid/internal/domain/failure"
)

// Node is a position inside a decoded document together with the path that
// led there, so errors can name exactly what was missing.
type Node struct {
	path  string
	value any
}

// Root wraps a decoded document.
func Root(doc any) Node {
	return Node{path: "$", value: doc}
}

// Path returns the JSONPath-like location of n.
func (n Node) Path() string { return n.path }

// Value returns the raw decoded value at n.
func (n Node) Value() any { return n.value }

// Key descends into object member key; a missing member is a schema error.
func (n Node) Key(key string) (Node, error) {
	m, err := n.Object()
	if err != nil {
		return Node{}, err
	}
	v, ok := m[key]
	if !ok {
		return Node{}, failure.Schemaf("payload.walk", "%s: missing key %q", n.path, key)
	}
	return Node{path: n.path + "." + key, value: v}, nil
}

// Lookup descends into object member key and reports whether it exists.
func (n Node) Lookup(key string) (Node, bool) {
	m, ok := n.value.(map[string]any)
	if !ok {
		return Node{}, false
	}
	v, ok := m[key]
	if !ok {
		return Node{}, false
	}
	return Node{path: n.path + "." + key, value: v}, true
}

// Index descends into array element i.
func (n Node) Index(i int) (Node, error) {
	items, err := n.Items()
	if err != nil {
		return Node{}, err
	}
	if i < 0 || i >= len(items) {
		return Node{}, failure.Schemaf("payload.walk", "%s: index %d out of range (len %d)", n.path, i, len(items))
	}
	return items[i], nil
}

// Walk follows a chain of object keys (string) and array indexes (int).
func (n Node) Walk(steps ...any) (Node, error) {
	cur := n
	var err error
	for _, step := range steps {
		switch s := step.(type) {
		case string:
			cur, err = cur.Key(s)
		case int:
			cur, err = cur.Index(s)
		default:
			return Node{}, fmt.Errorf("payload: invalid walk step %T", step)
		}
		if err != nil {
			return Node{}, err
		}
	}
	return cur, nil
}

// Object asserts n is a JSON object.
func (n Node) Object() (map[string]any, error) {
	m, ok := n.value.(map[string]any)
	if !ok {
		return nil, failure.Schemaf("payload.walk", "%s: expected object, got %s", n.path, typeName(n.value))
	}
	return m, nil
}

// Items asserts n is a JSON array and returns its elements as nodes.
func (n Node) Items() ([]Node, error) {
	arr, ok := n.value.([]any)
	if !ok {
		return nil, failure.Schemaf("payload.walk", "%s: expected array, got %s", n.path, typeName(n.value))
	}
	out := make([]Node, len(arr))
	for i, v := range arr {
		out[i] = Node{path: n.path + "[" + strconv.Itoa(i) + "]", value: v}
	}
	return out, nil
}

// Text asserts n is a JSON string.
func (n Node) Text() (string, error) {
	s, ok := n.value.(string)
	if !ok {
		return "", failure.Schemaf("payload.walk", "%s: expected string, got %s", n.path, typeName(n.value))
	}
	return s, nil
}

// Scalar renders a string, number or boolean as text. Null renders as the
// empty string so callers can treat it as a non-numeric token.
func (n Node) Scalar() (string, error) {
	switch v := n.value.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case nil:
		return "", nil
	default:
		return "", failure.Schemaf("payload.walk", "%s: expected scalar, got %s", n.path, typeName(n.value))
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
