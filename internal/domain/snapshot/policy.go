package snapshot

import (
	"fmt"
	"strings"
)

// Policy decides which forecast window a summary describes.
type Policy string

const (
	// PolicyContaining picks the earliest window that contains the current
	// time, falling back to the earliest window overall.
	PolicyContaining Policy = "containing"
	// PolicyLast always picks the window listed last upstream, regardless
	// of the current time. Windows are grouped by start text in order of
	// first appearance, then by end text.
	PolicyLast Policy = "last"
)

// ParsePolicy parses a policy name; the empty string means PolicyContaining.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyContaining, nil
	case PolicyContaining, PolicyLast:
		return p, nil
	default:
		return "", fmt.Errorf("unknown window policy %q", s)
	}
}

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool {
	return p == PolicyContaining || p == PolicyLast
}
