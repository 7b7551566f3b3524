package course

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidKey is returned when a course key string cannot be parsed.
var ErrInvalidKey = errors.New("invalid course key")

const keyPrefix = "course-v1:"

// Key is the structured identifier of a course run, e.g.
// "course-v1:edX+DemoX+Demo_Course". The legacy "edX/DemoX/Demo_Course"
// form is accepted on parse and normalized to the course-v1 form.
type Key struct {
	Org    string
	Course string
	Run    string
}

// ParseKey parses a course key string in either the course-v1 or legacy form.
func ParseKey(raw string) (Key, error) {
	if raw == "" {
		return Key{}, fmt.Errorf("%w: empty string", ErrInvalidKey)
	}

	var parts []string
	if rest, ok := strings.CutPrefix(raw, keyPrefix); ok {
		parts = strings.Split(rest, "+")
	} else {
		parts = strings.Split(raw, "/")
	}

	if len(parts) != 3 {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, raw)
	}
	for _, p := range parts {
		if p == "" || strings.ContainsAny(p, " \t") {
			return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, raw)
		}
	}

	return Key{Org: parts[0], Course: parts[1], Run: parts[2]}, nil
}

// String renders the key in its canonical course-v1 form.
func (k Key) String() string {
	return keyPrefix + k.Org + "+" + k.Course + "+" + k.Run
}

// IsZero reports whether the key is empty.
func (k Key) IsZero() bool {
	return k == Key{}
}
