package accountupdate

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-waba-webhooks/internal/domain"
)

// node is a JSON object together with the path it was reached by, so every
// lookup failure names the exact location in the payload.
type node struct {
	path string
	m    map[string]any
}

func malformed(path, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", domain.ErrMalformedPayload, path, fmt.Sprintf(format, args...))
}

func (n node) child(key string) string {
	if n.path == "" {
		return key
	}
	return n.path + "." + key
}

// lookup returns the value under key. Missing keys and JSON nulls are both absent.
func (n node) lookup(key string) (any, bool) {
	v, ok := n.m[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (n node) object(key string) (node, bool, error) {
	v, ok := n.lookup(key)
	if !ok {
		return node{}, false, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return node{}, false, malformed(n.child(key), "expected object, got %T", v)
	}
	return node{path: n.child(key), m: m}, true, nil
}

func (n node) requireObject(key string) (node, error) {
	o, ok, err := n.object(key)
	if err != nil {
		return node{}, err
	}
	if !ok {
		return node{}, malformed(n.child(key), "missing")
	}
	return o, nil
}

// first returns the first element of the list under key, which must be an object.
func (n node) first(key string) (node, error) {
	v, ok := n.lookup(key)
	if !ok {
		return node{}, malformed(n.child(key), "missing")
	}
	list, ok := v.([]any)
	if !ok {
		return node{}, malformed(n.child(key), "expected array, got %T", v)
	}
	path := n.child(key) + "[0]"
	if len(list) == 0 {
		return node{}, malformed(path, "missing")
	}
	m, ok := list[0].(map[string]any)
	if !ok {
		return node{}, malformed(path, "expected object, got %T", list[0])
	}
	return node{path: path, m: m}, nil
}

func (n node) str(key string) (*string, error) {
	v, ok := n.lookup(key)
	if !ok {
		return nil, nil
	}
	s, err := asString(n.child(key), v)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (n node) requireStr(key string) (string, error) {
	s, err := n.str(key)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", malformed(n.child(key), "missing")
	}
	return *s, nil
}

func (n node) integer(key string) (*int64, error) {
	v, ok := n.lookup(key)
	if !ok {
		return nil, nil
	}
	i, err := asInt(n.child(key), v)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (n node) requireInteger(key string) (int64, error) {
	i, err := n.integer(key)
	if err != nil {
		return 0, err
	}
	if i == nil {
		return 0, malformed(n.child(key), "missing")
	}
	return *i, nil
}

func (n node) boolean(key string) (*bool, error) {
	v, ok := n.lookup(key)
	if !ok {
		return nil, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, malformed(n.child(key), "expected boolean, got %T", v)
	}
	return &b, nil
}

// list returns the elements under key; nil means absent.
func (n node) list(key string) ([]any, error) {
	v, ok := n.lookup(key)
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, malformed(n.child(key), "expected array, got %T", v)
	}
	return list, nil
}

func (n node) strList(key string) ([]string, error) {
	list, err := n.list(key)
	if err != nil || list == nil {
		return nil, err
	}
	out := make([]string, len(list))
	for i, v := range list {
		s, err := asString(fmt.Sprintf("%s[%d]", n.child(key), i), v)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func asString(path string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", malformed(path, "expected string, got %T", v)
	}
	return s, nil
}

// asInt accepts the number representations produced by encoding/json (with
// or without UseNumber) and by Go literals.
func asInt(path string, v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, malformed(path, "expected integer, got %q", n.String())
		}
		return i, nil
	case float64:
		if n != math.Trunc(n) || n >= math.MaxInt64 || n < math.MinInt64 {
			return 0, malformed(path, "expected integer, got %v", n)
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	}
	return 0, malformed(path, "expected integer, got %T", v)
}
