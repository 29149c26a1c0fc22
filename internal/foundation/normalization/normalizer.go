// Package normalization maps loosely written configuration values onto
// closed sets of typed constants.
package normalization

import (
	"slices"
	"strings"

	ferrors "git.home.luguber.info/inful/webtree/internal/foundation/errors"
)

// Normalizer maps case- and space-insensitive keys to values of T.
type Normalizer[T comparable] struct {
	name   string
	values map[string]T
	keys   []string
}

// New returns a normalizer for the setting called name. Aliases may map to
// the same value.
func New[T comparable](name string, values map[string]T) *Normalizer[T] {
	n := &Normalizer[T]{name: name, values: make(map[string]T, len(values))}
	for k, v := range values {
		key := clean(k)
		n.values[key] = v
		n.keys = append(n.keys, key)
	}
	slices.Sort(n.keys)
	return n
}

// Normalize returns the value for raw. Unknown values yield a validation
// error listing the accepted keys.
func (n *Normalizer[T]) Normalize(raw string) (T, error) {
	if v, ok := n.values[clean(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, ferrors.ValidationError("invalid "+n.name).
		WithContext("value", raw).
		WithContext("valid", strings.Join(n.keys, ", ")).
		Build()
}

// Or returns the value for raw, or fallback when raw is empty or unknown.
func (n *Normalizer[T]) Or(raw string, fallback T) T {
	if v, err := n.Normalize(raw); err == nil {
		return v
	}
	return fallback
}

// Keys returns the accepted keys in sorted order.
func (n *Normalizer[T]) Keys() []string {
	return slices.Clone(n.keys)
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
