// Package vars implements the variable scopes used to expand command
// templates: an insertion-ordered immutable Map, the two-tier Resolve
// function and the Extract folds that build scopes from configuration.
package vars

import (
	"iter"
	"strings"
)

// Map is an insertion-ordered string map. The zero value is an empty map.
// A Map is never modified in place; With returns a new Map.
type Map struct {
	keys   []string
	values map[string]string
}

// Pair is a single key/value entry.
type Pair struct {
	Key   string
	Value string
}

// FromPairs builds a Map from pairs in order. Later duplicates replace the
// value of the earlier key without moving it.
func FromPairs(pairs ...Pair) Map {
	var m Map
	for _, p := range pairs {
		m = m.With(p.Key, p.Value)
	}
	return m
}

// With returns a copy of m with key set to value. An existing key keeps its
// position.
func (m Map) With(key, value string) Map {
	next := Map{
		keys:   make([]string, len(m.keys), len(m.keys)+1),
		values: make(map[string]string, len(m.values)+1),
	}
	copy(next.keys, m.keys)
	for k, v := range m.values {
		next.values[k] = v
	}
	if _, ok := next.values[key]; !ok {
		next.keys = append(next.keys, key)
	}
	next.values[key] = value
	return next
}

// Get returns the value stored under key.
func (m Map) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of entries.
func (m Map) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// All iterates over the entries in insertion order.
func (m Map) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Pairs returns the entries in insertion order.
func (m Map) Pairs() []Pair {
	out := make([]Pair, 0, len(m.keys))
	for k, v := range m.All() {
		out = append(out, Pair{Key: k, Value: v})
	}
	return out
}

// Environ renders the map as KEY=VALUE strings.
func (m Map) Environ() []string {
	out := make([]string, 0, len(m.keys))
	for k, v := range m.All() {
		out = append(out, k+"="+v)
	}
	return out
}

// Resolve substitutes {name} placeholders in template. Every user variable
// is applied first, then every computed variable, each in insertion order
// and each exactly once. Substitution is a plain substring replace, so text
// produced by one variable can still be matched by a variable applied
// after it.
func Resolve(template string, computed, user Map) string {
	value := template
	for k, v := range user.All() {
		value = strings.ReplaceAll(value, "{"+k+"}", v)
	}
	for k, v := range computed.All() {
		value = strings.ReplaceAll(value, "{"+k+"}", v)
	}
	return value
}

// ExtractVariables extends inherited with the declared variables. Each
// declaration is resolved against the variables accumulated so far, so a
// declaration can reference any earlier one. When declared is false the
// inherited map is returned as is.
func ExtractVariables(decls Map, declared bool, inherited, user Map) Map {
	if !declared {
		return inherited
	}
	computed := inherited
	for k, tmpl := range decls.All() {
		computed = computed.With(k, Resolve(tmpl, computed, user))
	}
	return computed
}

// ExtractEnvironment extends inherited with the declared environment
// entries, resolving each against the variable scopes rather than the
// environment itself.
func ExtractEnvironment(decls Map, inherited, computed, user Map) Map {
	env := inherited
	for k, tmpl := range decls.All() {
		env = env.With(k, Resolve(tmpl, computed, user))
	}
	return env
}
