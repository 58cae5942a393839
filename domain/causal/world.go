// Package causal holds the value types shared by the causal engines: worlds,
// projected contexts, graph edges, query results and domain errors.
package causal

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// World assigns a realized value to every variable of a model.
type World map[string]any

// Predicate is a test over worlds.
type Predicate func(World) bool

// Truthy reports whether v is the boolean true. Non-boolean values count as false.
func Truthy(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

// IsTrue holds in worlds where name is true.
func IsTrue(name string) Predicate {
	return func(w World) bool { return Truthy(w[name]) }
}

// IsFalse holds in worlds where name is not true.
func IsFalse(name string) Predicate {
	return func(w World) bool { return !Truthy(w[name]) }
}

// Equals holds in worlds where name has exactly value v.
func Equals(name string, v any) Predicate {
	return func(w World) bool { return SameValue(w[name], v) }
}

// SameValue compares two domain values with ==, or with reflect.DeepEqual when
// they hold non-comparable data such as slices or maps.
func SameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if !reflect.ValueOf(a).Comparable() {
		return reflect.DeepEqual(a, b)
	}
	return a == b
}

// Not negates p.
func Not(p Predicate) Predicate {
	return func(w World) bool { return !p(w) }
}

// And holds when every predicate holds.
func And(ps ...Predicate) Predicate {
	return func(w World) bool {
		for _, p := range ps {
			if !p(w) {
				return false
			}
		}
		return true
	}
}

// String renders the world with names sorted, e.g. "{A=true, B=false}".
func (w World) String() string {
	names := make([]string, 0, len(w))
	for name := range w {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%v", name, w[name])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
