package depfill

import (
	"bytes"
	"fmt"
	"sort"
)

// Accessor derives the value of a named dependency from the values that
// are currently known. An Accessor that cannot produce a value returns an
// error; the resolver treats that as "not filled" rather than a failure.
type Accessor interface {
	Derive(name string, known *Values) (interface{}, error)
}

// AccessorFunc is an Accessor implemented by a plain function.
type AccessorFunc func(name string, known *Values) (interface{}, error)

// Derive implements Accessor.
func (f AccessorFunc) Derive(name string, known *Values) (interface{}, error) {
	return f(name, known)
}

// DirectAccessor always returns the value it was created with.
type DirectAccessor struct {
	Key   string
	Value interface{}
}

// Direct returns a DirectAccessor for the given key and value.
func Direct(key string, v interface{}) *DirectAccessor {
	return &DirectAccessor{Key: key, Value: v}
}

// Derive implements Accessor. It never fails.
func (a *DirectAccessor) Derive(string, *Values) (interface{}, error) {
	return a.Value, nil
}

func (a *DirectAccessor) String() string {
	return fmt.Sprintf("<direct %q>", a.Key)
}

// AccessorMap maps a parameter name to the Accessor responsible for
// deriving it.
type AccessorMap map[string]Accessor

// DirectAccessors returns an AccessorMap with one DirectAccessor per
// entry of vs.
func DirectAccessors(vs *Values) AccessorMap {
	result := make(AccessorMap, vs.Len())
	vs.Each(func(k string, v interface{}) bool {
		result[k] = Direct(k, v)
		return true
	})

	return result
}

// Register sets the Accessor for name, replacing any existing one.
func (m AccessorMap) Register(name string, a Accessor) {
	m[name] = a
}

// Names returns the registered names, sorted.
func (m AccessorMap) Names() []string {
	result := make([]string, 0, len(m))
	for k := range m {
		result = append(result, k)
	}
	sort.Strings(result)

	return result
}

func (m AccessorMap) String() string {
	var buf bytes.Buffer
	for _, k := range m.Names() {
		fmt.Fprintf(&buf, "%s: %v\n", k, m[k])
	}

	return buf.String()
}
