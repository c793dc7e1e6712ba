package depfill

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/hashicorp/go-depfill/internal/ordered"
	"gopkg.in/yaml.v3"
)

// Values is an ordered set of named values. It is the knowledge base
// accessors derive from. Iteration follows insertion order, which is
// what decides between two values that could both satisfy a derivation.
//
// A nil *Values behaves as an empty set for reading. It is unsafe to
// modify Values concurrently.
type Values struct {
	m ordered.Map[string, interface{}]

	// rev is bumped on every change so holders can tell when to rebuild
	// anything derived from the values.
	rev uint64
}

// NewValues returns an empty Values.
func NewValues() *Values {
	return &Values{}
}

// ValuesFromMap returns Values holding the entries of m. Go maps are
// unordered so the keys are inserted in sorted order.
func ValuesFromMap(m map[string]interface{}) *Values {
	result := NewValues()
	result.SetMap(m)
	return result
}

// ValuesFromStruct returns Values with one entry per exported field of v,
// which must be a struct or a pointer to a struct. Names are the lowercased
// field names, or the name in a `depfill:"name"` tag. Fields tagged
// `depfill:"-"` are skipped.
func ValuesFromStruct(v interface{}) (*Values, error) {
	sv := structValueOf(reflect.ValueOf(v))
	if sv.Kind() == reflect.Invalid {
		return nil, fmt.Errorf(
			"only struct or pointer to struct types are supported, got %T", v)
	}
	st := sv.Type()

	result := NewValues()
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if f.PkgPath != "" {
			continue
		}

		name := f.Name
		if tag := f.Tag.Get("depfill"); tag != "" {
			tagName := strings.Split(tag, ",")[0]
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}

		result.Set(strings.ToLower(name), sv.Field(i).Interface())
	}

	return result, nil
}

// ValuesFromYAML decodes a YAML document whose top level is a mapping.
// The top-level keys keep their document order. Nested mappings decode
// to map[string]interface{}.
func ValuesFromYAML(data []byte) (*Values, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	result := NewValues()

	// An empty document has no content at all.
	if len(doc.Content) == 0 {
		return result, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("yaml document must be a mapping (line %d)", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, node := root.Content[i], root.Content[i+1]

		var v interface{}
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("key %q: %w", key.Value, err)
		}

		result.Set(key.Value, v)
	}

	return result, nil
}

// Set sets the value for name. An existing name keeps its position.
func (vs *Values) Set(name string, v interface{}) {
	vs.m.Set(name, v)
	vs.rev++
}

// SetMap sets every entry of m. New keys are inserted in sorted order.
func (vs *Values) SetMap(m map[string]interface{}) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		vs.m.Set(k, m[k])
	}
	vs.rev++
}

// Merge sets every entry of other, in other's order.
func (vs *Values) Merge(other *Values) {
	other.Each(func(k string, v interface{}) bool {
		vs.m.Set(k, v)
		return true
	})
	vs.rev++
}

// Get returns the value for name.
func (vs *Values) Get(name string) (interface{}, bool) {
	if vs == nil {
		return nil, false
	}

	return vs.m.Get(name)
}

// Delete removes name.
func (vs *Values) Delete(name string) {
	vs.m.Delete(name)
	vs.rev++
}

// Len returns the number of values.
func (vs *Values) Len() int {
	if vs == nil {
		return 0
	}

	return vs.m.Len()
}

// Keys returns the names in order.
func (vs *Values) Keys() []string {
	if vs == nil {
		return nil
	}

	return vs.m.Keys()
}

// Each calls f for every value in order until f returns false.
func (vs *Values) Each(f func(name string, v interface{}) bool) {
	if vs == nil {
		return
	}

	vs.m.Each(f)
}

// Copy returns a copy of the values. The values themselves are not
// deep copied.
func (vs *Values) Copy() *Values {
	if vs == nil {
		return NewValues()
	}

	return &Values{m: *vs.m.Copy()}
}

// Map returns the values as a plain map.
func (vs *Values) Map() map[string]interface{} {
	result := make(map[string]interface{}, vs.Len())
	vs.Each(func(k string, v interface{}) bool {
		result[k] = v
		return true
	})

	return result
}

func (vs *Values) String() string {
	return "[" + strings.Join(vs.Keys(), ", ") + "]"
}

func structValueOf(rv reflect.Value) reflect.Value {
	if k := rv.Kind(); k != reflect.Struct && k != reflect.Ptr {
		return reflect.Value{}
	}

	sv := rv
	if sv.Kind() == reflect.Ptr {
		// unwrap ptr
		sv = sv.Elem()
		if sv.Kind() != reflect.Struct {
			return reflect.Value{}
		}
	}

	return sv
}
