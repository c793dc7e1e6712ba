package depfill

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
)

// KeyedLookup can be implemented by values that support key lookup
// in a path, the way a map does.
type KeyedLookup interface {
	LookupKey(key string) (interface{}, bool)
}

// FieldLookup can be implemented by values that support attribute
// lookup in a path, the way a struct does.
type FieldLookup interface {
	LookupField(name string) (interface{}, bool)
}

// PathDef is a dotted path such as "user.address.city" that narrows a
// value one segment at a time.
//
// At each segment the current value is first tried as a KeyedLookup, then
// as a FieldLookup. Maps with string keys are keyed; structs and pointers
// to structs expose their exported fields (matched case-insensitively)
// and methods. A segment that is found with a nil value is a valid result.
type PathDef struct {
	raw      string
	segments []string
}

// Path returns a PathDef for the dotted path p.
func Path(p string) *PathDef {
	return &PathDef{
		raw:      p,
		segments: strings.Split(p, "."),
	}
}

// Transform walks the path starting at v. A missing segment fails with
// a *DerivationError.
func (p *PathDef) Transform(v interface{}) (interface{}, error) {
	for _, seg := range p.segments {
		next, ok := lookupKey(v, seg)
		if !ok {
			next, ok = lookupField(v, seg)
		}
		if !ok {
			return nil, &DerivationError{
				Path:    p.raw,
				Segment: seg,
			}
		}

		v = next
	}

	return v, nil
}

func (p *PathDef) String() string {
	return fmt.Sprintf("<path %q>", p.raw)
}

// lookupKey does key lookup on v.
func lookupKey(v interface{}, key string) (interface{}, bool) {
	if k, ok := v.(KeyedLookup); ok {
		return k.LookupKey(key)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}

	result := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
	if !result.IsValid() {
		return nil, false
	}

	return result.Interface(), true
}

// lookupField does attribute lookup on v.
func lookupField(v interface{}, name string) (interface{}, bool) {
	if f, ok := v.(FieldLookup); ok {
		return f.LookupField(name)
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, false
	}

	if sv := structValueOf(rv); sv.IsValid() {
		field := sv.FieldByNameFunc(func(n string) bool {
			return strings.EqualFold(n, name)
		})
		if field.IsValid() && field.CanInterface() {
			return field.Interface(), true
		}
	}

	// Methods are exported so they start with an upper case letter.
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || rv.Kind() == reflect.Ptr && rv.IsNil() {
		return nil, false
	}
	if m := rv.MethodByName(string(unicode.ToUpper(r)) + name[size:]); m.IsValid() {
		return m.Interface(), true
	}

	return nil, false
}

// Rule is a single path derivation rule: derive the target by walking Path
// starting from the known value named Source.
type Rule struct {
	Source string
	Path   *PathDef
}

// From returns a Rule deriving from the known value source through path.
func From(source, path string) Rule {
	return Rule{Source: source, Path: Path(path)}
}

// PathAccessor is an Accessor that derives a value from other known values
// through path rules.
//
// Derive walks the known values in order. The first known value with a
// rule whose path resolves wins, so the same dependency can be derived
// differently depending on what is known at call time.
type PathAccessor struct {
	rules map[string]*PathDef
}

// NewPathAccessor returns a PathAccessor for the given rules. A later rule
// for the same source replaces an earlier one.
func NewPathAccessor(rules ...Rule) *PathAccessor {
	result := &PathAccessor{rules: make(map[string]*PathDef, len(rules))}
	for _, r := range rules {
		result.rules[r.Source] = r.Path
	}

	return result
}

// Derive implements Accessor.
func (a *PathAccessor) Derive(name string, known *Values) (interface{}, error) {
	var (
		result interface{}
		found  bool
		errs   error
	)
	known.Each(func(k string, v interface{}) bool {
		p, ok := a.rules[k]
		if !ok {
			return true
		}

		r, err := p.Transform(v)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("from %q: %w", k, err))
			return true
		}

		result, found = r, true
		return false
	})
	if found {
		return result, nil
	}

	return nil, &DerivationError{Name: name, Cause: errs}
}

func (a *PathAccessor) String() string {
	parts := make([]string, 0, len(a.rules))
	for k, p := range a.rules {
		parts = append(parts, k+"."+p.raw)
	}
	sort.Strings(parts)

	return fmt.Sprintf("<path accessor %s>", strings.Join(parts, ", "))
}

var (
	_ Accessor = (*DirectAccessor)(nil)
	_ Accessor = (*PathAccessor)(nil)
	_ Accessor = AccessorFunc(nil)
)
