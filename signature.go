package depfill

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ErrUninspectable is returned by Inspect for callables that expose no
// parameter names. The resolver passes arguments to these straight through.
var ErrUninspectable = errors.New("callable has no inspectable signature")

// Signature describes the parameters of a function.
type Signature struct {
	// Positional are the names of the required parameters, in order.
	Positional []string

	// Named are the names of the parameters that have a default. These
	// always follow the positional parameters.
	Named []string

	// Defaults holds the default value of each Named parameter, aligned
	// by index.
	Defaults []interface{}
}

// Inspect returns the signature of fn. fn may be a *Func, a Go function or
// a *Partial. Partials and Go functions without a parameter descriptor
// return ErrUninspectable.
func Inspect(fn interface{}) (*Signature, error) {
	if _, ok := fn.(*Partial); ok {
		return nil, ErrUninspectable
	}

	f, err := NewFunc(fn)
	if err != nil {
		return nil, err
	}

	if f.sig == nil {
		return nil, ErrUninspectable
	}

	return f.sig, nil
}

// Names returns the positional names followed by the named ones.
func (s *Signature) Names() []string {
	result := make([]string, 0, len(s.Positional)+len(s.Named))
	result = append(result, s.Positional...)
	return append(result, s.Named...)
}

func (s *Signature) isNamed(n string) bool {
	for _, v := range s.Named {
		if v == n {
			return true
		}
	}

	return false
}

// namedValues returns the values for the named parameters in declaration
// order, falling back to the defaults.
func (s *Signature) namedValues(m map[string]interface{}) []interface{} {
	result := make([]interface{}, len(s.Named))
	for i, n := range s.Named {
		if v, ok := m[n]; ok {
			result[i] = v
		} else {
			result[i] = s.Defaults[i]
		}
	}

	return result
}

func (s *Signature) String() string {
	parts := make([]string, 0, len(s.Positional)+len(s.Named))
	parts = append(parts, s.Positional...)
	for i, n := range s.Named {
		parts = append(parts, fmt.Sprintf("%s=%v", n, s.Defaults[i]))
	}

	return "(" + strings.Join(parts, ", ") + ")"
}

// FuncOption is an option to NewFunc that describes the function.
type FuncOption func(*funcBuilder) error

type funcBuilder struct {
	name       string
	positional []string
	named      []string
	defaults   []interface{}
	receiver   reflect.Value
	seen       map[string]struct{}
}

func newFuncBuilder(opts ...FuncOption) (*funcBuilder, error) {
	builder := &funcBuilder{
		seen: make(map[string]struct{}),
	}

	var buildErr error
	for _, opt := range opts {
		if err := opt(builder); err != nil {
			buildErr = multierror.Append(buildErr, err)
		}
	}

	return builder, buildErr
}

func (b *funcBuilder) declared() bool {
	return len(b.positional) > 0 || len(b.named) > 0
}

func (b *funcBuilder) signature() *Signature {
	return &Signature{
		Positional: b.positional,
		Named:      b.named,
		Defaults:   b.defaults,
	}
}

func (b *funcBuilder) add(n string) error {
	if n == "" {
		return fmt.Errorf("parameter name cannot be empty")
	}
	if _, ok := b.seen[n]; ok {
		return fmt.Errorf("parameter %q declared more than once", n)
	}

	b.seen[n] = struct{}{}
	return nil
}

// Params declares the required parameters of the function, in the order
// of the Go parameters. Params must come before any Default.
func Params(names ...string) FuncOption {
	return func(b *funcBuilder) error {
		var err error
		for _, n := range names {
			if len(b.named) > 0 {
				err = multierror.Append(err, fmt.Errorf(
					"parameter %q declared after parameters with defaults", n))
				continue
			}

			if addErr := b.add(n); addErr != nil {
				err = multierror.Append(err, addErr)
				continue
			}

			b.positional = append(b.positional, n)
		}

		return err
	}
}

// Default declares the next parameter as a named parameter with the
// given default value.
func Default(name string, v interface{}) FuncOption {
	return func(b *funcBuilder) error {
		if err := b.add(name); err != nil {
			return err
		}

		b.named = append(b.named, name)
		b.defaults = append(b.defaults, v)
		return nil
	}
}

// Receiver binds v to the first Go parameter. Use this with method
// expressions such as (*T).Method; the receiver is not part of the
// signature.
func Receiver(v interface{}) FuncOption {
	return func(b *funcBuilder) error {
		if v == nil {
			return fmt.Errorf("receiver cannot be nil")
		}

		b.receiver = reflect.ValueOf(v)
		return nil
	}
}

// FuncName sets the name used for this function in logs and errors.
func FuncName(n string) FuncOption {
	return func(b *funcBuilder) error {
		b.name = n
		return nil
	}
}

// structInput describes a function that takes a single struct whose
// fields are the parameters.
type structInput struct {
	typ    reflect.Type
	ptr    bool
	fields map[string]int
}

func isStructInput(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return t.Kind() == reflect.Struct
}

func newStructInput(t reflect.Type) (*structInput, *Signature, error) {
	result := &structInput{
		typ:    t,
		fields: make(map[string]int),
	}
	if t.Kind() == reflect.Ptr {
		result.ptr = true
		result.typ = t.Elem()
	}

	var sig Signature
	var err error
	for i := 0; i < result.typ.NumField(); i++ {
		sf := result.typ.Field(i)

		// Ignore unexported fields
		if sf.PkgPath != "" {
			continue
		}

		name := sf.Name
		optional := false
		if tag := sf.Tag.Get("depfill"); tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}

			if parts[0] != "" {
				name = parts[0]
			}

			for _, v := range parts[1:] {
				if v == "optional" {
					optional = true
				}
			}
		}

		// Name is always lowercase
		name = strings.ToLower(name)

		if _, ok := result.fields[name]; ok {
			err = multierror.Append(err, fmt.Errorf(
				"field %s: parameter %q declared more than once", sf.Name, name))
			continue
		}
		result.fields[name] = i

		if optional {
			sig.Named = append(sig.Named, name)
			sig.Defaults = append(sig.Defaults, nil)
			continue
		}

		if len(sig.Named) > 0 {
			err = multierror.Append(err, fmt.Errorf(
				"field %s: required parameter follows optional parameters", sf.Name))
			continue
		}

		sig.Positional = append(sig.Positional, name)
	}

	if err != nil {
		return nil, nil, err
	}

	return result, &sig, nil
}

// value builds the struct argument from the resolved args.
func (s *structInput) value(sig *Signature, args Args) (reflect.Value, error) {
	v := reflect.New(s.typ).Elem()

	set := func(name string, raw interface{}) error {
		field := v.Field(s.fields[name])
		rv, err := convertValue(raw, field.Type())
		if err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}

		field.Set(rv)
		return nil
	}

	if len(args.Positional) > len(sig.Positional) {
		return reflect.Value{}, fmt.Errorf(
			"too many arguments: got %d, want %d", len(args.Positional), len(sig.Positional))
	}

	var err error
	for i, n := range sig.Positional {
		raw, ok := args.Named[n]
		if i < len(args.Positional) {
			raw, ok = args.Positional[i], true
		}
		if !ok {
			err = multierror.Append(err, fmt.Errorf("argument %q not given", n))
			continue
		}

		if setErr := set(n, raw); setErr != nil {
			err = multierror.Append(err, setErr)
		}
	}
	for i, raw := range sig.namedValues(args.Named) {
		if setErr := set(sig.Named[i], raw); setErr != nil {
			err = multierror.Append(err, setErr)
		}
	}
	if err != nil {
		return reflect.Value{}, err
	}

	if s.ptr {
		return v.Addr(), nil
	}

	return v, nil
}
