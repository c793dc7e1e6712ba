package depfill

import (
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

// Args is a set of positional and named arguments.
type Args struct {
	Positional []interface{}
	Named      map[string]interface{}
}

// NamedArg is a named argument to a Partial call. See Kw.
type NamedArg struct {
	Name  string
	Value interface{}
}

// Kw returns a named argument. Anything else passed to Partial.Call or
// Context.CreatePartial is positional.
func Kw(name string, v interface{}) NamedArg {
	return NamedArg{Name: name, Value: v}
}

// splitArgs separates NamedArg values from positional ones.
func splitArgs(args []interface{}) Args {
	result := Args{Named: map[string]interface{}{}}
	for _, arg := range args {
		if kw, ok := arg.(NamedArg); ok {
			result.Named[kw.Name] = kw.Value
			continue
		}

		result.Positional = append(result.Positional, arg)
	}

	return result
}

// ResolveOption is an option to Resolve.
type ResolveOption func(*resolveBuilder) error

type resolveBuilder struct {
	logger hclog.Logger
	known  *Values
	wrap   func(interface{}) interface{}
}

func newResolveBuilder(opts ...ResolveOption) (*resolveBuilder, error) {
	builder := &resolveBuilder{
		logger: hclog.L(),
	}

	var buildErr error
	for _, opt := range opts {
		if err := opt(builder); err != nil {
			buildErr = multierror.Append(buildErr, err)
		}
	}

	return builder, buildErr
}

// WithLogger sets the logger used during resolution.
func WithLogger(l hclog.Logger) ResolveOption {
	return func(b *resolveBuilder) error {
		b.logger = l
		return nil
	}
}

// Known sets the knowledge base handed to accessors. The given arguments
// are layered over it for each resolution; vs itself is never modified.
func Known(vs *Values) ResolveOption {
	return func(b *resolveBuilder) error {
		b.known = vs
		return nil
	}
}

// WithWrapper sets a function that every derived value is passed through
// before it is used.
func WithWrapper(f func(interface{}) interface{}) ResolveOption {
	return func(b *resolveBuilder) error {
		b.wrap = f
		return nil
	}
}
