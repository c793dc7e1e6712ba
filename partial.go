package depfill

import (
	"fmt"
	"reflect"
)

// Partial is a function bound to a Context, and optionally to some
// arguments. Every call resolves the missing arguments against the
// Context as it is at the time of the call.
//
// A Partial can be passed wherever a Go func is expected as an argument
// of a function called through a Context; it is adapted to the func type.
type Partial struct {
	fn    interface{}
	ctx   *Context
	bound Args

	// wrapped marks a value that is already bound to a Context and must
	// not be wrapped again.
	wrapped bool
}

// Call calls the function. Arguments created with Kw are named, all others
// are positional. Positional arguments come before those bound on
// CreatePartial; named arguments override bound ones.
func (p *Partial) Call(args ...interface{}) Result {
	return p.call(splitArgs(args))
}

// Context returns the Context this Partial resolves against.
func (p *Partial) Context() *Context { return p.ctx }

// Func returns the wrapped function.
func (p *Partial) Func() interface{} { return p.fn }

// Wrapped is true for any Partial bound to a Context.
func (p *Partial) Wrapped() bool { return p.wrapped }

// Bound returns the arguments bound on creation.
func (p *Partial) Bound() Args { return p.bound }

func (p *Partial) String() string {
	name := fmt.Sprintf("%T", p.fn)
	if f, ok := p.fn.(*Func); ok {
		name = f.Name()
	}

	return fmt.Sprintf("<partial %s in %s>", name, p.ctx.id)
}

func (p *Partial) call(call Args) Result {
	given := Args{
		Positional: make([]interface{}, 0, len(call.Positional)+len(p.bound.Positional)),
		Named:      make(map[string]interface{}, len(call.Named)+len(p.bound.Named)),
	}
	given.Positional = append(given.Positional, call.Positional...)
	given.Positional = append(given.Positional, p.bound.Positional...)
	for k, v := range p.bound.Named {
		given.Named[k] = v
	}
	for k, v := range call.Named {
		given.Named[k] = v
	}

	c := p.ctx
	log := c.logger

	// A Partial has no signature of its own, so another Partial gets
	// everything as given and resolves against its own Context.
	if inner, ok := p.fn.(*Partial); ok {
		log.Trace("forwarding call to partial", "partial", inner)
		return c.wrapResult(inner.call(given))
	}

	f, err := NewFunc(p.fn)
	if err != nil {
		return resultError(err)
	}

	resolved, err := Resolve(
		c.accessorMap(),
		f,
		given,
		Known(c.mapping),
		WithLogger(log.Named(f.Name())),
		WithWrapper(c.wrapDerived),
	)
	if err != nil {
		return resultError(err)
	}

	return c.wrapResult(f.Call(resolved))
}

// funcOf returns a function of type t that calls this Partial.
//
// If the call fails and t's last result is an error, the error is returned
// through it. Otherwise the failure panics, since there is no other way to
// report it.
func (p *Partial) funcOf(t reflect.Type) reflect.Value {
	return reflect.MakeFunc(t, func(in []reflect.Value) []reflect.Value {
		args := make([]interface{}, 0, len(in))
		for i, v := range in {
			if t.IsVariadic() && i == len(in)-1 {
				for j := 0; j < v.Len(); j++ {
					args = append(args, v.Index(j).Interface())
				}

				continue
			}

			args = append(args, v.Interface())
		}

		return resultValues(t, p.Call(args...))
	})
}

// resultValues converts r to the results of a function of type t.
func resultValues(t reflect.Type, r Result) []reflect.Value {
	out := make([]reflect.Value, t.NumOut())
	hasErr := len(out) > 0 && t.Out(len(out)-1) == errType

	if err := r.Err(); err != nil {
		if !hasErr {
			panic(err)
		}

		for i := range out {
			out[i] = reflect.Zero(t.Out(i))
		}
		out[len(out)-1] = reflect.ValueOf(&err).Elem()
		return out
	}

	for i := range out {
		if i >= r.Len() {
			if hasErr && i == len(out)-1 {
				out[i] = reflect.Zero(errType)
				continue
			}

			panic(fmt.Sprintf("result %d missing: function returned %d values", i, r.Len()))
		}

		rv, err := convertValue(r.Out(i), t.Out(i))
		if err != nil {
			panic(fmt.Sprintf("result %d: %s", i, err))
		}

		out[i] = rv
	}

	return out
}
