package depfill

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// ContextKey is the name a Context registers itself under, so functions
// can ask for the Context itself as a dependency.
const ContextKey = "context"

// Context holds a set of named values and calls functions with their
// missing arguments filled in from those values.
//
// Every value in the mapping becomes a DirectAccessor named after its key.
// Non-direct accessors such as a PathAccessor can be layered in with
// Register; a value in the mapping takes precedence over a registered
// accessor of the same name.
//
// Functions wrapped by a Context (CreatePartial, Decorate, Get) resolve
// their arguments every time they are called, so changes to the Context
// are seen by the next call. When function wrapping is enabled (the
// default) any callable the Context hands out, derives or gets back from
// a call is wrapped as well.
//
// A Context is not safe for concurrent use. Callers must not modify a
// Context while a call through it is in flight.
type Context struct {
	id            string
	mapping       *Values
	registered    AccessorMap
	accessors     AccessorMap
	rev           uint64
	wrapFunctions bool
	base          hclog.Logger
	logger        hclog.Logger

	// deriving holds the names Get is currently deriving, so a path that
	// walks back into the Context for the same name fails instead of
	// recursing.
	deriving map[string]struct{}
}

// Option configures a Context on New.
type Option func(*Context)

// WithValues adds the given values to the new Context.
func WithValues(vs *Values) Option {
	return func(c *Context) {
		c.mapping.Merge(vs)
	}
}

// WithMap adds the entries of m to the new Context.
func WithMap(m map[string]interface{}) Option {
	return func(c *Context) {
		c.mapping.SetMap(m)
	}
}

// WithAccessor registers a non-direct accessor on the new Context.
func WithAccessor(name string, a Accessor) Option {
	return func(c *Context) {
		c.registered[name] = a
	}
}

// WithoutFunctionWrapping disables wrapping of callables.
func WithoutFunctionWrapping() Option {
	return func(c *Context) {
		c.wrapFunctions = false
	}
}

// ContextLogger sets the logger for the new Context.
func ContextLogger(l hclog.Logger) Option {
	return func(c *Context) {
		c.base = l
	}
}

// SharedWith makes the new Context use the very same mapping as other.
// Changes made through either Context are visible to both. This replaces
// any values set by options applied before it.
func SharedWith(other *Context) Option {
	return func(c *Context) {
		c.mapping = other.mapping
	}
}

// New creates a new Context.
func New(opts ...Option) *Context {
	c := &Context{
		id:            uuid.NewString(),
		mapping:       NewValues(),
		registered:    make(AccessorMap),
		deriving:      make(map[string]struct{}),
		wrapFunctions: true,
		base:          hclog.L(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.base.Named("depfill").With("context", c.id)

	// A shared mapping keeps the self reference of the Context that
	// created it. The accessor map always points at ourselves.
	if _, ok := c.mapping.Get(ContextKey); !ok {
		c.mapping.Set(ContextKey, c)
	}

	c.rebuild()
	return c
}

// ID returns the unique ID of this Context.
func (c *Context) ID() string { return c.id }

// Mapping returns the values of this Context. Modifying the result
// directly is visible to the Context on its next lookup.
func (c *Context) Mapping() *Values { return c.mapping }

// Accessors returns a copy of the current accessor map.
func (c *Context) Accessors() AccessorMap {
	current := c.accessorMap()
	result := make(AccessorMap, len(current))
	for k, v := range current {
		result[k] = v
	}

	return result
}

// WrapsFunctions returns true if callables are wrapped by this Context.
func (c *Context) WrapsFunctions() bool { return c.wrapFunctions }

// Get derives the value for name. If the value is callable and function
// wrapping is enabled, it is returned as a *Partial. Get returns false
// if nothing is registered for name or the value could not be derived.
func (c *Context) Get(name string) (interface{}, bool) {
	accessor, ok := c.accessorMap()[name]
	if !ok {
		return nil, false
	}

	if _, ok := c.deriving[name]; ok {
		c.logger.Trace("value derives from itself", "name", name)
		return nil, false
	}
	c.deriving[name] = struct{}{}
	defer delete(c.deriving, name)

	v, err := derive(accessor, name, c.mapping)
	if err != nil {
		c.logger.Trace("could not derive value", "name", name, "err", err)
		return nil, false
	}

	v, _ = c.wrap(v)
	return v, true
}

// Attr is attribute-style access to a dependency. It returns nil when
// name is not known.
func (c *Context) Attr(name string) interface{} {
	v, _ := c.Get(name)
	return v
}

// LookupField implements FieldLookup, so a path walking through a Context
// (usually reached through ContextKey) sees its dependencies as fields.
func (c *Context) LookupField(name string) (interface{}, bool) {
	return c.Get(name)
}

// Lookup gets name from c as a T. A *Partial can be looked up as any
// func type and is adapted to it. The second result is false if the name
// is not known or the value is not a T.
func Lookup[T any](c *Context, name string) (T, bool) {
	var zero T
	v, ok := c.Get(name)
	if !ok {
		return zero, false
	}
	if v == nil {
		return zero, true
	}
	if t, ok := v.(T); ok {
		return t, true
	}

	rv, err := convertValue(v, reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, false
	}

	return rv.Interface().(T), true
}

// Update merges entries into the mapping and rebuilds the accessor map.
// New keys are inserted in sorted order.
func (c *Context) Update(entries map[string]interface{}) {
	c.mapping.SetMap(entries)
	c.rebuild()
}

// UpdateValues merges vs into the mapping, in the order of vs.
func (c *Context) UpdateValues(vs *Values) {
	c.mapping.Merge(vs)
	c.rebuild()
}

// Add sets a single value.
func (c *Context) Add(name string, v interface{}) {
	c.mapping.Set(name, v)
	c.rebuild()
}

// Extend merges the values of other into this Context. The self reference
// of other is not copied.
func (c *Context) Extend(other *Context) {
	vs := other.mapping.Copy()
	vs.Delete(ContextKey)
	c.UpdateValues(vs)
}

// Register layers a non-direct accessor into the accessor map.
func (c *Context) Register(name string, a Accessor) {
	c.registered[name] = a
	c.rebuild()
}

// Copy returns a new Context with a copy of the mapping and accessors.
func (c *Context) Copy() *Context {
	vs := c.mapping.Copy()
	vs.Delete(ContextKey)

	opts := []Option{WithValues(vs), ContextLogger(c.base)}
	for k, a := range c.registered {
		opts = append(opts, WithAccessor(k, a))
	}
	if !c.wrapFunctions {
		opts = append(opts, WithoutFunctionWrapping())
	}

	return New(opts...)
}

// Decorate wraps fn so that every call resolves its arguments through
// this Context. See DecorateFunc to get a plain Go func instead.
func (c *Context) Decorate(fn interface{}) *Partial {
	return c.CreatePartial(fn)
}

// DecorateFunc is Decorate returning a func of type T, which must be a func
// type. Arguments of the returned func are passed positionally; any
// parameter not covered is resolved through c on every call.
//
// If T's last result is an error, resolution and call failures are
// returned through it. Otherwise they panic.
func DecorateFunc[T any](c *Context, fn interface{}) (T, error) {
	var zero T
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Func {
		return zero, fmt.Errorf("decorated type must be a func, got %s", t)
	}

	return c.Decorate(fn).funcOf(t).Interface().(T), nil
}

// CreatePartial returns a Partial that calls fn through this Context with
// args bound. Use Kw for named arguments; everything else is positional
// and is appended after the positional arguments given on each call.
//
// fn is not inspected here. Any problem, including missing dependencies,
// is reported when the Partial is called.
func (c *Context) CreatePartial(fn interface{}, args ...interface{}) *Partial {
	if p, ok := fn.(*Partial); ok && p.ctx == c && len(args) == 0 {
		return p
	}

	return &Partial{
		fn:      fn,
		ctx:     c,
		bound:   splitArgs(args),
		wrapped: true,
	}
}

// Call calls fn through this Context with the given arguments.
func (c *Context) Call(fn interface{}, args ...interface{}) Result {
	return c.CreatePartial(fn).Call(args...)
}

func (c *Context) String() string {
	return fmt.Sprintf("<context %s %s>", c.id, c.mapping)
}

// accessorMap returns the accessor map, rebuilding it if the mapping was
// changed behind our back (e.g. through a shared mapping).
func (c *Context) accessorMap() AccessorMap {
	if c.accessors == nil || c.rev != c.mapping.rev {
		c.rebuild()
	}

	return c.accessors
}

func (c *Context) rebuild() {
	result := make(AccessorMap, len(c.registered)+c.mapping.Len())
	for k, a := range c.registered {
		result[k] = a
	}
	for k, a := range DirectAccessors(c.mapping) {
		result[k] = a
	}
	result[ContextKey] = Direct(ContextKey, c)

	c.accessors = result
	c.rev = c.mapping.rev
	c.logger.Trace("accessor map rebuilt", "accessors", len(result))
}

var _ FieldLookup = (*Context)(nil)

// wrap wraps v in a Partial if it is a callable that isn't wrapped yet.
// The second result is true if v was wrapped.
func (c *Context) wrap(v interface{}) (interface{}, bool) {
	if !c.wrapFunctions || !isCallable(v) {
		return v, false
	}

	if p, ok := v.(*Partial); ok && p.Wrapped() {
		return v, false
	}

	return c.CreatePartial(v), true
}

// wrapDerived is the resolver hook for derived values.
func (c *Context) wrapDerived(v interface{}) interface{} {
	v, _ = c.wrap(v)
	return v
}

// wrapResult wraps any callable outputs of r.
func (c *Context) wrapResult(r Result) Result {
	if !c.wrapFunctions || r.buildErr != nil {
		return r
	}

	for i, out := range r.out {
		if !out.IsValid() || !out.CanInterface() {
			continue
		}

		if w, ok := c.wrap(out.Interface()); ok {
			c.logger.Trace("wrapping callable result", "index", i)
			r.out[i] = reflect.ValueOf(w)
		}
	}

	return r
}
