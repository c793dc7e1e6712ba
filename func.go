package depfill

import (
	"fmt"
	"reflect"
	"runtime"
)

// Func is a target function along with the parameter descriptor used to
// fill its arguments.
//
// Go reflection doesn't expose parameter names, so they are declared when
// the Func is built (see Params and Default). A function whose only
// parameter is a struct is described by the struct's fields instead:
//
//	func(in struct {
//		UserID int
//		Limit  int `depfill:",optional"`
//	}) { ... }
//
// declares the required parameter "userid" and the named parameter "limit"
// defaulting to the zero value.
//
// A function with parameters but no descriptor is uninspectable. It can
// still be called, but its arguments are passed through verbatim.
type Func struct {
	fn       reflect.Value
	sig      *Signature
	receiver reflect.Value
	input    *structInput
	name     string
}

// NewFunc creates a new Func from the given input function f.
//
// If f is already a *Func it is returned as-is when no opts are given.
func NewFunc(f interface{}, opts ...FuncOption) (*Func, error) {
	if existing, ok := f.(*Func); ok && len(opts) == 0 {
		return existing, nil
	}

	b, err := newFuncBuilder(opts...)
	if err != nil {
		return nil, err
	}

	if f == nil {
		return nil, fmt.Errorf("fn should be a function, got nil")
	}

	fv := reflect.ValueOf(f)
	ft := fv.Type()
	if k := ft.Kind(); k != reflect.Func {
		return nil, fmt.Errorf("fn should be a function, got %s", k)
	}
	if fv.IsNil() {
		return nil, fmt.Errorf("fn should be a function, got nil %s", ft)
	}

	result := &Func{
		fn:   fv,
		name: b.name,
	}

	// The receiver is bound to the first Go parameter and never shows up
	// in the signature.
	offset := 0
	if b.receiver.IsValid() {
		if ft.NumIn() == 0 {
			return nil, fmt.Errorf("receiver given but %s takes no arguments", ft)
		}

		rv, err := convertValue(b.receiver.Interface(), ft.In(0))
		if err != nil {
			return nil, fmt.Errorf("receiver: %w", err)
		}

		result.receiver = rv
		offset = 1
	}

	numIn := ft.NumIn() - offset
	switch {
	case b.declared():
		if ft.IsVariadic() {
			return nil, fmt.Errorf("variadic function %s cannot declare parameters", ft)
		}

		if n := len(b.positional) + len(b.named); n != numIn {
			return nil, fmt.Errorf(
				"%d parameters declared but %s takes %d", n, ft, numIn)
		}

		result.sig = b.signature()

	case numIn == 0 && !ft.IsVariadic():
		result.sig = &Signature{}

	case numIn == 1 && !ft.IsVariadic() && isStructInput(ft.In(offset)):
		input, sig, err := newStructInput(ft.In(offset))
		if err != nil {
			return nil, err
		}

		result.input = input
		result.sig = sig
	}

	return result, nil
}

// Signature returns the parameter signature of this function. This is
// nil if the function is uninspectable.
func (f *Func) Signature() *Signature { return f.sig }

// Func returns the function pointer that this Func is built around.
func (f *Func) Func() interface{} {
	return f.fn.Interface()
}

// Name returns the name of the function.
//
// This will return the configured name if one was given on NewFunc. If not,
// this will attempt to look up the function name using the pointer. If
// no friendly name can be found, then this will default to the function
// type signature.
func (f *Func) Name() string {
	name := f.name
	if name == "" {
		if rfunc := runtime.FuncForPC(f.fn.Pointer()); rfunc != nil {
			name = rfunc.Name()
		}

		if name == "" {
			name = f.fn.String()
		}
	}

	return name
}

// String returns the name for this function. See Name.
func (f *Func) String() string {
	return f.Name()
}

// Call calls the function directly with already resolved arguments. No
// dependency resolution happens here; see Resolve or Context for that.
//
// Named parameters missing from args.Named take their declared default.
func (f *Func) Call(args Args) Result {
	in, err := f.callIn(args)
	if err != nil {
		return resultError(fmt.Errorf("%s: %w", f.Name(), err))
	}

	return Result{out: f.fn.Call(in)}
}

// callIn builds the reflect arguments for a call.
func (f *Func) callIn(args Args) ([]reflect.Value, error) {
	ft := f.fn.Type()

	var in []reflect.Value
	if f.receiver.IsValid() {
		in = append(in, f.receiver)
	}

	if f.input != nil {
		v, err := f.input.value(f.sig, args)
		if err != nil {
			return nil, err
		}

		return append(in, v), nil
	}

	values := args.Positional
	if f.sig != nil && len(f.sig.Named) > 0 {
		// Named parameters are always filled, so a positional argument in
		// their slot would give the parameter two values.
		if n := len(f.sig.Positional); len(values) > n {
			return nil, fmt.Errorf(
				"parameter %q given both positionally and by name", f.sig.Named[0])
		}

		values = append(values[:len(values):len(values)], f.sig.namedValues(args.Named)...)
	}

	for i, v := range values {
		idx := len(in)

		var t reflect.Type
		switch {
		case ft.IsVariadic() && idx >= ft.NumIn()-1:
			t = ft.In(ft.NumIn() - 1).Elem()

		case idx < ft.NumIn():
			t = ft.In(idx)

		default:
			return nil, fmt.Errorf(
				"too many arguments: got %d, want %d", len(in)+len(values)-i, ft.NumIn())
		}

		rv, err := convertValue(v, t)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", idx, err)
		}

		in = append(in, rv)
	}

	required := ft.NumIn()
	if ft.IsVariadic() {
		required--
	}
	if len(in) < required {
		return nil, fmt.Errorf(
			"not enough arguments: got %d, want %d", len(in), required)
	}

	return in, nil
}

// isCallable returns true if v is something that can be wrapped in a
// Partial.
func isCallable(v interface{}) bool {
	switch v := v.(type) {
	case nil:
		return false

	case *Func, *Partial:
		return true

	default:
		rv := reflect.ValueOf(v)
		return rv.Kind() == reflect.Func && !rv.IsNil()
	}
}

// errType is used for comparison in Result
var errType = reflect.TypeOf((*error)(nil)).Elem()
