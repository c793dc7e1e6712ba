package depfill

import "reflect"

// Result holds the outcome of calling a function through Func.Call,
// Partial.Call or Context.Call. Callables among the outputs of a call
// through a wrapping Context are already Partials.
type Result struct {
	out []reflect.Value

	// buildErr is set when the call never happened: the arguments could
	// not be resolved or did not fit the function.
	buildErr error
}

func resultError(err error) Result {
	return Result{buildErr: err}
}

// Err returns the failure of the call. That is either the resolution
// failure (such as an *ErrMissingDependency) or, if the function ran, a
// non-nil error it returned as its last output.
func (r *Result) Err() error {
	if r.buildErr != nil {
		return r.buildErr
	}

	if n := len(r.out); n > 0 {
		last := r.out[n-1]
		if last.IsValid() && last.Type() == errType && !last.IsNil() {
			return last.Interface().(error)
		}
	}

	return nil
}

// Out returns output i of the function, including a trailing error.
// It panics if i is out of range; check Len first.
func (r *Result) Out(i int) interface{} {
	return r.out[i].Interface()
}

// Len returns the number of outputs. It is zero if the call never
// happened.
func (r *Result) Len() int {
	return len(r.out)
}
