package depfill

import (
	"fmt"
	"reflect"
)

// convertValue converts v so that it can be passed as a value of type t.
//
// A nil v becomes the zero value of t. A *Partial given for a func type is
// adapted so that calling the func calls the Partial. Other values must be
// assignable to t, or convertible within the same kind or between numeric
// kinds.
func convertValue(v interface{}, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}

	if t.Kind() == reflect.Func {
		switch v := v.(type) {
		case *Partial:
			return v.funcOf(t), nil

		case *Func:
			if v.fn.Type().AssignableTo(t) {
				return v.fn, nil
			}
		}
	}

	if from := rv.Type(); from.ConvertibleTo(t) &&
		(from.Kind() == t.Kind() || (isNumber(from) && isNumber(t))) {
		return rv.Convert(t), nil
	}

	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", rv.Type(), t)
}

func isNumber(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr, reflect.Float32, reflect.Float64:
		return true
	}

	return false
}
