package depfill

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	ab := func(a, b int) int { return a + b }
	xy := func(x, y int) int { return x + y }

	failing := AccessorFunc(func(string, *Values) (interface{}, error) {
		return nil, errors.New("nope")
	})
	panicking := AccessorFunc(func(string, *Values) (interface{}, error) {
		panic("boom")
	})

	cases := []struct {
		Name      string
		Callback  interface{}
		Opts      []FuncOption
		Accessors AccessorMap
		Given     Args
		Expected  Args
		Missing   string
	}{
		{
			"positional given exactly",
			ab,
			[]FuncOption{Params("a", "b")},
			nil,
			Args{Positional: []interface{}{1, 2}},
			Args{
				Positional: []interface{}{1, 2},
				Named:      map[string]interface{}{},
			},
			"",
		},

		{
			"default used",
			xy,
			[]FuncOption{Params("x"), Default("y", 2)},
			nil,
			Args{Positional: []interface{}{5}},
			Args{
				Positional: []interface{}{5},
				Named:      map[string]interface{}{"y": 2},
			},
			"",
		},

		{
			"default overridden by given named",
			xy,
			[]FuncOption{Params("x"), Default("y", 2)},
			nil,
			Args{
				Positional: []interface{}{5},
				Named:      map[string]interface{}{"y": 7},
			},
			Args{
				Positional: []interface{}{5},
				Named:      map[string]interface{}{"y": 7},
			},
			"",
		},

		{
			"default overridden by accessor",
			xy,
			[]FuncOption{Params("x"), Default("y", 2)},
			AccessorMap{"y": Direct("y", 9)},
			Args{Positional: []interface{}{5}},
			Args{
				Positional: []interface{}{5},
				Named:      map[string]interface{}{"y": 9},
			},
			"",
		},

		{
			"given named beats accessor",
			xy,
			[]FuncOption{Params("x"), Default("y", 2)},
			AccessorMap{"y": Direct("y", 9)},
			Args{
				Positional: []interface{}{5},
				Named:      map[string]interface{}{"y": 7},
			},
			Args{
				Positional: []interface{}{5},
				Named:      map[string]interface{}{"y": 7},
			},
			"",
		},

		{
			"given positional beats accessor",
			ab,
			[]FuncOption{Params("a", "b")},
			AccessorMap{"a": Direct("a", 100), "b": Direct("b", 200)},
			Args{Positional: []interface{}{1}},
			Args{
				Positional: []interface{}{1, 200},
				Named:      map[string]interface{}{},
			},
			"",
		},

		{
			"positional given by name",
			ab,
			[]FuncOption{Params("a", "b")},
			AccessorMap{"b": Direct("b", 200)},
			Args{
				Positional: []interface{}{1},
				Named:      map[string]interface{}{"b": 2},
			},
			Args{
				Positional: []interface{}{1, 2},
				Named:      map[string]interface{}{},
			},
			"",
		},

		{
			"all derived",
			ab,
			[]FuncOption{Params("a", "b")},
			AccessorMap{"a": Direct("a", 1), "b": Direct("b", 2)},
			Args{},
			Args{
				Positional: []interface{}{1, 2},
				Named:      map[string]interface{}{},
			},
			"",
		},

		{
			"missing required",
			ab,
			[]FuncOption{Params("a", "b")},
			nil,
			Args{Positional: []interface{}{1}},
			Args{},
			"b",
		},

		{
			"failing accessor is not fatal for named",
			xy,
			[]FuncOption{Params("x"), Default("y", 2)},
			AccessorMap{"y": failing},
			Args{Positional: []interface{}{5}},
			Args{
				Positional: []interface{}{5},
				Named:      map[string]interface{}{"y": 2},
			},
			"",
		},

		{
			"failing accessor for required",
			ab,
			[]FuncOption{Params("a", "b")},
			AccessorMap{"a": failing, "b": Direct("b", 2)},
			Args{},
			Args{},
			"a",
		},

		{
			"panicking accessor counts as failure",
			xy,
			[]FuncOption{Params("x"), Default("y", 2)},
			AccessorMap{"y": panicking},
			Args{Positional: []interface{}{5}},
			Args{
				Positional: []interface{}{5},
				Named:      map[string]interface{}{"y": 2},
			},
			"",
		},

		{
			"nil value derived for required",
			ab,
			[]FuncOption{Params("a", "b")},
			AccessorMap{"b": Direct("b", nil)},
			Args{Positional: []interface{}{1}},
			Args{
				Positional: []interface{}{1, nil},
				Named:      map[string]interface{}{},
			},
			"",
		},

		{
			"uninspectable passes through",
			func(vs ...int) int { return len(vs) },
			nil,
			AccessorMap{"vs": Direct("vs", 1)},
			Args{Positional: []interface{}{1, 2, 3}},
			Args{
				Positional: []interface{}{1, 2, 3},
				Named:      map[string]interface{}{},
			},
			"",
		},

		{
			"no positional parameters but positional given",
			func() int { return 0 },
			nil,
			nil,
			Args{Positional: []interface{}{1, 2}},
			Args{
				Positional: []interface{}{1, 2},
				Named:      map[string]interface{}{},
			},
			"",
		},

		{
			"positional given fills named slot",
			xy,
			[]FuncOption{Default("x", 1), Default("y", 2)},
			AccessorMap{"x": Direct("x", 10), "y": Direct("y", 20)},
			Args{Positional: []interface{}{5}},
			Args{
				Positional: []interface{}{5},
				Named:      map[string]interface{}{"x": 1, "y": 20},
			},
			"",
		},
	}

	for _, tt := range cases {
		t.Run(tt.Name, func(t *testing.T) {
			require := require.New(t)

			f, err := NewFunc(tt.Callback, tt.Opts...)
			require.NoError(err)

			actual, err := Resolve(tt.Accessors, f, tt.Given)
			if tt.Missing != "" {
				require.Error(err)

				name, ok := MissingDependency(err)
				require.True(ok)
				require.Equal(tt.Missing, name)
				return
			}
			require.NoError(err)
			require.Equal(tt.Expected, actual)
		})
	}
}

// Scenario C: h(a, b) given (1,) and nothing for b.
func TestResolve_missingDependency(t *testing.T) {
	require := require.New(t)

	h, err := NewFunc(func(a, b int) int { return a + b }, Params("a", "b"), FuncName("h"))
	require.NoError(err)

	_, err = Resolve(AccessorMap{"c": Direct("c", 1)}, h, Args{Positional: []interface{}{1}})
	require.Error(err)

	var missing *ErrMissingDependency
	require.True(errors.As(err, &missing))
	require.Equal("b", missing.Param)
	require.Equal("h", missing.Func)
	require.Equal([]string{"c"}, missing.Accessors)
	require.Equal([]string{"a"}, missing.Known)
	require.Contains(err.Error(), `Missing dependency "b"`)
}

func TestResolve_knownValues(t *testing.T) {
	require := require.New(t)

	f, err := NewFunc(func(user map[string]int, id int) int { return id }, Params("user", "id"))
	require.NoError(err)

	accessors := AccessorMap{
		"id": NewPathAccessor(From("user", "id"), From("account", "id")),
	}

	// Derives from a given argument
	actual, err := Resolve(accessors, f, Args{
		Positional: []interface{}{map[string]int{"id": 42}},
	})
	require.NoError(err)
	require.Equal([]interface{}{map[string]int{"id": 42}, 42}, actual.Positional)

	// Derives from the knowledge base when nothing is given for it.
	kb := ValuesFromMap(map[string]interface{}{
		"account": map[string]int{"id": 7},
	})
	g, err := NewFunc(func(id int) int { return id }, Params("id"))
	require.NoError(err)

	actual, err = Resolve(accessors, g, Args{}, Known(kb))
	require.NoError(err)
	require.Equal([]interface{}{7}, actual.Positional)

	// Given values come before the knowledge base.
	actual, err = Resolve(accessors, g, Args{
		Named: map[string]interface{}{"user": map[string]int{"id": 1}},
	}, Known(kb))
	require.NoError(err)
	require.Equal([]interface{}{1}, actual.Positional)

	// Even when they are given positionally under another name.
	h, err := NewFunc(func(account map[string]int, id int) int { return id }, Params("account", "id"))
	require.NoError(err)
	actual, err = Resolve(AccessorMap{
		"id": NewPathAccessor(From("user", "id"), From("account", "id")),
	}, h, Args{
		Positional: []interface{}{map[string]int{"id": 2}},
	}, Known(ValuesFromMap(map[string]interface{}{
		"user": map[string]int{"id": 7},
	})))
	require.NoError(err)
	require.Equal([]interface{}{map[string]int{"id": 2}, 2}, actual.Positional)

	// The knowledge base is never modified
	require.Equal([]string{"account"}, kb.Keys())
}

func TestResolve_wrapper(t *testing.T) {
	require := require.New(t)

	f, err := NewFunc(func(a, b int) int { return a + b }, Params("a", "b"))
	require.NoError(err)

	var wrapped []interface{}
	actual, err := Resolve(
		AccessorMap{"b": Direct("b", 2)},
		f,
		Args{Positional: []interface{}{1}},
		WithLogger(hclog.NewNullLogger()),
		WithWrapper(func(v interface{}) interface{} {
			wrapped = append(wrapped, v)
			return v.(int) * 10
		}),
	)
	require.NoError(err)
	require.Equal([]interface{}{1, 20}, actual.Positional)

	// Given values are never wrapped
	require.Equal([]interface{}{2}, wrapped)
}

func TestResolve_rawFunc(t *testing.T) {
	require := require.New(t)

	// A plain Go function with a struct input is inspected without a Func.
	actual, err := Resolve(
		AccessorMap{"a": Direct("a", 1)},
		func(in struct{ A, B int }) int { return in.A + in.B },
		Args{Named: map[string]interface{}{"b": 2}},
	)
	require.NoError(err)
	require.Equal([]interface{}{1, 2}, actual.Positional)

	_, err = Resolve(nil, "not a func", Args{})
	require.Error(err)
}
