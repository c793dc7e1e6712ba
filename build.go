package depfill

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Pair is a single name and value, for building a Context from a list.
type Pair struct {
	Name  string
	Value interface{}
}

// Build creates a Context from one or more sources, merged in order.
// Sources may be a map[string]interface{}, *Values, *Context, Pair or
// []Pair.
//
// If the only source is a *Context, the new Context shares its mapping
// (see SharedWith). Otherwise the values are copied.
func Build(pieces []interface{}, opts ...Option) (*Context, error) {
	if len(pieces) == 1 {
		if c, ok := pieces[0].(*Context); ok {
			return New(append(opts, SharedWith(c))...), nil
		}
	}

	vs := NewValues()
	var err error
	for i, piece := range pieces {
		switch piece := piece.(type) {
		case map[string]interface{}:
			vs.SetMap(piece)

		case *Values:
			vs.Merge(piece)

		case *Context:
			other := piece.mapping.Copy()
			other.Delete(ContextKey)
			vs.Merge(other)

		case Pair:
			vs.Set(piece.Name, piece.Value)

		case []Pair:
			for _, p := range piece {
				vs.Set(p.Name, p.Value)
			}

		default:
			err = multierror.Append(err, fmt.Errorf(
				"source %d: unsupported type %T", i, piece))
		}
	}
	if err != nil {
		return nil, err
	}

	return New(append([]Option{WithValues(vs)}, opts...)...), nil
}
