package depfill

import (
	"errors"
	"fmt"
	"sort"
)

// Resolve fills in the arguments of fn that were not given, using the
// accessors. fn may be a *Func, a Go function or a *Partial.
//
// Given arguments are never second-guessed: only parameters that were not
// given (or that only have a default) are looked up. An accessor that is
// missing or fails leaves its parameter unfilled. Named parameters fall
// back to their defaults; a positional parameter that stays unfilled
// fails with an *ErrMissingDependency.
//
// The result has exactly one positional value per positional parameter and
// exactly one named value per named parameter. Callables without an
// inspectable signature get the given positional arguments back verbatim.
func Resolve(accessors AccessorMap, fn interface{}, given Args, opts ...ResolveOption) (Args, error) {
	b, err := newResolveBuilder(opts...)
	if err != nil {
		return Args{}, err
	}

	name := fmt.Sprintf("%T", fn)
	if f, ok := fn.(*Func); ok {
		name = f.Name()
	}

	sig, err := Inspect(fn)
	if err != nil {
		if !errors.Is(err, ErrUninspectable) {
			return Args{}, err
		}

		b.logger.Trace("callable is uninspectable, passing arguments through", "func", name)
		sig = nil
	}

	return b.resolve(accessors, sig, name, given)
}

func (b *resolveBuilder) resolve(
	accessors AccessorMap,
	sig *Signature,
	name string,
	given Args,
) (Args, error) {
	log := b.logger
	if sig == nil {
		sig = &Signature{}
	}

	// Start from the defaults and overlay the named arguments we were
	// given. Given values always win.
	kwargs := make(map[string]interface{}, len(sig.Named)+len(given.Named))
	for i, n := range sig.Named {
		kwargs[n] = sig.Defaults[i]
	}
	for k, v := range given.Named {
		kwargs[k] = v
	}

	// Given positional arguments are correct by definition, record them
	// by name.
	derived := make(map[string]interface{})
	for i := 0; i < len(sig.Positional) && i < len(given.Positional); i++ {
		derived[sig.Positional[i]] = given.Positional[i]
	}

	known := b.knownValues(sig, given, kwargs)

	// Everything is a candidate except the slots the given positional
	// arguments already fill.
	candidates := sig.Names()
	if skip := len(given.Positional); skip < len(candidates) {
		candidates = candidates[skip:]
	} else {
		candidates = nil
	}

	for _, n := range candidates {
		if _, ok := kwargs[n]; ok {
			_, explicit := given.Named[n]
			if !sig.isNamed(n) || explicit {
				log.Trace("argument given", "name", n)
				continue
			}
		}

		accessor, ok := accessors[n]
		if !ok || accessor == nil {
			log.Trace("no accessor for argument", "name", n)
			continue
		}

		v, err := derive(accessor, n, known)
		if err != nil {
			log.Trace("could not derive argument", "name", n, "err", err)
			continue
		}

		if b.wrap != nil {
			v = b.wrap(v)
		}

		log.Trace("derived argument", "name", n, "accessor", accessor)
		derived[n] = v
	}

	for k, v := range derived {
		kwargs[k] = v
	}

	for _, n := range sig.Positional {
		if _, ok := kwargs[n]; !ok {
			return Args{}, &ErrMissingDependency{
				Param:     n,
				Func:      name,
				Signature: sig,
				Accessors: accessors.Names(),
				Known:     known.Keys(),
			}
		}
	}

	result := Args{Named: make(map[string]interface{}, len(sig.Named))}

	// Callables taking no declared positional parameters (variadic or
	// uninspectable) get the given positional arguments as-is.
	if len(given.Positional) > 0 && len(sig.Positional) == 0 {
		result.Positional = append([]interface{}(nil), given.Positional...)
	} else {
		result.Positional = make([]interface{}, len(sig.Positional))
		for i, n := range sig.Positional {
			result.Positional[i] = kwargs[n]
		}
	}

	for _, n := range sig.Named {
		result.Named[n] = kwargs[n]
	}

	return result, nil
}

// knownValues builds the values accessors see. The given arguments come
// first: positional ones by name, then the named ones. The knowledge base
// follows, and the defaults of named parameters that weren't given come
// last unless the knowledge base already holds that name.
func (b *resolveBuilder) knownValues(
	sig *Signature,
	given Args,
	kwargs map[string]interface{},
) *Values {
	result := NewValues()
	for i := 0; i < len(sig.Positional) && i < len(given.Positional); i++ {
		result.Set(sig.Positional[i], given.Positional[i])
	}

	for _, n := range sig.Named {
		if v, ok := given.Named[n]; ok {
			result.Set(n, v)
		}
	}

	extra := make([]string, 0, len(given.Named))
	for k := range given.Named {
		if !sig.isNamed(k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		result.Set(k, given.Named[k])
	}

	b.known.Each(func(k string, v interface{}) bool {
		if _, ok := result.Get(k); !ok {
			result.Set(k, v)
		}
		return true
	})

	// Defaults still override a knowledge base value of the same name.
	for _, n := range sig.Named {
		if _, ok := given.Named[n]; !ok {
			result.Set(n, kwargs[n])
		}
	}

	return result
}

// derive calls the accessor. A panicking accessor counts as a failed
// derivation.
func derive(a Accessor, name string, known *Values) (v interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("accessor for %q panicked: %v", name, r)
		}
	}()

	return a.Derive(name, known)
}
