// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package depfill

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// ErrNotDerivable is matched (via errors.Is) by every *DerivationError.
var ErrNotDerivable = errors.New("value could not be derived")

// DerivationError is returned by an Accessor that could not produce a
// value. The resolver never surfaces it; a parameter that can't be derived
// is simply left unfilled.
type DerivationError struct {
	// Name is the dependency that was requested, if known.
	Name string

	// Path and Segment are set when a path walk failed. Segment is the
	// first segment that could not be found.
	Path    string
	Segment string

	// Cause holds the failures of the individual rules that were tried.
	Cause error
}

func (e *DerivationError) Error() string {
	var msg string
	switch {
	case e.Segment != "":
		msg = fmt.Sprintf("path %q: segment %q not found", e.Path, e.Segment)

	case e.Name != "":
		msg = fmt.Sprintf("could not derive %q", e.Name)

	default:
		msg = ErrNotDerivable.Error()
	}

	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

func (e *DerivationError) Is(target error) bool { return target == ErrNotDerivable }
func (e *DerivationError) Unwrap() error        { return e.Cause }

// ErrMissingDependency is returned when a required parameter could be
// neither given nor derived.
type ErrMissingDependency struct {
	// Param is the name of the parameter that wasn't filled.
	Param string

	// Func is the name of the function being called.
	Func string

	// Signature is the signature of the function being called.
	Signature *Signature

	// Accessors is the list of names an accessor was registered for at
	// the time of the failure.
	Accessors []string

	// Known is the list of names of the known values accessors were
	// given.
	Known []string
}

// MissingDependency returns the name of the unfilled parameter if err is
// or wraps an *ErrMissingDependency.
func MissingDependency(err error) (string, bool) {
	var missing *ErrMissingDependency
	if errors.As(err, &missing) {
		return missing.Param, true
	}

	return "", false
}

func (e *ErrMissingDependency) Error() string {
	accessors := new(bytes.Buffer)
	if len(e.Accessors) == 0 {
		fmt.Fprintf(accessors, "    No accessors!\n")
	}
	for _, name := range e.Accessors {
		fmt.Fprintf(accessors, "    - %s\n", name)
	}

	known := new(bytes.Buffer)
	if len(e.Known) == 0 {
		fmt.Fprintf(known, "    No known values!\n")
	}
	for _, name := range e.Known {
		fmt.Fprintf(known, "    - %s\n", name)
	}

	sig := "()"
	if e.Signature != nil {
		sig = e.Signature.String()
	}

	return fmt.Sprintf(`
Missing dependency %q for function %q!

The parameter was not given and no accessor could derive it.

==> Function signature

    %s

==> Registered accessors
    These are the names an accessor was registered for.

%s

==> Known values
    These are the values accessors could derive from.

%s
`,
		e.Param,
		e.Func,
		sig,
		strings.TrimSuffix(accessors.String(), "\n"),
		strings.TrimSuffix(known.String(), "\n"),
	)
}

var (
	_ error = (*ErrMissingDependency)(nil)
	_ error = (*DerivationError)(nil)
)
