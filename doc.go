// Package depfill is a runtime dependency-injection library for Go that
// fills in the missing arguments of a function call.
//
// A function is described once by a Func, which names its parameters (Go
// reflection cannot see parameter names). When the function is called,
// the arguments the caller gave are taken as-is and only the remaining
// parameters are derived through an AccessorMap. A required parameter
// that can be neither given nor derived fails the call with an
// ErrMissingDependency naming that parameter.
//
// The primary usage of this library is via the Context struct, which holds
// an ordered set of named values and wraps functions as Partials that
// resolve against it on every call. See Context for more documentation.
package depfill
