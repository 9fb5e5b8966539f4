/*
Package cfgerrors provides functionalities for programmatically handling
configuration errors produced by package [github.com/jcrtools/httpx].

Most users have no use for this package. However, services that let operators
configure a preflight responder at run time (e.g. via some admin endpoint)
may find it useful for reporting configuration mistakes in their own words.
*/
package cfgerrors

import (
	"fmt"
	"iter"
)

// An UnacceptablePathPrefixError indicates an unacceptable path prefix.
// The Reason field may take one of two values:
//   - "missing": no path prefix was specified;
//   - "invalid": the path prefix does not start with a slash.
//
// For more details, see [github.com/jcrtools/httpx.Config.PathPrefix].
type UnacceptablePathPrefixError struct {
	Value  string // the unacceptable value that was specified
	Reason string // missing | invalid
}

func (err *UnacceptablePathPrefixError) Error() string {
	if err.Reason == "missing" {
		return "httpx: a path prefix must be specified"
	}
	const tmpl = "httpx: %s path prefix %q"
	return fmt.Sprintf(tmpl, err.Reason, err.Value)
}

// An UnacceptableOriginPatternError indicates an unacceptable origin pattern.
// The Reason field may take one of two values:
//   - "invalid": the origin pattern is invalid;
//   - "prohibited": the origin pattern is prohibited by this library.
//
// For more details, see [github.com/jcrtools/httpx.Config.Origins].
type UnacceptableOriginPatternError struct {
	Value  string // the unacceptable value that was specified
	Reason string // invalid | prohibited
}

func (err *UnacceptableOriginPatternError) Error() string {
	const tmpl = "httpx: %s origin pattern %q"
	return fmt.Sprintf(tmpl, err.Reason, err.Value)
}

// An UnacceptableMethodError indicates an unacceptable method.
// The Reason field may take one of two values:
//   - "invalid": the method is invalid;
//   - "forbidden": the method is forbidden by [the Fetch standard].
//
// For more details, see [github.com/jcrtools/httpx.Config.Methods].
//
// [the Fetch standard]: https://fetch.spec.whatwg.org
type UnacceptableMethodError struct {
	Value  string // the unacceptable value that was specified
	Reason string // invalid | forbidden
}

func (err *UnacceptableMethodError) Error() string {
	const tmpl = "httpx: %s method %q"
	return fmt.Sprintf(tmpl, err.Reason, err.Value)
}

// An UnacceptableHeaderNameError indicates an unacceptable request-header name.
// The Reason field may take one of three values:
//   - "invalid": the header name is invalid;
//   - "prohibited": the header name is prohibited by this library;
//   - "forbidden": the header name is forbidden by [the Fetch standard].
//
// For more details, see [github.com/jcrtools/httpx.Config.RequestHeaders].
//
// [the Fetch standard]: https://fetch.spec.whatwg.org
type UnacceptableHeaderNameError struct {
	Value  string // the unacceptable value that was specified
	Reason string // invalid | prohibited | forbidden
}

func (err *UnacceptableHeaderNameError) Error() string {
	const tmpl = "httpx: %s request-header name %q"
	return fmt.Sprintf(tmpl, err.Reason, err.Value)
}

// A MaxAgeOutOfBoundsError indicates a max-age value that's either too low
// or too high.
//
// For more details, see [github.com/jcrtools/httpx.Config.MaxAgeInSeconds].
type MaxAgeOutOfBoundsError struct {
	Value   int // the unacceptable value that was specified
	Max     int // maximum max-age value permitted by this library
	Disable int // sentinel value for disabling preflight caching
}

func (err *MaxAgeOutOfBoundsError) Error() string {
	const tmpl = "httpx: out-of-bounds max-age value %d (max: %d; disable caching: %d)"
	return fmt.Sprintf(tmpl, err.Value, err.Max, err.Disable)
}

// An IncompatibleOriginPatternError indicates an origin pattern that is
// syntactically valid but unsafe to allow.
// Its Reason field currently takes a single value, "psl":
// the origin pattern encompasses arbitrary subdomains of a public suffix.
//
// For more details, see [github.com/jcrtools/httpx.Config.Origins].
type IncompatibleOriginPatternError struct {
	Value  string // the origin pattern
	Reason string // psl
}

func (err *IncompatibleOriginPatternError) Error() string {
	if err.Reason == "psl" {
		const tmpl = "httpx: for security reasons, origin patterns like %q that encompass subdomains of a public suffix are prohibited"
		return fmt.Sprintf(tmpl, err.Value)
	}
	return "httpx: unknown issue"
}

// All returns an iterator over the configuration errors contained in
// err's error tree. The order is unspecified.
// All only supports error values returned by
// [github.com/jcrtools/httpx.NewResponder] and
// [github.com/jcrtools/httpx.Responder.Reconfigure]; it should not be called
// on any other error value.
func All(err error) iter.Seq[error] {
	return func(yield func(error) bool) {
		every(err, yield)
	}
}

func every(err error, f func(error) bool) bool {
	switch err := err.(type) {
	// There's no need for an "interface { Unwrap() error }" case
	// because we never wrap configuration errors; we only ever join them.
	case interface{ Unwrap() []error }:
		for _, err := range err.Unwrap() {
			if !every(err, f) {
				return false
			}
		}
		return true
	default:
		return f(err)
	}
}
