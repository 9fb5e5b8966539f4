package headers

import (
	"net/http"

	"golang.org/x/net/http/httpguts"
)

// header names in canonical format
const (
	// request headers
	Origin = "Origin"

	// preflight response headers
	ACAO = "Access-Control-Allow-Origin"
	ACAC = "Access-Control-Allow-Credentials"
	ACAM = "Access-Control-Allow-Methods"
	ACAH = "Access-Control-Allow-Headers"
	ACMA = "Access-Control-Max-Age"
)

const (
	ValueTrue     = "true"
	ValueWildcard = "*"
	// ValueSep separates the elements of the list-based values we emit.
	// The diagnostic clients we answer expect a space after each comma.
	ValueSep = ", "
)

// TrueSgl is an effective constant wrapped in a (singleton) slice.
var TrueSgl = []string{ValueTrue}

// IsValid reports whether name is a valid header name,
// [per the Fetch standard].
//
// [per the Fetch standard]: https://fetch.spec.whatwg.org/#header-name
func IsValid(name string) bool {
	return httpguts.ValidHeaderFieldName(name)
}

// First, if k is present in hdrs, returns the value associated to k in hdrs,
// a singleton slice containing that value, and true;
// otherwise, First returns "", nil, false.
// Precondition: k is in canonical format (see [http.CanonicalHeaderKey]).
//
// Contrary to [http.Header.Get], First returns a slice that can be assigned
// to a response header directly, which saves a heap allocation.
func First(hdrs http.Header, k string) (string, []string, bool) {
	v, found := hdrs[k]
	if !found || len(v) == 0 {
		return "", nil, false
	}
	return v[0], v[:1], true
}
