package methods

import (
	"github.com/jcrtools/httpx/internal/util"
	"golang.org/x/net/http/httpguts"
)

// IsValid reports whether name is a valid method, [per the Fetch standard].
//
// [per the Fetch standard]: https://fetch.spec.whatwg.org/#concept-method
func IsValid(name string) bool {
	// Note: the production is identical to that of header names.
	return httpguts.ValidHeaderFieldName(name)
}

// IsForbidden reports whether name is a forbidden method,
// [per the Fetch standard].
//
// [per the Fetch standard]: https://fetch.spec.whatwg.org/#forbidden-method
func IsForbidden(name string) bool {
	_, found := byteLowercasedForbiddenMethods[util.ByteLowercase(name)]
	return found
}

var byteLowercasedForbiddenMethods = map[string]struct{}{
	"connect": {},
	"trace":   {},
	"track":   {},
}

// Normalize [normalizes] method name: names that byte-case-insensitively
// match one of the well-known methods are byte-uppercased; other names are
// returned unchanged, since methods are otherwise case-sensitive.
//
// [normalizes]: https://fetch.spec.whatwg.org/#concept-method-normalize
func Normalize(name string) string {
	upper := util.ByteUppercase(name)
	if _, found := normalizedMethods[upper]; found {
		return upper
	}
	return name
}

var normalizedMethods = map[string]struct{}{
	"DELETE":  {},
	"GET":     {},
	"HEAD":    {},
	"OPTIONS": {},
	"POST":    {},
	"PUT":     {},
}
