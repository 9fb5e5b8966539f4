package headers

import "strings"

// IsForbiddenRequestHeaderName reports whether name is a
// forbidden request-header name [per the Fetch standard].
// Browsers never let clients set such headers,
// so allowing them in a preflight response is pointless.
//
// Precondition: name is a valid and [byte-lowercase] header name.
//
// [byte-lowercase]: https://infra.spec.whatwg.org/#byte-lowercase
// [per the Fetch standard]: https://fetch.spec.whatwg.org/#forbidden-header-name
func IsForbiddenRequestHeaderName(name string) bool {
	if _, found := discreteForbiddenRequestHeaderNames[name]; found {
		return true
	}
	return strings.HasPrefix(name, "proxy-") ||
		strings.HasPrefix(name, "sec-")
}

var discreteForbiddenRequestHeaderNames = map[string]struct{}{
	"accept-charset":                         {},
	"accept-encoding":                        {},
	"access-control-request-headers":         {},
	"access-control-request-method":          {},
	"access-control-request-private-network": {},
	"connection":                             {},
	"content-length":                         {},
	"cookie":                                 {},
	"cookie2":                                {},
	"date":                                   {},
	"dnt":                                    {},
	"expect":                                 {},
	"host":                                   {},
	"keep-alive":                             {},
	"origin":                                 {},
	"referer":                                {},
	"set-cookie":                             {},
	"te":                                     {},
	"trailer":                                {},
	"transfer-encoding":                      {},
	"upgrade":                                {},
	"via":                                    {},
}

// IsProhibitedRequestHeaderName reports whether name is a prohibited
// request-header name. Attempts to allow such request headers almost
// always stem from some misunderstanding of CORS.
//
// Precondition: name is a valid and [byte-lowercase] header name.
//
// [byte-lowercase]: https://infra.spec.whatwg.org/#byte-lowercase
func IsProhibitedRequestHeaderName(name string) bool {
	_, found := prohibitedRequestHeaderNames[name]
	return found
}

var prohibitedRequestHeaderNames = map[string]struct{}{
	"access-control-allow-origin":          {},
	"access-control-allow-credentials":     {},
	"access-control-allow-methods":         {},
	"access-control-allow-headers":         {},
	"access-control-allow-private-network": {},
	"access-control-max-age":               {},
	"access-control-expose-headers":        {},
}
