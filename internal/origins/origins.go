// Package origins parses Web origins and origin patterns
// and matches the former against the latter.
package origins

import "strings"

const (
	schemeHostSep = "://" // scheme-host separator
	hostPortSep   = ':'   // host-port separator
	labelSep      = '.'   // DNS-label separator

	subdomainWildcard = "*" // marks one or more period-separated DNS labels
	wildcardSeq       = subdomainWildcard + string(labelSep)
	portWildcard      = "*" // marks an arbitrary (possibly implicit) port number
)

const (
	// maxHostLen is the maximum length of a host, which is dominated by
	// the maximum length of an (absolute) domain name (253).
	maxHostLen = 253
	// maxSchemeLen is the maximum tolerated length for schemes.
	maxSchemeLen = 64
	// maxPortLen is the maximum length of a port's decimal representation.
	maxPortLen = len("65535")
	// maxOriginLen is the maximum length of an origin.
	maxOriginLen = maxSchemeLen + len(schemeHostSep) + maxHostLen + 1 + maxPortLen
	// maxPatternLen is simply equal to maxOriginLen because *. is a
	// placeholder for at least two bytes (e.g. "a.").
	maxPatternLen = maxOriginLen
	maxUint16     = 1<<16 - 1
)

// Origin represents a (tuple) [Web origin].
//
// [Web origin]: https://developer.mozilla.org/en-US/docs/Glossary/Origin
type Origin struct {
	// Scheme is the origin's scheme.
	Scheme string
	// Host is the origin's host, stripped of any brackets.
	Host string
	// Port is the origin's port (if any).
	// The zero value marks the absence of an explicit port.
	Port int
}

var zeroOrigin Origin

// Parse parses str into an [Origin] structure.
// It is lenient insofar as it performs just enough validation for
// [Set.Contains] to know what to do with the resulting Origin value:
// the scheme and port of the resulting origin are guaranteed to be valid,
// but its host isn't.
func Parse(str string) (Origin, bool) {
	if len(str) > maxOriginLen {
		return zeroOrigin, false
	}
	scheme, rest, ok := parseScheme(str)
	if !ok {
		return zeroOrigin, false
	}
	rest, ok = strings.CutPrefix(rest, schemeHostSep)
	if !ok {
		return zeroOrigin, false
	}
	host, rest, ok := scanHost(rest)
	if !ok {
		return zeroOrigin, false
	}
	var port int // assume no port at first
	if rest != "" {
		rest, ok = strings.CutPrefix(rest, string(hostPortSep))
		if !ok {
			return zeroOrigin, false
		}
		port, ok = parsePort(rest)
		if !ok {
			return zeroOrigin, false
		}
	}
	o := Origin{
		Scheme: scheme,
		Host:   host,
		Port:   port,
	}
	return o, true
}

// scanHost scans a host in str, without validating it.
// It returns the host (stripped of brackets in the case of an IPv6 address),
// the unconsumed part of str, and a bool that indicates success or failure.
func scanHost(str string) (host, rest string, ok bool) {
	if str != "" && str[0] == '[' { // looks like an IPv6 address
		host, rest, ok = strings.Cut(str[1:], "]")
		return host, rest, ok && host != ""
	}
	i := 0
	for ; i < len(str) && isDomainByte(str[i]); i++ {
		// deliberately empty body
	}
	if i == 0 || str[0] == labelSep {
		return "", str, false
	}
	return str[:i], str[i:], true
}

// parseScheme parses a URI scheme. If successful, it returns the scheme,
// the unconsumed part of str, and true; otherwise, its ok result is false.
func parseScheme(str string) (scheme, rest string, ok bool) {
	// See https://www.rfc-editor.org/rfc/rfc3986.html#section-3.1.
	if str == "" || !isLowerAlpha(str[0]) {
		return
	}
	end := min(maxSchemeLen, len(str))
	i := 1
	for ; i < end; i++ {
		if !isSubsequentSchemeByte(str[i]) {
			break
		}
	}
	return str[:i], str[i:], true
}

// parsePort parses a port number that spans the whole of str.
// Leading zeros are rejected, as is port 0.
func parsePort(str string) (int, bool) {
	if str == "" || len(str) > maxPortLen || !isNonZeroDigit(str[0]) {
		return 0, false
	}
	var port int
	for i := range len(str) {
		if !isDigit(str[i]) {
			return 0, false
		}
		port = 10*port + int(str[i]-'0')
	}
	if port > maxUint16 {
		return 0, false
	}
	return port, true
}

// isLowerAlpha reports whether c is in the 0x61-0x7A ASCII range.
func isLowerAlpha(c byte) bool {
	return 'a' <= c && c <= 'z'
}

// isSubsequentSchemeByte reports whether c a valid byte at index >= 1 in a scheme.
func isSubsequentSchemeByte(c byte) bool {
	return isLowerAlpha(c) || isDigit(c) || c == '+' || c == '-' || c == '.'
}

// isDomainByte reports whether c is an ASCII lowercase letter, an ASCII digit,
// a hyphen (0x2D), a period (0x2E), or an underscore (0x5F).
func isDomainByte(c byte) bool {
	return isLowerAlpha(c) || isDigit(c) || c == '-' || c == labelSep || c == '_'
}

// isDigit reports whether c is in the 0x30-0x39 ASCII range.
func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// isNonZeroDigit reports whether c is in the 0x31-0x39 ASCII range.
func isNonZeroDigit(c byte) bool {
	return '1' <= c && c <= '9'
}
