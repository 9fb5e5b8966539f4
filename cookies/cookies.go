/*
Package cookies provides helpers for reading, extending, and dropping
HTTP cookies.

Lookups operate on an explicit [Set] of cookies, typically obtained from
an inbound request via [FromRequest]; functions that emit cookies write
Set-Cookie header lines to an [http.ResponseWriter]. No function in this
package modifies the cookies of the Set it is given: cookies are copied
before being edited.

Note that cookies sent by a client carry no attributes; in particular,
their MaxAge is always 0. Use [FromResponse] to obtain cookies (and their
Max-Age attribute) from Set-Cookie header lines, e.g. those of a response
recorded upstream.
*/
package cookies

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// ErrInvalidPattern is returned when a cookie-name pattern is not a valid
// regular expression.
var ErrInvalidPattern = errors.New("cookies: invalid name pattern")

// A Set is an ordered collection of cookies.
// Nil elements are tolerated and ignored.
type Set []*http.Cookie

// FromRequest returns the cookies sent with r, in the order in which they
// appear in r's Cookie header(s). The result is never nil.
func FromRequest(r *http.Request) Set {
	if r == nil {
		return Set{}
	}
	cs := r.Cookies()
	if cs == nil {
		return Set{}
	}
	return cs
}

// FromResponse returns the cookies described by the Set-Cookie lines of h.
// Malformed lines are skipped. The result is never nil.
func FromResponse(h http.Header) Set {
	s := Set{}
	for _, line := range h.Values("Set-Cookie") {
		c, err := http.ParseSetCookie(line)
		if err != nil {
			continue
		}
		s = append(s, c)
	}
	return s
}

// Get returns the first cookie of s whose name is name,
// or nil if name is blank or no such cookie exists.
func (s Set) Get(name string) *http.Cookie {
	if isBlank(name) {
		return nil
	}
	for _, c := range s {
		if c != nil && c.Name == name {
			return c
		}
	}
	return nil
}

// Match returns the cookies of s whose entire name matches the regular
// expression pattern, in the order in which they appear in s.
// The result is never nil; in particular, it is empty if pattern is blank.
// If pattern is not a valid regular expression, Match returns an empty Set
// and an error that wraps [ErrInvalidPattern].
func (s Set) Match(pattern string) (Set, error) {
	res := Set{}
	if isBlank(pattern) {
		return res, nil
	}
	re, err := compile(pattern)
	if err != nil {
		return res, err
	}
	for _, c := range s {
		if c != nil && re.MatchString(c.Name) {
			res = append(res, c)
		}
	}
	return res, nil
}

// compile compiles pattern into a regular expression that must match
// a name in its entirety.
func compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(`\A(?:` + pattern + `)\z`)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, pattern, err)
	}
	return re, nil
}

func isBlank(str string) bool {
	return strings.TrimSpace(str) == ""
}

// Add adds a Set-Cookie line describing c to w's headers and reports
// whether it did so. Add returns false if w or c is nil, or if c cannot be
// serialized (see [http.Cookie.Valid]).
func Add(w http.ResponseWriter, c *http.Cookie) bool {
	if w == nil || c == nil {
		return false
	}
	if err := c.Valid(); err != nil {
		return false
	}
	http.SetCookie(w, c)
	return true
}

// Get returns the first cookie named name sent with r, or nil.
func Get(r *http.Request, name string) *http.Cookie {
	return FromRequest(r).Get(name)
}

// GetMatching returns the cookies sent with r whose entire name matches
// pattern. See [Set.Match].
func GetMatching(r *http.Request, pattern string) (Set, error) {
	return FromRequest(r).Match(pattern)
}

// ExtendLife re-emits the first cookie of s named name with the specified
// path and maxAge (in seconds), and reports whether it did so.
// A maxAge that is not positive expires the cookie immediately.
//
// Cookies that are expired, deleted, or session-scoped (i.e. whose MaxAge
// is not positive) are left alone, and so are absent ones.
func ExtendLife(s Set, w http.ResponseWriter, name, path string, maxAge int) bool {
	c := s.Get(name)
	if c == nil || c.MaxAge <= 0 {
		return false
	}
	extended := *c
	extended.MaxAge = maxAge
	if maxAge <= 0 {
		extended.MaxAge = -1 // Max-Age=0 on the wire
	}
	extended.Path = path
	return Add(w, &extended)
}

// Drop instructs the client to delete, under path, the first cookie of s
// bearing each of the specified names, and returns the number of cookies
// dropped. Names that match no cookie are ignored; a name listed twice
// causes its cookie to be dropped (and counted) twice.
func Drop(s Set, w http.ResponseWriter, path string, names ...string) int {
	doomed := make(Set, 0, len(names))
	for _, name := range names {
		doomed = append(doomed, s.Get(name))
	}
	return drop(w, doomed, path)
}

// DropMatching instructs the client to delete, under path, the cookies
// of s whose entire name matches at least one of the specified patterns,
// and returns the number of cookies dropped.
// If any pattern is invalid, DropMatching drops nothing and returns
// an error that wraps [ErrInvalidPattern].
func DropMatching(s Set, w http.ResponseWriter, path string, patterns ...string) (int, error) {
	var (
		doomed Set
		seen   = make(map[*http.Cookie]struct{})
	)
	for _, pattern := range patterns {
		matched, err := s.Match(pattern)
		if err != nil {
			return 0, err
		}
		for _, c := range matched {
			if _, found := seen[c]; found {
				continue
			}
			seen[c] = struct{}{}
			doomed = append(doomed, c)
		}
	}
	return drop(w, doomed, path), nil
}

// DropAll instructs the client to delete, under path, every cookie of s,
// and returns the number of cookies dropped.
func DropAll(s Set, w http.ResponseWriter, path string) int {
	return drop(w, s, path)
}

// drop emits, for each non-nil cookie of cs, a copy of it that expires
// immediately (Max-Age=0) under path. It returns the number of copies
// emitted.
func drop(w http.ResponseWriter, cs Set, path string) int {
	var count int
	for _, c := range cs {
		if c == nil {
			continue
		}
		expired := *c
		expired.MaxAge = -1 // Max-Age=0 on the wire
		expired.Path = path
		if Add(w, &expired) {
			count++
		}
	}
	return count
}
