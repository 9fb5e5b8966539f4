package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/jcrtools/httpx/cfgerrors"
	"github.com/jcrtools/httpx/internal/headers"
	"github.com/jcrtools/httpx/internal/methods"
	"github.com/jcrtools/httpx/internal/origins"
	"github.com/jcrtools/httpx/internal/util"
)

// DefaultPathPrefix is the path of the checksum-generator endpoint
// that compares content-repository trees across instances.
const DefaultPathPrefix = "/bin/acs-commons/jcr-compare.hashes.txt"

// A Config configures a [Responder]. The mechanics of and interplay between
// this type's various fields are explained below.
// Attempts to use settings described as "prohibited" result in a failure
// to build the desired Responder.
//
// # PathPrefix
//
// PathPrefix restricts the Responder to OPTIONS requests whose escaped URL path
// starts with the specified prefix. It must start with a slash;
// omitting it is prohibited.
//
// # Origins
//
// Origins configures the allow-list policy of the Responder.
// If Origins is empty, or if it contains an asterisk,
// the Responder reflects any origin in the Access-Control-Allow-Origin header:
//
//	Origins: []string{"*"},
//
// Otherwise, the Responder only answers preflight requests from the
// [Web origins] encompassed by the specified origin patterns:
//
//	Origins: []string{
//	  "https://author.example.com",
//	  "https://*.example.com",
//	  "http://localhost:*",
//	},
//
// A leading asterisk followed by a period (.) in a host pattern
// denotes one or more period-separated arbitrary DNS labels;
// an asterisk in place of a port denotes an arbitrary (possibly implicit) port.
// Preflight requests from other origins are passed to the wrapped handler
// as if the Responder weren't there.
//
// Origins must be specified in [ASCII serialized form];
// the null origin, the file scheme, default ports (80 for http, 443 for
// https), and non-canonical IP addresses are prohibited.
// Allowing arbitrary subdomains of a [public suffix] (e.g. https://*.com)
// is prohibited too.
//
// # Credentialed
//
// Credentialed, when set, configures the Responder to include
//
//	Access-Control-Allow-Credentials: true
//
// in its responses.
//
// # Methods
//
// Methods lists the methods that the Responder advertises in the
// Access-Control-Allow-Methods header, in the specified order.
// Method names are case-sensitive, except for the well-known methods
// (GET, POST, etc.), which are normalized to uppercase.
// Specifying [forbidden method names] is prohibited.
// If Methods is empty, the header is omitted.
//
// # RequestHeaders
//
// RequestHeaders lists the request-header names that the Responder
// advertises in the Access-Control-Allow-Headers header, in the specified
// order. Header names are case-insensitive; duplicates are ignored.
// Specifying [forbidden request-header names] is prohibited,
// as is specifying the name of a CORS response header.
// If RequestHeaders is empty, the header is omitted.
//
// # MaxAgeInSeconds
//
// MaxAgeInSeconds configures the Responder to instruct browsers
// to cache preflight responses for a duration no longer than
// the specified number of seconds.
// The zero value omits the Access-Control-Max-Age header.
// To instruct browsers to eschew caching of preflight responses altogether,
// specify a value of -1. No other negative value is permitted,
// and values larger than 86400 are prohibited.
//
// # Logger
//
// Logger receives a debug-level trace whenever a Responder is configured.
// If Logger is nil, [slog.Default] is used.
//
// [ASCII serialized form]: https://html.spec.whatwg.org/multipage/browsers.html#ascii-serialisation-of-an-origin
// [Web origins]: https://developer.mozilla.org/en-US/docs/Glossary/Origin
// [forbidden method names]: https://fetch.spec.whatwg.org/#forbidden-method
// [forbidden request-header names]: https://fetch.spec.whatwg.org/#forbidden-request-header
// [public suffix]: https://publicsuffix.org/
type Config struct {
	// Precludes comparability, unkeyed struct literals, and conversion to and
	// from third-party types.
	_ [0]func()

	PathPrefix      string
	Origins         []string
	Credentialed    bool
	Methods         []string
	RequestHeaders  []string
	MaxAgeInSeconds int
	Logger          *slog.Logger `json:"-"`
}

// DefaultConfig returns the configuration of the checksum-generator
// endpoint: any origin is reflected, credentialed access is enabled,
// and methods GET and POST and request header Authorization are allowed.
func DefaultConfig() Config {
	return Config{
		PathPrefix:     DefaultPathPrefix,
		Origins:        []string{headers.ValueWildcard},
		Credentialed:   true,
		Methods:        []string{http.MethodGet, http.MethodPost},
		RequestHeaders: []string{"Authorization"},
	}
}

type internalConfig struct {
	prefix       string
	tree         origins.Set // tree.IsEmpty() <=> any origin reflected
	credentialed bool
	methods      util.OrderedSet
	reqHdrs      util.OrderedSet
	acam         []string // nil => no ACAM header
	acah         []string // nil => no ACAH header
	acma         []string // nil => no ACMA header
	logger       *slog.Logger
}

func newInternalConfig(cfg *Config) (*internalConfig, error) {
	if cfg == nil {
		return nil, nil
	}
	icfg := internalConfig{
		credentialed: cfg.Credentialed,
		logger:       cfg.Logger,
	}
	if icfg.logger == nil {
		icfg.logger = slog.Default()
	}

	// Accumulate errors in a slice so as to call errors.Join at most once.
	errs := icfg.validatePathPrefix(cfg.PathPrefix)
	errs = icfg.validateOriginPatterns(errs, cfg.Origins)
	errs = icfg.validateMethods(errs, cfg.Methods)
	errs = icfg.validateRequestHeaders(errs, cfg.RequestHeaders)
	errs = icfg.validateMaxAge(errs, cfg.MaxAgeInSeconds)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &icfg, nil
}

func (icfg *internalConfig) validatePathPrefix(prefix string) []error {
	switch {
	case prefix == "":
		err := &cfgerrors.UnacceptablePathPrefixError{
			Reason: "missing",
		}
		return []error{err}
	case prefix[0] != '/':
		err := &cfgerrors.UnacceptablePathPrefixError{
			Value:  prefix,
			Reason: "invalid",
		}
		return []error{err}
	}
	icfg.prefix = prefix
	return nil
}

func (icfg *internalConfig) validateOriginPatterns(errs []error, rawPatterns []string) []error {
	var (
		tree           origins.Set
		allowAnyOrigin bool
	)
	for _, raw := range rawPatterns {
		if raw == headers.ValueWildcard {
			allowAnyOrigin = true
			continue
		}
		pattern, err := origins.ParsePattern(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if pattern.Kind == origins.ArbitrarySubdomains && pattern.HostIsEffectiveTLD() {
			err := &cfgerrors.IncompatibleOriginPatternError{
				Value:  raw,
				Reason: "psl",
			}
			errs = append(errs, err)
			continue
		}
		tree.Add(&pattern)
	}
	if !allowAnyOrigin {
		icfg.tree = tree
	}
	return errs
}

func (icfg *internalConfig) validateMethods(errs []error, names []string) []error {
	for _, name := range names {
		if !methods.IsValid(name) {
			err := &cfgerrors.UnacceptableMethodError{
				Value:  name,
				Reason: "invalid",
			}
			errs = append(errs, err)
			continue
		}
		name = methods.Normalize(name)
		if methods.IsForbidden(name) {
			err := &cfgerrors.UnacceptableMethodError{
				Value:  name,
				Reason: "forbidden",
			}
			errs = append(errs, err)
			continue
		}
		icfg.methods.Add(name, name)
	}
	if icfg.methods.Size() > 0 {
		icfg.acam = []string{strings.Join(icfg.methods.ToSlice(), headers.ValueSep)}
	}
	return errs
}

func (icfg *internalConfig) validateRequestHeaders(errs []error, names []string) []error {
	for _, name := range names {
		if !headers.IsValid(name) {
			err := &cfgerrors.UnacceptableHeaderNameError{
				Value:  name,
				Reason: "invalid",
			}
			errs = append(errs, err)
			continue
		}
		normalized := util.ByteLowercase(name)
		if headers.IsForbiddenRequestHeaderName(normalized) {
			err := &cfgerrors.UnacceptableHeaderNameError{
				Value:  name,
				Reason: "forbidden",
			}
			errs = append(errs, err)
			continue
		}
		if headers.IsProhibitedRequestHeaderName(normalized) {
			err := &cfgerrors.UnacceptableHeaderNameError{
				Value:  name,
				Reason: "prohibited",
			}
			errs = append(errs, err)
			continue
		}
		icfg.reqHdrs.Add(name, normalized)
	}
	if icfg.reqHdrs.Size() > 0 {
		icfg.acah = []string{strings.Join(icfg.reqHdrs.ToSlice(), headers.ValueSep)}
	}
	return errs
}

func (icfg *internalConfig) validateMaxAge(errs []error, delta int) []error {
	const (
		// Current upper bounds:
		//  - Firefox: 86400 (24h)
		//  - Chromium: 7200 (2h)
		//  - WebKit/Safari: 600 (10m)
		upperBound = 86400
		// sentinel value for disabling preflight caching
		disableCaching = -1
	)
	switch {
	case delta < disableCaching || upperBound < delta:
		err := &cfgerrors.MaxAgeOutOfBoundsError{
			Value:   delta,
			Max:     upperBound,
			Disable: disableCaching,
		}
		return append(errs, err)
	case delta == disableCaching:
		icfg.acma = []string{"0"}
	case delta > 0:
		icfg.acma = []string{strconv.Itoa(delta)}
	}
	return errs
}

// newConfig returns a Config on the basis of icfg.
// The soundness of the result is guaranteed only if icfg is the result of a
// previous call to newInternalConfig.
func newConfig(icfg *internalConfig) *Config {
	if icfg == nil {
		return nil
	}
	// Note: do not hold (in cfg) any references to mutable fields of icfg.
	cfg := Config{
		PathPrefix:   icfg.prefix,
		Credentialed: icfg.credentialed,
		Logger:       icfg.logger,
	}
	if icfg.tree.IsEmpty() {
		cfg.Origins = []string{headers.ValueWildcard}
	} else {
		cfg.Origins = icfg.tree.Elems()
	}
	if icfg.methods.Size() > 0 {
		cfg.Methods = icfg.methods.ToSlice()
	}
	if icfg.reqHdrs.Size() > 0 {
		cfg.RequestHeaders = icfg.reqHdrs.ToSlice()
	}
	if len(icfg.acma) > 0 {
		maxAge, _ := strconv.Atoi(icfg.acma[0]) // safe, by construction
		if maxAge != 0 {
			cfg.MaxAgeInSeconds = maxAge
		} else {
			cfg.MaxAgeInSeconds = -1
		}
	}
	return &cfg
}
