package httpx

import (
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/jcrtools/httpx/internal/headers"
	"github.com/jcrtools/httpx/internal/origins"
)

// The status code of responses to preflight requests.
// Any 2xx status would do, but some clients insist on 200.
const preflightStatus = http.StatusOK

// A Responder answers CORS-preflight requests sent to a single endpoint.
// Its zero value is a passthrough responder, i.e. one that lets every
// request reach the wrapped handler. A Responder is safe for concurrent use
// by multiple goroutines.
type Responder struct {
	icfg atomic.Pointer[internalConfig]
}

// NewResponder creates a Responder in accordance with cfg.
// If cfg is invalid, it returns a nil *Responder and some non-nil error.
// Otherwise, it returns a pointer to a Responder and a nil error.
//
// The resulting error, if any, can be inspected with [cfgerrors.All].
func NewResponder(cfg Config) (*Responder, error) {
	var r Responder
	if err := r.Reconfigure(&cfg); err != nil {
		return nil, err
	}
	return &r, nil
}

// Wrap applies r to h and returns the resulting [http.Handler].
//
// OPTIONS requests (the method is compared case-insensitively) whose URL path
// starts with r's path prefix and whose first Origin header is non-empty
// and allowed are answered by r; h is not invoked for them.
// All other requests are handed to h as is.
func (r *Responder) Wrap(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		icfg := r.icfg.Load()
		if icfg == nil || !icfg.isPreflightFor(req) {
			h.ServeHTTP(w, req)
			return
		}
		origin, originSgl, _ := headers.First(req.Header, headers.Origin)
		if origin == "" || !icfg.allows(origin) {
			h.ServeHTTP(w, req)
			return
		}
		icfg.handlePreflight(w, originSgl)
	})
}

func (icfg *internalConfig) isPreflightFor(req *http.Request) bool {
	return strings.EqualFold(req.Method, http.MethodOptions) &&
		req.URL != nil &&
		strings.HasPrefix(req.URL.EscapedPath(), icfg.prefix)
}

func (icfg *internalConfig) allows(origin string) bool {
	if icfg.tree.IsEmpty() {
		return true
	}
	o, ok := origins.Parse(origin)
	return ok && icfg.tree.Contains(&o)
}

func (icfg *internalConfig) handlePreflight(w http.ResponseWriter, originSgl []string) {
	resHdrs := w.Header()
	// originSgl aliases the request's headers, but the wrapped handler is
	// never invoked for this request.
	resHdrs[headers.ACAO] = originSgl
	if icfg.credentialed {
		resHdrs[headers.ACAC] = headers.TrueSgl
	}
	if icfg.acah != nil {
		resHdrs[headers.ACAH] = icfg.acah
	}
	if icfg.acam != nil {
		resHdrs[headers.ACAM] = icfg.acam
	}
	if icfg.acma != nil {
		resHdrs[headers.ACMA] = icfg.acma
	}
	w.WriteHeader(preflightStatus)
}

// Config returns a pointer to a deep copy of r's current configuration;
// if r is a passthrough responder, it simply returns nil.
// The result may differ from the [Config] with which r was created or last
// reconfigured, but the two are behaviorally equivalent.
//
// Config is useful for inspecting a Responder that was configured from
// the environment; see the httpxd command.
func (r *Responder) Config() *Config {
	return newConfig(r.icfg.Load())
}

// Reconfigure reconfigures r in accordance with cfg.
// If cfg is nil, it turns r into a passthrough responder.
// If cfg is invalid, it leaves r unchanged and returns some non-nil error.
// Otherwise, it reconfigures r, returns a nil error, and emits a debug-level
// trace to the configured logger.
//
// You can safely reconfigure a Responder even as it's concurrently
// processing requests.
func (r *Responder) Reconfigure(cfg *Config) error {
	icfg, err := newInternalConfig(cfg)
	if err != nil {
		return err
	}
	r.icfg.Store(icfg)
	if icfg != nil {
		icfg.logger.Debug("preflight responder initialized",
			"path_prefix", icfg.prefix,
			"origins", newConfig(icfg).Origins,
			"credentialed", icfg.credentialed,
		)
	}
	return nil
}
