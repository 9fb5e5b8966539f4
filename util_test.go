package httpx_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/jcrtools/httpx"
)

const (
	// request headers
	headerOrigin = "Origin"
	headerACRM   = "Access-Control-Request-Method"
	headerACRH   = "Access-Control-Request-Headers"

	// preflight response headers
	headerACAO = "Access-Control-Allow-Origin"
	headerACAC = "Access-Control-Allow-Credentials"
	headerACAM = "Access-Control-Allow-Methods"
	headerACAH = "Access-Control-Allow-Headers"
	headerACMA = "Access-Control-Max-Age"

	headerVary = "Vary"
)

const diagnosticEndpoint = "http://localhost:4502" + httpx.DefaultPathPrefix

type ResponderTestCase struct {
	desc       string
	outerMw    *middleware
	newHandler func() http.Handler
	cfg        *httpx.Config
	cases      []ReqTestCase
}

type ReqTestCase struct {
	desc string
	// request
	reqMethod  string
	target     string // defaults to diagnosticEndpoint
	reqHeaders http.Header
	// expectations
	answered    bool // whether the responder short-circuits the wrapped handler
	respHeaders http.Header
}

func newRequest(method, target string, headers http.Header) *http.Request {
	if target == "" {
		target = diagnosticEndpoint
	}
	req := httptest.NewRequest(method, target, nil)
	for name, values := range headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	return req
}

type spyHandler struct {
	called      atomic.Bool
	statusCode  int
	respHeaders http.Header
	body        string
	handler     http.Handler
}

func newSpyHandler(statusCode int, respHeaders http.Header, body string) func() http.Handler {
	f := func() http.Handler {
		h := func(w http.ResponseWriter, _ *http.Request) {
			for k, vs := range respHeaders {
				for _, v := range vs {
					w.Header().Add(k, v)
				}
			}
			w.WriteHeader(statusCode)
			if len(body) > 0 {
				io.WriteString(w, body)
			}
		}
		return &spyHandler{
			statusCode:  statusCode,
			respHeaders: respHeaders,
			body:        body,
			handler:     http.HandlerFunc(h),
		}
	}
	return f
}

func (s *spyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.called.Store(true)
	s.handler.ServeHTTP(w, r)
}

var varyMiddleware = middleware{
	hdrs: http.Header{headerVary: {"before"}},
}

type middleware struct {
	hdrs http.Header
}

func (m middleware) Wrap(next http.Handler) http.Handler {
	f := func(w http.ResponseWriter, r *http.Request) {
		for k, vs := range m.hdrs {
			for _, v := range vs {
				w.Header().Add(k, v)
			}
		}
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(f)
}

// note: this function mutates got (to ease subsequent assertions)
func assertResponseHeaders(t *testing.T, got, want http.Header) {
	t.Helper()
	for k, vs := range want {
		for _, v := range vs {
			if !deleteHeaderValue(got, k, v) {
				t.Errorf(`missing header value "%s: %s"`, k, v)
			}
		}
		// clean up: remove headers whose values are empty but non-nil
		if vs, found := got[k]; found && len(vs) == 0 {
			delete(got, k)
		}
	}
}

func assertNoMoreResponseHeaders(t *testing.T, left http.Header) {
	t.Helper()
	for k, v := range left {
		t.Errorf("unexpected header value(s) %q: %q", k, v)
	}
}

func assertBody(t *testing.T, body io.ReadCloser, want string) {
	t.Helper()
	var buf bytes.Buffer
	_, err := io.Copy(&buf, body)
	if got := buf.String(); err != nil || got != want {
		t.Errorf("got body %q; want body %q", got, want)
	}
}

// deleteHeaderValue reports whether h contains a header named key
// that contains value.
// If that's the case, the key-value pair in question is removed from h.
func deleteHeaderValue(h http.Header, key, value string) bool {
	vs, ok := h[key]
	if !ok {
		return false
	}
	i := slices.Index(vs, value)
	if i == -1 {
		return false
	}
	h[key] = slices.Delete(vs, i, i+1)
	return true
}

func newResponder(t *testing.T, cfg *httpx.Config) *httpx.Responder {
	t.Helper()
	if cfg == nil {
		return new(httpx.Responder)
	}
	r, err := httpx.NewResponder(*cfg)
	if err != nil {
		t.Fatalf("failure to build responder: %v", err)
	}
	return r
}

func runReqTestCase(t *testing.T, r *httpx.Responder, rtc *ResponderTestCase, tc *ReqTestCase) {
	t.Helper()
	// --- arrange ---
	innerHandler := rtc.newHandler()
	handler := r.Wrap(innerHandler)
	if outerMiddleware := rtc.outerMw; outerMiddleware != nil {
		handler = outerMiddleware.Wrap(handler)
	}
	req := newRequest(tc.reqMethod, tc.target, tc.reqHeaders)
	rec := httptest.NewRecorder()

	// --- act ---
	handler.ServeHTTP(rec, req)
	res := rec.Result()

	// --- assert ---
	spy, ok := innerHandler.(*spyHandler)
	if !ok {
		t.Fatalf("handler is not a *spyHandler")
	}
	if tc.answered {
		if spy.called.Load() {
			t.Error("wrapped handler was called, but it should not have been")
		}
		if res.StatusCode != http.StatusOK {
			const tmpl = "got status code %d; want %d"
			t.Errorf(tmpl, res.StatusCode, http.StatusOK)
		}
		assertResponseHeaders(t, res.Header, tc.respHeaders)
		if rtc.outerMw != nil {
			assertResponseHeaders(t, res.Header, rtc.outerMw.hdrs)
		}
		assertNoMoreResponseHeaders(t, res.Header)
		assertBody(t, res.Body, "")
		return
	}
	if !spy.called.Load() {
		t.Error("wrapped handler wasn't called, but it should have been")
	}
	if res.StatusCode != spy.statusCode {
		const tmpl = "got status code %d; want %d"
		t.Errorf(tmpl, res.StatusCode, spy.statusCode)
	}
	assertResponseHeaders(t, res.Header, spy.respHeaders)
	assertResponseHeaders(t, res.Header, tc.respHeaders)
	if rtc.outerMw != nil {
		assertResponseHeaders(t, res.Header, rtc.outerMw.hdrs)
	}
	assertNoMoreResponseHeaders(t, res.Header)
	assertBody(t, res.Body, spy.body)
}
