package server

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jcrtools/httpx"
	"github.com/jcrtools/httpx/internal/config"
)

const secret = "s3cr3t"

func newTestHandler(t *testing.T, jwtSecret string) http.Handler {
	t.Helper()
	cfg := &config.Config{
		PathPrefix:     httpx.DefaultPathPrefix,
		AllowedOrigins: []string{"https://author.example.com"},
		JWTSecret:      jwtSecret,
		CookiePath:     "/",
	}
	logger := slog.New(slog.DiscardHandler)
	responder, err := httpx.NewResponder(cfg.Responder(logger))
	if err != nil {
		t.Fatalf("failure to build responder: %v", err)
	}
	return New(cfg, responder, logger)
}

func serve(h http.Handler, req *http.Request) *http.Response {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Result()
}

func signedToken(t *testing.T, key string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "author", "exp": exp.Unix()}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func TestDiagnosticEndpoint(t *testing.T) {
	h := newTestHandler(t, secret)
	target := httpx.DefaultPathPrefix + "?path=/content/dam"
	cases := []struct {
		desc       string
		method     string
		headers    http.Header
		wantStatus int
		wantACAO   string
	}{
		{
			desc:   "preflight from allowed origin",
			method: http.MethodOptions,
			headers: http.Header{
				"Origin": {"https://author.example.com"},
			},
			wantStatus: http.StatusOK,
			wantACAO:   "https://author.example.com",
		}, {
			desc:   "preflight from disallowed origin",
			method: http.MethodOptions,
			headers: http.Header{
				"Origin": {"https://evil.example.org"},
			},
			wantStatus: http.StatusUnauthorized,
		}, {
			desc:       "OPTIONS without origin",
			method:     http.MethodOptions,
			wantStatus: http.StatusUnauthorized,
		}, {
			desc:       "GET without token",
			method:     http.MethodGet,
			wantStatus: http.StatusUnauthorized,
		}, {
			desc:   "GET with token signed with other key",
			method: http.MethodGet,
			headers: http.Header{
				"Authorization": {"Bearer " + signedToken(t, "other", time.Now().Add(time.Hour))},
			},
			wantStatus: http.StatusUnauthorized,
		}, {
			desc:   "GET with expired token",
			method: http.MethodGet,
			headers: http.Header{
				"Authorization": {"Bearer " + signedToken(t, secret, time.Now().Add(-time.Hour))},
			},
			wantStatus: http.StatusUnauthorized,
		}, {
			desc:   "GET with valid token",
			method: http.MethodGet,
			headers: http.Header{
				"Authorization": {"Bearer " + signedToken(t, secret, time.Now().Add(time.Hour))},
			},
			wantStatus: http.StatusOK,
		},
	}
	for _, tc := range cases {
		f := func(t *testing.T) {
			req := httptest.NewRequest(tc.method, target, nil)
			for k, vs := range tc.headers {
				req.Header[k] = vs
			}
			res := serve(h, req)
			if res.StatusCode != tc.wantStatus {
				t.Errorf("got status code %d; want %d", res.StatusCode, tc.wantStatus)
			}
			if got := res.Header.Get("Access-Control-Allow-Origin"); got != tc.wantACAO {
				t.Errorf("got ACAO %q; want %q", got, tc.wantACAO)
			}
			if res.Header.Get(headerRequestID) == "" {
				t.Error("missing request id")
			}
		}
		t.Run(tc.desc, f)
	}
}

func TestHashes(t *testing.T) {
	h := newTestHandler(t, "")
	req := httptest.NewRequest(http.MethodGet, httpx.DefaultPathPrefix+"?path=/a&path=/b", nil)
	res := serve(h, req)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("got status code %d; want %d", res.StatusCode, http.StatusOK)
	}
	var want strings.Builder
	for _, p := range []string{"/a", "/b"} {
		fmt.Fprintf(&want, "%x\t%s\n", sha256.Sum256([]byte(p)), p)
	}
	got, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != want.String() {
		t.Errorf("got body %q; want %q", got, want.String())
	}

	req = httptest.NewRequest(http.MethodGet, httpx.DefaultPathPrefix, nil)
	if res := serve(h, req); res.StatusCode != http.StatusBadRequest {
		t.Errorf("got status code %d; want %d", res.StatusCode, http.StatusBadRequest)
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	h := newTestHandler(t, "")
	req := httptest.NewRequest(http.MethodGet, "/config", nil)
	req.Header.Set(headerRequestID, "abc-123")
	res := serve(h, req)
	if got := res.Header.Get(headerRequestID); got != "abc-123" {
		t.Errorf("got request id %q; want %q", got, "abc-123")
	}
}

func TestConfigRoute(t *testing.T) {
	h := newTestHandler(t, "")
	res := serve(h, httptest.NewRequest(http.MethodGet, "/config", nil))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("got status code %d; want %d", res.StatusCode, http.StatusOK)
	}
	var got httpx.Config
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.PathPrefix != httpx.DefaultPathPrefix {
		t.Errorf("PathPrefix: got %q; want %q", got.PathPrefix, httpx.DefaultPathPrefix)
	}
	if want := []string{"https://author.example.com"}; !slices.Equal(got.Origins, want) {
		t.Errorf("Origins: got %q; want %q", got.Origins, want)
	}
}

func TestListCookies(t *testing.T) {
	h := newTestHandler(t, "")
	cases := []struct {
		desc       string
		target     string
		wantStatus int
		want       []cookieView
	}{
		{
			desc:       "all",
			target:     "/cookies",
			wantStatus: http.StatusOK,
			want: []cookieView{
				{Name: "track_a", Value: "1"},
				{Name: "session", Value: "abc"},
				{Name: "track_b", Value: "2"},
			},
		}, {
			desc:       "matching",
			target:     "/cookies?pattern=track_.*",
			wantStatus: http.StatusOK,
			want: []cookieView{
				{Name: "track_a", Value: "1"},
				{Name: "track_b", Value: "2"},
			},
		}, {
			desc:       "none matching",
			target:     "/cookies?pattern=lang",
			wantStatus: http.StatusOK,
			want:       []cookieView{},
		}, {
			desc:       "invalid pattern",
			target:     "/cookies?pattern=track_%28",
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tc := range cases {
		f := func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			req.Header.Set("Cookie", "track_a=1; session=abc; track_b=2")
			res := serve(h, req)
			if res.StatusCode != tc.wantStatus {
				t.Fatalf("got status code %d; want %d", res.StatusCode, tc.wantStatus)
			}
			if tc.wantStatus != http.StatusOK {
				return
			}
			var got []cookieView
			if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(got, tc.want) {
				t.Errorf("got %v; want %v", got, tc.want)
			}
		}
		t.Run(tc.desc, f)
	}
}

func TestAddCookie(t *testing.T) {
	h := newTestHandler(t, "")
	cases := []struct {
		desc       string
		target     string
		wantStatus int
		wantLines  []string
	}{
		{
			desc:       "valid",
			target:     "/cookies?name=sid&value=abc&max_age=60",
			wantStatus: http.StatusNoContent,
			wantLines:  []string{"sid=abc; Path=/; Max-Age=60; HttpOnly"},
		}, {
			desc:       "missing name",
			target:     "/cookies?value=abc",
			wantStatus: http.StatusBadRequest,
		}, {
			desc:       "invalid max age",
			target:     "/cookies?name=sid&value=abc&max_age=soon",
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tc := range cases {
		f := func(t *testing.T) {
			res := serve(h, httptest.NewRequest(http.MethodPost, tc.target, nil))
			if res.StatusCode != tc.wantStatus {
				t.Errorf("got status code %d; want %d", res.StatusCode, tc.wantStatus)
			}
			if got := res.Header.Values("Set-Cookie"); !slices.Equal(got, tc.wantLines) {
				t.Errorf("Set-Cookie: got %q; want %q", got, tc.wantLines)
			}
		}
		t.Run(tc.desc, f)
	}
}

func TestDropCookies(t *testing.T) {
	h := newTestHandler(t, "")
	cases := []struct {
		desc        string
		target      string
		wantStatus  int
		wantDropped int
		wantLines   []string
	}{
		{
			desc:        "by name",
			target:      "/cookies/drop?name=session&name=lang",
			wantStatus:  http.StatusOK,
			wantDropped: 1,
			wantLines:   []string{"session=abc; Path=/; Max-Age=0"},
		}, {
			desc:        "by pattern",
			target:      "/cookies/drop?pattern=track_.*",
			wantStatus:  http.StatusOK,
			wantDropped: 2,
			wantLines: []string{
				"track_a=1; Path=/; Max-Age=0",
				"track_b=2; Path=/; Max-Age=0",
			},
		}, {
			desc:        "all",
			target:      "/cookies/drop",
			wantStatus:  http.StatusOK,
			wantDropped: 3,
			wantLines: []string{
				"track_a=1; Path=/; Max-Age=0",
				"session=abc; Path=/; Max-Age=0",
				"track_b=2; Path=/; Max-Age=0",
			},
		}, {
			desc:       "invalid pattern",
			target:     "/cookies/drop?pattern=%5B",
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tc := range cases {
		f := func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tc.target, nil)
			req.Header.Set("Cookie", "track_a=1; session=abc; track_b=2")
			res := serve(h, req)
			if res.StatusCode != tc.wantStatus {
				t.Fatalf("got status code %d; want %d", res.StatusCode, tc.wantStatus)
			}
			if got := res.Header.Values("Set-Cookie"); !slices.Equal(got, tc.wantLines) {
				t.Errorf("Set-Cookie: got %q; want %q", got, tc.wantLines)
			}
			if tc.wantStatus != http.StatusOK {
				return
			}
			var body map[string]int
			if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body["dropped"] != tc.wantDropped {
				t.Errorf("got %d dropped; want %d", body["dropped"], tc.wantDropped)
			}
		}
		t.Run(tc.desc, f)
	}
}

func TestUnauthenticatedEndpointWithoutSecret(t *testing.T) {
	h := newTestHandler(t, "")
	req := httptest.NewRequest(http.MethodPost, httpx.DefaultPathPrefix, strings.NewReader("path=/content"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if res := serve(h, req); res.StatusCode != http.StatusOK {
		t.Errorf("got status code %d; want %d", res.StatusCode, http.StatusOK)
	}
}
