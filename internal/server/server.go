// Package server implements the HTTP surface of the httpxd command:
// the checksum-generator endpoint, guarded by a preflight responder,
// and a handful of cookie-maintenance routes.
package server

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/jcrtools/httpx"
	"github.com/jcrtools/httpx/cookies"
	"github.com/jcrtools/httpx/internal/config"
)

type server struct {
	cfg       *config.Config
	responder *httpx.Responder
	logger    *slog.Logger
}

// New returns the root handler of the httpxd command.
func New(cfg *config.Config, responder *httpx.Responder, logger *slog.Logger) http.Handler {
	s := &server{
		cfg:       cfg,
		responder: responder,
		logger:    logger,
	}

	r := mux.NewRouter()
	r.Use(RequestID, LogRequests(logger))

	r.HandleFunc("/config", s.handleConfig).Methods(http.MethodGet)
	r.HandleFunc("/cookies", s.handleListCookies).Methods(http.MethodGet)
	r.HandleFunc("/cookies", s.handleAddCookie).Methods(http.MethodPost)
	r.HandleFunc("/cookies/drop", s.handleDropCookies).Methods(http.MethodPost)

	// Preflight requests carry no credentials; the responder must
	// therefore sit in front of authentication.
	var hashes http.Handler = http.HandlerFunc(s.handleHashes)
	if cfg.JWTSecret != "" {
		hashes = BearerAuth([]byte(cfg.JWTSecret))(hashes)
	}
	r.PathPrefix(cfg.PathPrefix).Handler(responder.Wrap(hashes))
	return r
}

// handleHashes lists the SHA-256 digest of each requested path.
func (s *server) handleHashes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodPost:
	case http.MethodOptions:
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
		return
	default:
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	paths := r.Form["path"]
	if len(paths) == 0 {
		http.Error(w, "missing path parameter", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, p := range paths {
		fmt.Fprintf(w, "%x\t%s\n", sha256.Sum256([]byte(p)), p)
	}
}

func (s *server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.responder.Config())
}

type cookieView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (s *server) handleListCookies(w http.ResponseWriter, r *http.Request) {
	matched := cookies.FromRequest(r)
	if pattern := r.URL.Query().Get("pattern"); pattern != "" {
		var err error
		if matched, err = matched.Match(pattern); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	res := make([]cookieView, 0, len(matched))
	for _, c := range matched {
		res = append(res, cookieView{Name: c.Name, Value: c.Value})
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *server) handleAddCookie(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	c := &http.Cookie{
		Name:     r.Form.Get("name"),
		Value:    r.Form.Get("value"),
		Path:     s.cfg.CookiePath,
		HttpOnly: true,
	}
	if v := r.Form.Get("max_age"); v != "" {
		maxAge, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid max_age", http.StatusBadRequest)
			return
		}
		c.MaxAge = maxAge
	}
	if !cookies.Add(w, c) {
		http.Error(w, "invalid cookie", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDropCookies drops the cookies named by the "name" parameters or,
// failing that, those matched by the "pattern" parameters or, failing
// that, all cookies.
func (s *server) handleDropCookies(w http.ResponseWriter, r *http.Request) {
	var (
		q     = r.URL.Query()
		jar   = cookies.FromRequest(r)
		path  = s.cfg.CookiePath
		count int
	)
	switch {
	case len(q["name"]) > 0:
		count = cookies.Drop(jar, w, path, q["name"]...)
	case len(q["pattern"]) > 0:
		var err error
		count, err = cookies.DropMatching(jar, w, path, q["pattern"]...)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	default:
		count = cookies.DropAll(jar, w, path)
	}
	s.logger.DebugContext(r.Context(), "cookies dropped",
		"id", requestIDFrom(r.Context()),
		"count", count,
	)
	s.writeJSON(w, http.StatusOK, map[string]int{"dropped": count})
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failure to encode response", "err", err)
	}
}
