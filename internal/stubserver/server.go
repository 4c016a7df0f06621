// Package stubserver is an in-memory implementation of the accident-form
// backend REST surface, used for local development and end-to-end tests.
// Validation verdicts are deterministic heuristics, not a model call.
package stubserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const sessionTTL = 30 * time.Minute

type versionRec struct {
	Version   int64          `json:"version"`
	Source    string         `json:"source"`
	Payload   map[string]any `json:"payload"`
	Comment   *string        `json:"comment"`
	CreatedAt time.Time      `json:"created_at"`
}

type sessionRec struct {
	ID       string
	FormType string
	Status   string
	Versions []versionRec
}

// Server holds all state behind a single mutex; good enough for one client.
type Server struct {
	log     *zap.Logger
	signKey []byte

	mu       sync.Mutex
	sessions map[string]*sessionRec
}

// New builds a stub backend signing tokens with signKey.
func New(log *zap.Logger, signKey []byte) *Server {
	return &Server{
		log:      log,
		signKey:  signKey,
		sessions: make(map[string]*sessionRec),
	}
}

// Router wires the REST surface.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/sessions", s.createSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Use(s.auth)
		r.Post("/refresh-token", s.refreshSession)
		r.Post("/close", s.closeSession)
		r.Post("/validate", s.validate)
		r.Post("/forms", s.submitForm)
		r.Get("/history", s.history)
		r.Get("/forms/{version}", s.formVersion)
		r.Get("/forms/{version}/pdf", s.formPDF)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) mintToken(sessionID string, exp time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
}

// auth validates the bearer token and pins it to the session in the path.
func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		s.mu.Lock()
		rec := s.sessions[id]
		s.mu.Unlock()
		if rec == nil {
			writeDetail(w, http.StatusNotFound, "session not found")
			return
		}
		if rec.Status == "closed" {
			writeDetail(w, http.StatusUnprocessableEntity, "session closed")
			return
		}

		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" || raw == r.Header.Get("Authorization") {
			writeDetail(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		var claims jwt.RegisteredClaims
		_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
			return s.signKey, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if claims.Subject != id {
			writeDetail(w, http.StatusForbidden, "token does not match session")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) sessionResponse(w http.ResponseWriter, rec *sessionRec) {
	exp := time.Now().Add(sessionTTL)
	tok, err := s.mintToken(rec.ID, exp)
	if err != nil {
		s.log.Error("mint token", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "token signing failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":    rec.ID,
		"session_token": tok,
		"expires_at":    exp.UTC().Format(time.RFC3339),
		"status":        rec.Status,
		"form_type":     rec.FormType,
	})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FormType string `json:"form_type"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.FormType == "" {
		body.FormType = "EWYP"
	}

	id, err := uuid.NewV4()
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "id generation failed")
		return
	}
	rec := &sessionRec{ID: id.String(), FormType: body.FormType, Status: "active"}

	s.mu.Lock()
	s.sessions[rec.ID] = rec
	s.mu.Unlock()

	s.log.Info("session created", zap.String("session_id", rec.ID))
	s.sessionResponse(w, rec)
}

func (s *Server) refreshSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	rec := s.sessions[id]
	s.mu.Unlock()
	s.sessionResponse(w, rec)
}

func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	rec := s.sessions[id]
	rec.Status = "closed"
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"session_id": id, "status": "closed"})
}

func (s *Server) submitForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		Payload map[string]any `json:"payload"`
		Source  string         `json:"source"`
		Comment *string        `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed body")
		return
	}
	if body.Source == "" {
		body.Source = "raw"
	}

	s.mu.Lock()
	rec := s.sessions[id]
	ver := versionRec{
		Version:   int64(len(rec.Versions) + 1),
		Source:    body.Source,
		Payload:   body.Payload,
		Comment:   body.Comment,
		CreatedAt: time.Now().UTC(),
	}
	rec.Versions = append(rec.Versions, ver)
	s.mu.Unlock()

	s.log.Info("form stored", zap.String("session_id", id), zap.Int64("version", ver.Version))
	writeJSON(w, http.StatusOK, map[string]any{
		"version":    ver.Version,
		"created_at": ver.CreatedAt.Format(time.RFC3339),
	})
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	limit, offset := 20, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	s.mu.Lock()
	rec := s.sessions[id]
	total := len(rec.Versions)
	versions := make([]map[string]any, 0)
	for i := total - 1 - offset; i >= 0 && len(versions) < limit; i-- {
		v := rec.Versions[i]
		versions = append(versions, map[string]any{
			"version":    v.Version,
			"source":     v.Source,
			"created_at": v.CreatedAt.Format(time.RFC3339),
			"comment":    v.Comment,
		})
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":     id,
		"total_versions": total,
		"versions":       versions,
	})
}

func (s *Server) findVersion(w http.ResponseWriter, r *http.Request) (versionRec, bool) {
	id := chi.URLParam(r, "id")
	n, err := strconv.ParseInt(chi.URLParam(r, "version"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "bad version number")
		return versionRec{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.sessions[id]
	for _, v := range rec.Versions {
		if v.Version == n {
			return v, true
		}
	}
	writeDetail(w, http.StatusNotFound, "version not found")
	return versionRec{}, false
}

func (s *Server) formVersion(w http.ResponseWriter, r *http.Request) {
	v, ok := s.findVersion(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"version":     v.Version,
		"source":      v.Source,
		"payload":     v.Payload,
		"validations": []any{},
		"created_at":  v.CreatedAt.Format(time.RFC3339),
	})
}

func (s *Server) formPDF(w http.ResponseWriter, r *http.Request) {
	v, ok := s.findVersion(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=zgloszenie-v"+strconv.FormatInt(v.Version, 10)+".pdf")
	// Not a real render; enough for download plumbing.
	_, _ = w.Write([]byte("%PDF-1.4\n%stub\n"))
}
