// Package session owns the backend session lifecycle: create, refresh,
// reset, close, and the locally persisted session identity. It is the only
// writer of the shared token store.
package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/zgloszenie/accident-form/internal/api"
	"github.com/zgloszenie/accident-form/internal/errs"
)

const fileName = "session.json"

// API is the subset of the backend client the manager needs.
type API interface {
	CreateSession(ctx context.Context, body api.CreateSessionBody) (*api.SessionResponse, error)
	RefreshSession(ctx context.Context, sessionID string) (*api.SessionResponse, error)
	CloseSession(ctx context.Context, sessionID string) (*api.CloseResponse, error)
}

// State is the persisted session identity.
type State struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	Status    string `json:"status"`
}

// ExpiresAtTime parses the backend expiry, falling back to the token's own
// exp claim when the backend field is absent or unparseable.
func (s State) ExpiresAtTime() time.Time {
	if t, err := time.Parse(time.RFC3339, s.ExpiresAt); err == nil {
		return t
	}
	var claims jwt.RegisteredClaims
	_, _ = jwt.ParseWithClaims(s.Token, &claims, func(*jwt.Token) (any, error) { return nil, nil },
		jwt.WithoutClaimsValidation(),
	)
	if claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return time.Time{}
}

// Manager guards the session with a single mutex, so concurrent Ensure
// calls serialize instead of racing to create duplicate sessions.
type Manager struct {
	mu       sync.Mutex
	backend  API
	tokens   *api.TokenStore
	dir      string
	formType string
	state    State
}

// NewManager loads any persisted session from dir and propagates its token.
func NewManager(backend API, tokens *api.TokenStore, dir, formType string) *Manager {
	m := &Manager{backend: backend, tokens: tokens, dir: dir, formType: formType}
	if st, ok := loadState(filepath.Join(dir, fileName)); ok {
		m.state = st
		tokens.Set(st.Token)
	}
	return m
}

// Current returns the in-memory session state without touching the backend.
func (m *Manager) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Active reports whether a session identity is held locally.
func (m *Manager) Active() bool {
	st := m.Current()
	return st.SessionID != "" && st.Token != ""
}

// Ensure returns a live session, refreshing a persisted one or creating a
// new one. A refresh rejected with an auth-class status discards local state
// and falls back to creation; other refresh errors propagate.
func (m *Manager) Ensure(ctx context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.SessionID != "" && m.state.Token != "" {
		res, err := m.backend.RefreshSession(ctx, m.state.SessionID)
		if err == nil {
			m.adoptLocked(res)
			return m.state, nil
		}
		if !api.IsAuthError(err) {
			return State{}, err
		}
		m.resetLocked()
	}
	return m.createLocked(ctx)
}

// Refresh re-validates the existing session without fallback creation.
func (m *Manager) Refresh(ctx context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.SessionID == "" {
		return State{}, errs.ErrNoSession
	}
	res, err := m.backend.RefreshSession(ctx, m.state.SessionID)
	if err != nil {
		return State{}, err
	}
	m.adoptLocked(res)
	return m.state, nil
}

// Reset clears in-memory and persisted session state unconditionally.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

// Close notifies the backend, then resets regardless of the outcome.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.SessionID == "" {
		return nil
	}
	_, err := m.backend.CloseSession(ctx, m.state.SessionID)
	m.resetLocked()
	return err
}

func (m *Manager) createLocked(ctx context.Context) (State, error) {
	res, err := m.backend.CreateSession(ctx, api.CreateSessionBody{FormType: m.formType})
	if err != nil {
		m.resetLocked()
		return State{}, err
	}
	m.adoptLocked(res)
	return m.state, nil
}

func (m *Manager) adoptLocked(res *api.SessionResponse) {
	m.state = State{
		SessionID: res.SessionID,
		Token:     res.SessionToken,
		ExpiresAt: res.ExpiresAt,
		Status:    res.Status,
	}
	m.tokens.Set(m.state.Token)
	saveState(m.dir, filepath.Join(m.dir, fileName), m.state)
}

func (m *Manager) resetLocked() {
	m.state = State{}
	m.tokens.Set("")
	_ = os.Remove(filepath.Join(m.dir, fileName))
}

func loadState(path string) (State, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return State{}, false
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return State{}, false
	}
	if st.SessionID == "" || st.Token == "" {
		return State{}, false
	}
	return st, true
}

func saveState(dir, path string, st State) {
	_ = os.MkdirAll(dir, 0o700)
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	_ = enc.Encode(st)
}
