// Package session manages admin sessions on the gateway. A session pairs the
// bearer token issued by the upstream store API with the user it belongs to;
// it is created on login, read on every admin request, and destroyed on
// logout or whenever the upstream answers 401.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-gateway/internal/kv"
	"storefront-gateway/internal/models"
	"storefront-gateway/internal/util"
)

// ErrNotFound is returned when no session exists for a given ID.
var ErrNotFound = errors.New("session not found")

// Session is the gateway-side record of an authenticated admin.
type Session struct {
	ID        string      `json:"id"`
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Expired reports whether the upstream token carried an exp claim that has
// passed. The expiry is advisory; the upstream remains the authority and a
// stale token still triggers the 401 path.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Manager creates, loads and invalidates sessions in the kv store.
type Manager struct {
	store  kv.Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewManager creates a session manager with the given session lifetime.
func NewManager(store kv.Store, ttl time.Duration) *Manager {
	return &Manager{
		store:  store,
		ttl:    ttl,
		logger: util.GetLogger(),
	}
}

func sessionKey(id string) string {
	return "session:" + id
}

// Create stores a new session for the given upstream token and user.
func (m *Manager) Create(ctx context.Context, token string, user models.User) (*Session, error) {
	s := &Session{
		ID:        uuid.New().String(),
		Token:     token,
		User:      user,
		ExpiresAt: tokenExpiry(token),
		CreatedAt: time.Now(),
	}

	if err := m.store.Set(ctx, sessionKey(s.ID), s, m.ttl); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	m.logger.Info("Session created",
		zap.String("session_id", s.ID),
		zap.String("user", user.Email))
	return s, nil
}

// Load retrieves a session by ID.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	var s Session
	err := m.store.Get(ctx, sessionKey(id), &s)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if s.Expired(time.Now()) {
		_ = m.Invalidate(ctx, id)
		return nil, ErrNotFound
	}
	return &s, nil
}

// Invalidate destroys a session. It is the single logout path, used both for
// explicit logout and for upstream 401 responses.
func (m *Manager) Invalidate(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, sessionKey(id)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	m.logger.Info("Session invalidated", zap.String("session_id", id))
	return nil
}

// tokenExpiry extracts the exp claim from the upstream JWT without verifying
// the signature. The gateway has no signing key; verification stays upstream.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
