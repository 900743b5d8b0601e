package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/commune-hq/commune/internal/domain"
	"github.com/commune-hq/commune/internal/repository"
)

const tokenBytes = 32

// CookieName is the cookie carrying the opaque session token.
const CookieName = "commune_session"

// Manager issues and resolves opaque session tokens backed by the sessions
// table. Expiry is enforced here on read, the reaper only keeps the table
// from growing without bound.
type Manager struct {
	repo repository.SessionRepository
	ttl  time.Duration
	now  func() time.Time
}

func NewManager(repo repository.SessionRepository, ttl time.Duration) *Manager {
	return &Manager{repo: repo, ttl: ttl, now: time.Now}
}

func (m *Manager) Create(ctx context.Context, userID int64) (*domain.Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("generating session token: %w", err)
	}

	sess := &domain.Session{
		ID:        token,
		UserID:    userID,
		ExpiresAt: m.now().Add(m.ttl),
	}
	if err := m.repo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}
	return sess, nil
}

// Get resolves a token to its session, or (nil, nil) when the token is
// unknown or expired.
func (m *Manager) Get(ctx context.Context, id string) (*domain.Session, error) {
	sess, err := m.repo.Get(ctx, id)
	if err != nil || sess == nil {
		return nil, err
	}
	if sess.ExpiresAt.Before(m.now()) {
		return nil, nil
	}
	return sess, nil
}

func (m *Manager) Destroy(ctx context.Context, id string) error {
	return m.repo.Delete(ctx, id)
}

// Reap deletes expired rows once and returns how many were removed.
func (m *Manager) Reap(ctx context.Context) (int64, error) {
	return m.repo.DeleteExpired(ctx, m.now())
}

// RunReaper reaps on a ticker until the context is cancelled. Call in a
// goroutine.
func (m *Manager) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := m.Reap(ctx)
			if err != nil {
				logrus.WithError(err).Warn("session reaper failed")
				continue
			}
			if n > 0 {
				logrus.WithField("sessions", n).Debug("reaped expired sessions")
			}
		case <-ctx.Done():
			return
		}
	}
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
