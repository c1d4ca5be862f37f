package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/notdulain/OAuth-Learning/internal/cache"
	"github.com/notdulain/OAuth-Learning/internal/core"
	"github.com/notdulain/OAuth-Learning/internal/models"
	"github.com/notdulain/OAuth-Learning/internal/util"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionService is the browser session registry. Sessions live in the
// injected store and expire lazily; Touch slides the expiry forward.
type SessionService struct {
	store core.Store[*models.Session]
	ttl   time.Duration
	*options
}

func NewSessionService(
	store core.Store[*models.Session],
	ttl time.Duration,
	opts ...Option,
) *SessionService {
	return &SessionService{
		store:   store,
		ttl:     ttl,
		options: newOptions(opts),
	}
}

// TTL returns the session lifetime, also used as the cookie Max-Age.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Create starts a new session for userID.
func (s *SessionService) Create(ctx context.Context, userID string) (*models.Session, error) {
	sid, err := util.RandomHex(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := s.now()
	session := &models.Session{
		SID:       sid,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Set(ctx, sid, session, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.metrics.RecordSessionCreated()
	s.logger.Debugw("session created", "user_id", userID)

	out := *session
	return &out, nil
}

// Get returns the live session for sid. Expired sessions are evicted.
func (s *SessionService) Get(ctx context.Context, sid string) (*models.Session, error) {
	if sid == "" {
		return nil, ErrSessionNotFound
	}
	session, err := s.store.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.IsExpiredAt(s.now()) {
		_ = s.store.Delete(ctx, sid)
		s.metrics.RecordSessionExpired("timeout", session.ExpiresAt.Sub(session.CreatedAt))
		return nil, ErrSessionNotFound
	}

	out := *session
	return &out, nil
}

// Touch resets the session expiry to now+TTL. Absent sessions are left alone.
func (s *SessionService) Touch(ctx context.Context, sid string) (*models.Session, error) {
	if sid == "" {
		return nil, ErrSessionNotFound
	}

	now := s.now()
	expired := false
	session, err := s.store.Update(ctx, sid, func(cur *models.Session) (*models.Session, time.Duration) {
		if cur.IsExpiredAt(now) {
			expired = true
			return cur, 0
		}
		next := *cur
		next.ExpiresAt = now.Add(s.ttl)
		return &next, s.ttl
	})
	if err != nil {
		if expired || errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	out := *session
	return &out, nil
}

// Destroy removes the session. Destroying an unknown sid is a no-op.
func (s *SessionService) Destroy(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	session, err := s.store.Take(ctx, sid)
	if err == nil {
		s.metrics.RecordLogout(s.now().Sub(session.CreatedAt))
	}
	return nil
}

// Sweep evicts expired sessions and refreshes the active-session gauge.
func (s *SessionService) Sweep(ctx context.Context) int {
	removed := s.store.Sweep(ctx)
	s.metrics.SetActiveSessionsCount(s.store.Len())
	return removed
}
