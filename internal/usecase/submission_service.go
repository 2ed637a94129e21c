package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/instafinder/backend/internal/domain"
	"go.uber.org/zap"
)

// DefaultSessionTTL is how long an untouched session is kept
const DefaultSessionTTL = 30 * time.Minute

// SubmissionServiceConfig holds configuration for the submission service
type SubmissionServiceConfig struct {
	SessionTTL time.Duration
}

// SubmissionService hands out sessions kept in a TTL store.
// Each browser gets its own Session keyed by a random ID.
type SubmissionService struct {
	store      domain.CacheRepository
	submitter  domain.Submitter
	logger     *zap.Logger
	sessionTTL time.Duration
	newID      func() string
}

// NewSubmissionService creates a new submission service with dependencies
func NewSubmissionService(
	store domain.CacheRepository,
	submitter domain.Submitter,
	logger *zap.Logger,
	config SubmissionServiceConfig,
) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}

	sessionTTL := config.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}

	return &SubmissionService{
		store:      store,
		submitter:  submitter,
		logger:     logger,
		sessionTTL: sessionTTL,
		newID:      uuid.NewString,
	}
}

// maxIDAttempts bounds how many generated IDs are tried before giving up
const maxIDAttempts = 3

// NewSession creates and stores a fresh idle session under an unused ID
func (s *SubmissionService) NewSession(ctx context.Context) (*Session, error) {
	id, err := s.unusedID(ctx)
	if err != nil {
		return nil, err
	}

	session := NewSession(id, s.submitter, s.logger)
	if err := s.store.Set(ctx, sessionKey(session.ID()), session, s.sessionTTL); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	s.logger.Debug("session created", zap.String("session", session.ID()))
	return session, nil
}

// Session looks up a live session and extends its TTL
func (s *SubmissionService) Session(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}

	value, err := s.store.Get(ctx, sessionKey(id))
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	session, ok := value.(*Session)
	if !ok || session.Closed() {
		return nil, domain.ErrSessionNotFound
	}

	if err := s.store.Set(ctx, sessionKey(id), session, s.sessionTTL); err != nil {
		s.logger.Warn("failed to refresh session ttl", zap.String("session", id), zap.Error(err))
	}
	return session, nil
}

// SessionOrNew returns the session for id, creating one when it is unknown.
// The boolean reports whether a new session was created.
func (s *SubmissionService) SessionOrNew(ctx context.Context, id string) (*Session, bool, error) {
	session, err := s.Session(ctx, id)
	if err == nil {
		return session, false, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, false, err
	}

	session, err = s.NewSession(ctx)
	if err != nil {
		return nil, false, err
	}
	return session, true, nil
}

// EndSession tears a session down and removes it from the store
func (s *SubmissionService) EndSession(ctx context.Context, id string) error {
	value, err := s.store.Get(ctx, sessionKey(id))
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return domain.ErrSessionNotFound
		}
		return err
	}

	if session, ok := value.(*Session); ok {
		session.Close()
	}
	return s.store.Delete(ctx, sessionKey(id))
}

// OnEvict closes sessions dropped by the store; register it as the store's evict callback
func (s *SubmissionService) OnEvict(key string, value interface{}) {
	if session, ok := value.(*Session); ok {
		session.Close()
		s.logger.Debug("session evicted", zap.String("session", session.ID()))
	}
}

// unusedID draws IDs until one is not already held by the store
func (s *SubmissionService) unusedID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := s.newID()
		taken, err := s.store.Exists(ctx, sessionKey(id))
		if err != nil {
			return "", fmt.Errorf("failed to check session id: %w", err)
		}
		if !taken {
			return id, nil
		}
		s.logger.Warn("generated session id already in use", zap.String("session", id))
	}
	return "", fmt.Errorf("no unused session id after %d attempts", maxIDAttempts)
}

func sessionKey(id string) string {
	return "session:" + id
}
