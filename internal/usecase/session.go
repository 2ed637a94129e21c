package usecase

import (
	"context"
	"sync"

	"github.com/instafinder/backend/internal/domain"
	"go.uber.org/zap"
)

// Session owns one SubmissionState and moves it through
// Idle -> Loading -> {Success | Failed} -> Loading ...
// At most one submission is in flight; results that arrive after Close are dropped.
type Session struct {
	id        string
	submitter domain.Submitter
	logger    *zap.Logger

	mu      sync.Mutex
	state   domain.SubmissionState
	closed  bool
	pending chan struct{} // closed when the in-flight submission settles
}

// NewSession creates an idle session
func NewSession(id string, submitter domain.Submitter, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		id:        id,
		submitter: submitter,
		logger:    logger.With(zap.String("session", id)),
		state:     domain.Idle(),
	}
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

// State returns a snapshot of the current state
func (s *Session) State() domain.SubmissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submit validates the input, moves the session to Loading and starts the
// request in the background. It returns ErrInvalidURL without touching state
// or the network, ErrSubmissionInFlight while Loading, and ErrSessionClosed
// after Close. The request is not tied to ctx cancellation.
func (s *Session) Submit(ctx context.Context, rawURL string) error {
	url := NormalizeInput(rawURL)
	if err := ValidateInstagramURL(url); err != nil {
		s.logger.Debug("rejected invalid url", zap.String("url", rawURL))
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if s.state.Status() == domain.StatusLoading {
		s.mu.Unlock()
		return domain.ErrSubmissionInFlight
	}
	s.state = domain.Loading(url)
	pending := make(chan struct{})
	s.pending = pending
	s.mu.Unlock()

	s.logger.Info("submission started", zap.String("url", url))
	go s.run(context.WithoutCancel(ctx), url, pending)
	return nil
}

func (s *Session) run(ctx context.Context, url string, pending chan struct{}) {
	defer close(pending)

	outcome := s.submitter.Submit(ctx, url)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.Info("discarding result for closed session", zap.Bool("succeeded", outcome.Succeeded()))
		return
	}

	s.state = domain.Resolve(url, outcome)
	if outcome.Succeeded() {
		s.logger.Info("submission succeeded", zap.Int("groups", len(outcome.Groups())))
	} else {
		s.logger.Warn("submission failed", zap.String("message", outcome.Message()), zap.Error(outcome.Err()))
	}
}

// Wait blocks until no submission is in flight or ctx is done
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	pending := s.pending
	s.mu.Unlock()

	if pending == nil {
		return nil
	}

	select {
	case <-pending:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close tears the session down. A request already on the wire still
// completes but its result is discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.logger.Debug("session closed", zap.Stringer("status", s.state.Status()))
}

// Closed reports whether Close has been called
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
