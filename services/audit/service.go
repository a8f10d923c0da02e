// Package audit records account and session activity asynchronously.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hackerwear/storefront/models"
	"github.com/hackerwear/storefront/repositories"
	"go.uber.org/zap"
)

// RequestMeta identifies the HTTP request that triggered an event
type RequestMeta struct {
	RequestID string
	IPAddress string
	UserAgent string
}

// AuditService persists auth events from a buffered channel drained by a
// fixed pool of workers. Recording never blocks the request path.
type AuditService struct {
	repo        repositories.AuthEventRepository
	logger      *zap.Logger
	eventChan   chan *models.AuthEvent
	workerCount int
	bufferSize  int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	started     bool
	stopped     bool
	mu          sync.RWMutex
}

// Config holds configuration for the AuditService
type Config struct {
	BufferSize  int // Size of the event buffer channel
	WorkerCount int // Number of concurrent workers
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  1000,
		WorkerCount: 2,
	}
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repositories.AuthEventRepository, logger *zap.Logger, config Config) *AuditService {
	ctx, cancel := context.WithCancel(context.Background())

	return &AuditService{
		repo:        repo,
		logger:      logger,
		eventChan:   make(chan *models.AuthEvent, config.BufferSize),
		workerCount: config.WorkerCount,
		bufferSize:  config.BufferSize,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start starts the background workers
func (s *AuditService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("audit service already started")
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("started audit service",
		zap.Int("worker_count", s.workerCount),
		zap.Int("buffer_size", s.bufferSize))

	return nil
}

// Stop stops accepting events and waits for queued ones to be written
func (s *AuditService) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return fmt.Errorf("audit service not running")
	}
	s.stopped = true
	close(s.eventChan)
	s.mu.Unlock()

	s.logger.Info("stopping audit service", zap.Int("pending_events", len(s.eventChan)))

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("audit service stopped gracefully")
		s.cancel()
		return nil
	case <-time.After(timeout):
		s.cancel()
		return fmt.Errorf("audit service stop timeout after %v", timeout)
	}
}

// LogEvent queues an event without blocking. A full buffer drops the event.
func (s *AuditService) LogEvent(event *models.AuthEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started || s.stopped {
		return fmt.Errorf("audit service not running")
	}

	select {
	case s.eventChan <- event:
		return nil
	default:
		s.logger.Warn("audit event channel full, dropping event",
			zap.String("action", string(event.Action)),
			zap.String("email", event.Email))
		return fmt.Errorf("audit event buffer full")
	}
}

// LogEventBlocking queues an event, waiting until there is room or ctx ends
func (s *AuditService) LogEventBlocking(ctx context.Context, event *models.AuthEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started || s.stopped {
		return fmt.Errorf("audit service not running")
	}

	select {
	case s.eventChan <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return fmt.Errorf("audit service stopped")
	}
}

func (s *AuditService) worker(id int) {
	defer s.wg.Done()

	s.logger.Debug("audit worker started", zap.Int("worker_id", id))

	for event := range s.eventChan {
		if err := s.processEvent(event); err != nil {
			s.logger.Error("failed to process audit event",
				zap.Int("worker_id", id),
				zap.Error(err),
				zap.String("action", string(event.Action)),
				zap.String("email", event.Email))
		}
	}

	s.logger.Debug("audit worker stopped", zap.Int("worker_id", id))
}

func (s *AuditService) processEvent(event *models.AuthEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.repo.Insert(ctx, event); err != nil {
		return fmt.Errorf("failed to insert auth event: %w", err)
	}

	return nil
}

// GetStats returns statistics about the audit service
func (s *AuditService) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		BufferSize:    s.bufferSize,
		PendingEvents: len(s.eventChan),
		WorkerCount:   s.workerCount,
		Started:       s.started && !s.stopped,
	}
}

// Stats represents audit service statistics
type Stats struct {
	BufferSize    int
	PendingEvents int
	WorkerCount   int
	Started       bool
}

// Convenience methods for logging common events

// LogSignup records a new account
func (s *AuditService) LogSignup(user *models.User, meta RequestMeta) error {
	event := models.NewAuthEvent(models.AuthActionSignup, user.Email).
		WithUser(user.ID).
		WithRequest(meta.RequestID, meta.IPAddress, meta.UserAgent).
		WithDetails(map[string]interface{}{"name": user.Name})

	return s.LogEvent(event)
}

// LogLoginSucceeded records a successful login and the session it opened
func (s *AuditService) LogLoginSucceeded(user *models.User, session *models.Session, meta RequestMeta) error {
	event := models.NewAuthEvent(models.AuthActionLoginSucceeded, user.Email).
		WithUser(user.ID).
		WithSession(session.ID).
		WithRequest(meta.RequestID, meta.IPAddress, meta.UserAgent).
		WithDetails(map[string]interface{}{"expires_at": session.ExpiresAt})

	return s.LogEvent(event)
}

// LogSessionIssued records the session a login opened
func (s *AuditService) LogSessionIssued(user *models.User, session *models.Session, meta RequestMeta) error {
	event := models.NewAuthEvent(models.AuthActionSessionIssued, user.Email).
		WithUser(user.ID).
		WithSession(session.ID).
		WithRequest(meta.RequestID, meta.IPAddress, meta.UserAgent).
		WithDetails(map[string]interface{}{
			"token_id":   session.TokenID.String(),
			"issued_at":  session.IssuedAt,
			"expires_at": session.ExpiresAt,
		})

	return s.LogEvent(event)
}

// LogLoginFailed records a rejected login. reason is kept server-side only.
func (s *AuditService) LogLoginFailed(email, reason string, meta RequestMeta) error {
	event := models.NewAuthEvent(models.AuthActionLoginFailed, email).
		WithRequest(meta.RequestID, meta.IPAddress, meta.UserAgent).
		WithDetails(map[string]interface{}{"reason": reason})

	return s.LogEvent(event)
}

// LogSessionRevoked records a logout. sessionID is nil when every session of
// the user was revoked at once.
func (s *AuditService) LogSessionRevoked(userID uuid.UUID, email string, sessionID *uuid.UUID, count int64, meta RequestMeta) error {
	event := models.NewAuthEvent(models.AuthActionSessionRevoked, email).
		WithUser(userID).
		WithRequest(meta.RequestID, meta.IPAddress, meta.UserAgent).
		WithDetails(map[string]interface{}{"count": count})
	if sessionID != nil {
		event.WithSession(*sessionID)
	}

	return s.LogEvent(event)
}

// LogOperatorRevoked records a session revoked from the command line. It
// waits for buffer room since the process exits right after.
func (s *AuditService) LogOperatorRevoked(ctx context.Context, session *models.Session, meta RequestMeta) error {
	event := models.NewAuthEvent(models.AuthActionSessionRevoked, "").
		WithUser(session.UserID).
		WithSession(session.ID).
		WithRequest(meta.RequestID, meta.IPAddress, meta.UserAgent).
		WithDetails(map[string]interface{}{"count": 1, "operator": true})

	return s.LogEventBlocking(ctx, event)
}
