// Package audit persists routing-decision records asynchronously so the
// hot routing path never blocks on the database.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/polyglot-hub/llm-router/models"
	"github.com/polyglot-hub/llm-router/repositories"
	"go.uber.org/zap"
)

// Config holds configuration for the audit service
type Config struct {
	BufferSize  int // Size of the event buffer channel
	WorkerCount int // Number of concurrent workers
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  4096,
		WorkerCount: 3,
	}
}

// Service writes routing decisions through a buffered channel drained by a
// small worker pool. When the buffer is full, decisions are dropped with a
// warning rather than blocking the router.
type Service struct {
	repo      repositories.DecisionRepository
	logger    *zap.Logger
	decisions chan *models.RoutingDecision
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc

	mu      sync.Mutex
	started bool
}

// NewService creates a new audit service
func NewService(repo repositories.DecisionRepository, logger *zap.Logger, cfg Config) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		repo:      repo,
		logger:    logger,
		decisions: make(chan *models.RoutingDecision, cfg.BufferSize),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the background workers
func (s *Service) Start(workerCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("audit service already started")
	}
	for i := 0; i < workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
	s.started = true
	s.logger.Info("audit service started", zap.Int("workers", workerCount))
	return nil
}

// Record queues a decision for persistence. Non-blocking: a full buffer
// drops the record, and a service that is not running drops it too. The
// mutex is held across the send so Record can never race Stop closing the
// channel; the send itself never blocks.
func (s *Service) Record(decision *models.RoutingDecision) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.logger.Warn("audit service not running, dropping decision",
			zap.String("id", decision.ID.String()))
		return
	}

	select {
	case s.decisions <- decision:
	default:
		s.logger.Warn("audit buffer full, dropping decision",
			zap.String("id", decision.ID.String()))
	}
}

// Stop drains pending decisions and shuts the workers down, waiting at
// most the given timeout.
func (s *Service) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.mu.Unlock()

	close(s.decisions)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		s.logger.Info("audit service stopped")
		return nil
	case <-time.After(timeout):
		s.cancel()
		return fmt.Errorf("audit service stop timed out after %s", timeout)
	}
}

func (s *Service) worker(id int) {
	defer s.wg.Done()

	for decision := range s.decisions {
		ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
		if err := s.repo.Insert(ctx, decision); err != nil {
			s.logger.Error("failed to persist routing decision",
				zap.Int("worker", id),
				zap.String("id", decision.ID.String()),
				zap.Error(err))
		}
		cancel()
	}
}
