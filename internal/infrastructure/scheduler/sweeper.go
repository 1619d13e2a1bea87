// Package scheduler runs the periodic background sweeps: expiring stock
// reservations past their deadline, failing stale pending payments and
// purging idle assistant conversations.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/quelyos/backend/internal/infrastructure/config"
)

// reservationSweepBatch bounds how many holds one sweep pass expires
const reservationSweepBatch = 100

// ReservationExpirer releases stock holds past their deadline
type ReservationExpirer interface {
	ExpireReservations(ctx context.Context, now time.Time, limit int) (int, error)
}

// PaymentExpirer fails pending payment transactions older than the cutoff
type PaymentExpirer interface {
	ExpirePending(ctx context.Context, olderThan time.Duration) (int, error)
}

// ConversationPurger deletes assistant conversations idle for too long
type ConversationPurger interface {
	PurgeIdleConversations(ctx context.Context, idleFor time.Duration) (int64, error)
}

// Sweeper owns the background sweep goroutines. Each sweep runs on its
// own interval; a failing pass is logged and retried on the next tick.
type Sweeper struct {
	config          config.SchedulerConfig
	pendingTimeout  time.Duration
	conversationTTL time.Duration

	reservations  ReservationExpirer
	payments      PaymentExpirer
	conversations ConversationPurger
	logger        *zap.Logger

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewSweeper creates the background sweeper
func NewSweeper(
	cfg config.SchedulerConfig,
	pendingTimeout time.Duration,
	conversationTTL time.Duration,
	reservations ReservationExpirer,
	payments PaymentExpirer,
	conversations ConversationPurger,
	logger *zap.Logger,
) *Sweeper {
	return &Sweeper{
		config:          cfg,
		pendingTimeout:  pendingTimeout,
		conversationTTL: conversationTTL,
		reservations:    reservations,
		payments:        payments,
		conversations:   conversations,
		logger:          logger,
	}
}

// Start launches the sweep goroutines. Starting twice is a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning || !s.config.Enabled {
		return
	}
	s.isRunning = true

	ctx, s.cancel = context.WithCancel(ctx)

	s.launch(ctx, s.config.ReservationSweepInterval, s.sweepReservations)
	s.launch(ctx, s.config.PaymentSweepInterval, s.sweepPayments)
	s.launch(ctx, s.config.ConversationCleanupInterval, s.sweepConversations)

	s.logger.Info("background sweeper started",
		zap.Duration("reservation_interval", s.config.ReservationSweepInterval),
		zap.Duration("payment_interval", s.config.PaymentSweepInterval),
		zap.Duration("conversation_interval", s.config.ConversationCleanupInterval),
	)
}

// Stop cancels the sweep goroutines and waits for in-flight passes
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.isRunning = false
	s.logger.Info("background sweeper stopped")
}

func (s *Sweeper) launch(ctx context.Context, interval time.Duration, pass func(context.Context)) {
	if interval <= 0 {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pass(ctx)
			}
		}
	}()
}

func (s *Sweeper) sweepReservations(ctx context.Context) {
	expired, err := s.reservations.ExpireReservations(ctx, time.Now(), reservationSweepBatch)
	if err != nil {
		s.logger.Error("reservation sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		s.logger.Info("expired stock reservations", zap.Int("count", expired))
	}
}

func (s *Sweeper) sweepPayments(ctx context.Context) {
	expired, err := s.payments.ExpirePending(ctx, s.pendingTimeout)
	if err != nil {
		s.logger.Error("payment sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		s.logger.Info("expired pending payments", zap.Int("count", expired))
	}
}

func (s *Sweeper) sweepConversations(ctx context.Context) {
	purged, err := s.conversations.PurgeIdleConversations(ctx, s.conversationTTL)
	if err != nil {
		s.logger.Error("conversation cleanup failed", zap.Error(err))
		return
	}
	if purged > 0 {
		s.logger.Info("purged idle conversations", zap.Int64("count", purged))
	}
}
