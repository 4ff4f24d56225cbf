package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ReminderSender sends one batch of referral reminders.
type ReminderSender interface {
	Execute(ctx context.Context) (int, error)
}

type ReferralReminderWorker struct {
	sender       ReminderSender
	tickInterval time.Duration
	logger       *zap.Logger
}

func NewReferralReminderWorker(sender ReminderSender, tickInterval time.Duration, logger *zap.Logger) *ReferralReminderWorker {
	if tickInterval <= 0 {
		tickInterval = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferralReminderWorker{
		sender:       sender,
		tickInterval: tickInterval,
		logger:       logger,
	}
}

// Start runs a batch immediately and then on every tick until ctx is done.
func (w *ReferralReminderWorker) Start(ctx context.Context) {
	w.logger.Info("referral reminder worker started", zap.Duration("interval", w.tickInterval))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("referral reminder worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *ReferralReminderWorker) runOnce(ctx context.Context) {
	sent, err := w.sender.Execute(ctx)
	if err != nil {
		w.logger.Error("referral reminder batch failed", zap.Error(err))
		return
	}
	if sent > 0 {
		w.logger.Info("referral reminders sent", zap.Int("count", sent))
	}
}
