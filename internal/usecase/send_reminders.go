package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/workdora/waitlist/internal/entity"
)

const (
	DefaultReminderDelay     = 72 * time.Hour
	DefaultReminderBatchSize = 50
)

// SendRemindersUseCase nudges welcomed leads to share their referral link.
type SendRemindersUseCase struct {
	Repo      entity.LeadRepositoryInterface
	Email     EmailService
	SiteURL   string
	Delay     time.Duration
	BatchSize int
	Logger    *zap.Logger
	Now       func() time.Time
}

func NewSendRemindersUseCase(repo entity.LeadRepositoryInterface, email EmailService, siteURL string, delay time.Duration, logger *zap.Logger) *SendRemindersUseCase {
	if delay <= 0 {
		delay = DefaultReminderDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SendRemindersUseCase{
		Repo:      repo,
		Email:     email,
		SiteURL:   siteURL,
		Delay:     delay,
		BatchSize: DefaultReminderBatchSize,
		Logger:    logger,
		Now:       time.Now,
	}
}

// Execute sends one batch and returns how many reminders went out. A failure
// for one lead does not stop the batch.
func (uc *SendRemindersUseCase) Execute(ctx context.Context) (int, error) {
	now := uc.Now()
	due, err := uc.Repo.FindDueForReminder(ctx, entity.EmailStageWelcomed, now.Add(-uc.Delay), uc.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("load leads due for reminder: %w", err)
	}

	sent := 0
	for _, lead := range due {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}

		log := uc.Logger.With(zap.String("lead_id", lead.ID))

		referrals, err := uc.Repo.CountReferrals(ctx, lead.ReferralCode)
		if err != nil {
			log.Warn("could not count referrals", zap.Error(err))
			continue
		}

		link := entity.ReferralLink(uc.SiteURL, lead.ReferralCode)
		if err := uc.Email.SendReferralReminder(lead.Email, lead.Name, link, referrals); err != nil {
			log.Warn("reminder email failed", zap.Error(err))
			continue
		}

		if err := uc.Repo.MarkEmailSent(ctx, lead.ID, entity.EmailStageReminded, now); err != nil {
			log.Error("could not record reminder", zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}
