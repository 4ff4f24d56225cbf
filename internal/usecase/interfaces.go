package usecase

import (
	"context"
	"time"

	"github.com/workdora/waitlist/internal/entity"
	"github.com/workdora/waitlist/internal/infra/integration/kommo"
	"github.com/workdora/waitlist/internal/infra/integration/waitlistapi"
	"github.com/workdora/waitlist/internal/infra/queue"
)

// WaitlistAPI is the backend the marketing site submits to.
type WaitlistAPI interface {
	Join(ctx context.Context, s entity.WaitlistSubmission) (*waitlistapi.JoinResult, error)
	ReferralCount(ctx context.Context, code string) (int, error)
}

// ReferralStore is the visitor's single referral slot.
type ReferralStore interface {
	Get() (string, bool)
	Save(code string) error
}

// SubmissionGuard keeps two submissions for the same key from running at once.
type SubmissionGuard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

type QueueProducerInterface interface {
	PublishLeadJoined(ctx context.Context, payload queue.LeadJoinedPayload) error
}

type EmailService interface {
	SendWelcome(to, name, referralLink string) error
	SendDesignPartnerInvite(to, name, organization string) error
	SendReferralReminder(to, name, referralLink string, referrals int) error
}

type WhatsAppService interface {
	SendWelcome(ctx context.Context, phone, name, referralLink string) error
}

type CRMService interface {
	CreateLead(ctx context.Context, input kommo.CreateLeadInput) (int, error)
}
