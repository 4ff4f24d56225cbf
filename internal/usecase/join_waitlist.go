package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/workdora/waitlist/internal/entity"
	"github.com/workdora/waitlist/internal/infra/queue"
)

const (
	MsgLeadCreated  = "You're on the waitlist! Share your link to move up the list."
	MsgLeadExisting = "You're already on the waitlist. Here is your referral link again."
)

// referral code collisions are retried with a fresh token this many times
const maxReferralCodeAttempts = 3

// JoinWaitlistUseCase is the backend side of POST /api/waitlist.
type JoinWaitlistUseCase struct {
	Repo   entity.LeadRepositoryInterface
	Queue  QueueProducerInterface
	Logger *zap.Logger
}

func NewJoinWaitlistUseCase(repo entity.LeadRepositoryInterface, queue QueueProducerInterface, logger *zap.Logger) *JoinWaitlistUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JoinWaitlistUseCase{Repo: repo, Queue: queue, Logger: logger}
}

func (uc *JoinWaitlistUseCase) Execute(ctx context.Context, input JoinWaitlistInput) (*JoinWaitlistOutput, error) {
	if errs := ValidateJoinWaitlistInput(&input); len(errs) > 0 {
		return nil, &DomainError{Code: CodeValidation, Message: joinValidationErrors(errs)}
	}

	fields := input.Fields()
	fields.Email = strings.ToLower(fields.Email)
	fields.Phone = NormalizePhone(fields.Phone)
	fields.ReferredBy = uc.resolveReferrer(ctx, fields.ReferredBy)

	submission := entity.NewWaitlistSubmission(fields)
	lead, err := entity.NewLead(submission)
	if err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: err.Error(), Err: err}
	}

	var created bool
	tx := NewTransaction(uc.Logger)
	tx.AddOperation("upsert lead", func(ctx context.Context) error {
		created, err = uc.upsert(ctx, lead)
		return err
	})
	tx.AddCompensation("delete lead", func(ctx context.Context) error {
		if !created {
			return nil
		}
		return uc.Repo.Delete(ctx, lead.ID)
	})
	tx.AddOperation("publish lead.joined", func(ctx context.Context) error {
		if !created {
			return nil
		}
		return uc.Queue.PublishLeadJoined(ctx, leadJoinedPayload(lead))
	})

	if err := tx.Execute(ctx); err != nil {
		if created {
			return nil, &TechnicalError{Code: CodeQueue, Message: "could not register lead", Err: err}
		}
		return nil, &TechnicalError{Code: CodeDatabase, Message: "could not save lead", Err: err}
	}

	q := lead.Qualification()
	out := &JoinWaitlistOutput{
		LeadID:        lead.ID,
		Created:       created,
		ReferralCode:  lead.ReferralCode,
		Message:       MsgLeadExisting,
		Qualification: q,
	}
	if created {
		out.Message = MsgLeadCreated
	}

	uc.Logger.Info("lead joined waitlist",
		zap.String("lead_id", lead.ID),
		zap.Bool("created", created),
		zap.Bool("ideal_loi", q.IdealLoi),
		zap.Int("score", q.Score),
		zap.String("referred_by", lead.ReferredBy),
	)
	return out, nil
}

func (uc *JoinWaitlistUseCase) upsert(ctx context.Context, lead *entity.Lead) (bool, error) {
	for attempt := 1; ; attempt++ {
		created, err := uc.Repo.Upsert(ctx, lead)
		if !errors.Is(err, entity.ErrReferralCodeTaken) || attempt == maxReferralCodeAttempts {
			return created, err
		}
		lead.ReferralCode = entity.NewReferralCode(lead.Email)
	}
}

// resolveReferrer drops referral codes that do not belong to any lead.
func (uc *JoinWaitlistUseCase) resolveReferrer(ctx context.Context, code string) string {
	if code == "" {
		return ""
	}
	if _, err := uc.Repo.FindByReferralCode(ctx, code); err != nil {
		if !errors.Is(err, entity.ErrReferralNotFound) {
			uc.Logger.Warn("could not resolve referrer", zap.String("referred_by", code), zap.Error(err))
		}
		return ""
	}
	return code
}

func leadJoinedPayload(lead *entity.Lead) queue.LeadJoinedPayload {
	q := lead.Qualification()
	return queue.LeadJoinedPayload{
		LeadID:         lead.ID,
		Name:           lead.Name,
		Email:          lead.Email,
		Phone:          lead.Phone,
		JobTitle:       lead.JobTitle,
		Organization:   lead.Organization,
		ToolsUsed:      lead.ToolsUsed,
		DesiredChanges: lead.DesiredChanges,
		ReferralCode:   lead.ReferralCode,
		ReferredBy:     lead.ReferredBy,
		IdealLoi:       q.IdealLoi,
		Score:          q.Score,
		UTMSource:      lead.UTMSource,
		UTMCampaign:    lead.UTMCampaign,
	}
}
