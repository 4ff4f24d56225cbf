package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/workdora/waitlist/internal/entity"
	"github.com/workdora/waitlist/internal/infra/integration/kommo"
	"github.com/workdora/waitlist/internal/infra/queue"
)

// ProcessLeadUseCase handles lead.joined events: welcome messages for every
// lead, CRM and design partner outreach for ideal leads.
type ProcessLeadUseCase struct {
	Repo     entity.LeadRepositoryInterface
	Email    EmailService
	WhatsApp WhatsAppService
	CRM      CRMService
	SiteURL  string
	Logger   *zap.Logger
	Now      func() time.Time

	// ReportError counts a failed outbound call, labelled by service.
	ReportError func(service string)
}

func NewProcessLeadUseCase(
	repo entity.LeadRepositoryInterface,
	email EmailService,
	whatsapp WhatsAppService,
	crm CRMService,
	siteURL string,
	logger *zap.Logger,
) *ProcessLeadUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessLeadUseCase{
		Repo:        repo,
		Email:       email,
		WhatsApp:    whatsapp,
		CRM:         crm,
		SiteURL:     siteURL,
		Logger:      logger,
		Now:         time.Now,
		ReportError: func(string) {},
	}
}

// Handle implements queue.LeadHandler. Only a failed welcome email is
// returned as an error; the other channels are best effort.
func (uc *ProcessLeadUseCase) Handle(ctx context.Context, p queue.LeadJoinedPayload) error {
	log := uc.Logger.With(zap.String("lead_id", p.LeadID))
	link := entity.ReferralLink(uc.SiteURL, p.ReferralCode)

	if err := uc.Email.SendWelcome(p.Email, p.Name, link); err != nil {
		uc.ReportError("smtp")
		return fmt.Errorf("send welcome email: %w", err)
	}

	if p.Phone != "" && uc.WhatsApp != nil {
		if err := uc.WhatsApp.SendWelcome(ctx, p.Phone, p.Name, link); err != nil {
			uc.ReportError("whatsapp")
			log.Warn("whatsapp welcome failed", zap.Error(err))
		}
	}

	if p.IdealLoi {
		uc.designPartnerOutreach(ctx, log, p)
	}

	err := uc.Repo.MarkEmailSent(ctx, p.LeadID, entity.EmailStageWelcomed, uc.Now())
	if err != nil && !errors.Is(err, entity.ErrLeadNotFound) {
		log.Error("could not record welcome email", zap.Error(err))
	}
	return nil
}

func (uc *ProcessLeadUseCase) designPartnerOutreach(ctx context.Context, log *zap.Logger, p queue.LeadJoinedPayload) {
	if uc.CRM != nil {
		crmID, err := uc.CRM.CreateLead(ctx, kommo.CreateLeadInput{
			Name:         p.Name,
			Email:        p.Email,
			Phone:        p.Phone,
			Organization: p.Organization,
			JobTitle:     p.JobTitle,
			ToolsUsed:    p.ToolsUsed,
			Score:        p.Score,
			ReferralCode: p.ReferralCode,
			Tags:         []string{kommo.TagDesignPartner},
		})
		switch {
		case errors.Is(err, kommo.ErrNotConfigured):
			log.Debug("crm not configured, skipping")
		case err != nil:
			uc.ReportError("kommo")
			log.Warn("crm lead creation failed", zap.Error(err))
		default:
			log.Info("design partner pushed to crm", zap.Int("crm_lead_id", crmID))
		}
	}

	if err := uc.Email.SendDesignPartnerInvite(p.Email, p.Name, p.Organization); err != nil {
		uc.ReportError("smtp")
		log.Warn("design partner invite failed", zap.Error(err))
	}
}
