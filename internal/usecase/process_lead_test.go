package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/workdora/waitlist/internal/entity"
	"github.com/workdora/waitlist/internal/infra/integration/kommo"
	"github.com/workdora/waitlist/internal/infra/queue"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newProcessLead(repo *MockLeadRepository, email *MockEmailService, wa *MockWhatsAppService, crm *MockCRMService) *ProcessLeadUseCase {
	uc := NewProcessLeadUseCase(repo, email, wa, crm, "https://workdora.com", nil)
	uc.Now = func() time.Time { return fixedNow }
	return uc
}

func TestProcessLead_RegularLead(t *testing.T) {
	repo, email, wa, crm := new(MockLeadRepository), new(MockEmailService), new(MockWhatsAppService), new(MockCRMService)

	link := "https://workdora.com/?ref=ana_abc123"
	email.On("SendWelcome", "ana@example.com", "Ana", link).Return(nil)
	repo.On("MarkEmailSent", mock.Anything, "lead-1", entity.EmailStageWelcomed, fixedNow).Return(nil)

	err := newProcessLead(repo, email, wa, crm).Handle(context.Background(), queue.LeadJoinedPayload{
		LeadID: "lead-1", Name: "Ana", Email: "ana@example.com", ReferralCode: "ana_abc123",
	})
	require.NoError(t, err)

	email.AssertExpectations(t)
	repo.AssertExpectations(t)
	wa.AssertNotCalled(t, "SendWelcome", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	crm.AssertNotCalled(t, "CreateLead", mock.Anything, mock.Anything)
	email.AssertNotCalled(t, "SendDesignPartnerInvite", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessLead_DesignPartner(t *testing.T) {
	repo, email, wa, crm := new(MockLeadRepository), new(MockEmailService), new(MockWhatsAppService), new(MockCRMService)

	email.On("SendWelcome", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	email.On("SendDesignPartnerInvite", "ana@example.com", "Ana", "Acme").Return(nil)
	wa.On("SendWelcome", mock.Anything, "+14155552671", "Ana", mock.Anything).Return(nil)
	crm.On("CreateLead", mock.Anything, mock.MatchedBy(func(in kommo.CreateLeadInput) bool {
		return in.Email == "ana@example.com" && len(in.Tags) == 1 && in.Tags[0] == kommo.TagDesignPartner
	})).Return(77, nil)
	repo.On("MarkEmailSent", mock.Anything, "lead-1", entity.EmailStageWelcomed, fixedNow).Return(nil)

	err := newProcessLead(repo, email, wa, crm).Handle(context.Background(), queue.LeadJoinedPayload{
		LeadID: "lead-1", Name: "Ana", Email: "ana@example.com", Phone: "+14155552671",
		Organization: "Acme", ReferralCode: "ana_abc123", IdealLoi: true, Score: 5,
	})
	require.NoError(t, err)

	email.AssertExpectations(t)
	wa.AssertExpectations(t)
	crm.AssertExpectations(t)
}

func TestProcessLead_OptionalChannelsAreBestEffort(t *testing.T) {
	repo, email, wa, crm := new(MockLeadRepository), new(MockEmailService), new(MockWhatsAppService), new(MockCRMService)

	email.On("SendWelcome", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	email.On("SendDesignPartnerInvite", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp 451"))
	crm.On("CreateLead", mock.Anything, mock.Anything).Return(0, kommo.ErrNotConfigured)
	repo.On("MarkEmailSent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(entity.ErrLeadNotFound)

	wa.On("SendWelcome", mock.Anything, "+5511999990000", "Ana", mock.Anything).Return(errors.New("template rejected"))

	uc := newProcessLead(repo, email, wa, crm)
	var reported []string
	uc.ReportError = func(service string) { reported = append(reported, service) }

	err := uc.Handle(context.Background(), queue.LeadJoinedPayload{
		LeadID: "lead-1", Name: "Ana", Email: "ana@example.com", Phone: "+5511999990000", IdealLoi: true,
	})
	assert.NoError(t, err)
	// an unconfigured CRM is not an error
	assert.Equal(t, []string{"whatsapp", "smtp"}, reported)
}

func TestProcessLead_WelcomeFailureIsReturned(t *testing.T) {
	repo, email := new(MockLeadRepository), new(MockEmailService)
	email.On("SendWelcome", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	err := newProcessLead(repo, email, nil, nil).Handle(context.Background(), queue.LeadJoinedPayload{
		LeadID: "lead-1", Name: "Ana", Email: "ana@example.com",
	})
	require.Error(t, err)
	repo.AssertNotCalled(t, "MarkEmailSent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
