package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrLeadNotFound      = errors.New("lead not found")
	ErrReferralNotFound  = errors.New("referral code not found")
	ErrLeadEmailRequired = errors.New("email is required")
	ErrLeadNameRequired  = errors.New("name is required")
	// ErrReferralCodeTaken means a generated referral code collided with a stored one.
	ErrReferralCodeTaken = errors.New("referral code already taken")
)

const (
	LeadStatusWaitlisted = "WAITLISTED"
	LeadStatusInvited    = "INVITED"

	EmailStageNone     = 0
	EmailStageWelcomed = 1
	EmailStageReminded = 2
)

type Lead struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone,omitempty"`
	JobTitle        string     `json:"job_title,omitempty"`
	Organization    string     `json:"organization,omitempty"`
	ToolsUsed       []string   `json:"tools_used"`
	DesiredChanges  string     `json:"desired_changes,omitempty"`
	ReferralCode    string     `json:"referral_code"`
	ReferredBy      string     `json:"referred_by,omitempty"`
	UTMSource       string     `json:"utm_source,omitempty"`
	UTMCampaign     string     `json:"utm_campaign,omitempty"`
	Referrer        string     `json:"referrer,omitempty"`
	Status          string     `json:"status"`
	EmailStage      int        `json:"email_stage"`
	LastEmailSentAt *time.Time `json:"last_email_sent_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewLead turns a submission into a lead with a fresh id and referral code.
func NewLead(s WaitlistSubmission) (*Lead, error) {
	f := s.Fields()
	now := time.Now()
	lead := &Lead{
		ID:             uuid.New().String(),
		Email:          f.Email,
		Name:           f.Name,
		Phone:          f.Phone,
		JobTitle:       f.JobTitle,
		Organization:   f.Organization,
		ToolsUsed:      f.ToolsUsed,
		DesiredChanges: f.DesiredChanges,
		ReferralCode:   NewReferralCode(f.Email),
		ReferredBy:     f.ReferredBy,
		UTMSource:      f.UTMSource,
		UTMCampaign:    f.UTMCampaign,
		Referrer:       f.Referrer,
		Status:         LeadStatusWaitlisted,
		EmailStage:     EmailStageNone,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}
	return lead, nil
}

func (l *Lead) Validate() error {
	if l.Email == "" {
		return ErrLeadEmailRequired
	}
	if l.Name == "" {
		return ErrLeadNameRequired
	}
	return nil
}

func (l *Lead) Qualification() Qualification {
	return Qualify(l.ToolsUsed, l.Organization, l.DesiredChanges)
}

type LeadRepositoryInterface interface {
	// Upsert inserts the lead or, when the email is already on the list,
	// refreshes the optional fields and loads the stored row into lead.
	// created reports whether a new row was written.
	Upsert(ctx context.Context, lead *Lead) (created bool, err error)
	Delete(ctx context.Context, id string) error
	FindByReferralCode(ctx context.Context, code string) (*Lead, error)
	CountReferrals(ctx context.Context, code string) (int, error)
	FindDueForReminder(ctx context.Context, stage int, sentBefore time.Time, limit int) ([]*Lead, error)
	MarkEmailSent(ctx context.Context, id string, stage int, at time.Time) error
}
