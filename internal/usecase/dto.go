package usecase

import "github.com/workdora/waitlist/internal/entity"

// JoinWaitlistInput is the POST /api/waitlist body. IdealLoi and Score are
// accepted for compatibility but recomputed from the answers.
type JoinWaitlistInput struct {
	Name           string   `json:"name" validate:"required,max=200"`
	Email          string   `json:"email" validate:"required,email,max=254"`
	Phone          string   `json:"phone,omitempty" validate:"omitempty,max=32,phone"`
	JobTitle       string   `json:"jobTitle,omitempty" validate:"max=200"`
	Organization   string   `json:"organization,omitempty" validate:"max=200"`
	ToolsUsed      []string `json:"toolsUsed" validate:"max=20,dive,tool"`
	DesiredChanges string   `json:"desiredChanges,omitempty" validate:"max=4000"`
	IdealLoi       bool     `json:"idealLoi"`
	Score          int      `json:"score"`
	UTMSource      string   `json:"utmSource,omitempty" validate:"max=200"`
	UTMCampaign    string   `json:"utmCampaign,omitempty" validate:"max=200"`
	Referrer       string   `json:"referrer,omitempty" validate:"max=2048"`
	ReferredBy     string   `json:"referredBy,omitempty" validate:"omitempty,max=128,referral"`
	GithubStars    int      `json:"githubStars"`
}

func (in JoinWaitlistInput) Fields() entity.SubmissionFields {
	return entity.SubmissionFields{
		Name:           in.Name,
		Email:          in.Email,
		Phone:          in.Phone,
		JobTitle:       in.JobTitle,
		Organization:   in.Organization,
		ToolsUsed:      in.ToolsUsed,
		DesiredChanges: in.DesiredChanges,
		UTMSource:      in.UTMSource,
		UTMCampaign:    in.UTMCampaign,
		Referrer:       in.Referrer,
		ReferredBy:     in.ReferredBy,
	}
}

type JoinWaitlistOutput struct {
	LeadID        string
	Created       bool
	ReferralCode  string
	Message       string
	Qualification entity.Qualification
}

type ReferralStatsOutput struct {
	ReferralCode string `json:"referralCode"`
	Referrals    int    `json:"referrals"`
}

type SubmitWaitlistInput struct {
	Submission entity.WaitlistSubmission
	// Referrals is the visitor's persisted referral slot.
	Referrals ReferralStore
}

type SubmitWaitlistOutput struct {
	State         SubmissionState
	ReferralCode  string
	Message       string
	Qualification entity.Qualification
	Attempts      int
}
