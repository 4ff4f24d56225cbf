package entity

import (
	"encoding/json"
	"strings"
)

const (
	ToolClickUp        = "ClickUp"
	ToolNotion         = "Notion"
	ToolAsana          = "Asana"
	ToolTrello         = "Trello"
	ToolSlack          = "Slack"
	ToolMicrosoftTeams = "Microsoft Teams"
	ToolJira           = "Jira"
	ToolMonday         = "Monday.com"
	ToolLinear         = "Linear"
	ToolHarvest        = "Harvest"
	ToolOther          = "Other"
)

// ToolCatalog is the list of tools offered on the signup form, in display order.
var ToolCatalog = []string{
	ToolClickUp,
	ToolNotion,
	ToolAsana,
	ToolTrello,
	ToolSlack,
	ToolMicrosoftTeams,
	ToolJira,
	ToolMonday,
	ToolLinear,
	ToolHarvest,
	ToolOther,
}

// GithubStars is sent with every submission for campaign attribution.
const GithubStars = 0

// IsKnownTool reports whether tool belongs to ToolCatalog.
func IsKnownTool(tool string) bool {
	for _, t := range ToolCatalog {
		if t == tool {
			return true
		}
	}
	return false
}

// NormalizeTools drops unknown and repeated values and returns the rest in
// catalog order, so two selections with the same members compare equal.
func NormalizeTools(tools []string) []string {
	selected := make(map[string]struct{}, len(tools))
	for _, t := range tools {
		selected[strings.TrimSpace(t)] = struct{}{}
	}
	out := make([]string, 0, len(selected))
	for _, t := range ToolCatalog {
		if _, ok := selected[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// SubmissionFields is what a visitor typed into the waitlist form plus the
// attribution captured from the page.
type SubmissionFields struct {
	Name           string
	Email          string
	Phone          string
	JobTitle       string
	Organization   string
	ToolsUsed      []string
	DesiredChanges string
	UTMSource      string
	UTMCampaign    string
	Referrer       string
	ReferredBy     string
}

// WaitlistSubmission is built once per form submit and discarded after the
// network call resolves. Qualification is computed from the fields on demand.
type WaitlistSubmission struct {
	fields SubmissionFields
}

func NewWaitlistSubmission(f SubmissionFields) WaitlistSubmission {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.JobTitle = strings.TrimSpace(f.JobTitle)
	f.Organization = strings.TrimSpace(f.Organization)
	f.DesiredChanges = strings.TrimSpace(f.DesiredChanges)
	f.ToolsUsed = NormalizeTools(f.ToolsUsed)
	return WaitlistSubmission{fields: f}
}

func (s WaitlistSubmission) Fields() SubmissionFields {
	f := s.fields
	f.ToolsUsed = append([]string(nil), s.fields.ToolsUsed...)
	return f
}

func (s WaitlistSubmission) Email() string { return s.fields.Email }

func (s WaitlistSubmission) Qualification() Qualification {
	return Qualify(s.fields.ToolsUsed, s.fields.Organization, s.fields.DesiredChanges)
}

type submissionJSON struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone,omitempty"`
	JobTitle       string   `json:"jobTitle,omitempty"`
	Organization   string   `json:"organization,omitempty"`
	ToolsUsed      []string `json:"toolsUsed"`
	DesiredChanges string   `json:"desiredChanges,omitempty"`
	IdealLoi       bool     `json:"idealLoi"`
	Score          int      `json:"score"`
	UTMSource      string   `json:"utmSource,omitempty"`
	UTMCampaign    string   `json:"utmCampaign,omitempty"`
	Referrer       string   `json:"referrer,omitempty"`
	ReferredBy     string   `json:"referredBy,omitempty"`
	GithubStars    int      `json:"githubStars"`
}

// MarshalJSON writes the request body expected by POST /api/waitlist.
func (s WaitlistSubmission) MarshalJSON() ([]byte, error) {
	q := s.Qualification()
	f := s.fields
	tools := f.ToolsUsed
	if tools == nil {
		tools = []string{}
	}
	return json.Marshal(submissionJSON{
		Name:           f.Name,
		Email:          f.Email,
		Phone:          f.Phone,
		JobTitle:       f.JobTitle,
		Organization:   f.Organization,
		ToolsUsed:      tools,
		DesiredChanges: f.DesiredChanges,
		IdealLoi:       q.IdealLoi,
		Score:          q.Score,
		UTMSource:      f.UTMSource,
		UTMCampaign:    f.UTMCampaign,
		Referrer:       f.Referrer,
		ReferredBy:     f.ReferredBy,
		GithubStars:    GithubStars,
	})
}
