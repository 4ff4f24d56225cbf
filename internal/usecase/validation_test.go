package usecase

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/workdora/waitlist/internal/entity"
)

func TestValidateJoinWaitlistInput(t *testing.T) {
	cases := []struct {
		name   string
		input  JoinWaitlistInput
		fields []string
	}{
		{"minimal", JoinWaitlistInput{Name: "Ana", Email: "ana@example.com"}, nil},
		{"blank name after trim", JoinWaitlistInput{Name: "   ", Email: "ana@example.com"}, []string{"name"}},
		{"bad email", JoinWaitlistInput{Name: "Ana", Email: "ana@"}, []string{"email"}},
		{"unknown tool", JoinWaitlistInput{Name: "Ana", Email: "ana@example.com", ToolsUsed: []string{entity.ToolSlack, "Excel"}}, []string{"toolsUsed[1]"}},
		{"bad phone", JoinWaitlistInput{Name: "Ana", Email: "ana@example.com", Phone: "call me"}, []string{"phone"}},
		{"bad referral is dropped", JoinWaitlistInput{Name: "Ana", Email: "ana@example.com", ReferredBy: "nounderscore"}, nil},
		{"long attribution is cut", JoinWaitlistInput{Name: "Ana", Email: "ana@example.com", Referrer: strings.Repeat("r", 3000), UTMCampaign: strings.Repeat("c", 201)}, nil},
		{"good referral", JoinWaitlistInput{Name: "Ana", Email: "ana@example.com", ReferredBy: "bob.smith_a1b2c3"}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := ValidateJoinWaitlistInput(&tc.input)
			var got []string
			for _, e := range errs {
				got = append(got, e.Field)
			}
			assert.Equal(t, tc.fields, got)
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+14155552671", NormalizePhone("(415) 555-2671"))
	assert.Equal(t, "+5511987654321", NormalizePhone("+55 11 98765-4321"))
	assert.Equal(t, "not a phone", NormalizePhone(" not a phone "))
	assert.Equal(t, "", NormalizePhone(""))
}

func TestValidateJoinWaitlistInputCleansAttribution(t *testing.T) {
	input := JoinWaitlistInput{
		Name:        "Ana",
		Email:       "ana@example.com",
		ReferredBy:  "bogus",
		UTMSource:   strings.Repeat("s", 250),
		UTMCampaign: " launch ",
		Referrer:    strings.Repeat("é", 2100),
	}

	assert.Empty(t, ValidateJoinWaitlistInput(&input))
	assert.Empty(t, input.ReferredBy)
	assert.Len(t, input.UTMSource, 200)
	assert.Equal(t, "launch", input.UTMCampaign)
	assert.Equal(t, 2048, utf8.RuneCountInString(input.Referrer))
}

func TestCleanAttributionKeepsValidReferral(t *testing.T) {
	f := CleanAttribution(entity.SubmissionFields{ReferredBy: " bob_abc123 ", Referrer: "https://news.example.com"})
	assert.Equal(t, "bob_abc123", f.ReferredBy)
	assert.Equal(t, "https://news.example.com", f.Referrer)
}

func TestValidationMessagesUseFormLabels(t *testing.T) {
	input := JoinWaitlistInput{Email: "ana@", ToolsUsed: []string{"Excel"}}
	msg := joinValidationErrors(ValidateJoinWaitlistInput(&input))

	assert.Equal(t, "Please check your details: Name is required, Email must be a valid email address, Tools is not a known tool.", msg)
}
