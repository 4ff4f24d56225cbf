package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"

	"github.com/workdora/waitlist/internal/entity"
)

// DefaultPhoneRegion is used to parse numbers typed without a country code.
const DefaultPhoneRegion = "US"

var referralCodePattern = regexp.MustCompile(`^[^\s/?#]+_[a-z0-9]{6}$`)

// Limits for the attribution fields captured from the page. They match the
// max tags on JoinWaitlistInput.
const (
	maxUTMLength        = 200
	maxReferrerLength   = 2048
	maxReferralCodeSize = 128
)

// fieldLabels names the visitor-editable fields in messages.
var fieldLabels = map[string]string{
	"name":           "Name",
	"email":          "Email",
	"phone":          "Phone",
	"jobTitle":       "Job title",
	"organization":   "Company",
	"toolsUsed":      "Tools",
	"desiredChanges": "What you would change",
}

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("tool", func(fl validator.FieldLevel) bool {
		return entity.IsKnownTool(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		_, err := phonenumbers.Parse(fl.Field().String(), DefaultPhoneRegion)
		return err == nil
	})
	_ = v.RegisterValidation("referral", func(fl validator.FieldLevel) bool {
		return referralCodePattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidateJoinWaitlistInput trims the text fields in place and checks them.
func ValidateJoinWaitlistInput(input *JoinWaitlistInput) []ValidationError {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.JobTitle = strings.TrimSpace(input.JobTitle)
	input.Organization = strings.TrimSpace(input.Organization)
	input.DesiredChanges = strings.TrimSpace(input.DesiredChanges)
	input.ReferredBy, input.UTMSource, input.UTMCampaign, input.Referrer =
		cleanAttribution(input.ReferredBy, input.UTMSource, input.UTMCampaign, input.Referrer)

	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Field: "body", Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fieldName(fe), Message: messageFor(fe)})
	}
	return out
}

// ValidateSubmission checks form fields before they leave the site.
func ValidateSubmission(f entity.SubmissionFields) []ValidationError {
	input := JoinWaitlistInput{
		Name:           f.Name,
		Email:          f.Email,
		Phone:          f.Phone,
		JobTitle:       f.JobTitle,
		Organization:   f.Organization,
		ToolsUsed:      f.ToolsUsed,
		DesiredChanges: f.DesiredChanges,
		UTMSource:      f.UTMSource,
		UTMCampaign:    f.UTMCampaign,
		Referrer:       f.Referrer,
		ReferredBy:     f.ReferredBy,
	}
	return ValidateJoinWaitlistInput(&input)
}

// CleanAttribution drops a referral code that cannot be one and cuts the
// other page-captured fields to their limits. The visitor never sees these
// fields, so they must not fail a signup.
func CleanAttribution(f entity.SubmissionFields) entity.SubmissionFields {
	f.ReferredBy, f.UTMSource, f.UTMCampaign, f.Referrer =
		cleanAttribution(f.ReferredBy, f.UTMSource, f.UTMCampaign, f.Referrer)
	return f
}

func cleanAttribution(referredBy, utmSource, utmCampaign, referrer string) (string, string, string, string) {
	referredBy = strings.TrimSpace(referredBy)
	if len(referredBy) > maxReferralCodeSize || !referralCodePattern.MatchString(referredBy) {
		referredBy = ""
	}
	return referredBy,
		truncateRunes(strings.TrimSpace(utmSource), maxUTMLength),
		truncateRunes(strings.TrimSpace(utmCampaign), maxUTMLength),
		truncateRunes(strings.TrimSpace(referrer), maxReferrerLength)
}

// truncateRunes counts like the validator's max tag does: in runes.
func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "is too long"
	case "tool":
		return "is not a known tool"
	case "phone":
		return "must be a valid phone number"
	case "referral":
		return "is not a valid referral code"
	default:
		return "is invalid"
	}
}

// joinValidationErrors renders errors as one sentence for the visitor.
func joinValidationErrors(errs []ValidationError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fieldLabel(e.Field)+" "+e.Message)
	}
	return "Please check your details: " + strings.Join(parts, ", ") + "."
}

// fieldLabel maps "toolsUsed[1]" and friends to the form's wording.
func fieldLabel(field string) string {
	name, _, _ := strings.Cut(field, "[")
	if label, ok := fieldLabels[name]; ok {
		return label
	}
	return field
}

// NormalizePhone formats phone as E.164 when it is a valid number and
// returns the trimmed input otherwise.
func NormalizePhone(phone string) string {
	trimmed := strings.TrimSpace(phone)
	if trimmed == "" {
		return trimmed
	}
	number, err := phonenumbers.Parse(trimmed, DefaultPhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return trimmed
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}
