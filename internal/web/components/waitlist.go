package components

import (
	"slices"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/workdora/waitlist/internal/entity"
)

// FormState is what the waitlist form renders: the visitor's previous
// answers and, after a failed submission, the message to show.
type FormState struct {
	Values entity.SubmissionFields
	Error  string
}

type ConfirmationState struct {
	Message       string
	ReferralCode  string
	ShareLink     string
	Referrals     int
	DesignPartner bool
}

func WaitlistForm(s FormState) g.Node {
	v := s.Values
	return Form(
		ID("waitlist-form"),
		Method("post"),
		Action("/waitlist"),
		Class("waitlist-form"),
		H2(g.Text("Join the waitlist")),
		g.If(s.Error != "", Div(Class("alert alert-error"), g.Attr("role", "alert"), g.Text(s.Error))),

		textField("name", "Name", "text", v.Name, true, "name"),
		textField("email", "Work email", "email", v.Email, true, "email"),
		textField("phone", "Phone (optional, for WhatsApp updates)", "tel", v.Phone, false, "tel"),
		textField("jobTitle", "Job title", "text", v.JobTitle, false, "organization-title"),
		textField("organization", "Company", "text", v.Organization, false, "organization"),

		g.El("fieldset",
			Class("tools"),
			g.El("legend", g.Text("Which tools does your team use?")),
			g.Group(g.Map(entity.ToolCatalog, func(tool string) g.Node {
				return Label(
					Class("checkbox"),
					Input(
						Type("checkbox"),
						Name("toolsUsed"),
						Value(tool),
						g.If(slices.Contains(v.ToolsUsed, tool), Checked()),
					),
					g.Text(tool),
				)
			})),
		),

		Label(
			For("desiredChanges"),
			g.Text("What would you change about how your team works today?"),
		),
		Textarea(
			ID("desiredChanges"),
			Name("desiredChanges"),
			g.Attr("rows", "4"),
			g.Attr("maxlength", "4000"),
			g.Text(v.DesiredChanges),
		),

		hidden("utmSource", v.UTMSource),
		hidden("utmCampaign", v.UTMCampaign),
		hidden("referrer", v.Referrer),
		hidden("referredBy", v.ReferredBy),

		Button(Type("submit"), Class("btn btn-primary"), g.Attr("data-loading-text", "Joining..."), g.Text("Join Waitlist")),
	)
}

func textField(name, label, typ, value string, required bool, autocomplete string) g.Node {
	return Div(
		Class("field"),
		Label(For(name), g.Text(label)),
		Input(
			ID(name),
			Name(name),
			Type(typ),
			Value(value),
			g.Attr("autocomplete", autocomplete),
			g.If(required, Required()),
		),
	)
}

func hidden(name, value string) g.Node {
	if value == "" {
		return nil
	}
	return Input(Type("hidden"), Name(name), Value(value))
}

func Confirmation(s ConfirmationState) g.Node {
	return Div(
		ID("waitlist-confirmation"),
		Class("confirmation"),
		H2(g.Text("You're on the list!")),
		g.If(s.Message != "", P(Class("lead"), g.Text(s.Message))),
		P(g.Text("Share your personal link. Every teammate who joins moves you up the waitlist.")),
		Div(
			Class("share"),
			Input(Type("text"), g.Attr("readonly"), Value(s.ShareLink), g.Attr("aria-label", "Your referral link")),
		),
		g.If(s.Referrals > 0, P(Class("referrals"), g.Textf("%d people joined through your link.", s.Referrals))),
		g.If(s.DesignPartner, Div(
			Class("callout design-partner"),
			H3(g.Text("You could be a design partner")),
			P(g.Text("Your tool stack matches what we are building first. Watch your inbox for an invitation to our paid pilot.")),
		)),
	)
}
