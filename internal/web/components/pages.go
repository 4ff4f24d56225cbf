package components

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

func AboutPage() g.Node {
	return Layout(
		PageConfig{Title: "About " + ProductName, Path: "/about"},
		Section(
			Class("section prose"),
			H1(g.Text("About Workdora")),
			P(g.Text("Workdora started with a simple observation: teams spend more time moving information between tools than doing the work those tools track.")),
			P(g.Text("We are a small team building one workspace that keeps tasks, conversations and time in sync, starting with Slack, Asana and Harvest.")),
			P(
				g.Text("Want early access? "),
				A(Href("/#waitlist"), g.Text("Join the waitlist")),
				g.Text("."),
			),
		),
	)
}

func PrivacyPage() g.Node {
	return legalPage("Privacy Policy", "/privacy",
		"We collect the details you enter in the waitlist form: name, email, optional phone, job title, company, the tools you use and what you would like to change.",
		"We use them to contact you about Workdora, to decide who to invite first and to count referrals. We do not sell personal data.",
		"A single cookie remembers your referral code so that you see your share link when you come back.",
		"To have your data deleted, reply to any email from us.",
	)
}

func TermsPage() g.Node {
	return legalPage("Terms of Service", "/terms",
		"Joining the waitlist does not guarantee access to Workdora or any particular launch date.",
		"Referral positions are a courtesy and may be adjusted to prevent abuse.",
		"Design partner pilots are governed by a separate agreement.",
	)
}

func NotFoundPage() g.Node {
	return Layout(
		PageConfig{Title: "Page not found"},
		Section(
			Class("section prose"),
			H1(g.Text("Page not found")),
			P(A(Href("/"), g.Text("Back to the home page"))),
		),
	)
}

func legalPage(title, path string, paragraphs ...string) g.Node {
	return Layout(
		PageConfig{Title: title + " - " + ProductName, Path: path},
		Section(
			Class("section prose"),
			H1(g.Text(title)),
			g.Group(g.Map(paragraphs, func(p string) g.Node { return P(g.Text(p)) })),
		),
	)
}
