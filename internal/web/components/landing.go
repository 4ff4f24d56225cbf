package components

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type Feature struct {
	Title       string
	Description string
}

type Question struct {
	Question string
	Answer   string
}

var features = []Feature{
	{"One inbox for every tool", "Tasks from ClickUp, Asana and Jira land next to the Slack threads that created them."},
	{"Time tracking that fills itself", "Workdora logs time against the task you are actually working on and syncs it to Harvest."},
	{"Status updates without meetings", "A daily digest tells your team what moved, what is blocked and who needs help."},
}

var faq = []Question{
	{"When does Workdora launch?", "We are onboarding teams from the waitlist in small batches. Sharing your referral link moves you up the list."},
	{"Which tools do you integrate with?", "Slack, Asana and Harvest are first. ClickUp, Notion, Trello, Microsoft Teams, Jira, Monday.com and Linear follow."},
	{"What is a design partner?", "Teams whose stack matches our first integrations can join a paid pilot with early access and a direct line to the founders."},
	{"Is my data safe?", "We only store what you tell us in the signup form and never sell it. See the privacy policy for details."},
}

// Landing is the home page. form is either the waitlist form or the
// confirmation shown once the visitor has joined.
func Landing(form g.Node) g.Node {
	return Layout(
		PageConfig{Path: "/"},
		Hero(),
		FeatureGrid(),
		Section(ID("waitlist"), Class("section waitlist"), form),
		FAQ(),
	)
}

func Hero() g.Node {
	return Section(
		Class("hero"),
		H1(g.Text("Stop switching tabs. Start finishing work.")),
		P(Class("lead"), g.Text("Workdora connects the tools your team already uses into one calm workspace.")),
		A(Href("#waitlist"), Class("btn btn-primary btn-lg"), g.Text("Join the waitlist")),
	)
}

func FeatureGrid() g.Node {
	return Section(
		ID("features"),
		Class("section features"),
		H2(g.Text("Why teams are waiting for Workdora")),
		Div(
			Class("grid"),
			g.Group(g.Map(features, func(f Feature) g.Node {
				return Div(
					Class("card"),
					H3(g.Text(f.Title)),
					P(g.Text(f.Description)),
				)
			})),
		),
	)
}

func FAQ() g.Node {
	return Section(
		ID("faq"),
		Class("section faq"),
		H2(g.Text("Frequently asked questions")),
		g.Group(g.Map(faq, func(q Question) g.Node {
			return g.El("details",
				g.El("summary", g.Text(q.Question)),
				P(g.Text(q.Answer)),
			)
		})),
	)
}
