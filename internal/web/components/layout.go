package components

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const ProductName = "Workdora"

type PageConfig struct {
	Title       string
	Description string
	// Path highlights the matching navigation link.
	Path string
}

func Layout(config PageConfig, content ...g.Node) g.Node {
	if config.Title == "" {
		config.Title = ProductName + " - One place for your team's work"
	}
	if config.Description == "" {
		config.Description = "Workdora brings your tasks, chat and time tracking together so your team stops switching tabs."
	}

	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				TitleEl(g.Text(config.Title)),
				Meta(Name("description"), Content(config.Description)),
				Meta(g.Attr("property", "og:title"), Content(config.Title)),
				Meta(g.Attr("property", "og:description"), Content(config.Description)),
				Meta(g.Attr("property", "og:type"), Content("website")),
				Link(Rel("icon"), Href("/static/favicon.svg")),
				Link(Rel("stylesheet"), Href("/static/styles.css")),
			),
			Body(
				Topbar(config.Path),
				Main(g.Group(content)),
				PageFooter(),
				Script(Src("/static/js/waitlist.js"), g.Attr("defer")),
			),
		),
	})
}

func Topbar(path string) g.Node {
	return Nav(
		Class("topbar"),
		A(Href("/"), Class("logo"), g.Text(ProductName)),
		Div(
			Class("topbar-links"),
			navLink("/about", "About", path),
			A(Href("/#waitlist"), Class("btn btn-primary"), g.Text("Join Waitlist")),
		),
	)
}

func navLink(href, label, current string) g.Node {
	return A(
		Href(href),
		g.If(href == current, Class("active")),
		g.If(href == current, g.Attr("aria-current", "page")),
		g.Text(label),
	)
}

func PageFooter() g.Node {
	return Footer(
		Class("footer"),
		P(g.Textf("© %s", ProductName)),
		Div(
			Class("footer-links"),
			A(Href("/about"), g.Text("About")),
			A(Href("/privacy"), g.Text("Privacy Policy")),
			A(Href("/terms"), g.Text("Terms of Service")),
		),
	)
}
