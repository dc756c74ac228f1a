// Package views renders the HTML pages with gomponents.
package views

import (
	g "maragu.dev/gomponents"
	c "maragu.dev/gomponents/components"
	h "maragu.dev/gomponents/html"
)

const (
	htmxScriptURL     = "https://unpkg.com/htmx.org@2.0.4"
	tailwindScriptURL = "https://cdn.tailwindcss.com"
	backgroundClass   = "min-h-screen bg-gradient-to-br from-blue-600 to-blue-800"
)

// Page wraps body in the common HTML5 document.
func Page(title string, body ...g.Node) g.Node {
	return c.HTML5(c.HTML5Props{
		Title:    title,
		Language: "en",
		Head: []g.Node{
			h.Link(h.Rel("icon"), h.Href("/static/logo.svg")),
			h.Script(h.Src(tailwindScriptURL)),
			h.Script(h.Src(htmxScriptURL)),
		},
		Body: body,
	})
}
