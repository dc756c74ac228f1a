package views

import (
	"fmt"
	"time"

	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	h "maragu.dev/gomponents/html"
)

// Splash renders the logo screen. On load htmx holds a request to nextURL
// open until the server-side redirect timer fires; without JavaScript a meta
// refresh takes over after delay.
func Splash(nextURL, targetURL string, delay time.Duration) g.Node {
	return Page("BaseBridge",
		h.Div(
			h.Class(backgroundClass+" flex flex-col items-center justify-center"),
			h.Img(h.Src("/static/logo.svg"), h.Alt("BaseBridge logo"), h.Width("96"), h.Height("96"), h.Class("mb-4")),
			h.H1(h.Class("text-4xl font-bold text-white"), g.Text("BaseBridge")),
			h.Div(
				h.ID("splash-redirect"),
				hx.Get(nextURL),
				hx.Trigger("load"),
				hx.Swap("none"),
			),
			h.NoScript(
				h.Meta(
					g.Attr("http-equiv", "refresh"),
					h.Content(fmt.Sprintf("%d;url=%s", int(delay.Round(time.Second)/time.Second), targetURL)),
				),
			),
		),
	)
}
