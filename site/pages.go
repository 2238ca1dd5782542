package site

import (
	"net/http"

	g "github.com/maragudk/gomponents"
	h "github.com/maragudk/gomponents/html"
	"github.com/rs/zerolog/log"

	"netsoc/constants"
)

// The static informational pages are plain gomponents trees; only the
// dynamic pages (home, post, library, book) go through html/template.

func (s *Site) staticPage(page func() g.Node) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := page().Render(w); err != nil {
			log.Error().Err(err).Str("path", r.URL.Path).Msg("page render error")
		}
	}
}

func navbar() g.Node {
	return h.Nav(h.Class("nav"),
		h.Div(h.Class("nav-left"),
			h.Div(h.Class("brand"), h.A(h.Href("/"), g.Text(constants.APP_NAME))),
		),
		h.Div(h.Class("nav-links nav-right"),
			h.A(h.Href("/library/"), g.Text("Library")),
			h.A(h.Href("/about-us"), g.Text("About us")),
			h.A(h.Href("/committee"), g.Text("Committee")),
			h.A(h.Href("/services"), g.Text("Services")),
		),
	)
}

func pageLayout(title string, children ...g.Node) g.Node {
	return h.Doctype(
		h.HTML(
			h.Lang("en"),
			h.Head(
				h.Meta(h.Charset("utf-8")),
				h.Meta(h.Name("viewport"), h.Content("width=device-width, initial-scale=1")),
				h.Link(h.Rel("stylesheet"), h.Href("/assets/css/main.css")),
				h.TitleEl(g.Textf("%s - %s", title, constants.APP_NAME)),
			),
			h.Body(
				h.Div(h.Class("container"),
					navbar(),
					h.Main(g.Group(children)),
				),
			),
		),
	)
}

func aboutUsPage() g.Node {
	return pageLayout("About us",
		h.H1(g.Text("About us")),
		h.P(g.Text("We are the university networking society: talks, a hardware library, and a lot of blinkenlights.")),
	)
}

func committeePage() g.Node {
	return pageLayout("Committee",
		h.H1(g.Text("Committee")),
		h.P(g.Text("The current committee and how to reach them.")),
	)
}

func servicesPage() g.Node {
	return pageLayout("Services",
		h.H1(g.Text("Services")),
		h.P(g.Text("Shell accounts, web hosting, and mail for members.")),
	)
}

func wikiPage() g.Node {
	return pageLayout("Wiki",
		h.H1(g.Text("Wiki")),
		h.P(g.Text("Member-maintained documentation lives on the wiki.")),
	)
}

func newMembersPage() g.Node {
	return pageLayout("New members",
		h.H1(g.Text("New members")),
		h.P(g.Text("How to join and what you get.")),
	)
}

func fileStoragePage() g.Node {
	return pageLayout("File storage",
		h.H1(g.Text("File storage")),
		h.P(g.Text("Every member gets space on the society fileserver.")),
	)
}

func mailingListsPage() g.Node {
	return pageLayout("Mailing lists",
		h.H1(g.Text("Mailing lists")),
		h.P(g.Text("Announcements and discussion lists.")),
	)
}

func slidesPage() g.Node {
	return pageLayout("Slides",
		h.H1(g.Text("Slides")),
		h.P(g.Text("Slides from past talks and workshops.")),
	)
}

func loginPage() g.Node {
	return pageLayout("Login",
		h.H1(g.Text("Login")),
		h.P(g.Text("Must be a member.")),
	)
}

func signUpPage() g.Node {
	return pageLayout("Sign up",
		h.H1(g.Text("Sign up")),
		h.P(g.Text("Sign up here.")),
	)
}
