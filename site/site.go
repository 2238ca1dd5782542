// Package site is the public web front end. Every handler translates one
// request into one content-service call and one render; no handler carries
// business logic of its own.
package site

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"netsoc/blog"
	"netsoc/config"
	"netsoc/library"
)

type Site struct {
	cfg     *config.Config
	blog    *blog.Service
	library *library.Service

	templatesDir   string
	templatesCache sync.Map
}

type Option func(*Site)

// WithTemplatesDir points the renderer somewhere other than ./templates,
// used by tests running from their package directory.
func WithTemplatesDir(dir string) Option {
	return func(s *Site) { s.templatesDir = dir }
}

func New(cfg *config.Config, blogSvc *blog.Service, librarySvc *library.Service, opts ...Option) *Site {
	s := &Site{
		cfg:          cfg,
		blog:         blogSvc,
		library:      librarySvc,
		templatesDir: "templates",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Site) Router() *chi.Mux {
	r := chi.NewRouter()

	CORSMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	r.Use(CORSMiddleware.Handler)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middleware.Recoverer)

	r.Get("/", s.home)
	r.Get("/posts/{id}", s.post)
	r.Get("/about-us", s.staticPage(aboutUsPage))

	r.Get("/library/", s.libraryListing)
	r.Get("/library/book/{id}", s.book)

	r.Get("/committee", s.staticPage(committeePage))
	r.Get("/services", s.staticPage(servicesPage))
	r.Get("/wiki", s.staticPage(wikiPage))
	r.Get("/new-members", s.staticPage(newMembersPage))
	r.Get("/file-storage", s.staticPage(fileStoragePage))
	r.Get("/mailing-lists", s.staticPage(mailingListsPage))
	r.Get("/slides", s.staticPage(slidesPage))
	r.Get("/login", s.staticPage(loginPage))
	r.Get("/sign-up", s.staticPage(signUpPage))

	fileServer := http.FileServer(http.Dir("./assets"))
	r.Handle("/assets/*", http.StripPrefix("/assets", fileServer))

	return r
}
