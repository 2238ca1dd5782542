package site

import (
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"netsoc/blog"
	"netsoc/constants"
	"netsoc/database"
)

func prettyAuthors(post database.BlogPost) string {
	names := make([]string, len(post.Authors))
	for i, a := range post.Authors {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

func prettyBookAuthors(book database.Book) string {
	names := make([]string, len(book.Authors))
	for i, a := range book.Authors {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// summarize turns a stored HTML body into plain-ish text for post teasers.
func summarize(htmlBody string, limit int) string {
	text, err := blog.HTMLToMarkdown(htmlBody)
	if err != nil {
		log.Error().Err(err).Msg("failed to summarize post body")
		return ""
	}
	text = strings.Join(strings.Fields(text), " ")
	if runes := []rune(text); len(runes) > limit {
		text = string(runes[:limit]) + "…"
	}
	return text
}

func (s *Site) renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	type GlobalTemplateData struct {
		IsDebug   bool
		SiteName  string
		PublicURL string
	}

	templateData := struct {
		Global GlobalTemplateData
		Data   any
	}{
		Global: GlobalTemplateData{
			IsDebug:   s.cfg.Development,
			SiteName:  constants.APP_NAME,
			PublicURL: s.publicURL(),
		},
		Data: data,
	}

	actualTemplate, ok := s.templatesCache.Load(templateName)
	if !ok || s.cfg.Development {
		baseTemplate := template.New("layout.html").Funcs(template.FuncMap{
			"prettyAuthors":     prettyAuthors,
			"prettyBookAuthors": prettyBookAuthors,
			"summarize":         summarize,
			"postDate": func(t time.Time) string {
				return t.Local().Format("2006-01-02 at 15:04")
			},
			"safeHTML": func(body string) template.HTML {
				return template.HTML(body)
			},
		})

		baseTemplate = template.Must(baseTemplate.ParseFiles(filepath.Join(s.templatesDir, "layout.html")))
		actualTemplate = template.Must(baseTemplate.ParseFiles(filepath.Join(s.templatesDir, templateName+".html")))

		s.templatesCache.Store(templateName, actualTemplate)
	}

	err := actualTemplate.(*template.Template).Execute(w, templateData)
	if err != nil {
		log.Error().Err(err).Str("template", templateName).Msg("template execution error")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Site) publicURL() string {
	scheme := "https"
	if s.cfg.Development {
		scheme = "http"
	}
	return scheme + "://" + s.cfg.ServerName()
}
