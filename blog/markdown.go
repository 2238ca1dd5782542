package blog

import (
	htmltomd "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// RenderMarkdown converts a Markdown body to the HTML that gets stored next
// to it. The conversion is deterministic: the same source always yields the
// same HTML, so stored HTML can be compared against a re-render.
func RenderMarkdown(src string) string {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(src))

	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	opts := html.RendererOptions{Flags: htmlFlags}
	renderer := html.NewRenderer(opts)

	return string(markdown.Render(doc, renderer))
}

// HTMLToMarkdown is the reverse direction, used when a post only has an HTML
// body and the caller insists on Markdown output.
func HTMLToMarkdown(src string) (string, error) {
	conv := htmltomd.NewConverter("", true, nil)
	return conv.ConvertString(src)
}
