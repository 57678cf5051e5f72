package server

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"invite-reviewer/internal/review"
)

//go:embed templates/*.html
var templateFS embed.FS

const indexTemplate = "index.html"

// pageData carries the view fields: error, response, draft and raw_text.
type pageData struct {
	Error        string
	ResponseHTML template.HTML
	ResponseText string
	Draft        string
	RawText      string
}

func (p pageData) HasResponse() bool {
	return p.ResponseHTML != "" || p.ResponseText != ""
}

// resultPage maps a review result onto the view, always echoing the draft.
func resultPage(draft string, res review.Result) pageData {
	page := pageData{Draft: draft}
	if !res.OK() {
		page.Error = res.Display
		return page
	}

	page.RawText = res.Raw
	if res.Format == review.FormatHTML {
		// Display is goldmark output with raw HTML omitted.
		page.ResponseHTML = template.HTML(res.Display)
	} else {
		page.ResponseText = res.Display
	}
	return page
}

type templateRenderer struct {
	templates *template.Template
}

func newTemplateRenderer() (*templateRenderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &templateRenderer{templates: tmpl}, nil
}

func (t *templateRenderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}
