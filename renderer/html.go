package renderer

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/etnz/portfolio-dashboard"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	page     = template.Must(template.ParseFS(templates, "templates/page.html"))
)

// RenderHTML renders the Dashboard as a standalone HTML page, with a form
// editing the configuration through PUT /api/config.
func RenderHTML(d *Dashboard) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(RenderDashboard(d)), &body); err != nil {
		return nil, fmt.Errorf("cannot convert dashboard to html: %w", err)
	}

	var out bytes.Buffer
	err := page.Execute(&out, struct {
		Title    string
		Loading  bool
		Version  uint64
		Body     template.HTML
		Currency string
		Budget   portfolio.Budget
		Plan     []PlanRow
	}{
		Title:    d.Title,
		Loading:  d.Loading(),
		Version:  d.Version,
		Body:     template.HTML(body.String()),
		Currency: d.Currency,
		Budget:   d.Budget,
		Plan:     d.Plan,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot render html page: %w", err)
	}
	return out.Bytes(), nil
}
