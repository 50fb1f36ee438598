// Package renderer renders the dashboard as Markdown, and as an HTML page
// built from the same Markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md templates/*.html
var templates embed.FS

// RenderDashboard renders the Dashboard to a markdown string.
func RenderDashboard(d *Dashboard) string {
	partials := map[string]string{
		"dashboard_status":   "templates/dashboard_status.md",
		"dashboard_summary":  "templates/dashboard_summary.md",
		"dashboard_charts":   "templates/dashboard_charts.md",
		"dashboard_holdings": "templates/dashboard_holdings.md",
		"dashboard_plan":     "templates/dashboard_plan.md",
	}
	return renderTemplate("dashboard", "templates/dashboard.md", partials, d)
}

// RenderPrompt renders the request sent to the simulator.
func RenderPrompt(p *Prompt) string {
	return renderTemplate("prompt", "templates/prompt.md", nil, p)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}

// RenderPlan renders only the planned allocation of the Dashboard.
func RenderPlan(d *Dashboard) string {
	return renderTemplate("dashboard_plan", "templates/dashboard_plan.md", nil, d)
}
