package presenter

import (
	"embed"
	"html/template"
)

// PageTemplate is the name to pass to gin's c.HTML.
const PageTemplate = "page.tmpl"

//go:embed templates/*.tmpl
var templateFS embed.FS

func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.tmpl")
}
