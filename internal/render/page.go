package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed assets
var assetFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html.tmpl"))

// Page writes the full HTML document for a view
func Page(w io.Writer, view View) error {
	if err := pageTemplate.ExecuteTemplate(w, "page.html.tmpl", view); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}

// Assets returns the static files served next to the page
func Assets() fs.FS {
	sub, err := fs.Sub(assetFS, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}
