// Package web embeds the server-rendered pages and their static assets.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed views static
var assets embed.FS

// Layout is the page layout every view is rendered into.
const Layout = "layouts/main"

// NewViews parses the embedded templates. Template names are paths relative
// to views/ without the .html extension, e.g. "debate-summary".
func NewViews() (*html.Engine, error) {
	sub, err := fs.Sub(assets, "views")
	if err != nil {
		return nil, fmt.Errorf("web: views sub filesystem: %w", err)
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("inc", func(i int) int { return i + 1 })
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("web: load templates: %w", err)
	}
	return engine, nil
}

// StaticHandler serves the embedded static/ directory. Mount it with the
// prefix stripped, e.g. http.StripPrefix("/static/", StaticHandler()).
func StaticHandler() http.Handler {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic("web: failed to create sub filesystem: " + err.Error())
	}
	return http.FileServer(http.FS(sub))
}
