// Package web embeds the HTML views rendered by the HTTP handlers.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

// Layout is the default layout every view is rendered into.
const Layout = "layouts/main"

//go:embed views
var views embed.FS

// NewEngine returns a Fiber view engine over the embedded views.
// View names are paths relative to views/ without the extension, e.g. "home".
func NewEngine() *html.Engine {
	sub, err := fs.Sub(views, "views")
	if err != nil {
		panic(err)
	}
	return html.NewFileSystem(http.FS(sub), ".html")
}
