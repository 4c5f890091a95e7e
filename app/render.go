package main

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"

	"github.com/mirabelledev/inkwell/internal/blogservice"
	"github.com/mirabelledev/inkwell/internal/userservice"
)

//go:embed templates
var templateFS embed.FS

type templateCache struct {
	pages map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	// post bodies are editor-produced HTML, sanitized at write time
	"safeHTML": func(s string) template.HTML {
		return template.HTML(s)
	},
}

func newTemplateCache() (*templateCache, error) {
	pages, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	cache := make(map[string]*template.Template)

	for _, page := range pages {
		name := filepath.Base(page)

		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/base.html", page)
		if err != nil {
			return nil, err
		}

		cache[name] = t
	}

	return &templateCache{pages: cache}, nil
}

type templateData struct {
	Flash       string
	LoggedIn    bool
	IsAdmin     bool
	CurrentUser *userservice.User
	Posts       []blogservice.Post
	Post        *blogservice.Post
	IsEdit      bool
}

// newTemplateData assembles the data every page needs: the pending flash
// notice and the resolved identity.
func (app *application) newTemplateData(w http.ResponseWriter, r *http.Request) *templateData {
	data := &templateData{
		Flash: app.popFlash(w, r),
	}

	user := app.getUserContext(r)
	if user != nil && !user.IsAnonymous() {
		data.LoggedIn = true
		data.IsAdmin = user.IsAdmin()
		data.CurrentUser = user
	}

	return data
}

func (app *application) render(w http.ResponseWriter, r *http.Request, status int, page string, data *templateData) {
	t, ok := app.templates.pages[page]
	if !ok {
		app.serverErrorResponse(w, r, fmt.Errorf("template %q does not exist", page))
		return
	}

	// render into a buffer first so a template error never produces a half
	// written page
	buf := new(bytes.Buffer)
	err := t.ExecuteTemplate(buf, "base", data)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
