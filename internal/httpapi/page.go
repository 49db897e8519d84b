package httpapi

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/optimalbrew/espChat/web"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type pageOption struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	Levels []pageOption
	Topics []pageOption
}

func parsePage() (*template.Template, error) {
	return template.ParseFS(web.Templates, "templates/index.html")
}

// optionLabel turns a catalog key such as "daily_life" into "Daily Life".
func optionLabel(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

func (r *Router) pageData() pageData {
	var d pageData
	for _, l := range r.catalog.Levels {
		d.Levels = append(d.Levels, pageOption{
			Value:    l.Name,
			Label:    optionLabel(l.Name),
			Selected: l.Name == r.catalog.DefaultLevel,
		})
	}
	for _, t := range r.catalog.Topics {
		d.Topics = append(d.Topics, pageOption{
			Value:    t.Name,
			Label:    optionLabel(t.Name),
			Selected: t.Name == r.catalog.DefaultTopic,
		})
	}
	return d
}

func (r *Router) handleIndex(w http.ResponseWriter, req *http.Request) {
	if _, err := r.session(w, req); err != nil {
		r.logger.Error("page: session issue failed", zap.Error(err))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := r.page.Execute(w, r.pageData()); err != nil {
		r.logger.Error("page: render failed", zap.Error(err))
		captureError(req, err, "render index failed")
	}
}
