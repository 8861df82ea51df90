package rest

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Brand - название сайта в навигации и заголовках
const Brand = "CryptoRealty"

// pageTemplates - по набору (layout + страница) на каждую страницу,
// так как все страницы определяют один и тот же блок "content"
type pageTemplates map[string]*template.Template

func parseTemplates() (pageTemplates, error) {
	pages := pageTemplates{}
	for _, name := range []string{"landing", "properties"} {
		tmpl, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// render рендерит страницу в буфер, чтобы при ошибке шаблона не отдать половину HTML
func (p pageTemplates) render(w http.ResponseWriter, status int, name string, data interface{}) error {
	tmpl, ok := p[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to execute %s template: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
