package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	PageUser  = "user"
	PageAdmin = "admin"
)

var pageTitles = map[string]string{
	PageUser:  "User Dashboard",
	PageAdmin: "Admin Dashboard",
}

// Page is the data handed to the shared layout.
type Page struct {
	Title   string
	Active  string
	Content any
}

// Renderer は埋め込みテンプレートからページごとに layout + content を組み立てる。
type Renderer struct {
	pages  map[string]*template.Template
	logger *log.Logger
}

func NewRenderer(logger *log.Logger) (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageTitles))
	for name := range pageTitles {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Renderer{pages: pages, logger: logger}, nil
}

// Render はバッファへ描画してからまとめて書き出すため、途中で失敗しても半端な HTML は返さない。
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, content any) {
	tmpl, ok := r.pages[page]
	if !ok {
		r.logf("未知のページ %q", page)
		http.Error(w, "page not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	data := Page{Title: pageTitles[page], Active: page, Content: content}
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logf("テンプレート %s の描画に失敗: %v", page, err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logf("レスポンス書き込みに失敗: %v", err)
	}
}

func (r *Renderer) logf(format string, args ...any) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}
