package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Static — встроенные ассеты консоли (console.js, console.css).
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}

	return sub
}

// Header — шапка страницы, ветвится по роли пользователя.
type Header struct {
	ProfileURL    string
	ShowCart      bool
	Authenticated bool
	Query         string
}

// NavItem — пункт меню админки.
type NavItem struct {
	Label     string
	ListURL   string
	CreateURL string
}

// Page — страница целиком: шапка, флеш и регион контента.
type Page struct {
	Title   string
	Header  Header
	Nav     []NavItem
	Flash   *Alert
	Content Fragment
}

// Renderer рендерит фрагменты встроенными шаблонами html/template.
// Все значения из записей экранируются.
type Renderer struct {
	t *template.Template
}

func NewRenderer() (*Renderer, error) {
	const op = "view.NewRenderer"

	r := &Renderer{}

	t, err := template.New("console").
		Funcs(template.FuncMap{"render": r.render}).
		ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.t = t
	return r, nil
}

// MustRenderer — паника при битых встроенных шаблонах.
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}

	return r
}

// Page рендерит страницу с лэйаутом.
func (r *Renderer) Page(w io.Writer, p Page) error {
	return r.t.ExecuteTemplate(w, "page", p)
}

// Fragment рендерит только фрагмент (ответы XHR).
func (r *Renderer) Fragment(w io.Writer, f Fragment) error {
	if f == nil {
		return nil
	}

	return r.t.ExecuteTemplate(w, f.Template(), f)
}

// render вызывается из шаблонов для вложенных фрагментов.
// Результат уже экранирован внутренним исполнением шаблона.
func (r *Renderer) render(f Fragment) (template.HTML, error) {
	if f == nil {
		return "", nil
	}

	var b bytes.Buffer
	if err := r.t.ExecuteTemplate(&b, f.Template(), f); err != nil {
		return "", err
	}

	return template.HTML(b.String()), nil
}
