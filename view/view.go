// Package view renders the HTML bodies of outgoing e-mails from embedded templates.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/diewo77/go-chantiers/i18n"
)

//go:embed templates/*.html
var files embed.FS

var (
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}
)

// Funcs returns the helpers available to every template.
func Funcs(lang string) template.FuncMap {
	return template.FuncMap{
		"t":    func(code string) string { return i18n.T(lang, code) },
		"lang": func() string { return lang },
		"date": func(v any) string { return formatDate(v) },
		"year": func() int { return time.Now().Year() },
		// Usage: {{ template "row" (dict "Label" "Client" "Value" .Client) }}
		"dict": func(values ...any) map[string]any {
			m := make(map[string]any, len(values)/2)
			for i := 0; i+1 < len(values); i += 2 {
				if k, ok := values[i].(string); ok {
					m[k] = values[i+1]
				}
			}
			return m
		},
	}
}

// RenderEmail executes templates/<name> inside the shared layout.
func RenderEmail(lang, name string, data map[string]any) (string, error) {
	tpl, err := load(lang, name)
	if err != nil {
		return "", err
	}
	if data == nil {
		data = map[string]any{}
	}
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func load(lang, name string) (*template.Template, error) {
	key := lang + "/" + name
	tplCache.RLock()
	tpl, ok := tplCache.m[key]
	tplCache.RUnlock()
	if ok {
		return tpl, nil
	}
	tpl, err := template.New(name).Funcs(Funcs(lang)).ParseFS(files, "templates/layout.html", "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	tplCache.Lock()
	tplCache.m[key] = tpl
	tplCache.Unlock()
	return tpl, nil
}

func formatDate(v any) string {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return "-"
		}
		return d.Format("02/01/2006")
	case *time.Time:
		if d == nil || d.IsZero() {
			return "-"
		}
		return d.Format("02/01/2006")
	default:
		return "-"
	}
}
