package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"path"
	"sync"
)

// TemplateCache holds parsed templates
type TemplateCache struct {
	cache map[string]*template.Template
	mu    sync.RWMutex
	funcs template.FuncMap
}

func NewTemplateCache() *TemplateCache {
	return &TemplateCache{
		cache: make(map[string]*template.Template),
		funcs: make(template.FuncMap),
	}
}

func (tc *TemplateCache) AddFunc(name string, fn interface{}) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.funcs[name] = fn
}

// Load parses every page in dir of fsys. Files starting with an underscore
// are partials and are parsed into every page instead of on their own.
func (tc *TemplateCache) Load(fsys fs.FS, dir string) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.funcs["money"] = func(v float64) string {
		return fmt.Sprintf("£%.2f", v)
	}
	tc.funcs["percent"] = func(v float64) string {
		return fmt.Sprintf("%.0f%%", min(max(v, 0), 100))
	}

	partials, err := fs.Glob(fsys, path.Join(dir, "_*.html"))
	if err != nil {
		return err
	}
	pages, err := fs.Glob(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return err
	}
	for _, file := range pages {
		name := path.Base(file)
		if name[0] == '_' {
			continue
		}
		files := append([]string{file}, partials...)
		tmpl, err := template.New(name).Funcs(tc.funcs).ParseFS(fsys, files...)
		if err != nil {
			slog.Error("Failed to parse template", "file", file, "error", err)
			return err
		}
		tc.cache[name] = tmpl
		slog.Debug("Cached template", "name", name)
	}
	return nil
}

func (tc *TemplateCache) Get(name string) *template.Template {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.cache[name]
}
