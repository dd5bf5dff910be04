package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alextreichler/lessonshop/internal/shop"
	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

const (
	sessionName  = "lessonshop-session"
	sessionIDKey = "sid"
)

// ShopHandler serves the storefront pages. Each browser session gets its own
// shop.Storefront from the registry.
type ShopHandler struct {
	Registry     *shop.Registry
	Templates    *TemplateCache
	SessionStore sessions.Store
	// RequestTimeout bounds backend calls made while rendering a page.
	RequestTimeout time.Duration
}

// storefront returns the session and its storefront, assigning a new
// session id on the first visit. The caller saves the session.
func (h *ShopHandler) storefront(r *http.Request) (*sessions.Session, *shop.Storefront) {
	session, err := h.SessionStore.Get(r, sessionName)
	if err != nil {
		// A cookie signed with an old key; start over with a fresh session.
		slog.Debug("Discarding unreadable session", "error", err)
	}
	id, _ := session.Values[sessionIDKey].(string)
	if id == "" {
		id = uuid.NewString()
		session.Values[sessionIDKey] = id
	}
	return session, h.Registry.Get(id)
}

func (h *ShopHandler) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.RequestTimeout)
}

// Index lists the lessons. The query parameters sort, order and q change the
// session's sort view and search.
func (h *ShopHandler) Index(w http.ResponseWriter, r *http.Request) {
	session, front := h.storefront(r)

	query := r.URL.Query()
	if query.Has("sort") || query.Has("order") {
		snap := front.Snapshot()
		key, order := snap.SortKey, snap.SortOrder
		if query.Has("sort") {
			key = shop.ParseSortKey(query.Get("sort"))
		}
		if query.Has("order") {
			order = shop.ParseSortOrder(query.Get("order"))
		}
		front.SetSort(key, order)
	}

	ctx, cancel := h.timeout(r.Context())
	defer cancel()
	var err error
	if query.Has("q") {
		err = front.SetSearch(ctx, query.Get("q"))
	} else {
		err = front.EnsureLoaded(ctx)
	}
	if err != nil && !errors.Is(err, shop.ErrSuperseded) {
		// The storefront already shows an error message and keeps the
		// previous catalog.
		slog.Warn("Rendering lessons without a fresh catalog", "error", err)
	}

	h.render(w, r, session, "lessons.html", front, nil)
}

func (h *ShopHandler) render(w http.ResponseWriter, r *http.Request, session *sessions.Session, name string, front *shop.Storefront, extra map[string]interface{}) {
	tmpl := h.Templates.Get(name)
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"Shop":      front.Snapshot(),
		"SortKeys":  shop.SortKeys,
		"Flashes":   GetFlash(session),
		"CsrfField": csrf.TemplateField(r),
	}
	for k, v := range extra {
		data[k] = v
	}
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		slog.Error("Failed to render template", "name", name, "error", err)
	}
}

// redirect saves the session and sends the browser to target.
func redirect(w http.ResponseWriter, r *http.Request, session *sessions.Session, target string) {
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
