package handlers

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed web/templates/*.html web/static
var webFiles embed.FS

// LoadTemplates parses the embedded page templates into tc.
func LoadTemplates(tc *TemplateCache) error {
	return tc.Load(webFiles, "web/templates")
}

// StaticFiles serves the embedded stylesheet and page script.
func StaticFiles() http.Handler {
	static, err := fs.Sub(webFiles, "web/static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(static))
}

// Routes registers the storefront pages. Checkout is rate limited per client.
func (h *ShopHandler) Routes(rateLimiter *RateLimiter) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", StaticFiles()))
	mux.HandleFunc("GET /healthz", Healthz)

	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("GET /cart", h.Cart)
	mux.HandleFunc("GET /events", h.Events)
	mux.HandleFunc("POST /cart/add", h.AddToCart)
	mux.HandleFunc("POST /cart/remove", h.RemoveFromCart)
	mux.HandleFunc("POST /checkout", rateLimiter.Middleware(h.Checkout))
	return mux
}
