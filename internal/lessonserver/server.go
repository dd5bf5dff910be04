// Package lessonserver is the reference lessons backend used for local
// development and end-to-end tests.
package lessonserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alextreichler/lessonshop/internal/models"
	"github.com/alextreichler/lessonshop/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Store is the persistence the handlers need.
type Store interface {
	ListLessons(ctx context.Context) ([]models.Lesson, error)
	SearchLessons(ctx context.Context, query string) ([]models.Lesson, error)
	GetLesson(ctx context.Context, id string) (*models.Lesson, error)
	SetLessonSpace(ctx context.Context, id string, space int) error
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, bool, error)
}

type Handler struct {
	Store     Store
	ImagesDir string
}

// Routes builds the router: GET /lessons, GET /lessons/search?q=,
// PUT /lessons/{id}, POST /orders and GET /images/*.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/lessons", h.listLessons)
	r.Get("/lessons/search", h.searchLessons)
	r.Get("/lessons/{id}", h.getLesson)
	r.Put("/lessons/{id}", h.updateSpace)
	r.Post("/orders", h.createOrder)

	images := http.StripPrefix("/images/", http.FileServer(http.Dir(h.ImagesDir)))
	r.Get("/images/*", images.ServeHTTP)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

func (h *Handler) listLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.Store.ListLessons(r.Context())
	if err != nil {
		internalError(w, r, "Failed to list lessons", err)
		return
	}
	writeJSON(w, http.StatusOK, lessons)
}

func (h *Handler) searchLessons(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	var (
		lessons []models.Lesson
		err     error
	)
	if q == "" {
		lessons, err = h.Store.ListLessons(r.Context())
	} else {
		lessons, err = h.Store.SearchLessons(r.Context(), q)
	}
	if err != nil {
		internalError(w, r, "Failed to search lessons", err)
		return
	}
	writeJSON(w, http.StatusOK, lessons)
}

func (h *Handler) getLesson(w http.ResponseWriter, r *http.Request) {
	lesson, err := h.Store.GetLesson(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "lesson not found")
		return
	}
	if err != nil {
		internalError(w, r, "Failed to get lesson", err)
		return
	}
	writeJSON(w, http.StatusOK, lesson)
}

func (h *Handler) updateSpace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body models.SpaceUpdate
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Space == nil {
		writeError(w, http.StatusBadRequest, "space is required")
		return
	}
	if *body.Space < 0 {
		writeError(w, http.StatusBadRequest, "space must not be negative")
		return
	}

	err := h.Store.SetLessonSpace(r.Context(), id, *body.Space)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "lesson not found")
		return
	}
	if err != nil {
		internalError(w, r, "Failed to update lesson space", err)
		return
	}

	lesson, err := h.Store.GetLesson(r.Context(), id)
	if err != nil {
		internalError(w, r, "Failed to reload lesson", err)
		return
	}
	slog.Info("Lesson space updated", "lesson_id", id, "space", lesson.Space)
	writeJSON(w, http.StatusOK, lesson)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var order models.Order
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&order); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := validateOrder(&order); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	order.IdempotencyKey = r.Header.Get("Idempotency-Key")

	created, replayed, err := h.Store.CreateOrder(r.Context(), &order)
	if err != nil {
		internalError(w, r, "Failed to create order", err)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
		slog.Info("Order replayed", "order_id", created.ID, "idempotency_key", order.IdempotencyKey)
	} else {
		slog.Info("Order created", "order_id", created.ID, "order_ref", created.OrderRef, "lines", len(created.Items))
	}
	writeJSON(w, status, created)
}

func validateOrder(o *models.Order) string {
	o.FirstName = strings.TrimSpace(o.FirstName)
	o.LastName = strings.TrimSpace(o.LastName)
	o.Phone = strings.TrimSpace(o.Phone)
	switch {
	case o.FirstName == "" || o.LastName == "":
		return "first and last name are required"
	case o.Phone == "":
		return "phone is required"
	case len(o.Items) == 0:
		return "order has no items"
	}
	for _, line := range o.Items {
		if line.LessonID == "" || line.Quantity < 1 {
			return "every item needs a lessonId and a positive quantity"
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "error", err, "request_id", middleware.GetReqID(r.Context()))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("HTTP Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// cors lets a browser page on another origin call the API directly.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Idempotency-Key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
