package lessonapi

import (
	"context"
	"log/slog"
	"strings"

	"github.com/alextreichler/lessonshop/internal/models"
	"github.com/google/uuid"
)

// DefaultLessons is the built-in catalog used when no backend is configured
// and for seeding the reference backend.
var DefaultLessons = []models.Lesson{
	{ID: "1", Topic: "Math", Location: "Hendon", Price: 100, Space: 5, Image: "maths_school.jpg"},
	{ID: "2", Topic: "English", Location: "Colindale", Price: 80, Space: 5, Image: "english.jpg"},
	{ID: "3", Topic: "Physics", Location: "Brent Cross", Price: 120, Space: 5, Image: "physics.jpg"},
	{ID: "4", Topic: "Chemistry", Location: "Golders Green", Price: 95, Space: 5, Image: "chemistry.jpg"},
	{ID: "5", Topic: "Biology", Location: "Edgware", Price: 110, Space: 5, Image: "biology.jpg"},
	{ID: "6", Topic: "Art", Location: "Finchley", Price: 75, Space: 5, Image: "art.jpg"},
	{ID: "7", Topic: "History", Location: "Wembley", Price: 90, Space: 5, Image: "history.jpg"},
	{ID: "8", Topic: "Geography", Location: "Harrow", Price: 85, Space: 5, Image: "geography.jpg"},
	{ID: "9", Topic: "Music", Location: "Camden", Price: 130, Space: 5, Image: "music.png"},
	{ID: "10", Topic: "PE", Location: "Islington", Price: 60, Space: 5, Image: "pe.jpg"},
}

// StaticCatalog serves a fixed lesson list. Nothing is persisted: orders are
// only logged and inventory updates are ignored.
type StaticCatalog struct {
	lessons []models.Lesson
	origin  string
}

func NewStaticCatalog(lessons []models.Lesson, imageOrigin string) *StaticCatalog {
	return &StaticCatalog{lessons: lessons, origin: imageOrigin}
}

// IsStatic reports whether api keeps no inventory of its own.
func IsStatic(api API) bool {
	_, ok := api.(*StaticCatalog)
	return ok
}

func (s *StaticCatalog) ListLessons(ctx context.Context) ([]models.Lesson, error) {
	out := make([]models.Lesson, 0, len(s.lessons))
	for _, l := range s.lessons {
		l.ResolveImage(s.origin)
		out = append(out, l)
	}
	return out, nil
}

// SearchLessons matches the query case-insensitively against topic and location.
func (s *StaticCatalog) SearchLessons(ctx context.Context, query string) ([]models.Lesson, error) {
	all, _ := s.ListLessons(ctx)
	if strings.TrimSpace(query) == "" {
		return all, nil
	}
	q := strings.ToLower(query)
	out := make([]models.Lesson, 0, len(all))
	for _, l := range all {
		if MatchesQuery(l, q) {
			out = append(out, l)
		}
	}
	return out, nil
}

// MatchesQuery expects q already lower-cased.
func MatchesQuery(l models.Lesson, q string) bool {
	return strings.Contains(strings.ToLower(l.Topic), q) || strings.Contains(strings.ToLower(l.Location), q)
}

func (s *StaticCatalog) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	created := *order
	created.ID = uuid.NewString()
	slog.Info("Order submitted",
		"order_id", created.ID,
		"first_name", order.FirstName,
		"last_name", order.LastName,
		"phone", order.Phone,
		"items", order.Items,
	)
	return &created, nil
}

func (s *StaticCatalog) UpdateSpace(ctx context.Context, lessonID string, space int) error {
	return nil
}
