package shop

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alextreichler/lessonshop/internal/lessonapi"
	"github.com/alextreichler/lessonshop/internal/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) ListLessons(ctx context.Context) ([]models.Lesson, error) {
	args := m.Called(ctx)
	lessons, _ := args.Get(0).([]models.Lesson)
	return lessons, args.Error(1)
}

func (m *mockAPI) SearchLessons(ctx context.Context, query string) ([]models.Lesson, error) {
	args := m.Called(ctx, query)
	lessons, _ := args.Get(0).([]models.Lesson)
	return lessons, args.Error(1)
}

func (m *mockAPI) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	args := m.Called(ctx, order)
	created, _ := args.Get(0).(*models.Order)
	return created, args.Error(1)
}

func (m *mockAPI) UpdateSpace(ctx context.Context, lessonID string, space int) error {
	return m.Called(ctx, lessonID, space).Error(0)
}

func testOptions() Options {
	return Options{
		NoticeDuration: 60 * time.Millisecond,
		NoticeInterval: 5 * time.Millisecond,
		MessageTTL:     50 * time.Millisecond,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func fixtureLessons() []models.Lesson {
	return []models.Lesson{
		{ID: "1", Topic: "Math", Location: "Hendon", Price: 100, Space: 5, Image: "maths_school.jpg"},
		{ID: "2", Topic: "English", Location: "Colindale", Price: 80, Space: 5, Image: "english.jpg"},
		{ID: "3", Topic: "Physics", Location: "Brent Cross", Price: 120, Space: 0, Image: "physics.jpg"},
	}
}

// newStaticFront returns a loaded storefront backed by the in-memory catalog.
func newStaticFront(t *testing.T) *Storefront {
	t.Helper()
	s := New(lessonapi.NewStaticCatalog(fixtureLessons(), ""), testOptions())
	t.Cleanup(s.Close)
	require.NoError(t, s.EnsureLoaded(context.Background()))
	return s
}

// newMockFront returns a loaded storefront whose first catalog fetch is served
// by the mock.
func newMockFront(t *testing.T) (*Storefront, *mockAPI) {
	t.Helper()
	api := &mockAPI{}
	api.On("ListLessons", mock.Anything).Return(fixtureLessons(), nil).Once()
	s := New(api, testOptions())
	t.Cleanup(s.Close)
	require.NoError(t, s.EnsureLoaded(context.Background()))
	return s, api
}

func space(t *testing.T, s *Storefront, id string) int {
	t.Helper()
	l, ok := s.Lesson(id)
	require.True(t, ok, "lesson %s not in catalog", id)
	return l.Space
}
