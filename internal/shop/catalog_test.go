package shop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alextreichler/lessonshop/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEnsureLoaded_FetchesOnce(t *testing.T) {
	s, api := newMockFront(t)

	require.NoError(t, s.EnsureLoaded(context.Background()))
	assert.Len(t, s.Lessons(), 3)
	api.AssertNumberOfCalls(t, "ListLessons", 1)
}

func TestSetSearch_QueryAndBlank(t *testing.T) {
	s, api := newMockFront(t)
	math := []models.Lesson{fixtureLessons()[0]}
	api.On("SearchLessons", mock.Anything, "ma").Return(math, nil).Once()
	api.On("ListLessons", mock.Anything).Return(fixtureLessons(), nil).Once()

	require.NoError(t, s.SetSearch(context.Background(), "ma"))
	assert.Equal(t, []string{"Math"}, topics(s.Lessons()))

	// Same query again does not hit the backend.
	require.NoError(t, s.SetSearch(context.Background(), "ma"))

	require.NoError(t, s.SetSearch(context.Background(), ""))
	assert.Len(t, s.Lessons(), 3)
	api.AssertExpectations(t)
}

func TestSetSearch_StaleResponseIsDiscarded(t *testing.T) {
	s, api := newMockFront(t)
	release := make(chan struct{})
	started := make(chan struct{})

	slow := []models.Lesson{{ID: "9", Topic: "Music", Space: 5}}
	fast := []models.Lesson{fixtureLessons()[0]}
	api.On("SearchLessons", mock.Anything, "m").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(slow, nil).Once()
	api.On("SearchLessons", mock.Anything, "ma").Return(fast, nil).Once()

	errc := make(chan error, 1)
	go func() { errc <- s.SetSearch(context.Background(), "m") }()
	<-started

	require.NoError(t, s.SetSearch(context.Background(), "ma"))
	close(release)

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(time.Second):
		t.Fatal("older search did not return")
	}
	assert.Equal(t, []string{"Math"}, topics(s.Lessons()))
	assert.Equal(t, "ma", s.Snapshot().Query)
}

func TestSetSearch_NewerSearchCancelsOlderContext(t *testing.T) {
	s, api := newMockFront(t)
	started := make(chan struct{})
	cancelled := make(chan struct{})

	api.On("SearchLessons", mock.Anything, "m").
		Run(func(args mock.Arguments) {
			close(started)
			<-args.Get(0).(context.Context).Done()
			close(cancelled)
		}).
		Return(nil, context.Canceled).Once()
	api.On("SearchLessons", mock.Anything, "ma").Return([]models.Lesson{}, nil).Once()

	errc := make(chan error, 1)
	go func() { errc <- s.SetSearch(context.Background(), "m") }()

	<-started
	require.NoError(t, s.SetSearch(context.Background(), "ma"))

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("older search context was not cancelled")
	}
	assert.ErrorIs(t, <-errc, ErrSuperseded)
}

func TestSetSearch_FailureKeepsCatalog(t *testing.T) {
	s, api := newMockFront(t)
	boom := errors.New("connection refused")
	api.On("SearchLessons", mock.Anything, "x").Return(nil, boom).Once()

	err := s.SetSearch(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	assert.Len(t, s.Lessons(), 3)
	assert.ErrorIs(t, s.LastError(), boom)
	assert.Equal(t, MessageError, s.Message().Type)
}

func TestSetSearch_SameQueryIsRetriedAfterFailure(t *testing.T) {
	s, api := newMockFront(t)
	math := []models.Lesson{fixtureLessons()[0]}
	api.On("SearchLessons", mock.Anything, "ma").Return(nil, errors.New("connection refused")).Once()
	api.On("SearchLessons", mock.Anything, "ma").Return(math, nil).Once()

	require.Error(t, s.SetSearch(context.Background(), "ma"))
	assert.Len(t, s.Lessons(), 3)
	assert.Equal(t, "", s.Snapshot().Query, "the shown query matches the shown catalog")

	require.NoError(t, s.SetSearch(context.Background(), "ma"))
	assert.Equal(t, []string{"Math"}, topics(s.Lessons()))
	assert.Equal(t, "ma", s.Snapshot().Query)
	api.AssertExpectations(t)
}

func TestRefresh_KeepsCartReservations(t *testing.T) {
	s, api := newMockFront(t)
	require.NoError(t, s.AddToCart("1"))
	require.NoError(t, s.AddToCart("1"))

	api.On("ListLessons", mock.Anything).Return(fixtureLessons(), nil).Once()
	require.NoError(t, s.Refresh(context.Background()))

	assert.Equal(t, 3, space(t, s, "1"))
	assert.Equal(t, 2, s.Cart()[0].Quantity)
}

func TestRefresh_ClampsWhenBackendHasLessSpace(t *testing.T) {
	s, api := newMockFront(t)
	require.NoError(t, s.AddToCart("1"))
	require.NoError(t, s.AddToCart("1"))

	shrunk := fixtureLessons()
	shrunk[0].Space = 1
	api.On("ListLessons", mock.Anything).Return(shrunk, nil).Once()
	require.NoError(t, s.Refresh(context.Background()))

	assert.Equal(t, 0, space(t, s, "1"))
}
