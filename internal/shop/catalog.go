package shop

import (
	"context"
	"errors"
	"strings"

	"github.com/alextreichler/lessonshop/internal/models"
)

// Refresh re-runs the current query (or fetches the full catalog) even if
// nothing changed. Used for the initial load and for reconciliation.
func (s *Storefront) Refresh(ctx context.Context) error {
	s.mu.Lock()
	q := s.query
	s.mu.Unlock()
	return s.fetch(ctx, q, true)
}

// EnsureLoaded fetches the catalog once per session.
func (s *Storefront) EnsureLoaded(ctx context.Context) error {
	if s.Loaded() {
		return nil
	}
	return s.Refresh(ctx)
}

// SetSearch replaces the catalog with the lessons matching query, or with the
// full catalog when query is blank. A newer call cancels an older in-flight
// one, and an older response is never applied over a newer query; in that
// case ErrSuperseded is returned.
func (s *Storefront) SetSearch(ctx context.Context, query string) error {
	return s.fetch(ctx, query, false)
}

func (s *Storefront) fetch(ctx context.Context, query string, force bool) error {
	s.mu.Lock()
	if !force && s.loaded && query == s.query {
		s.mu.Unlock()
		return nil
	}
	s.query = query
	s.searchSeq++
	seq := s.searchSeq
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	var (
		lessons []models.Lesson
		err     error
	)
	if strings.TrimSpace(query) == "" {
		lessons, err = s.api.ListLessons(ctx)
	} else {
		lessons, err = s.api.SearchLessons(ctx, query)
	}

	s.mu.Lock()
	if seq != s.searchSeq {
		s.mu.Unlock()
		s.log.Debug("Discarding stale lesson results", "query", query, "seq", seq)
		return ErrSuperseded
	}
	s.cancel = nil
	if err != nil {
		// Back to the query the shown catalog belongs to, so the same
		// search can be retried.
		s.query = s.applied
		s.lastErr = err
		s.mu.Unlock()
		if errors.Is(err, context.Canceled) {
			return err
		}
		s.log.Error("Failed to fetch lessons", "query", query, "error", err)
		s.message.Show(MessageError, "Could not load lessons. Please try again.")
		return err
	}
	s.applied = query
	s.applyLessonsLocked(lessons)
	s.mu.Unlock()

	s.log.Debug("Lessons loaded", "query", query, "count", len(lessons))
	s.emit(LessonsChanged)
	return nil
}

// applyLessonsLocked installs a fresh backend list. Seats held in the cart
// are taken off the reported space so that space plus cart quantity keeps
// matching what the backend reported.
func (s *Storefront) applyLessonsLocked(lessons []models.Lesson) {
	fresh := make([]models.Lesson, len(lessons))
	copy(fresh, lessons)
	for i := range fresh {
		l := &fresh[i]
		if l.Space < 0 {
			l.Space = 0
		}
		s.serverSpace[l.ID] = l.Space
		l.Space -= s.cartQuantity(l.ID)
		if l.Space < 0 {
			l.Space = 0
		}
	}
	s.lessons = fresh
	s.loaded = true
	s.version++
}
