package shop

import (
	"cmp"
	"slices"

	"github.com/alextreichler/lessonshop/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortKey string

const (
	SortTopic    SortKey = "topic"
	SortLocation SortKey = "location"
	SortPrice    SortKey = "price"
	SortSpace    SortKey = "space"
)

var SortKeys = []SortKey{SortTopic, SortLocation, SortPrice, SortSpace}

type SortOrder string

const (
	Ascending  SortOrder = "ascending"
	Descending SortOrder = "descending"
)

func ParseSortKey(s string) SortKey {
	switch k := SortKey(s); k {
	case SortTopic, SortLocation, SortPrice, SortSpace:
		return k
	}
	return SortTopic
}

func ParseSortOrder(s string) SortOrder {
	if SortOrder(s) == Descending {
		return Descending
	}
	return Ascending
}

// SortLessons returns a sorted copy. Text attributes use English collation,
// numbers compare by value. The sort is stable.
func SortLessons(lessons []models.Lesson, key SortKey, order SortOrder) []models.Lesson {
	out := append([]models.Lesson(nil), lessons...)
	col := collate.New(language.English)

	compare := func(a, b models.Lesson) int {
		switch key {
		case SortLocation:
			return col.CompareString(a.Location, b.Location)
		case SortPrice:
			return cmp.Compare(a.Price, b.Price)
		case SortSpace:
			return cmp.Compare(a.Space, b.Space)
		default:
			return col.CompareString(a.Topic, b.Topic)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Lesson) int {
		if order == Descending {
			return -compare(a, b)
		}
		return compare(a, b)
	})
	return out
}

// sortedView memoizes the sorted catalog until the catalog version or the
// sort settings change.
type sortedView struct {
	valid   bool
	version uint64
	key     SortKey
	order   SortOrder
	lessons []models.Lesson
}

// SetSort changes the sort attribute and order of the lesson view.
func (s *Storefront) SetSort(key SortKey, order SortOrder) {
	s.mu.Lock()
	if s.sortKey == key && s.sortOrder == order {
		s.mu.Unlock()
		return
	}
	s.sortKey, s.sortOrder = key, order
	s.mu.Unlock()
	s.emit(ViewChanged)
}

// Sorted returns the catalog sorted by the current attribute and order.
func (s *Storefront) Sorted() []models.Lesson {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked()
}

func (s *Storefront) sortedLocked() []models.Lesson {
	v := &s.view
	if !v.valid || v.version != s.version || v.key != s.sortKey || v.order != s.sortOrder {
		v.lessons = SortLessons(s.lessons, s.sortKey, s.sortOrder)
		v.version, v.key, v.order, v.valid = s.version, s.sortKey, s.sortOrder, true
	}
	return append([]models.Lesson(nil), v.lessons...)
}
