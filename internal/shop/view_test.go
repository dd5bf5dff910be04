package shop

import (
	"testing"

	"github.com/alextreichler/lessonshop/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prices(lessons []models.Lesson) []float64 {
	out := make([]float64, len(lessons))
	for i, l := range lessons {
		out[i] = l.Price
	}
	return out
}

func topics(lessons []models.Lesson) []string {
	out := make([]string, len(lessons))
	for i, l := range lessons {
		out[i] = l.Topic
	}
	return out
}

func TestSortLessons_ByPrice(t *testing.T) {
	in := []models.Lesson{{Topic: "a", Price: 120}, {Topic: "b", Price: 80}, {Topic: "c", Price: 100}}

	assert.Equal(t, []float64{80, 100, 120}, prices(SortLessons(in, SortPrice, Ascending)))
	assert.Equal(t, []float64{120, 100, 80}, prices(SortLessons(in, SortPrice, Descending)))
	assert.Equal(t, []float64{120, 80, 100}, prices(in), "input must not be reordered")
}

func TestSortLessons_TextUsesCollation(t *testing.T) {
	in := []models.Lesson{{Topic: "cherry"}, {Topic: "Banana"}, {Topic: "apple"}}

	assert.Equal(t, []string{"apple", "Banana", "cherry"}, topics(SortLessons(in, SortTopic, Ascending)))
	assert.Equal(t, []string{"cherry", "Banana", "apple"}, topics(SortLessons(in, SortTopic, Descending)))
}

func TestSortLessons_ByLocationAndSpace(t *testing.T) {
	in := []models.Lesson{
		{Topic: "x", Location: "Wembley", Space: 2},
		{Topic: "y", Location: "Camden", Space: 5},
		{Topic: "z", Location: "Hendon", Space: 0},
	}

	assert.Equal(t, []string{"y", "z", "x"}, topics(SortLessons(in, SortLocation, Ascending)))
	assert.Equal(t, []string{"y", "x", "z"}, topics(SortLessons(in, SortSpace, Descending)))
}

func TestSortLessons_Stable(t *testing.T) {
	in := []models.Lesson{{Topic: "first", Price: 10}, {Topic: "second", Price: 10}, {Topic: "third", Price: 5}}
	assert.Equal(t, []string{"third", "first", "second"}, topics(SortLessons(in, SortPrice, Ascending)))
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, SortPrice, ParseSortKey("price"))
	assert.Equal(t, SortTopic, ParseSortKey("colour"))
	assert.Equal(t, Descending, ParseSortOrder("descending"))
	assert.Equal(t, Ascending, ParseSortOrder(""))
}

func TestSorted_RecomputesOnDependencyChange(t *testing.T) {
	s := newStaticFront(t)

	assert.Equal(t, []string{"English", "Math", "Physics"}, topics(s.Sorted()))

	s.SetSort(SortSpace, Ascending)
	assert.Equal(t, []string{"Physics", "Math", "English"}, topics(s.Sorted()))

	// Taking two English seats leaves it below Math.
	require.NoError(t, s.AddToCart("2"))
	require.NoError(t, s.AddToCart("2"))
	assert.Equal(t, []string{"Physics", "English", "Math"}, topics(s.Sorted()))

	s.SetSort(SortPrice, Descending)
	assert.Equal(t, []string{"Physics", "Math", "English"}, topics(s.Snapshot().Lessons))
}

func TestSetSort_EmitsViewChanged(t *testing.T) {
	s := newStaticFront(t)
	var got []EventKind
	unsubscribe := s.Subscribe(func(e Event) { got = append(got, e.Kind) })

	s.SetSort(SortPrice, Ascending)
	s.SetSort(SortPrice, Ascending) // unchanged, no event
	unsubscribe()
	s.SetSort(SortTopic, Ascending)

	assert.Equal(t, []EventKind{ViewChanged}, got)
}
