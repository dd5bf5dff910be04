package shop

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddThenRemove(t *testing.T) {
	s := newStaticFront(t)

	require.NoError(t, s.AddToCart("1"))
	assert.Equal(t, 4, space(t, s, "1"))

	cart := s.Cart()
	require.Len(t, cart, 1)
	assert.Equal(t, "Math", cart[0].Topic)
	assert.Equal(t, 1, cart[0].Quantity)

	msg, progress := s.Notice()
	assert.Equal(t, "Math was added to your cart!", msg)
	assert.Greater(t, progress, 0.0)

	require.NoError(t, s.RemoveFromCart("1"))
	assert.Equal(t, 5, space(t, s, "1"))
	assert.Empty(t, s.Cart())
}

func TestAddToCart_RepeatIncrementsQuantity(t *testing.T) {
	s := newStaticFront(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.AddToCart("2"))
	}

	cart := s.Cart()
	require.Len(t, cart, 1)
	assert.Equal(t, 3, cart[0].Quantity)
	assert.Equal(t, 240.0, cart[0].Subtotal())
	assert.Equal(t, 2, space(t, s, "2"))
	assert.Equal(t, 3, s.CartCount())
}

func TestAddToCart_NoSpaceIsNoop(t *testing.T) {
	s := newStaticFront(t)

	err := s.AddToCart("3")
	assert.ErrorIs(t, err, ErrSoldOut)
	assert.Empty(t, s.Cart())
	assert.Equal(t, 0, space(t, s, "3"))

	msg, _ := s.Notice()
	assert.Empty(t, msg)
}

func TestAddToCart_UnknownLesson(t *testing.T) {
	s := newStaticFront(t)
	assert.ErrorIs(t, s.AddToCart("nope"), ErrUnknownLesson)
}

func TestAddToCart_StopsAtZero(t *testing.T) {
	s := newStaticFront(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.AddToCart("1"))
	}
	assert.ErrorIs(t, s.AddToCart("1"), ErrSoldOut)
	assert.Equal(t, 0, space(t, s, "1"))
	assert.Equal(t, 5, s.Cart()[0].Quantity)
}

func TestRemoveFromCart_RestoresWholeQuantity(t *testing.T) {
	s := newStaticFront(t)
	require.NoError(t, s.AddToCart("1"))
	require.NoError(t, s.AddToCart("1"))
	require.NoError(t, s.AddToCart("2"))

	require.NoError(t, s.RemoveFromCart("1"))
	assert.Equal(t, 5, space(t, s, "1"))
	assert.Equal(t, 4, space(t, s, "2"))
	require.Len(t, s.Cart(), 1)

	assert.ErrorIs(t, s.RemoveFromCart("1"), ErrNotInCart)
}

func TestCart_SpaceInvariantHoldsUnderRandomOperations(t *testing.T) {
	s := newStaticFront(t)
	initial := map[string]int{"1": 5, "2": 5, "3": 0}
	ids := []string{"1", "2", "3"}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		id := ids[rng.Intn(len(ids))]
		if rng.Intn(3) == 0 {
			_ = s.RemoveFromCart(id)
		} else {
			_ = s.AddToCart(id)
		}

		held := make(map[string]int)
		for _, item := range s.Cart() {
			assert.GreaterOrEqual(t, item.Quantity, 1)
			held[item.ID] = item.Quantity
		}
		for _, l := range s.Lessons() {
			require.GreaterOrEqual(t, l.Space, 0)
			require.Equal(t, initial[l.ID], l.Space+held[l.ID], "lesson %s", l.ID)
		}
	}
}
