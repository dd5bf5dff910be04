package shop

import (
	"fmt"

	"github.com/alextreichler/lessonshop/internal/models"
)

// AddToCart reserves one seat of the lesson. A lesson without space left is
// left untouched and ErrSoldOut is returned.
func (s *Storefront) AddToCart(lessonID string) error {
	s.mu.Lock()
	i := s.lessonIndex(lessonID)
	if i < 0 {
		s.mu.Unlock()
		return ErrUnknownLesson
	}
	lesson := &s.lessons[i]
	if lesson.Space <= 0 {
		s.mu.Unlock()
		return ErrSoldOut
	}

	if j := s.cartIndex(lessonID); j >= 0 {
		s.cart[j].Quantity++
	} else {
		s.cart = append(s.cart, models.CartItem{Lesson: *lesson, Quantity: 1})
	}
	lesson.Space--
	s.version++
	topic := lesson.Topic
	s.mu.Unlock()

	s.notice.Show(fmt.Sprintf("%s was added to your cart!", topic))
	s.emit(CartChanged, LessonsChanged)
	return nil
}

// RemoveFromCart drops the cart entry and gives its whole quantity back to
// the lesson.
func (s *Storefront) RemoveFromCart(lessonID string) error {
	s.mu.Lock()
	j := s.cartIndex(lessonID)
	if j < 0 {
		s.mu.Unlock()
		return ErrNotInCart
	}
	qty := s.cart[j].Quantity
	s.cart = append(s.cart[:j], s.cart[j+1:]...)
	if i := s.lessonIndex(lessonID); i >= 0 {
		s.lessons[i].Space += qty
		s.version++
	}
	s.mu.Unlock()

	s.emit(CartChanged, LessonsChanged)
	return nil
}

// Cart returns a copy of the cart lines.
func (s *Storefront) Cart() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CartItem(nil), s.cart...)
}

// CartCount is the number of seats in the cart.
func (s *Storefront) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, item := range s.cart {
		n += item.Quantity
	}
	return n
}
