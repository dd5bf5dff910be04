package models

import (
	"strings"
	"time"
)

type Lesson struct {
	ID       string  `json:"_id"`
	Topic    string  `json:"topic"`
	Location string  `json:"location"`
	Price    float64 `json:"price"`
	Space    int     `json:"space"`
	Image    string  `json:"image"` // file name under /images/

	// ImageURL is resolved by the client, never sent by the backend.
	ImageURL string `json:"-"`
}

// ResolveImage joins the backend origin and the image file name.
func (l *Lesson) ResolveImage(origin string) {
	if l.Image == "" {
		l.ImageURL = ""
		return
	}
	l.ImageURL = strings.TrimRight(origin, "/") + "/images/" + l.Image
}

type CartItem struct {
	Lesson
	Quantity int `json:"quantity"`
}

// Subtotal is price times quantity.
func (c CartItem) Subtotal() float64 {
	return c.Price * float64(c.Quantity)
}

type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

type OrderLine struct {
	LessonID string `json:"lessonId"`
	Quantity int    `json:"quantity"`
	Topic    string `json:"topic"`
}

type Order struct {
	Customer

	ID       string      `json:"_id,omitempty"`
	OrderRef string      `json:"orderRef,omitempty"` // Public "A7X9..." reference
	Items    []OrderLine `json:"items"`

	IdempotencyKey string    `json:"-"`
	CreatedAt      time.Time `json:"-"`
}

// SpaceUpdate is the body of PUT /lessons/:id.
type SpaceUpdate struct {
	Space *int `json:"space"`
}

type DashboardStats struct {
	TotalLessons   int
	TotalOrders    int
	TotalSeats     int
	LessonBookings []LessonBookingCount
}

type LessonBookingCount struct {
	LessonID string
	Topic    string
	Booked   int
	Space    int
}
