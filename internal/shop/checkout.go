package shop

import (
	"context"
	"errors"
	"strings"

	"github.com/alextreichler/lessonshop/internal/lessonapi"
	"github.com/alextreichler/lessonshop/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Checkout submits the cart as an order for the customer in the form.
//
// After the order is accepted, the new space of every ordered lesson is
// pushed to the backend concurrently. On success the
// ordered lines leave the cart and the form is cleared. On failure the
// ordered quantities go back to their lessons and leave the cart; if the
// order had already been accepted the catalog is re-fetched so local space
// matches the backend again.
func (s *Storefront) Checkout(ctx context.Context) (*models.Order, error) {
	s.mu.Lock()
	if s.checkingOut {
		s.mu.Unlock()
		return nil, ErrCheckoutInProgress
	}
	if !s.form.Valid() {
		s.mu.Unlock()
		return nil, ErrInvalidForm
	}
	if len(s.cart) == 0 {
		s.mu.Unlock()
		return nil, ErrEmptyCart
	}
	s.checkingOut = true

	lines := make([]models.OrderLine, 0, len(s.cart))
	updates := make(map[string]int, len(s.cart))
	for _, item := range s.cart {
		lines = append(lines, models.OrderLine{LessonID: item.ID, Quantity: item.Quantity, Topic: item.Topic})
		base, ok := s.serverSpace[item.ID]
		if !ok {
			base = item.Space
		}
		updates[item.ID] = max(base-item.Quantity, 0)
	}
	order := &models.Order{
		Customer: models.Customer{
			FirstName: strings.TrimSpace(s.form.FirstName),
			LastName:  strings.TrimSpace(s.form.LastName),
			Phone:     strings.TrimSpace(s.form.Phone),
		},
		Items:          lines,
		IdempotencyKey: uuid.NewString(),
	}
	static := lessonapi.IsStatic(s.api)
	s.mu.Unlock()

	created, err := s.api.CreateOrder(ctx, order)
	if err != nil {
		s.failCheckout(ctx, lines, err, false)
		return nil, err
	}

	if !static {
		if err := s.pushInventory(ctx, updates); err != nil {
			s.failCheckout(ctx, lines, err, true)
			return nil, err
		}
	}

	s.completeCheckout(lines, updates, static)
	s.log.Info("Order submitted",
		"order_id", created.ID,
		"order_ref", created.OrderRef,
		"lines", len(lines),
	)
	return created, nil
}

// CheckingOut reports whether a checkout is in flight.
func (s *Storefront) CheckingOut() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkingOut
}

func (s *Storefront) pushInventory(ctx context.Context, updates map[string]int) error {
	g, gctx := errgroup.WithContext(ctx)
	for id, space := range updates {
		g.Go(func() error {
			if err := s.api.UpdateSpace(gctx, id, space); err != nil {
				s.log.Warn("Inventory update failed", "lesson_id", id, "space", space, "error", err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// takeLinesLocked removes the ordered quantities from the cart and returns how
// much of each line was still there. Lines added while the order was in
// flight stay in the cart.
func (s *Storefront) takeLinesLocked(lines []models.OrderLine) map[string]int {
	taken := make(map[string]int, len(lines))
	for _, line := range lines {
		j := s.cartIndex(line.LessonID)
		if j < 0 {
			continue
		}
		qty := min(line.Quantity, s.cart[j].Quantity)
		taken[line.LessonID] = qty
		s.cart[j].Quantity -= qty
		if s.cart[j].Quantity <= 0 {
			s.cart = append(s.cart[:j], s.cart[j+1:]...)
		}
	}
	return taken
}

func (s *Storefront) completeCheckout(lines []models.OrderLine, updates map[string]int, static bool) {
	s.mu.Lock()
	taken := s.takeLinesLocked(lines)
	if static {
		// Nothing was persisted, the seats are free again.
		for id, qty := range taken {
			if i := s.lessonIndex(id); i >= 0 {
				s.lessons[i].Space += qty
			}
		}
	} else {
		// The backend now holds the ordered seats, including those of lines
		// removed from the cart while the order was in flight.
		for id, space := range updates {
			s.serverSpace[id] = space
			if i := s.lessonIndex(id); i >= 0 {
				s.lessons[i].Space = max(space-s.cartQuantity(id), 0)
			}
		}
	}
	s.version++
	s.form = CheckoutForm{}
	s.checkingOut = false
	s.lastErr = nil
	s.mu.Unlock()

	s.message.Show(MessageSuccess, "Order submitted successfully!")
	s.emit(CartChanged, LessonsChanged, FormChanged)
}

func (s *Storefront) failCheckout(ctx context.Context, lines []models.OrderLine, err error, orderCreated bool) {
	s.mu.Lock()
	taken := s.takeLinesLocked(lines)
	for id, qty := range taken {
		if i := s.lessonIndex(id); i >= 0 {
			s.lessons[i].Space += qty
		}
	}
	s.version++
	s.checkingOut = false
	s.lastErr = err
	s.mu.Unlock()

	s.log.Error("Checkout failed", "order_created", orderCreated, "error", err)
	s.message.Show(MessageError, "Order failed. Please try again.")
	s.emit(CartChanged, LessonsChanged)

	if orderCreated {
		// Some updates may have landed; take the backend's word for it.
		if rerr := s.Refresh(context.WithoutCancel(ctx)); rerr != nil && !errors.Is(rerr, ErrSuperseded) {
			s.log.Warn("Failed to reconcile lessons after checkout", "error", rerr)
		}
	}
}
