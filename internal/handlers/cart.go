package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alextreichler/lessonshop/internal/shop"
)

// Cart shows the cart and the checkout form.
func (h *ShopHandler) Cart(w http.ResponseWriter, r *http.Request) {
	session, front := h.storefront(r)

	ctx, cancel := h.timeout(r.Context())
	defer cancel()
	if err := front.EnsureLoaded(ctx); err != nil && !errors.Is(err, shop.ErrSuperseded) {
		slog.Warn("Rendering cart without a fresh catalog", "error", err)
	}

	form := front.Form()
	h.render(w, r, session, "cart.html", front, map[string]interface{}{
		"FormErrors": formErrors(form),
	})
}

func (h *ShopHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	session, front := h.storefront(r)
	back := returnTo(r)

	switch err := front.AddToCart(r.FormValue("lesson_id")); {
	case errors.Is(err, shop.ErrSoldOut):
		session.AddFlash(FlashMessage{Type: "error", Message: "Sorry, this lesson is full."})
	case errors.Is(err, shop.ErrUnknownLesson):
		session.AddFlash(FlashMessage{Type: "error", Message: "That lesson is no longer available."})
	}
	redirect(w, r, session, back)
}

func (h *ShopHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	session, front := h.storefront(r)

	if err := front.RemoveFromCart(r.FormValue("lesson_id")); err == nil {
		session.AddFlash(FlashMessage{Type: "success", Message: "Lesson removed from your cart."})
	}
	target := "/cart"
	if front.CartCount() == 0 {
		target = "/"
	}
	redirect(w, r, session, target)
}

// formErrors is empty until the customer has submitted the form once.
func formErrors(f shop.CheckoutForm) map[string]string {
	if f == (shop.CheckoutForm{}) {
		return nil
	}
	return f.Errors()
}

// returnTo is the local page a cart form asked to go back to.
func returnTo(r *http.Request) string {
	target := r.FormValue("return_to")
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return "/"
	}
	return target
}
