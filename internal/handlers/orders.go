package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alextreichler/lessonshop/internal/shop"
)

// checkoutTimeout bounds the order submission together with its inventory
// updates and retries.
const checkoutTimeout = 30 * time.Second

// Checkout stores the submitted customer details in the session's form and
// places the order.
func (h *ShopHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	session, front := h.storefront(r)

	if err := r.ParseForm(); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid form data."})
		redirect(w, r, session, "/cart")
		return
	}

	form := shop.CheckoutForm{
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
		Phone:     r.FormValue("phone"),
	}
	front.SetForm(form)

	if !form.Valid() {
		for _, field := range []string{"first_name", "last_name", "phone"} {
			if msg, ok := form.Errors()[field]; ok {
				session.AddFlash(FlashMessage{Type: "error", Message: msg})
			}
		}
		redirect(w, r, session, "/cart")
		return
	}

	// The order must not be abandoned half way when the browser goes away.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), checkoutTimeout)
	defer cancel()

	order, err := front.Checkout(ctx)
	switch {
	case errors.Is(err, shop.ErrEmptyCart):
		session.AddFlash(FlashMessage{Type: "error", Message: "Your cart is empty."})
		redirect(w, r, session, "/")
		return
	case errors.Is(err, shop.ErrCheckoutInProgress):
		session.AddFlash(FlashMessage{Type: "info", Message: "Your order is already being submitted."})
		redirect(w, r, session, "/cart")
		return
	case err != nil:
		// The storefront shows the failure message; the cart is empty again.
		slog.Warn("Checkout failed", "error", err)
		redirect(w, r, session, "/")
		return
	}

	if order.OrderRef != "" {
		session.AddFlash(FlashMessage{Type: "success", Message: "Your booking reference is " + order.OrderRef + "."})
	}
	redirect(w, r, session, "/")
}
