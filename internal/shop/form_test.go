package shop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckoutForm_Validation(t *testing.T) {
	tests := []struct {
		name         string
		form         CheckoutForm
		firstInvalid bool
		lastInvalid  bool
		phoneInvalid bool
		valid        bool
	}{
		{
			name:  "valid",
			form:  CheckoutForm{FirstName: "Ada", LastName: "Lovelace", Phone: "1234567"},
			valid: true,
		},
		{
			name:         "phone with letters",
			form:         CheckoutForm{FirstName: "Ada", LastName: "Lovelace", Phone: "abc"},
			phoneInvalid: true,
		},
		{
			name:         "phone with spaces",
			form:         CheckoutForm{FirstName: "Ada", LastName: "Lovelace", Phone: "0712 345"},
			phoneInvalid: true,
		},
		{
			name:         "digit in first name",
			form:         CheckoutForm{FirstName: "Ad4", LastName: "Lovelace", Phone: "1234567"},
			firstInvalid: true,
		},
		{
			name:        "digit in last name",
			form:        CheckoutForm{FirstName: "Ada", LastName: "L0velace", Phone: "1234567"},
			lastInvalid: true,
		},
		{
			name: "empty fields are required but not flagged",
			form: CheckoutForm{},
		},
		{
			name: "blank first name",
			form: CheckoutForm{FirstName: "   ", LastName: "Lovelace", Phone: "1234567"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.firstInvalid, tt.form.FirstNameInvalid())
			assert.Equal(t, tt.lastInvalid, tt.form.LastNameInvalid())
			assert.Equal(t, tt.phoneInvalid, tt.form.PhoneInvalid())
			assert.Equal(t, tt.valid, tt.form.Valid())
			if tt.valid {
				assert.Empty(t, tt.form.Errors())
			} else {
				assert.NotEmpty(t, tt.form.Errors())
			}
		})
	}
}

func TestCheckoutForm_Errors(t *testing.T) {
	errs := CheckoutForm{FirstName: "", LastName: "B0b", Phone: "abc"}.Errors()
	assert.Equal(t, map[string]string{
		"first_name": "First name is required.",
		"last_name":  "Last name must not contain numbers.",
		"phone":      "Phone number must contain digits only.",
	}, errs)
}

func TestSetForm(t *testing.T) {
	s := newStaticFront(t)
	events := 0
	s.Subscribe(func(e Event) {
		if e.Kind == FormChanged {
			events++
		}
	})

	f := CheckoutForm{FirstName: "Ada", LastName: "Lovelace", Phone: "1234567"}
	s.SetForm(f)
	s.SetForm(f)

	assert.Equal(t, f, s.Form())
	assert.Equal(t, 1, events)
}
