package shop

import (
	"regexp"
	"strings"
)

var (
	digitRegex    = regexp.MustCompile(`\d`)
	nonDigitRegex = regexp.MustCompile(`\D`)
)

type CheckoutForm struct {
	FirstName string
	LastName  string
	Phone     string
}

// FirstNameInvalid is only true for a filled-in name containing a digit.
func (f CheckoutForm) FirstNameInvalid() bool {
	return f.FirstName != "" && digitRegex.MatchString(f.FirstName)
}

func (f CheckoutForm) LastNameInvalid() bool {
	return f.LastName != "" && digitRegex.MatchString(f.LastName)
}

// PhoneInvalid is only true for a filled-in number with a non-digit character.
func (f CheckoutForm) PhoneInvalid() bool {
	return f.Phone != "" && nonDigitRegex.MatchString(f.Phone)
}

// Valid requires all fields filled in and none invalid.
func (f CheckoutForm) Valid() bool {
	return strings.TrimSpace(f.FirstName) != "" &&
		strings.TrimSpace(f.LastName) != "" &&
		strings.TrimSpace(f.Phone) != "" &&
		!f.FirstNameInvalid() &&
		!f.LastNameInvalid() &&
		!f.PhoneInvalid()
}

// Errors maps field names to messages for display.
func (f CheckoutForm) Errors() map[string]string {
	errs := make(map[string]string)
	switch {
	case strings.TrimSpace(f.FirstName) == "":
		errs["first_name"] = "First name is required."
	case f.FirstNameInvalid():
		errs["first_name"] = "First name must not contain numbers."
	}
	switch {
	case strings.TrimSpace(f.LastName) == "":
		errs["last_name"] = "Last name is required."
	case f.LastNameInvalid():
		errs["last_name"] = "Last name must not contain numbers."
	}
	switch {
	case strings.TrimSpace(f.Phone) == "":
		errs["phone"] = "Phone number is required."
	case f.PhoneInvalid():
		errs["phone"] = "Phone number must contain digits only."
	}
	return errs
}

func (s *Storefront) SetForm(f CheckoutForm) {
	s.mu.Lock()
	if s.form == f {
		s.mu.Unlock()
		return
	}
	s.form = f
	s.mu.Unlock()
	s.emit(FormChanged)
}

func (s *Storefront) Form() CheckoutForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}
