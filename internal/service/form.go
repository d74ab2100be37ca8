package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/vbonduro/cafeapi/internal/domain"
)

// ParseBool converts a truthy or falsy token, matched case-insensitively.
// Anything outside the two token sets, including "", is rejected.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "y", "yes", "t", "true", "on", "1":
		return true, nil
	case "n", "no", "f", "false", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: invalid truth value %q", domain.ErrInvalid, s)
}

// ParseNewCafe builds a NewCafe from the form fields of an add request.
// Text fields are taken verbatim; a required one that is absent from the form
// is an error while an empty value is accepted. An absent coffee_price is
// left nil.
func ParseNewCafe(form url.Values) (domain.NewCafe, error) {
	var c domain.NewCafe

	text := []struct {
		field string
		dst   *string
	}{
		{"name", &c.Name},
		{"map_url", &c.MapURL},
		{"img_url", &c.ImgURL},
		{"location", &c.Location},
		{"seats", &c.Seats},
	}
	for _, t := range text {
		if !form.Has(t.field) {
			return domain.NewCafe{}, &domain.ValidationError{Field: t.field, Reason: "is required"}
		}
		*t.dst = form.Get(t.field)
	}

	flags := []struct {
		field string
		dst   *bool
	}{
		{"has_sockets", &c.HasSockets},
		{"has_toilet", &c.HasToilet},
		{"has_wifi", &c.HasWifi},
		{"can_take_calls", &c.CanTakeCalls},
	}
	for _, f := range flags {
		v, err := ParseBool(form.Get(f.field))
		if err != nil {
			return domain.NewCafe{}, &domain.ValidationError{
				Field:  f.field,
				Reason: fmt.Sprintf("invalid truth value %q", form.Get(f.field)),
			}
		}
		*f.dst = v
	}

	if form.Has("coffee_price") {
		price := form.Get("coffee_price")
		c.CoffeePrice = &price
	}

	return c, nil
}
