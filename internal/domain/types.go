package domain

import (
	"errors"
	"fmt"
)

// Cafe is one row of the cafe catalog. The JSON tags are the wire field list
// used by every endpoint that returns cafes.
type Cafe struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	MapURL       string  `json:"map_url"`
	ImgURL       string  `json:"img_url"`
	Location     string  `json:"location"`
	Seats        string  `json:"seats"`
	HasToilet    bool    `json:"has_toilet"`
	HasWifi      bool    `json:"has_wifi"`
	HasSockets   bool    `json:"has_sockets"`
	CanTakeCalls bool    `json:"can_take_calls"`
	CoffeePrice  *string `json:"coffee_price"`
}

// NewCafe holds the fields accepted when adding a cafe. ID is assigned by the
// store.
type NewCafe struct {
	Name         string
	MapURL       string
	ImgURL       string
	Location     string
	Seats        string
	HasToilet    bool
	HasWifi      bool
	HasSockets   bool
	CanTakeCalls bool
	CoffeePrice  *string
}

var (
	ErrNotFound      = errors.New("cafe not found")
	ErrEmpty         = errors.New("no cafes in the database")
	ErrForbidden     = errors.New("invalid api key")
	ErrInvalid       = errors.New("invalid cafe")
	ErrDuplicateName = fmt.Errorf("%w: a cafe with that name already exists", ErrInvalid)
)

// ValidationError reports a single malformed or missing form field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}
