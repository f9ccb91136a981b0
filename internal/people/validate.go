package people

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPerson marks registration input that failed validation.
var ErrInvalidPerson = errors.New("invalid person")

// Registration is the user-supplied part of a person record, before an
// embedding is attached.
type Registration struct {
	Name         string
	Age          int
	IDCardNumber string
	Nationality  string
	Profession   string
}

// Validate checks the registration fields. Name and ID card number are
// mandatory; age must be plausible when given.
func (r *Registration) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPerson)
	}
	if strings.TrimSpace(r.IDCardNumber) == "" {
		return fmt.Errorf("%w: ID card number is required", ErrInvalidPerson)
	}
	if r.Age < 0 || r.Age > 150 {
		return fmt.Errorf("%w: age %d out of range", ErrInvalidPerson, r.Age)
	}
	return nil
}
