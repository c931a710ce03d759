package clinic

import (
	"errors"

	"github.com/google/uuid"
)

var ErrMissingScope = errors.New("clinic scope is required")

// Scope identifies the clinic every read and write is restricted to.
type Scope struct {
	ClinicID uuid.UUID
}

func NewScope(id uuid.UUID) Scope {
	return Scope{ClinicID: id}
}

func ParseScope(s string) (Scope, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Scope{}, ErrMissingScope
	}

	return Scope{ClinicID: id}, nil
}

func (s Scope) Validate() error {
	if s.ClinicID == uuid.Nil {
		return ErrMissingScope
	}

	return nil
}

// Owns reports whether a record belonging to clinicID is visible in this scope.
func (s Scope) Owns(clinicID uuid.UUID) bool {
	return s.ClinicID != uuid.Nil && s.ClinicID == clinicID
}
