package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/rubrica-dev/rubrica-api/internal/models"
)

// Shared sentinel errors surfaced across services. Handlers map these onto
// HTTP status codes; nothing below the handler layer retries them.
var (
	// ErrInvalidID indicates an identifier that does not satisfy the
	// canonical UUID shape. Distinct from "not found" on purpose.
	ErrInvalidID = errors.New("invalid identifier")
	// ErrForbidden indicates the actor's role or ownership check failed.
	// Raised before any mutation is attempted.
	ErrForbidden = errors.New("forbidden")
)

// Actor is the already-authenticated caller as resolved by the auth layer.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// IsStaff reports whether the actor holds the staff or admin role.
func (a Actor) IsStaff() bool {
	return a.Role == models.RoleStaff || a.Role == models.RoleAdmin
}

// IsStudent reports whether the actor holds the student role.
func (a Actor) IsStudent() bool {
	return a.Role == models.RoleStudent
}

// ParseID validates the canonical UUID shape of an identifier. Malformed
// input maps to ErrInvalidID, never to "not found".
func ParseID(raw string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return uuid.Nil, ErrInvalidID
	}

	id, err := uuid.Parse(trimmed)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}
