package models

import (
	"strings"

	"github.com/google/uuid"

	"github.com/identra/identra/pkg/errors"
)

// ApplicationRole is a named grouping scoped to a single application.
type ApplicationRole struct {
	ID            uuid.UUID
	ApplicationID uuid.UUID
	Name          string
}

// Normalize trims the role name in place.
func (r *ApplicationRole) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

// Validate enforces that a role always carries a non-empty name.
func (r *ApplicationRole) Validate() []errors.FieldError {
	var fields []errors.FieldError
	if strings.TrimSpace(r.Name) == "" {
		fields = append(fields, errors.FieldError{Field: "Name", Message: "role name is required"})
	}
	if r.ApplicationID == uuid.Nil {
		fields = append(fields, errors.FieldError{Field: "ApplicationID", Message: "application id is required"})
	}
	return fields
}
