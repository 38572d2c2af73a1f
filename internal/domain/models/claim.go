package models

import (
	"strings"

	"github.com/identra/identra/pkg/errors"
)

// Claim is a named, described attribute attachable to a principal or an
// application. The description defaults to the empty string.
type Claim struct {
	Name        string
	Description string
	Value       string
}

// Validate enforces that a claim always carries a name.
func (c *Claim) Validate() []errors.FieldError {
	if strings.TrimSpace(c.Name) == "" {
		return []errors.FieldError{{Field: "Name", Message: "claim name is required"}}
	}
	return nil
}
