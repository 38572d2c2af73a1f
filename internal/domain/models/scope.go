package models

import "github.com/google/uuid"

// Scope is a named permission grant. The distinguished "All" scope doubles as
// the storage reachability probe for the health endpoint.
type Scope struct {
	ID          uuid.UUID
	Name        string
	Description string
}
