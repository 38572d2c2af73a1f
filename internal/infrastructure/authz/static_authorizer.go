// Package authz implements the Authorization Service as a static table
// mapping operation kinds to their minimal requirement. The table is data
// loaded at startup, so new operations extend it without touching call sites.
package authz

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/internal/domain/service"
	"github.com/identra/identra/pkg/constants"
)

// Requirement is the minimal capability an operation demands.
type Requirement struct {
	// AllowAnonymous permits unauthenticated principals.
	AllowAnonymous bool `yaml:"allowAnonymous"`
	// RequiredClaim, when set, must be present among the principal's resolved
	// claims.
	RequiredClaim string `yaml:"requiredClaim"`
}

// StaticAuthorizer evaluates requests against an immutable requirement table.
// It holds no mutable state and is safe for concurrent use.
type StaticAuthorizer struct {
	table map[constants.OperationKind]Requirement
}

var _ service.Authorizer = (*StaticAuthorizer)(nil)

// DefaultTable is the built-in policy: token exchange legs are reachable by
// unauthenticated clients (they authenticate via code/secret), the authorize
// and 2FA legs need an authenticated user, and application provisioning is
// administrative.
func DefaultTable() map[constants.OperationKind]Requirement {
	return map[constants.OperationKind]Requirement{
		constants.OpCreateApplication: {RequiredClaim: constants.ClaimAdmin},
		constants.OpAuthorize:         {},
		constants.OpExchangeCode:      {AllowAnonymous: true},
		constants.OpRefreshToken:      {AllowAnonymous: true},
		constants.OpPasswordGrant:     {AllowAnonymous: true},
		constants.OpProvisionTOTP:     {},
		constants.OpVerifyTOTP:        {},
		constants.OpPurgeExpiredCodes: {RequiredClaim: constants.ClaimAdmin},
	}
}

// NewStaticAuthorizer builds an authorizer over the given table.
func NewStaticAuthorizer(table map[constants.OperationKind]Requirement) *StaticAuthorizer {
	return &StaticAuthorizer{table: table}
}

// LoadTable reads a requirement table from a YAML file, keyed by operation kind.
func LoadTable(path string) (map[constants.OperationKind]Requirement, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read authorization table: %w", err)
	}
	var table map[constants.OperationKind]Requirement
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("failed to parse authorization table: %w", err)
	}
	return table, nil
}

// IsAllowed applies the table. The system principal is allowed everything
// (background jobs run as it); unknown operations and blocked or deleted
// principals are always denied.
func (a *StaticAuthorizer) IsAllowed(kind constants.OperationKind, principal *models.User) bool {
	if principal.IsSystem() {
		return true
	}

	req, known := a.table[kind]
	if !known {
		return false
	}

	if principal.IsAnonymous() {
		return req.AllowAnonymous
	}
	if !principal.IsActive() {
		return false
	}
	if req.RequiredClaim != "" {
		return principal.HasClaim(req.RequiredClaim)
	}
	return true
}
