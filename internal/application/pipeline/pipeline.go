// Package pipeline implements the ordered cross-cutting stages wrapped around
// every inbound operation: exception containment, the authorization gate,
// input validation, audit logging and performance logging. Stages compose as
// an explicit chain built at startup; validation and authorization may
// short-circuit, the logging stages always delegate.
package pipeline

import (
	"context"

	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/pkg/constants"
	"github.com/identra/identra/pkg/errors"
)

// Request carries one inbound operation through the stage chain.
type Request struct {
	Kind      constants.OperationKind
	Principal *models.User
	Input     any
}

// Handler executes an operation or delegates to the next stage.
type Handler func(ctx context.Context, req *Request) (any, error)

// Stage wraps a handler. A stage may short-circuit by returning without
// calling next.
type Stage interface {
	Execute(ctx context.Context, req *Request, next Handler) (any, error)
}

// Validatable inputs declare their validation rules; the validation stage
// aggregates every failed rule before the operation runs.
type Validatable interface {
	Validate() []errors.FieldError
}

// Compose wires stages around a handler in declaration order: the first stage
// is outermost. Composition happens once at startup; the returned handler is
// stateless and safe for concurrent invocation.
func Compose(h Handler, stages ...Stage) Handler {
	for i := len(stages) - 1; i >= 0; i-- {
		stage := stages[i]
		next := h
		h = func(ctx context.Context, req *Request) (any, error) {
			return stage.Execute(ctx, req, next)
		}
	}
	return h
}
