package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/identra/identra/internal/domain/service"
	"github.com/identra/identra/pkg/errors"
	"github.com/identra/identra/pkg/logger"
)

// ================================================================================
// Exception Containment
// ================================================================================

// RecoveryStage is the outermost stage. It catches panics and foreign errors
// from inner stages, logs them with full context, and re-raises a normalized
// internal error so no raw failure leaks to the boundary.
type RecoveryStage struct {
	Log logger.Logger
}

func (s *RecoveryStage) Execute(ctx context.Context, req *Request, next Handler) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.Log.Error(ctx, "panic during operation", fmt.Errorf("%v", r), logger.Fields{
				"operation": req.Kind,
				"principal": req.Principal.Name(),
			})
			result = nil
			err = errors.ErrInternal(fmt.Errorf("panic: %v", r))
		}
	}()

	result, err = next(ctx, req)
	if err != nil {
		var app *errors.AppError
		if !errors.As(err, &app) {
			s.Log.Error(ctx, "unexpected operation failure", err, logger.Fields{
				"operation": req.Kind,
				"principal": req.Principal.Name(),
			})
			return nil, errors.ErrInternal(err)
		}
	}
	return result, err
}

// ================================================================================
// Authorization Gate
// ================================================================================

// AuthorizationStage fails closed: any operation the authorizer does not
// explicitly allow is rejected before domain logic runs.
type AuthorizationStage struct {
	Authorizer service.Authorizer
}

func (s *AuthorizationStage) Execute(ctx context.Context, req *Request, next Handler) (any, error) {
	if !s.Authorizer.IsAllowed(req.Kind, req.Principal) {
		return nil, errors.ErrForbidden(req.Principal.Name(), req.Kind)
	}
	return next(ctx, req)
}

// ================================================================================
// Input Validation
// ================================================================================

// ValidationStage runs every declared rule for the operation's input and
// aggregates all field-level messages into a single failure.
type ValidationStage struct{}

func (s *ValidationStage) Execute(ctx context.Context, req *Request, next Handler) (any, error) {
	if input, ok := req.Input.(Validatable); ok {
		if fields := input.Validate(); len(fields) > 0 {
			return nil, errors.ErrValidationFailed(fields...)
		}
	}
	return next(ctx, req)
}

// ================================================================================
// Audit Logging
// ================================================================================

// AuditSink receives audit events emitted before each operation executes.
type AuditSink interface {
	Publish(ctx context.Context, event AuditEvent) error
}

// AuditEvent records who attempted what with which input.
type AuditEvent struct {
	Operation     string    `json:"operation"`
	PrincipalID   string    `json:"principal_id"`
	PrincipalName string    `json:"principal_name"`
	Input         any       `json:"input,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// AuditStage records operation kind, principal and input for diagnostics.
// It never blocks or mutates the request: sink failures are logged and the
// chain continues.
type AuditStage struct {
	Log  logger.Logger
	Sink AuditSink
}

func (s *AuditStage) Execute(ctx context.Context, req *Request, next Handler) (any, error) {
	s.Log.Info(ctx, "executing operation", logger.Fields{
		"operation":      req.Kind,
		"principal_id":   principalID(req),
		"principal_name": req.Principal.Name(),
		"input":          fmt.Sprintf("%+v", req.Input),
	})

	if s.Sink != nil {
		event := AuditEvent{
			Operation:     string(req.Kind),
			PrincipalID:   principalID(req),
			PrincipalName: req.Principal.Name(),
			Input:         req.Input,
			OccurredAt:    time.Now().UTC(),
		}
		if err := s.Sink.Publish(ctx, event); err != nil {
			s.Log.Warn(ctx, "audit publish failed", logger.Fields{
				"operation": req.Kind,
				"error":     err.Error(),
			})
		}
	}

	return next(ctx, req)
}

func principalID(req *Request) string {
	if req.Principal.IsAnonymous() {
		return ""
	}
	return req.Principal.ID.String()
}

// ================================================================================
// Performance Logging
// ================================================================================

// PerformanceStage times the inner execution and emits a slow-operation
// warning past the threshold. The result is never altered.
type PerformanceStage struct {
	Log       logger.Logger
	Metrics   service.Metrics
	Threshold time.Duration
}

func (s *PerformanceStage) Execute(ctx context.Context, req *Request, next Handler) (any, error) {
	start := time.Now()
	result, err := next(ctx, req)
	elapsed := time.Since(start)

	s.Metrics.OperationObserved(string(req.Kind), elapsed.Seconds())
	if elapsed > s.Threshold {
		s.Metrics.SlowOperation(string(req.Kind))
		s.Log.Warn(ctx, "slow operation", logger.Fields{
			"operation":  req.Kind,
			"principal":  req.Principal.Name(),
			"elapsed_ms": elapsed.Milliseconds(),
			"input":      fmt.Sprintf("%+v", req.Input),
		})
	}
	return result, err
}
