package pipeline_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/identra/identra/internal/application/pipeline"
	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/internal/domain/service"
	"github.com/identra/identra/pkg/constants"
	"github.com/identra/identra/pkg/errors"
	"github.com/identra/identra/pkg/logger"
)

// namedStage records its execution for ordering assertions.
type namedStage struct {
	name  string
	trace *[]string
}

func (s *namedStage) Execute(ctx context.Context, req *pipeline.Request, next pipeline.Handler) (any, error) {
	*s.trace = append(*s.trace, s.name)
	return next(ctx, req)
}

// allowAll / denyAll are fixed-answer authorizers.
type allowAll struct{}

func (allowAll) IsAllowed(constants.OperationKind, *models.User) bool { return true }

type denyAll struct{}

func (denyAll) IsAllowed(constants.OperationKind, *models.User) bool { return false }

// countingMetrics records performance-stage emissions.
type countingMetrics struct {
	service.Metrics

	mu       sync.Mutex
	observed []string
	slow     []string
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{Metrics: service.NopMetrics()}
}

func (m *countingMetrics) OperationObserved(operation string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observed = append(m.observed, operation)
}

func (m *countingMetrics) SlowOperation(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slow = append(m.slow, operation)
}

// recordingSink captures published audit events.
type recordingSink struct {
	mu     sync.Mutex
	events []pipeline.AuditEvent
	err    error
}

func (s *recordingSink) Publish(_ context.Context, event pipeline.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

// failingInput always fails validation with two field errors.
type failingInput struct{}

func (failingInput) Validate() []errors.FieldError {
	return []errors.FieldError{
		{Field: "Code", Message: "code is required"},
		{Field: "RedirectUris", Message: "at least one redirect URI is required"},
	}
}

func request(input any) *pipeline.Request {
	return &pipeline.Request{
		Kind:      constants.OpCreateApplication,
		Principal: &models.User{ID: uuid.New(), Login: "ada"},
		Input:     input,
	}
}

func okHandler(result any) pipeline.Handler {
	return func(context.Context, *pipeline.Request) (any, error) { return result, nil }
}

func TestCompose_StagesRunInDeclarationOrder(t *testing.T) {
	var trace []string
	h := pipeline.Compose(
		func(context.Context, *pipeline.Request) (any, error) {
			trace = append(trace, "handler")
			return nil, nil
		},
		&namedStage{name: "first", trace: &trace},
		&namedStage{name: "second", trace: &trace},
		&namedStage{name: "third", trace: &trace},
	)

	_, err := h(context.Background(), request(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third", "handler"}, trace)
}

func TestRecoveryStage_ContainsPanics(t *testing.T) {
	stage := &pipeline.RecoveryStage{Log: logger.NewNoop()}

	result, err := stage.Execute(context.Background(), request(nil),
		func(context.Context, *pipeline.Request) (any, error) {
			panic("boom")
		})
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.IsInternal(err))
}

func TestRecoveryStage_NormalizesForeignErrors(t *testing.T) {
	stage := &pipeline.RecoveryStage{Log: logger.NewNoop()}

	_, err := stage.Execute(context.Background(), request(nil),
		func(context.Context, *pipeline.Request) (any, error) {
			return nil, fmt.Errorf("driver: connection reset")
		})
	require.Error(t, err)
	assert.True(t, errors.IsInternal(err))
}

func TestRecoveryStage_PassesAppErrorsThrough(t *testing.T) {
	stage := &pipeline.RecoveryStage{Log: logger.NewNoop()}

	_, err := stage.Execute(context.Background(), request(nil),
		func(context.Context, *pipeline.Request) (any, error) {
			return nil, errors.ErrNotFound("application")
		})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestAuthorizationStage_FailsClosed(t *testing.T) {
	stage := &pipeline.AuthorizationStage{Authorizer: denyAll{}}

	called := false
	_, err := stage.Execute(context.Background(), request(nil),
		func(context.Context, *pipeline.Request) (any, error) {
			called = true
			return nil, nil
		})
	require.Error(t, err)
	assert.True(t, errors.IsForbidden(err))
	assert.False(t, called, "handler must not run when authorization fails")
}

func TestAuthorizationStage_Allows(t *testing.T) {
	stage := &pipeline.AuthorizationStage{Authorizer: allowAll{}}

	result, err := stage.Execute(context.Background(), request(nil), okHandler("ok"))
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestValidationStage_AggregatesAllFailures(t *testing.T) {
	stage := &pipeline.ValidationStage{}

	_, err := stage.Execute(context.Background(), request(failingInput{}), okHandler(nil))
	require.Error(t, err)

	var app *errors.AppError
	require.True(t, errors.As(err, &app))
	assert.Equal(t, constants.ErrCodeValidationFailed, app.Code())
	require.Len(t, app.Fields(), 2)
	assert.Equal(t, "Code", app.Fields()[0].Field)
	assert.Equal(t, "RedirectUris", app.Fields()[1].Field)
}

func TestValidationStage_IgnoresNonValidatableInput(t *testing.T) {
	stage := &pipeline.ValidationStage{}

	result, err := stage.Execute(context.Background(), request(struct{ X int }{1}), okHandler("ok"))
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestAuditStage_PublishesAndContinues(t *testing.T) {
	sink := &recordingSink{}
	stage := &pipeline.AuditStage{Log: logger.NewNoop(), Sink: sink}

	req := request(failingInput{})
	result, err := stage.Execute(context.Background(), req, okHandler("ok"))
	require.NoError(t, err)
	assert.Equal(t, "ok", result)

	require.Len(t, sink.events, 1)
	assert.Equal(t, string(constants.OpCreateApplication), sink.events[0].Operation)
	assert.Equal(t, req.Principal.ID.String(), sink.events[0].PrincipalID)
	assert.Equal(t, "ada", sink.events[0].PrincipalName)
}

func TestAuditStage_SinkFailureDoesNotBlock(t *testing.T) {
	sink := &recordingSink{err: fmt.Errorf("broker unavailable")}
	stage := &pipeline.AuditStage{Log: logger.NewNoop(), Sink: sink}

	result, err := stage.Execute(context.Background(), request(nil), okHandler("ok"))
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestPerformanceStage_ObservesEveryOperation(t *testing.T) {
	metrics := newCountingMetrics()
	stage := &pipeline.PerformanceStage{Log: logger.NewNoop(), Metrics: metrics, Threshold: time.Second}

	result, err := stage.Execute(context.Background(), request(nil), okHandler("ok"))
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, []string{string(constants.OpCreateApplication)}, metrics.observed)
	assert.Empty(t, metrics.slow)
}

func TestPerformanceStage_FlagsSlowOperations(t *testing.T) {
	metrics := newCountingMetrics()
	stage := &pipeline.PerformanceStage{Log: logger.NewNoop(), Metrics: metrics, Threshold: time.Millisecond}

	_, err := stage.Execute(context.Background(), request(nil),
		func(context.Context, *pipeline.Request) (any, error) {
			time.Sleep(5 * time.Millisecond)
			return nil, nil
		})
	require.NoError(t, err)
	assert.Equal(t, []string{string(constants.OpCreateApplication)}, metrics.slow)
}
