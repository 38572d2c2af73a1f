package scheduler_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/internal/domain/service"
	"github.com/identra/identra/internal/infrastructure/scheduler"
	"github.com/identra/identra/pkg/logger"
)

// stubCodeService implements AuthCodeService with a controllable purge.
type stubCodeService struct {
	purges  int64
	failErr error
	block   chan struct{}
}

var _ service.AuthCodeService = (*stubCodeService)(nil)

func (s *stubCodeService) IssueCode(context.Context, *models.User, *models.Application, []string, string, time.Time) (*models.AuthorizationCode, error) {
	panic("not used")
}

func (s *stubCodeService) RedeemCode(context.Context, string, time.Time) (*service.Redemption, error) {
	panic("not used")
}

func (s *stubCodeService) PurgeExpired(context.Context, time.Time) (int64, error) {
	atomic.AddInt64(&s.purges, 1)
	if s.block != nil {
		<-s.block
	}
	if s.failErr != nil {
		return 0, s.failErr
	}
	return 3, nil
}

func TestRunOnce_Sweeps(t *testing.T) {
	codes := &stubCodeService{}
	s := scheduler.NewPurgeScheduler(codes, time.Hour, logger.NewNoop())

	assert.True(t, s.RunOnce(context.Background()))
	assert.Equal(t, int64(1), atomic.LoadInt64(&codes.purges))
}

func TestRunOnce_SkipsWhileSweepInFlight(t *testing.T) {
	codes := &stubCodeService{block: make(chan struct{})}
	s := scheduler.NewPurgeScheduler(codes, time.Hour, logger.NewNoop())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.RunOnce(context.Background())
	}()

	// Wait until the first sweep is inside PurgeExpired, then try to overlap.
	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&codes.purges) == 1
	}, time.Second, time.Millisecond)

	assert.False(t, s.RunOnce(context.Background()), "overlapping sweep must be skipped")
	assert.Equal(t, int64(1), atomic.LoadInt64(&codes.purges))

	close(codes.block)
	wg.Wait()

	// After the first sweep finishes, sweeping resumes.
	assert.True(t, s.RunOnce(context.Background()))
	assert.Equal(t, int64(2), atomic.LoadInt64(&codes.purges))
}

func TestSweepFailureDoesNotStopScheduler(t *testing.T) {
	codes := &stubCodeService{failErr: fmt.Errorf("database gone")}
	s := scheduler.NewPurgeScheduler(codes, time.Hour, logger.NewNoop())

	assert.True(t, s.RunOnce(context.Background()))
	assert.True(t, s.RunOnce(context.Background()), "a failed sweep must not wedge the guard")
	assert.Equal(t, int64(2), atomic.LoadInt64(&codes.purges))
}

func TestStart_TicksAndStops(t *testing.T) {
	codes := &stubCodeService{}
	s := scheduler.NewPurgeScheduler(codes, 5*time.Millisecond, logger.NewNoop())

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&codes.purges) >= 2
	}, time.Second, time.Millisecond)

	s.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}

	// Stop is idempotent.
	s.Stop()
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	codes := &stubCodeService{}
	s := scheduler.NewPurgeScheduler(codes, time.Hour, logger.NewNoop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on context cancel")
	}
}
