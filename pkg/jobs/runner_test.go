package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunnerDrainsUntilEmpty(t *testing.T) {
	var remaining int64 = 5
	var handled int64

	runner := NewRunner("test", func(ctx context.Context) (int, error) {
		if atomic.AddInt64(&remaining, -1) >= 0 {
			atomic.AddInt64(&handled, 1)
			return 1, nil
		}
		return 0, nil
	}, RunnerConfig{Workers: 1, PollInterval: time.Hour})

	runner.Start(context.Background())
	defer runner.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&handled) == 5
	}, time.Second, 10*time.Millisecond)
}

func TestRunnerNudgeWakesWorker(t *testing.T) {
	var drained int64

	runner := NewRunner("test", func(ctx context.Context) (int, error) {
		atomic.AddInt64(&drained, 1)
		return 0, nil
	}, RunnerConfig{Workers: 1, PollInterval: time.Hour})

	runner.Start(context.Background())
	defer runner.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&drained) >= 1
	}, time.Second, 10*time.Millisecond)

	before := atomic.LoadInt64(&drained)
	runner.Nudge()
	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&drained) > before
	}, time.Second, 10*time.Millisecond)
}

func TestRunnerStopIsIdempotent(t *testing.T) {
	runner := NewRunner("test", func(ctx context.Context) (int, error) {
		return 0, nil
	}, RunnerConfig{Workers: 2, PollInterval: 10 * time.Millisecond})

	runner.Start(context.Background())
	runner.Stop()
	runner.Stop()
}
