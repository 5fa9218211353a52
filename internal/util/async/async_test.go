package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ResultsInTaskOrder(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")

	results := Run(context.Background(), []Task{
		{Name: "slow", Func: func(context.Context) error { time.Sleep(30 * time.Millisecond); return nil }},
		{Name: "failing", Func: func(context.Context) error { return boom }},
		{Name: "fast", Func: func(context.Context) error { return nil }},
	})

	require.Len(t, results, 3)
	assert.Equal(t, "slow", results[0].Name)
	assert.NoError(t, results[0].Err)
	assert.GreaterOrEqual(t, results[0].Duration, 30*time.Millisecond)
	assert.Equal(t, "failing", results[1].Name)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.Equal(t, "fast", results[2].Name)
}

func TestRun_Empty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, Run(context.Background(), nil))
}

func TestRun_Concurrent(t *testing.T) {
	t.Parallel()
	var running, peak atomic.Int32
	task := func(context.Context) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		running.Add(-1)
		return nil
	}

	Run(context.Background(), []Task{{Name: "a", Func: task}, {Name: "b", Func: task}, {Name: "c", Func: task}})
	assert.Equal(t, int32(3), peak.Load())
}

func TestRun_PassesContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := Run(ctx, []Task{{Name: "ctx", Func: func(ctx context.Context) error { return ctx.Err() }}})
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}
