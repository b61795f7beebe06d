package ocr

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/webboty/llm-aided-ocr/errors"
	"github.com/webboty/llm-aided-ocr/job"
)

func newTestDispatcher(t *testing.T, registry *job.Registry, maxConcurrent int) *Dispatcher {
	t.Helper()
	d := NewDispatcher(registry, maxConcurrent, zap.NewNop().Sugar())
	t.Cleanup(d.Close)
	return d
}

func TestSubmitDoesNotBlock(t *testing.T) {
	registry := job.NewRegistry()
	d := newTestDispatcher(t, registry, 0)

	release := make(chan struct{})
	done := make(chan struct{})
	d.Submit("a", func(ctx context.Context) error {
		<-release
		close(done)
		return nil
	})

	// Submit returned while the invocation is still parked
	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("invocation never ran")
	}
}

func TestErrorBecomesJobFailure(t *testing.T) {
	registry := job.NewRegistry()
	d := newTestDispatcher(t, registry, 0)

	j := registry.Create("queued")
	d.Submit(j.ID, func(ctx context.Context) error {
		return errors.New("pipeline exploded")
	})

	require.Eventually(t, func() bool {
		got, err := registry.Get(j.ID)
		return err == nil && got.Status == job.StatusFailed
	}, time.Second, time.Millisecond)

	got, err := registry.Get(j.ID)
	require.NoError(t, err)
	assert.Contains(t, got.Error, "pipeline exploded")
	assert.Equal(t, "Processing failed: pipeline exploded", got.Message)
}

func TestPanicBecomesJobFailure(t *testing.T) {
	registry := job.NewRegistry()
	d := newTestDispatcher(t, registry, 0)

	j := registry.Create("queued")
	d.Submit(j.ID, func(ctx context.Context) error {
		panic("nil map write")
	})

	require.Eventually(t, func() bool {
		got, err := registry.Get(j.ID)
		return err == nil && got.Status == job.StatusFailed
	}, time.Second, time.Millisecond)

	got, err := registry.Get(j.ID)
	require.NoError(t, err)
	assert.Contains(t, got.Error, "nil map write")
}

func TestFailureOfDeletedJobIsIgnored(t *testing.T) {
	registry := job.NewRegistry()
	d := newTestDispatcher(t, registry, 0)

	j := registry.Create("queued")
	registry.Delete(j.ID)

	// Must not panic or recreate the record
	d.Submit(j.ID, func(ctx context.Context) error {
		return errors.New("too late")
	})
	d.Close()

	assert.Equal(t, 0, registry.Len())
}

func TestBoundedConcurrency(t *testing.T) {
	registry := job.NewRegistry()
	d := newTestDispatcher(t, registry, 2)

	var mu sync.Mutex
	running, peak := 0, 0
	block := make(chan struct{})

	for i := 0; i < 6; i++ {
		j := registry.Create("queued")
		d.Submit(j.ID, func(ctx context.Context) error {
			mu.Lock()
			running++
			if running > peak {
				peak = running
			}
			mu.Unlock()

			<-block

			mu.Lock()
			running--
			mu.Unlock()
			return nil
		})
	}

	time.Sleep(50 * time.Millisecond)
	close(block)
	d.Close()

	assert.Equal(t, 2, peak, "never more invocations in flight than the bound")
}

func TestCloseWaitsForInFlight(t *testing.T) {
	registry := job.NewRegistry()
	d := NewDispatcher(registry, 0, zap.NewNop().Sugar())

	finished := false
	started := make(chan struct{})
	d.Submit("a", func(ctx context.Context) error {
		close(started)
		time.Sleep(20 * time.Millisecond)
		finished = true
		return nil
	})

	<-started
	d.Close()
	assert.True(t, finished, "Close returns only after the invocation exits")
}
