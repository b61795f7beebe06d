package job

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webboty/llm-aided-ocr/errors"
)

func TestCreateAllocatesUniqueIDs(t *testing.T) {
	r := NewRegistry()

	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		j := r.Create("Job queued for processing")
		require.NotEmpty(t, j.ID)
		require.False(t, seen[j.ID], "duplicate id %s", j.ID)
		seen[j.ID] = true

		assert.Equal(t, StatusPending, j.Status)
		assert.Equal(t, 0.0, j.Progress)
	}
	assert.Equal(t, 500, r.Len())
}

func TestGetUnknownID(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("no-such-job")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestUpdateIsAtomic(t *testing.T) {
	r := NewRegistry()
	j := r.Create("queued")

	// 100 goroutines each bump progress by 0.001 via read-modify-write.
	// Without per-id atomicity some increments would be lost.
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Update(j.ID, func(rec *Job) {
				rec.Progress += 0.001
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := r.Get(j.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, got.Progress, 1e-9)
}

func TestUpdateUnknownID(t *testing.T) {
	r := NewRegistry()
	_, err := r.Update("ghost", func(*Job) {})
	assert.True(t, errors.IsNotFoundError(err))
}

func TestUpdateRejectsTerminalRecords(t *testing.T) {
	r := NewRegistry()
	j := r.Create("queued")

	_, err := r.Update(j.ID, func(rec *Job) {
		rec.Complete(map[string]string{"corrected": "/tmp/x.md"}, "done")
	})
	require.NoError(t, err)

	_, err = r.Update(j.ID, func(rec *Job) {
		rec.Message = "tamper"
	})
	assert.True(t, errors.Is(err, errors.ErrJobTerminal))

	got, err := r.Get(j.ID)
	require.NoError(t, err)
	assert.Equal(t, "done", got.Message)
}

func TestUpdatedAtAdvances(t *testing.T) {
	r := NewRegistry()
	j := r.Create("queued")

	updated, err := r.Update(j.ID, func(rec *Job) {
		rec.StartProcessing(0.1, "Starting OCR processing...")
	})
	require.NoError(t, err)
	assert.False(t, updated.UpdatedAt.Before(j.UpdatedAt))
	assert.Equal(t, j.CreatedAt, updated.CreatedAt)
}

func TestCopiesDoNotAliasRegistryState(t *testing.T) {
	r := NewRegistry()
	j := r.Create("queued")

	_, err := r.Update(j.ID, func(rec *Job) {
		rec.Complete(map[string]string{"corrected": "/tmp/a.md"}, "done")
	})
	require.NoError(t, err)

	got, err := r.Get(j.ID)
	require.NoError(t, err)
	got.OutputFiles["corrected"] = "/tmp/hacked"

	again, err := r.Get(j.ID)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/a.md", again.OutputFiles["corrected"])
}

func TestDelete(t *testing.T) {
	r := NewRegistry()
	j := r.Create("queued")

	assert.True(t, r.Delete(j.ID))
	assert.False(t, r.Delete(j.ID), "second delete reports absence")
	assert.Equal(t, 0, r.Len())

	_, err := r.Get(j.ID)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestListReturnsAllRecords(t *testing.T) {
	r := NewRegistry()
	want := make(map[string]bool)
	for i := 0; i < 10; i++ {
		j := r.Create(fmt.Sprintf("job %d", i))
		want[j.ID] = true
	}

	jobs := r.List()
	require.Len(t, jobs, 10)
	for _, j := range jobs {
		assert.True(t, want[j.ID])
	}
}

func TestConcurrentMixedOperations(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j := r.Create("queued")
			_, _ = r.Update(j.ID, func(rec *Job) {
				rec.StartProcessing(0.1, "starting")
			})
			_, _ = r.Get(j.ID)
			_ = r.List()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, r.Len())
}
