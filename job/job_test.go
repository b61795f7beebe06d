package job

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webboty/llm-aided-ocr/errors"
)

func TestStatusValidity(t *testing.T) {
	for _, s := range []string{"pending", "processing", "completed", "failed"} {
		assert.True(t, IsValidStatus(s), s)
	}
	assert.False(t, IsValidStatus("queued"))
	assert.False(t, IsValidStatus(""))
}

func TestTerminalStatuses(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
}

func TestProgressMonotone(t *testing.T) {
	j := &Job{Status: StatusProcessing, Progress: 0.3}

	j.SetProgress(0.1)
	assert.Equal(t, 0.3, j.Progress, "progress must not decrease")

	j.SetProgress(0.7)
	assert.Equal(t, 0.7, j.Progress)

	j.SetProgress(1.5)
	assert.Equal(t, 1.0, j.Progress, "progress is clamped to 1.0")
}

func TestCompleteSetsInvariantFields(t *testing.T) {
	j := &Job{Status: StatusProcessing, Progress: 0.3}
	j.Complete(map[string]string{"corrected": "/tmp/out.md"}, "Processing completed successfully")

	assert.Equal(t, StatusCompleted, j.Status)
	assert.Equal(t, 1.0, j.Progress)
	assert.NotNil(t, j.OutputFiles)
	assert.Empty(t, j.Error)
}

func TestCompleteWithNilFiles(t *testing.T) {
	j := &Job{Status: StatusProcessing}
	j.Complete(nil, "done")
	assert.NotNil(t, j.OutputFiles, "completed jobs always carry a non-nil mapping")
}

func TestFailSetsInvariantFields(t *testing.T) {
	j := &Job{Status: StatusProcessing, OutputFiles: map[string]string{"stale": "x"}}
	j.Fail(errors.New("pipeline exploded"), "Processing failed: pipeline exploded")

	assert.Equal(t, StatusFailed, j.Status)
	assert.Equal(t, "pipeline exploded", j.Error)
	assert.Nil(t, j.OutputFiles, "failed jobs never expose output files")
}

func TestWireShape(t *testing.T) {
	j := Job{ID: "abc", Status: StatusPending, Message: "Job queued for processing"}
	data, err := json.Marshal(j)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))

	assert.Equal(t, "abc", m["job_id"])
	assert.Equal(t, "pending", m["status"])
	assert.Contains(t, m, "output_files", "field is always on the wire")
	assert.Nil(t, m["output_files"], "null until completed")
	assert.NotContains(t, m, "error", "omitted until failed")
}

func TestWireShapeCompletedEmptyMapping(t *testing.T) {
	j := &Job{Status: StatusProcessing}
	j.Complete(nil, "done")

	data, err := json.Marshal(j)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))

	// A completed job with no reported artifacts still shows the mapping
	files, ok := m["output_files"].(map[string]interface{})
	require.True(t, ok, "output_files must be an object, not null, once completed")
	assert.Empty(t, files)
}
