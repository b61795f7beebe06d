package ocr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webboty/llm-aided-ocr/errors"
	"github.com/webboty/llm-aided-ocr/job"
	"github.com/webboty/llm-aided-ocr/pipeline"
)

// completeJob fabricates a completed record whose artifacts live under the
// service's results root.
func completeJob(t *testing.T, svc *Service, registry *job.Registry) (job.Job, map[string]string) {
	t.Helper()

	j := registry.Create("queued")
	dir := filepath.Join(svc.ResultsDir(), j.ID)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	files, err := writeArtifacts(dir)
	require.NoError(t, err)

	done, err := registry.Update(j.ID, func(j *job.Job) {
		j.StartProcessing(0.1, "starting")
		j.Complete(files, "done")
	})
	require.NoError(t, err)
	return done, files
}

func TestResolveArtifactByName(t *testing.T) {
	svc, registry := newTestService(t, &stubRunner{}, Options{})
	j, files := completeJob(t, svc, registry)

	path, err := svc.ResolveArtifact(j.ID, "doc__raw_ocr.txt")
	require.NoError(t, err)
	assert.Equal(t, files[pipeline.ArtifactRawOCR], path)

	// Traversal components are stripped before matching
	path, err = svc.ResolveArtifact(j.ID, "../../doc_llm_corrected.md")
	require.NoError(t, err)
	assert.Equal(t, files[pipeline.ArtifactCorrected], path)
}

func TestResolveArtifactFallsBackToJobDirectory(t *testing.T) {
	svc, registry := newTestService(t, &stubRunner{}, Options{})
	j, _ := completeJob(t, svc, registry)

	// A file in the job directory that the record never declared
	extra := filepath.Join(svc.ResultsDir(), j.ID, "sidecar.log")
	require.NoError(t, os.WriteFile(extra, []byte("log"), 0o644))

	path, err := svc.ResolveArtifact(j.ID, "sidecar.log")
	require.NoError(t, err)
	assert.Equal(t, extra, path)
}

func TestResolveArtifactDeclaredButMissing(t *testing.T) {
	svc, registry := newTestService(t, &stubRunner{}, Options{})
	j, files := completeJob(t, svc, registry)

	require.NoError(t, os.Remove(files[pipeline.ArtifactRawOCR]))

	// A declared-but-deleted artifact is not found, with no fallback probe
	_, err := svc.ResolveArtifact(j.ID, "doc__raw_ocr.txt")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestResolveArtifactRequiresCompletion(t *testing.T) {
	svc, registry := newTestService(t, &stubRunner{}, Options{})
	j := registry.Create("queued")

	_, err := svc.ResolveArtifact(j.ID, "doc__raw_ocr.txt")
	assert.True(t, errors.Is(err, errors.ErrJobNotCompleted))

	_, err = svc.ResolveArtifact("missing-job", "doc__raw_ocr.txt")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestResolveArtifactKind(t *testing.T) {
	svc, registry := newTestService(t, &stubRunner{}, Options{})
	j, files := completeJob(t, svc, registry)

	path, err := svc.ResolveArtifactKind(j.ID, pipeline.ArtifactCorrected)
	require.NoError(t, err)
	assert.Equal(t, files[pipeline.ArtifactCorrected], path)

	_, err = svc.ResolveArtifactKind(j.ID, "thumbnails")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestListResourcesTracksDiskState(t *testing.T) {
	svc, registry := newTestService(t, &stubRunner{}, Options{})
	j, files := completeJob(t, svc, registry)
	registry.Create("still pending")

	resources := svc.ListResources()
	require.Len(t, resources, 2, "only completed jobs contribute resources")
	for _, r := range resources {
		assert.Equal(t, j.ID, r.JobID)
		assert.Equal(t, "ocr://job/"+j.ID+"/"+r.Kind, r.URI())
	}

	// A file removed behind the service's back drops out of the listing
	require.NoError(t, os.Remove(files[pipeline.ArtifactRawOCR]))
	resources = svc.ListResources()
	require.Len(t, resources, 1)
	assert.Equal(t, pipeline.ArtifactCorrected, resources[0].Kind)
	assert.Equal(t, "text/markdown", resources[0].MIMEType)
}

func TestArtifactMIMEType(t *testing.T) {
	assert.Equal(t, "text/plain", ArtifactMIMEType("/x/doc__raw_ocr.TXT"))
	assert.Equal(t, "text/markdown", ArtifactMIMEType("/x/doc_llm_corrected.md"))
}
