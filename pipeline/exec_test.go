package pipeline

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRequest() Request {
	return Request{
		PDFPath:            "/tmp/doc.pdf",
		OutputDir:          "/tmp/out",
		ReformatAsMarkdown: true,
	}
}

func TestExecRunnerParsesArtifactMapping(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell-based fixture")
	}

	r := NewExecRunner(
		`sh -c 'echo "progress line"; echo "{\"raw_ocr\":\"/tmp/out/a__raw_ocr.txt\",\"corrected\":\"/tmp/out/a_llm_corrected.md\"}"'`,
		"", zap.NewNop().Sugar())

	files, err := r.Run(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out/a__raw_ocr.txt", files[ArtifactRawOCR])
	assert.Equal(t, "/tmp/out/a_llm_corrected.md", files[ArtifactCorrected])
}

func TestExecRunnerSurfacesStderr(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell-based fixture")
	}

	r := NewExecRunner(`sh -c 'echo "tesseract not found" >&2; exit 3'`, "", zap.NewNop().Sugar())

	_, err := r.Run(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tesseract not found")
}

func TestExecRunnerRejectsNonJSONOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell-based fixture")
	}

	r := NewExecRunner(`sh -c 'echo done'`, "", zap.NewNop().Sugar())

	_, err := r.Run(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "artifact mapping")
}

func TestExecRunnerEmptyCommand(t *testing.T) {
	r := NewExecRunner("", "", zap.NewNop().Sugar())
	_, err := r.Run(context.Background(), testRequest())
	assert.Error(t, err)
}

func TestInvocationEnvScopesProviderAndModel(t *testing.T) {
	env := invocationEnv(Request{Provider: "lm-studio", Model: "llama-3.1-8b-instruct"})
	assert.Contains(t, env, "API_PROVIDER=LM_STUDIO")
	assert.Contains(t, env, "USE_LOCAL_LLM=False")
	assert.Contains(t, env, "LM_STUDIO_MODEL=llama-3.1-8b-instruct")
	assert.NotContains(t, env, "USE_LOCAL_LLM=True", "LM Studio is not the local-GGUF mode")

	// Model is only honored for the LM Studio provider
	env = invocationEnv(Request{Provider: "openai", Model: "ignored"})
	assert.Contains(t, env, "API_PROVIDER=OPENAI")
	assert.Contains(t, env, "USE_LOCAL_LLM=False")
	assert.NotContains(t, env, "LM_STUDIO_MODEL=ignored")

	env = invocationEnv(Request{Provider: "claude"})
	assert.Contains(t, env, "API_PROVIDER=CLAUDE")
	assert.Contains(t, env, "USE_LOCAL_LLM=False")
}

func TestProviderEnvName(t *testing.T) {
	assert.Equal(t, "LM_STUDIO", providerEnvName("lm-studio"))
	assert.Equal(t, "OPENAI", providerEnvName("openai"))
	assert.Equal(t, "CLAUDE", providerEnvName("claude"))
}
