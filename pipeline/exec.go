package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/webboty/llm-aided-ocr/errors"
)

// ExecRunner runs the pipeline as a subprocess.
//
// The configured command line is launched once per invocation with the
// document and output directory passed as absolute-path flags. Provider and
// model selection travel in the child's environment, so concurrent
// invocations with different providers cannot interfere: nothing process-wide
// and no shared configuration file is ever mutated.
//
// Contract with the command: it processes the document, writes its artifacts
// under --output-dir, and prints a JSON object mapping artifact kind to
// absolute file path as the last line of stdout.
type ExecRunner struct {
	command string // Full command line, shell-quoted (e.g. "python3 llm_aided_ocr.py")
	dir     string // Directory the command runs in; empty means inherit
	logger  *zap.SugaredLogger
}

// NewExecRunner creates a subprocess-backed pipeline runner
func NewExecRunner(command, dir string, logger *zap.SugaredLogger) *ExecRunner {
	return &ExecRunner{
		command: command,
		dir:     dir,
		logger:  logger,
	}
}

// Run implements Runner
func (r *ExecRunner) Run(ctx context.Context, req Request) (map[string]string, error) {
	argv, err := shellquote.Split(r.command)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid pipeline command %q", r.command)
	}
	if len(argv) == 0 {
		return nil, errors.New("pipeline command is empty")
	}

	args := append(argv[1:],
		"--pdf", req.PDFPath,
		"--output-dir", req.OutputDir,
		"--max-test-pages", fmt.Sprintf("%d", req.MaxTestPages),
		"--skip-first-n-pages", fmt.Sprintf("%d", req.SkipFirstNPages),
	)
	if req.ReformatAsMarkdown {
		args = append(args, "--reformat-as-markdown")
	}

	cmd := exec.CommandContext(ctx, argv[0], args...)
	// exec.Cmd.Dir is per-invocation: the pipeline checkout can rely on
	// script-relative paths without anyone touching the process cwd.
	cmd.Dir = r.dir
	cmd.Env = invocationEnv(req)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Infow("Invoking OCR pipeline",
		"command", argv[0],
		"pdf", req.PDFPath,
		"output_dir", req.OutputDir,
		"provider", req.Provider)

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		if msg != "" {
			return nil, errors.Wrapf(err, "pipeline invocation failed: %s", msg)
		}
		return nil, errors.Wrap(err, "pipeline invocation failed")
	}

	files, err := parseArtifacts(stdout.Bytes())
	if err != nil {
		return nil, err
	}

	r.logger.Infow("OCR pipeline finished", "artifacts", len(files))
	return files, nil
}

// invocationEnv builds the child environment with call-scoped provider and
// model selection layered over the parent environment.
//
// USE_LOCAL_LLM is pinned to False for every named provider: it selects the
// pipeline's separate local-GGUF mode, which none of them use (LM Studio
// included).
func invocationEnv(req Request) []string {
	env := os.Environ()
	if req.Provider != "" {
		env = append(env,
			"API_PROVIDER="+providerEnvName(req.Provider),
			"USE_LOCAL_LLM=False",
		)
		if req.Provider == "lm-studio" && req.Model != "" {
			env = append(env, "LM_STUDIO_MODEL="+req.Model)
		}
	}
	return env
}

// providerEnvName maps a provider argument to the pipeline's configuration
// vocabulary: "lm-studio" becomes "LM_STUDIO".
func providerEnvName(provider string) string {
	return strings.ReplaceAll(strings.ToUpper(provider), "-", "_")
}

// parseArtifacts decodes the artifact mapping from the last non-empty line of
// the pipeline's stdout.
func parseArtifacts(out []byte) (map[string]string, error) {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		var files map[string]string
		if err := json.Unmarshal([]byte(line), &files); err != nil {
			return nil, errors.Wrapf(err, "pipeline output is not an artifact mapping: %s", line)
		}
		return files, nil
	}
	return nil, errors.New("pipeline produced no output")
}
