// Package claude invokes the Claude Code CLI non-interactively and
// captures its raw output for parsing.
package claude

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/inkwell-tools/scribe/internal/locate"
)

var (
	// ErrTimeout is returned when an invocation exceeds the wall-clock bound.
	ErrTimeout = errors.New("claude invocation timed out")
	// ErrNoOutput is returned when an invocation produced nothing usable:
	// either a non-zero exit with both streams empty, or empty streams
	// outright.
	ErrNoOutput = errors.New("no output received from claude")
)

const (
	// runTimeout bounds one claude invocation.
	runTimeout = 60 * time.Second
	// maxCaptureBytes caps each captured stream. Output beyond the cap is
	// dropped silently.
	maxCaptureBytes = 10 << 20
	// promptFileName is the fixed per-user scratch file the prompt is
	// written to. Overwritten on every invocation, never cleaned up.
	promptFileName = "scribe-prompt.txt"
)

// printFlags is the non-interactive invocation contract with the claude
// CLI. Version-sensitive: must be reproduced exactly.
var printFlags = []string{"--print", "--model", "sonnet", "--output-format", "json", "--dangerously-skip-permissions"}

// Runner invokes the claude CLI.
type Runner struct {
	logger  *log.Logger
	timeout time.Duration
}

// NewRunner returns a Runner with the default timeout.
func NewRunner(logger *log.Logger) *Runner {
	return &Runner{logger: logger, timeout: runTimeout}
}

// Run invokes the claude binary at execPath with the prompt on stdin and
// returns the trimmed raw output. Stdout is preferred; stderr is the
// fallback when stdout is blank.
//
// A non-zero exit is not automatically a failure: some claude versions
// exit non-zero after printing a usable result. Only a non-zero exit with
// both streams empty fails.
func (r *Runner) Run(ctx context.Context, execPath, prompt string) (string, error) {
	promptPath, err := writePromptFile(prompt)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, execPath, printFlags...)
	cmd.Env = augmentedEnv(os.Environ())

	// Feed the prompt from the scratch file rather than the argument list;
	// diffs routinely exceed argv limits. A file-backed stdin also means
	// claude sees EOF immediately and stays non-interactive.
	promptFile, err := os.Open(promptPath)
	if err != nil {
		return "", fmt.Errorf("failed to open prompt file: %w", err)
	}
	defer promptFile.Close()
	cmd.Stdin = promptFile

	stdout := &boundedBuffer{limit: maxCaptureBytes}
	stderr := &boundedBuffer{limit: maxCaptureBytes}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	r.logger.Debug("invoking claude", "path", execPath, "prompt_bytes", len(prompt))
	start := time.Now()
	runErr := cmd.Run()
	r.logger.Debug("claude finished", "elapsed", time.Since(start), "err", runErr)

	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("%w after %s — check that claude is authenticated and responsive", ErrTimeout, r.timeout)
	}

	out := strings.TrimSpace(stdout.String())
	errOut := strings.TrimSpace(stderr.String())

	if runErr != nil && out == "" && errOut == "" {
		return "", fmt.Errorf("%w: %v", ErrNoOutput, runErr)
	}
	if out != "" {
		return out, nil
	}
	if errOut != "" {
		return errOut, nil
	}
	return "", ErrNoOutput
}

// writePromptFile writes the prompt to the fixed scratch path, overwriting
// whatever a previous invocation left there.
func writePromptFile(prompt string) (string, error) {
	path := filepath.Join(os.TempDir(), promptFileName)
	if err := os.WriteFile(path, []byte(prompt), 0600); err != nil {
		return "", fmt.Errorf("failed to write prompt file: %w", err)
	}
	return path, nil
}

// augmentedEnv prepends the known claude install directories to PATH so
// the invocation works even when the parent process has a minimal PATH
// (editor hosts and launchd-started processes commonly do).
func augmentedEnv(env []string) []string {
	extra := strings.Join(locate.SearchPathDirs(), string(os.PathListSeparator))
	out := make([]string, 0, len(env)+1)
	found := false
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			out = append(out, "PATH="+extra+string(os.PathListSeparator)+strings.TrimPrefix(kv, "PATH="))
			found = true
			continue
		}
		out = append(out, kv)
	}
	if !found {
		out = append(out, "PATH="+extra)
	}
	return out
}

// boundedBuffer captures up to limit bytes and silently drops the rest,
// always reporting full writes so the child never sees a pipe error.
type boundedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	if remaining := b.limit - b.buf.Len(); remaining > 0 {
		if len(p) > remaining {
			b.buf.Write(p[:remaining])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *boundedBuffer) String() string { return b.buf.String() }
