package claude

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

// fakeClaude writes an executable script standing in for the claude CLI.
func fakeClaude(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claude")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func testRunner() *Runner {
	return NewRunner(log.New(io.Discard))
}

func TestRun_CapturesStdout(t *testing.T) {
	bin := fakeClaude(t, `echo '{"result": "feat: add things"}'`)
	out, err := testRunner().Run(context.Background(), bin, "prompt")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != `{"result": "feat: add things"}` {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRun_PrefersStdoutOverStderr(t *testing.T) {
	bin := fakeClaude(t, "echo from-stdout\necho from-stderr >&2")
	out, err := testRunner().Run(context.Background(), bin, "prompt")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "from-stdout" {
		t.Errorf("expected stdout preferred, got %q", out)
	}
}

func TestRun_FallsBackToStderr(t *testing.T) {
	bin := fakeClaude(t, "echo only-on-stderr >&2")
	out, err := testRunner().Run(context.Background(), bin, "prompt")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "only-on-stderr" {
		t.Errorf("expected stderr fallback, got %q", out)
	}
}

func TestRun_NonZeroExitWithOutputSucceeds(t *testing.T) {
	bin := fakeClaude(t, "echo '{\"result\": \"fix: it\"}'\nexit 1")
	out, err := testRunner().Run(context.Background(), bin, "prompt")
	if err != nil {
		t.Fatalf("non-zero exit with output should succeed, got %v", err)
	}
	if !strings.Contains(out, "fix: it") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRun_NonZeroExitNoOutput(t *testing.T) {
	bin := fakeClaude(t, "exit 3")
	_, err := testRunner().Run(context.Background(), bin, "prompt")
	if !errors.Is(err, ErrNoOutput) {
		t.Errorf("expected ErrNoOutput, got %v", err)
	}
}

func TestRun_CleanExitNoOutput(t *testing.T) {
	bin := fakeClaude(t, "exit 0")
	_, err := testRunner().Run(context.Background(), bin, "prompt")
	if !errors.Is(err, ErrNoOutput) {
		t.Errorf("expected ErrNoOutput, got %v", err)
	}
}

func TestRun_Timeout(t *testing.T) {
	bin := fakeClaude(t, "sleep 5")
	r := testRunner()
	r.timeout = 100 * time.Millisecond

	start := time.Now()
	_, err := r.Run(context.Background(), bin, "prompt")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Error("timeout did not kill the process promptly")
	}
}

func TestRun_PromptReachesStdin(t *testing.T) {
	bin := fakeClaude(t, "cat")
	out, err := testRunner().Run(context.Background(), bin, "the prompt body\nwith a diff")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "the prompt body\nwith a diff" {
		t.Errorf("prompt did not round-trip through stdin: %q", out)
	}
}

func TestRun_PromptFileOverwritten(t *testing.T) {
	bin := fakeClaude(t, "cat")
	r := testRunner()

	if _, err := r.Run(context.Background(), bin, "first"); err != nil {
		t.Fatal(err)
	}
	out, err := r.Run(context.Background(), bin, "second")
	if err != nil {
		t.Fatal(err)
	}
	if out != "second" {
		t.Errorf("stale prompt content leaked: %q", out)
	}

	data, err := os.ReadFile(filepath.Join(os.TempDir(), promptFileName))
	if err != nil {
		t.Fatalf("prompt scratch file missing: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("scratch file should hold the last prompt, got %q", data)
	}
}

func TestBoundedBuffer_CapsSilently(t *testing.T) {
	b := &boundedBuffer{limit: 10}

	n, err := b.Write([]byte("0123456789abcdef"))
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if n != 16 {
		t.Errorf("Write must report the full length, got %d", n)
	}
	if b.String() != "0123456789" {
		t.Errorf("expected capped content, got %q", b.String())
	}

	// Subsequent writes past the cap are dropped but still reported whole.
	n, _ = b.Write([]byte("more"))
	if n != 4 {
		t.Errorf("post-cap write must still report full length, got %d", n)
	}
	if b.String() != "0123456789" {
		t.Errorf("post-cap write should not grow the buffer, got %q", b.String())
	}
}

func TestAugmentedEnv(t *testing.T) {
	env := augmentedEnv([]string{"HOME=/home/u", "PATH=/usr/bin"})
	var path string
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			path = kv
		}
	}
	if path == "" {
		t.Fatal("PATH missing from augmented env")
	}
	if !strings.HasSuffix(path, "/usr/bin") {
		t.Errorf("original PATH entries should stay, at the end: %s", path)
	}
	if !strings.Contains(path, "/usr/local/bin") {
		t.Errorf("known install dirs should be prepended: %s", path)
	}

	env = augmentedEnv([]string{"HOME=/home/u"})
	found := false
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			found = true
		}
	}
	if !found {
		t.Error("a PATH entry should be added when none exists")
	}
}
