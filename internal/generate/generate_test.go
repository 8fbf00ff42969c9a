package generate

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/inkwell-tools/scribe/internal/gitx"
	"github.com/inkwell-tools/scribe/internal/parse"
	"github.com/inkwell-tools/scribe/internal/store"
)

// fakeClaude writes a script that answers --version probes and otherwise
// emits the given body to stdout.
func fakeClaude(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claude")
	script := "#!/bin/sh\nif [ \"$1\" = \"--version\" ]; then echo 1.0.0; exit 0; fi\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		cmd.Env = append(os.Environ(), "GIT_CONFIG_NOSYSTEM=1", "HOME="+dir)
		out, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}
	run("init")
	run("config", "user.email", "test@test.com")
	run("config", "user.name", "Test")
	run("commit", "--allow-empty", "-m", "init")
	return dir
}

func stageChange(t *testing.T, dir string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cmd := exec.Command("git", "-C", dir, "add", "main.go")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git add failed: %v\n%s", err, out)
	}
}

func testGenerator(claudePath string) *Generator {
	s := &store.Store{Config: store.DefaultConfig()}
	s.Config.Claude.Path = claudePath
	return New(s, log.New(io.Discard))
}

func TestCommitMessage_EndToEnd(t *testing.T) {
	dir := newTestRepo(t)
	stageChange(t, dir)
	bin := fakeClaude(t, `echo '{"result": "feat(api): add pagination"}'`)

	res, err := testGenerator(bin).CommitMessage(context.Background(), dir)
	if err != nil {
		t.Fatalf("CommitMessage failed: %v", err)
	}
	if res.Message != "feat(api): add pagination" {
		t.Errorf("unexpected message %q", res.Message)
	}
	if res.DiffSource != gitx.SourceStaged {
		t.Errorf("expected staged diff source, got %s", res.DiffSource)
	}
	if res.Executable.Strategy != "configured path" {
		t.Errorf("expected configured path strategy, got %q", res.Executable.Strategy)
	}
}

func TestCommitMessage_NotARepo(t *testing.T) {
	bin := fakeClaude(t, `echo '{"result": "x"}'`)
	_, err := testGenerator(bin).CommitMessage(context.Background(), t.TempDir())
	if err == nil {
		t.Fatal("expected error for a non-repo path")
	}
}

func TestCommitMessage_NoChanges(t *testing.T) {
	dir := newTestRepo(t)
	bin := fakeClaude(t, `echo '{"result": "x"}'`)

	_, err := testGenerator(bin).CommitMessage(context.Background(), dir)
	if !errors.Is(err, gitx.ErrNoChanges) {
		t.Errorf("expected ErrNoChanges, got %v", err)
	}
}

func TestCommitMessage_ClaudeReportsError(t *testing.T) {
	dir := newTestRepo(t)
	stageChange(t, dir)
	bin := fakeClaude(t, `echo '{"result": "rate limited", "is_error": true}'`)

	_, err := testGenerator(bin).CommitMessage(context.Background(), dir)
	if !errors.Is(err, parse.ErrResponse) {
		t.Errorf("expected ErrResponse, got %v", err)
	}
}

func TestCommitMessage_EmptyMessageRejected(t *testing.T) {
	dir := newTestRepo(t)
	stageChange(t, dir)
	bin := fakeClaude(t, `echo '{"result": "   "}'`)

	_, err := testGenerator(bin).CommitMessage(context.Background(), dir)
	if err == nil {
		t.Fatal("expected error for a blank extracted message")
	}
}
