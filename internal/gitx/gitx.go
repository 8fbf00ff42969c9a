// Package gitx shells out to git for the small set of operations scribe
// needs: diff discovery and applying a commit message.
package gitx

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNoChanges is returned when neither staged nor unstaged changes exist.
var ErrNoChanges = errors.New("no changes found")

// DiffSource names where a diff came from.
type DiffSource string

const (
	SourceStaged   DiffSource = "staged"
	SourceUnstaged DiffSource = "unstaged"
)

func run(repoPath string, args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", repoPath}, args...)...)
	out, err := cmd.CombinedOutput()
	output := strings.TrimRight(string(out), " \t\r\n")
	if err != nil {
		return output, fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), output, err)
	}
	return output, nil
}

// IsRepo reports whether path is inside a git work tree.
func IsRepo(path string) bool {
	out, err := run(path, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// StagedDiff returns the diff of staged changes.
func StagedDiff(repoPath string) (string, error) {
	return run(repoPath, "diff", "--cached")
}

// UnstagedDiff returns the diff of unstaged changes.
func UnstagedDiff(repoPath string) (string, error) {
	return run(repoPath, "diff")
}

// DiffForCommit returns the diff a commit message should describe: staged
// changes, falling back to unstaged when nothing is staged. Both blank is
// ErrNoChanges.
func DiffForCommit(repoPath string) (string, DiffSource, error) {
	staged, err := StagedDiff(repoPath)
	if err != nil {
		return "", "", err
	}
	if strings.TrimSpace(staged) != "" {
		return staged, SourceStaged, nil
	}

	unstaged, err := UnstagedDiff(repoPath)
	if err != nil {
		return "", "", err
	}
	if strings.TrimSpace(unstaged) != "" {
		return unstaged, SourceUnstaged, nil
	}

	return "", "", ErrNoChanges
}

// Commit creates a commit with the given message.
func Commit(repoPath, message string) error {
	_, err := run(repoPath, "commit", "-m", message)
	return err
}

// CommitAmend rewrites the last commit with the given message.
func CommitAmend(repoPath, message string) error {
	_, err := run(repoPath, "commit", "--amend", "-m", message)
	return err
}

// LastCommitMessage returns the subject of HEAD.
func LastCommitMessage(repoPath string) (string, error) {
	return run(repoPath, "log", "-1", "--format=%s")
}

// HeadShort returns the short hash of HEAD.
func HeadShort(repoPath string) (string, error) {
	return run(repoPath, "rev-parse", "--short", "HEAD")
}

// WorkDir resolves the directory the diff is computed under: an explicit
// path if given, else the current working directory.
func WorkDir(explicit string) (string, error) {
	if explicit != "" {
		abs, err := filepath.Abs(explicit)
		if err != nil {
			return "", fmt.Errorf("invalid path: %w", err)
		}
		return abs, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("cannot determine working directory: %w", err)
	}
	return wd, nil
}
