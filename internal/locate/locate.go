// Package locate resolves the claude executable through an ordered
// fallback chain: explicit config path, PATH lookup, login-shell lookups,
// well-known install locations, and finally a bare-name probe.
package locate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// ErrNotFound is returned when no strategy produced a working claude binary.
var ErrNotFound = errors.New("claude CLI not found")

// probeTimeout bounds each --version probe so a hung binary can't stall
// resolution.
const probeTimeout = 10 * time.Second

// Resolution is a successfully resolved claude executable.
type Resolution struct {
	// Path is the invocable reference: an absolute path or a bare command
	// name, depending on the strategy that succeeded.
	Path string
	// Strategy names the discovery strategy that succeeded.
	Strategy string
}

// Resolver locates the claude executable. The zero value is not usable;
// construct with NewResolver.
type Resolver struct {
	logger *log.Logger

	// Overridable for tests.
	probe      func(path string) error
	lookPath   func(name string) (string, error)
	shellWhich func(shell string) (string, error)
	homeDir    func() (string, error)
}

// NewResolver returns a Resolver that logs strategy outcomes to logger.
func NewResolver(logger *log.Logger) *Resolver {
	return &Resolver{
		logger:     logger,
		probe:      probeVersion,
		lookPath:   exec.LookPath,
		shellWhich: loginShellWhich,
		homeDir:    os.UserHomeDir,
	}
}

// Resolve finds the claude executable. A non-blank customPath is an
// explicit instruction: it is probed once and its failure is terminal
// rather than falling through to auto-detection.
func (r *Resolver) Resolve(customPath string) (Resolution, error) {
	if p := strings.TrimSpace(customPath); p != "" {
		if err := r.probe(p); err != nil {
			return Resolution{}, fmt.Errorf("configured claude path %q failed its version check (%v): %w", p, err, ErrNotFound)
		}
		return Resolution{Path: p, Strategy: "configured path"}, nil
	}

	strategies := []struct {
		name string
		fn   func() (string, error)
	}{
		{"PATH lookup", r.fromPath},
		{"zsh login shell", func() (string, error) { return r.shellWhich("zsh") }},
		{"bash login shell", func() (string, error) { return r.shellWhich("bash") }},
		{"known install locations", r.fromKnownLocations},
		{"bare invocation", r.bareProbe},
	}

	for _, s := range strategies {
		path, err := s.fn()
		if err != nil {
			r.logger.Debug("claude lookup failed", "strategy", s.name, "err", err)
			continue
		}
		r.logger.Debug("claude resolved", "strategy", s.name, "path", path)
		return Resolution{Path: path, Strategy: s.name}, nil
	}

	return Resolution{}, fmt.Errorf("%w: install Claude Code (https://claude.ai/code) or set claude.path via 'scribe config set claude.path <path>'", ErrNotFound)
}

func (r *Resolver) fromPath() (string, error) {
	return r.lookPath("claude")
}

// fromKnownLocations probes a fixed list of install locations, with any
// version-manager matches tried first.
func (r *Resolver) fromKnownLocations() (string, error) {
	candidates := append(r.versionManagerCandidates(), r.knownLocations()...)
	for _, c := range candidates {
		if err := r.probe(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("no candidate in %d known locations responded to --version", len(candidates))
}

func (r *Resolver) bareProbe() (string, error) {
	if err := r.probe("claude"); err != nil {
		return "", err
	}
	return "claude", nil
}

// knownLocations returns the fixed ordered list of well-known install paths.
func (r *Resolver) knownLocations() []string {
	locations := []string{
		"/usr/local/bin/claude",
		"/opt/homebrew/bin/claude",
		"/usr/bin/claude",
	}
	home, err := r.homeDir()
	if err != nil {
		return locations
	}
	return append([]string{
		filepath.Join(home, ".claude", "local", "claude"),
		filepath.Join(home, ".local", "bin", "claude"),
		filepath.Join(home, "bin", "claude"),
	}, locations...)
}

// versionManagerCandidates globs for claude under nvm-managed node
// installs. Best effort: no nvm tree simply yields no candidates.
func (r *Resolver) versionManagerCandidates() []string {
	home, err := r.homeDir()
	if err != nil {
		return nil
	}
	matches, err := filepath.Glob(filepath.Join(home, ".nvm", "versions", "node", "*", "bin", "claude"))
	if err != nil {
		return nil
	}
	return matches
}

// SearchPathDirs returns the directories claude might live in, used to
// augment PATH when invoking it. Mirrors knownLocations plus nvm bins.
func SearchPathDirs() []string {
	r := NewResolver(log.New(io.Discard))
	var dirs []string
	for _, c := range r.versionManagerCandidates() {
		dirs = append(dirs, filepath.Dir(c))
	}
	for _, c := range r.knownLocations() {
		dirs = append(dirs, filepath.Dir(c))
	}
	return dirs
}

// probeVersion runs a --version check against a candidate.
func probeVersion(path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	return exec.CommandContext(ctx, path, "--version").Run()
}

// loginShellWhich asks a login shell to resolve claude from its own PATH,
// catching installs that only appear in shell profile files.
func loginShellWhich(shell string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, shell, "-l", "-c", "which claude").Output()
	if err != nil {
		return "", fmt.Errorf("%s login shell lookup: %w", shell, err)
	}
	path := strings.TrimSpace(string(out))
	if path == "" {
		return "", fmt.Errorf("%s login shell returned no path", shell)
	}
	return path, nil
}
