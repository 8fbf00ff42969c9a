// Package generate wires the pipeline together: discover the diff, build
// the prompt, resolve the claude binary, invoke it, and extract the
// commit message.
package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/inkwell-tools/scribe/internal/claude"
	"github.com/inkwell-tools/scribe/internal/gitx"
	"github.com/inkwell-tools/scribe/internal/locate"
	"github.com/inkwell-tools/scribe/internal/parse"
	"github.com/inkwell-tools/scribe/internal/prompt"
	"github.com/inkwell-tools/scribe/internal/store"
)

// Result is a completed generation.
type Result struct {
	Message    string
	Executable locate.Resolution
	DiffSource gitx.DiffSource
}

// Generator produces commit messages for one repository at a time.
type Generator struct {
	store    *store.Store
	logger   *log.Logger
	resolver *locate.Resolver
	runner   *claude.Runner
}

// New returns a Generator using the store's configuration.
func New(s *store.Store, logger *log.Logger) *Generator {
	return &Generator{
		store:    s,
		logger:   logger,
		resolver: locate.NewResolver(logger),
		runner:   claude.NewRunner(logger),
	}
}

// CommitMessage generates a commit message for the repository at repoPath.
// Every stage fails fast; there are no retries. The claude binary is
// re-resolved on each call so environment changes between invocations are
// picked up.
func (g *Generator) CommitMessage(ctx context.Context, repoPath string) (*Result, error) {
	if !gitx.IsRepo(repoPath) {
		return nil, fmt.Errorf("not a git repository: %s", repoPath)
	}

	diff, source, err := gitx.DiffForCommit(repoPath)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("diff collected", "source", source, "bytes", len(diff))

	res, err := g.resolver.Resolve(g.store.Config.Claude.Path)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("using claude", "path", res.Path, "strategy", res.Strategy)

	raw, err := g.runner.Run(ctx, res.Path, prompt.Build(diff, g.store.Config.Prompt.Extra))
	if err != nil {
		return nil, err
	}

	message, err := parse.Extract(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to extract commit message: %w", err)
	}
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("claude returned an empty message")
	}

	return &Result{Message: message, Executable: res, DiffSource: source}, nil
}
