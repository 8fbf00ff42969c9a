// Package mcp exposes scribe's generation pipeline to agent hosts over
// the Model Context Protocol.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/inkwell-tools/scribe/internal/generate"
	"github.com/inkwell-tools/scribe/internal/gitx"
	"github.com/inkwell-tools/scribe/internal/store"
	"github.com/inkwell-tools/scribe/internal/ui"
)

// Server wraps the MCP server with scribe's store.
type Server struct {
	store  *store.Store
	server *mcp.Server
}

// NewServer creates a new scribe MCP server.
func NewServer(st *store.Store, version string) *Server {
	s := &Server{store: st}

	impl := &mcp.Implementation{
		Name:    "scribe",
		Version: version,
	}

	s.server = mcp.NewServer(impl, nil)
	s.registerTools()

	return s
}

// Run starts the MCP server on stdio.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "scribe_generate",
		Description: "Generate a conventional commit message for the pending changes in a git repository. " +
			"Uses the staged diff, falling back to the unstaged diff when nothing is staged. " +
			"Returns the plain message text, ready to pass to git commit -m.",
	}, s.handleGenerate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "scribe_diff",
		Description: "Return the diff scribe would describe for a repository: the staged diff, " +
			"or the unstaged diff when nothing is staged. Use this to preview what a generated " +
			"message will be based on.",
	}, s.handleDiff)
}

// GenerateArgs defines the input for scribe_generate.
type GenerateArgs struct {
	Path string `json:"path" jsonschema:"Absolute path to the git repository to generate a commit message for"`
}

// GenerateResult is the output of scribe_generate.
type GenerateResult struct {
	Message    string `json:"message"`
	DiffSource string `json:"diff_source"`
	Executable string `json:"executable"`
}

func (s *Server) handleGenerate(ctx context.Context, req *mcp.CallToolRequest, args GenerateArgs) (*mcp.CallToolResult, any, error) {
	if args.Path == "" {
		return nil, nil, fmt.Errorf("path is required")
	}

	g := generate.New(s.store, ui.Logger)
	res, err := g.CommitMessage(ctx, args.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("generation failed: %w", err)
	}

	out := GenerateResult{
		Message:    res.Message,
		DiffSource: string(res.DiffSource),
		Executable: res.Executable.Path,
	}
	return nil, out, nil
}

// DiffArgs defines the input for scribe_diff.
type DiffArgs struct {
	Path string `json:"path" jsonschema:"Absolute path to the git repository to read the diff from"`
}

// DiffResult is the output of scribe_diff.
type DiffResult struct {
	Diff    string `json:"diff"`
	Source  string `json:"source"`
	Message string `json:"message,omitempty"`
}

func (s *Server) handleDiff(ctx context.Context, req *mcp.CallToolRequest, args DiffArgs) (*mcp.CallToolResult, any, error) {
	if args.Path == "" {
		return nil, nil, fmt.Errorf("path is required")
	}
	if !gitx.IsRepo(args.Path) {
		return nil, nil, fmt.Errorf("not a git repository: %s", args.Path)
	}

	diff, source, err := gitx.DiffForCommit(args.Path)
	if err != nil {
		if err == gitx.ErrNoChanges {
			return nil, DiffResult{Message: "No staged or unstaged changes found."}, nil
		}
		return nil, nil, err
	}

	return nil, DiffResult{Diff: diff, Source: string(source)}, nil
}
