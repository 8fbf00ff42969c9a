package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inkwell-tools/scribe/internal/generate"
	"github.com/inkwell-tools/scribe/internal/gitx"
	"github.com/inkwell-tools/scribe/internal/locate"
	scribemcp "github.com/inkwell-tools/scribe/internal/mcp"
	"github.com/inkwell-tools/scribe/internal/store"
	"github.com/inkwell-tools/scribe/internal/ui"
)

// Set via ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func buildVersion() string {
	if commit == "none" {
		return version
	}
	return fmt.Sprintf("%s (%s, %s)", version, commit, date)
}

func main() {
	var noColor bool
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "scribe",
		Short: "scribe — AI commit messages from your diff",
		Long:  "A local CLI tool that reads your pending git changes and asks Claude Code to write the commit message.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			s := store.LoadOrDefault(store.Home())
			ui.Init(noColor, debug || s.Config.Debug, s.LogPath())
		},
	}

	rootCmd.Version = buildVersion()
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging (tees into SCRIBE_HOME/scribe.log)")

	// Command groups
	rootCmd.AddGroup(
		&cobra.Group{ID: "core", Title: "Core Commands:"},
		&cobra.Group{ID: "config", Title: "Configuration:"},
	)

	generateC := generateCmd()
	generateC.GroupID = "core"
	doctorC := doctorCmd()
	doctorC.GroupID = "core"

	initC := initCmd()
	initC.GroupID = "config"
	configC := configCmd()
	configC.GroupID = "config"

	rootCmd.AddCommand(generateC)
	rootCmd.AddCommand(doctorC)
	rootCmd.AddCommand(initC)
	rootCmd.AddCommand(configC)
	rootCmd.AddCommand(mcpCmd())
	rootCmd.AddCommand(completionCmd())

	// Running scribe with no subcommand generates a message for the
	// current directory.
	rootCmd.RunE = generateC.RunE
	rootCmd.Flags().AddFlagSet(generateC.Flags())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadStore() (*store.Store, error) {
	s, err := store.Load(store.Home())
	if err != nil {
		return nil, fmt.Errorf("scribe not initialized — run 'scribe init' first: %w", err)
	}
	return s, nil
}

func generateCmd() *cobra.Command {
	var repoPath string
	var doCommit bool
	var amend bool
	var copyToClipboard bool
	var yes bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a commit message for pending changes",
		Long: `Generate a conventional commit message for the pending changes in a git
repository. The staged diff is used when one exists, otherwise the
unstaged diff. The message is printed to stdout so it can be piped into
other tools.`,
		Example: `  scribe                       # Describe changes in the current directory
  scribe generate --repo ~/src/api
  scribe generate --commit     # Commit with the generated message
  git commit -m "$(scribe)"    # Use from a shell pipeline`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := store.LoadOrDefault(store.Home())

			workDir, err := gitx.WorkDir(repoPath)
			if err != nil {
				return err
			}

			g := generate.New(s, ui.Logger)
			res, err := g.CommitMessage(context.Background(), workDir)
			if err != nil {
				if errors.Is(err, gitx.ErrNoChanges) {
					ui.EmptyState("No staged or unstaged changes found. Nothing to describe.")
					return nil
				}
				return err
			}

			ui.MessagePreview(res.Message)
			ui.Detail("Diff:  ", string(res.DiffSource))
			ui.Detail("Claude:", fmt.Sprintf("%s %s", res.Executable.Path, ui.Dim("("+res.Executable.Strategy+")")))
			fmt.Println(res.Message)

			if copyToClipboard {
				if err := ui.CopyToClipboard(res.Message); err != nil {
					ui.Warning(fmt.Sprintf("Could not copy to clipboard: %v", err))
				} else {
					ui.Success("Copied to clipboard")
				}
			}

			if !doCommit && !amend {
				return nil
			}

			if s.Config.Commit.Confirm && !yes {
				verb := "Commit"
				if amend {
					verb = "Amend the last commit"
				}
				proceed, err := ui.Confirm(fmt.Sprintf("%s with this message?", verb))
				if err != nil {
					return err
				}
				if !proceed {
					ui.Info("Cancelled.")
					return nil
				}
			}

			if amend {
				err = gitx.CommitAmend(workDir, res.Message)
			} else {
				err = gitx.Commit(workDir, res.Message)
			}
			if err != nil {
				return err
			}

			short, _ := gitx.HeadShort(workDir)
			ui.Success(fmt.Sprintf("Committed %s", short))
			ui.Notify("scribe", "Committed: "+firstLine(res.Message))
			return nil
		},
	}

	cmd.Flags().StringVarP(&repoPath, "repo", "C", "", "Repository path (default: current directory)")
	cmd.Flags().BoolVar(&doCommit, "commit", false, "Run git commit with the generated message")
	cmd.Flags().BoolVar(&amend, "amend", false, "Amend the last commit with the generated message")
	cmd.Flags().BoolVar(&copyToClipboard, "copy", false, "Copy the generated message to the clipboard")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the commit confirmation prompt")
	return cmd
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:     "init",
		Short:   "Initialize the SCRIBE_HOME directory",
		Long:    "Create the SCRIBE_HOME directory (~/.scribe by default) with a default config.yaml. Generation works without it; init is only needed to customize configuration.",
		Example: "  scribe init\n  scribe init --force",
		RunE: func(cmd *cobra.Command, args []string) error {
			home := store.Home()
			if err := store.Init(home, force); err != nil {
				return err
			}
			ui.Success("scribe initialized")
			ui.Detail("Home:", home)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Reinitialize even if SCRIBE_HOME already exists")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and edit scribe configuration",
	}
	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configSetCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := store.LoadOrDefault(store.Home())
			data, err := yaml.Marshal(s.Config)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

func configSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Set a scribe configuration value. Valid keys: claude.path, debug, prompt.extra, commit.confirm.",
		Example: `  scribe config set claude.path /usr/local/bin/claude
  scribe config set commit.confirm false
  scribe config set prompt.extra "Reference JIRA tickets when the branch name contains one."`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			if err := s.SetConfigValue(args[0], args[1]); err != nil {
				return err
			}
			ui.Success(fmt.Sprintf("Set %s = %s", args[0], args[1]))
			return nil
		},
	}
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check health of scribe's configuration and dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			home := store.Home()
			s := store.LoadOrDefault(home)

			var b strings.Builder
			b.WriteString("# scribe doctor\n\n")
			fmt.Fprintf(&b, "**Home:** `%s`\n\n", home)

			hasError := false
			hasWarning := false

			b.WriteString("## Configuration\n\n")
			issues := store.CheckHealth(home)
			if len(issues) == 0 {
				b.WriteString("- ✓ config.yaml present and valid\n")
			}
			for _, issue := range issues {
				switch issue.Severity {
				case "error":
					hasError = true
					fmt.Fprintf(&b, "- ✗ %s\n", issue.Message)
				default:
					hasWarning = true
					fmt.Fprintf(&b, "- ⚠ %s\n", issue.Message)
				}
			}

			b.WriteString("\n## git\n\n")
			if gitPath, err := exec.LookPath("git"); err != nil {
				hasError = true
				b.WriteString("- ✗ git not found on PATH\n")
			} else {
				fmt.Fprintf(&b, "- ✓ git at `%s`\n", gitPath)
			}

			b.WriteString("\n## Claude Code\n\n")
			resolver := locate.NewResolver(ui.Logger)
			res, err := resolver.Resolve(s.Config.Claude.Path)
			if err != nil {
				hasError = true
				fmt.Fprintf(&b, "- ✗ %v\n", err)
			} else {
				fmt.Fprintf(&b, "- ✓ claude at `%s` (via %s)\n", res.Path, res.Strategy)
			}

			ui.RenderMarkdown(b.String())

			if hasError {
				os.Exit(2)
			}
			if hasWarning {
				os.Exit(1)
			}
			return nil
		},
	}
}

func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run or register scribe's MCP server",
	}
	cmd.AddCommand(mcpServeCmd())
	cmd.AddCommand(mcpInstallCmd())
	return cmd
}

func mcpServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "serve",
		Short:  "Run scribe as an MCP server",
		Long:   "Start scribe as a Model Context Protocol (MCP) server over stdio. This lets Claude Code and other MCP-compatible tools generate commit messages directly.",
		Hidden: true, // Not typically called directly by users
		RunE: func(cmd *cobra.Command, args []string) error {
			s := store.LoadOrDefault(store.Home())
			server := scribemcp.NewServer(s, version)
			return server.Run(context.Background())
		},
	}
}

func mcpInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Register scribe with Claude Code's MCP configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := store.LoadOrDefault(store.Home())

			resolver := locate.NewResolver(ui.Logger)
			res, err := resolver.Resolve(s.Config.Claude.Path)
			if err != nil {
				return err
			}

			self, err := os.Executable()
			if err != nil {
				return fmt.Errorf("cannot determine scribe binary path: %w", err)
			}

			if err := scribemcp.Install(res.Path, self); err != nil {
				return err
			}
			ui.Success("scribe registered as an MCP server")
			ui.Detail("Binary:", self)
			return nil
		},
	}
}

func completionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "completion [bash|zsh|fish]",
		Short:     "Generate shell completion scripts",
		Long:      "Generate shell completion scripts for bash, zsh, or fish. Output the script to stdout for sourcing in your shell profile.",
		Example:   "  scribe completion bash > ~/.bashrc.d/scribe\n  scribe completion zsh > ~/.zfunc/_scribe\n  scribe completion fish > ~/.config/fish/completions/scribe.fish",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			default:
				return fmt.Errorf("unsupported shell: %s (use bash, zsh, or fish)", args[0])
			}
		},
	}
}
