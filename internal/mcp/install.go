package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Install registers scribe as an MCP server with the claude CLI so agent
// sessions can call scribe_generate directly. Idempotent: if the current
// binary is already registered nothing is changed.
func Install(claudePath, scribeBinary string) error {
	if registered(scribeBinary) {
		return nil
	}

	cmd := exec.Command(claudePath, "mcp", "add", "--scope", "user", "scribe", "--", scribeBinary, "mcp", "serve")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("claude mcp add failed: %s: %w", string(out), err)
	}
	return nil
}

// registered checks ~/.claude.json for an existing scribe entry pointing
// at this binary.
func registered(scribeBinary string) bool {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return false
	}

	data, err := os.ReadFile(filepath.Join(homeDir, ".claude.json"))
	if err != nil {
		return false
	}

	var settings struct {
		MCPServers map[string]struct {
			Command string `json:"command"`
		} `json:"mcpServers"`
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return false
	}

	existing, ok := settings.MCPServers["scribe"]
	return ok && existing.Command == scribeBinary
}
