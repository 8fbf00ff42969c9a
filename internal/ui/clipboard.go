package ui

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// clipboardCommand picks the platform clipboard writer.
func clipboardCommand() []string {
	if runtime.GOOS == "darwin" {
		return []string{"pbcopy"}
	}
	for _, candidate := range [][]string{
		{"wl-copy"},
		{"xclip", "-selection", "clipboard"},
	} {
		if _, err := exec.LookPath(candidate[0]); err == nil {
			return candidate
		}
	}
	return nil
}

// CopyToClipboard places text on the system clipboard.
func CopyToClipboard(text string) error {
	argv := clipboardCommand()
	if argv == nil {
		return fmt.Errorf("no clipboard command available (need pbcopy, wl-copy, or xclip)")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}
