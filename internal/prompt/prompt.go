// Package prompt builds the instruction text sent to claude.
package prompt

import "strings"

const diffPlaceholder = "{{DIFF}}"

// messageTemplate is the fixed instructional text the diff is substituted
// into.
const messageTemplate = `Generate a git commit message for the following changes.

Rules:
- Use the conventional commit format: type(scope): description
- Allowed types: feat, fix, docs, style, refactor, test, chore, build, ci, perf
- Keep the subject line under 72 characters
- Return ONLY the commit message, no explanation, no markdown fences

Changes:
` + diffPlaceholder + `
`

// Build substitutes the diff into the commit message template. A non-blank
// extra instruction from config is inserted before the diff.
func Build(diff, extra string) string {
	tmpl := messageTemplate
	if e := strings.TrimSpace(extra); e != "" {
		tmpl = strings.Replace(tmpl, "\nChanges:", "\n- "+e+"\n\nChanges:", 1)
	}
	return strings.Replace(tmpl, diffPlaceholder, diff, 1)
}
