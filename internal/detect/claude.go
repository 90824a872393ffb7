package detect

// Claude Code ships through npm, Homebrew, and its own installer which drops
// the binary under ~/.claude/local or ~/.claude/bin.
func newClaudeDetector() Detector {
	return &cliDetector{
		tool:         mustTool("claude-code"),
		officialDirs: []string{".claude/local", ".claude/bin", ".claude\\bin"},
	}
}
