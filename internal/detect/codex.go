package detect

// Codex is an npm package with a brew formula; no vendor installer layout.
func newCodexDetector() Detector {
	return &cliDetector{
		tool: mustTool("codex"),
	}
}
