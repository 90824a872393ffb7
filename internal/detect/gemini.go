package detect

// Gemini CLI is npm-only today.
func newGeminiDetector() Detector {
	return &cliDetector{
		tool: mustTool("gemini-cli"),
	}
}
