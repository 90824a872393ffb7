package tools

// Catalog is the fixed list of supported tools. Read-only after init.
var Catalog = []Tool{
	{
		ID:           "claude-code",
		Name:         "Claude Code",
		CheckCommand: "claude --version",
		Package:      "@anthropic-ai/claude-code",
		Binaries:     []string{"claude", "claude-code"},
	},
	{
		ID:           "codex",
		Name:         "Codex",
		CheckCommand: "codex --version",
		Package:      "@openai/codex",
		Binaries:     []string{"codex", "openai-codex"},
	},
	{
		ID:           "gemini-cli",
		Name:         "Gemini CLI",
		CheckCommand: "gemini --version",
		Package:      "@google/gemini-cli",
		Binaries:     []string{"gemini"},
	},
}

// ByID looks a tool up in the catalog.
func ByID(id string) (Tool, bool) {
	for _, t := range Catalog {
		if t.ID == id {
			return t, true
		}
	}
	return Tool{}, false
}
