package cli

import (
	"testing"
)

func TestResolveToolExactID(t *testing.T) {
	tool, err := resolveTool("claude-code")
	if err != nil || tool.ID != "claude-code" {
		t.Fatalf("exact id: %+v err=%v", tool, err)
	}
}

func TestResolveToolFuzzy(t *testing.T) {
	cases := map[string]string{
		"claude":      "claude-code",
		"codex":       "codex",
		"gemini":      "gemini-cli",
		"Claude Code": "claude-code",
	}
	for input, want := range cases {
		tool, err := resolveTool(input)
		if err != nil {
			t.Fatalf("resolve %q: %v", input, err)
		}
		if tool.ID != want {
			t.Fatalf("resolve %q: got %s, want %s", input, tool.ID, want)
		}
	}
}

func TestResolveToolUnknown(t *testing.T) {
	if _, err := resolveTool("zzzzzz"); err == nil {
		t.Fatal("garbage input should not resolve")
	}
}
