package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"toolctl/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "toolctl",
	Short: "toolctl – AI CLI 工具清单",
	Long:  "toolctl 检测并管理本机、WSL 与 SSH 上的 AI 开发工具（Claude Code、Codex、Gemini CLI）。",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default action: launch the TUI dashboard
		return app.Start()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
