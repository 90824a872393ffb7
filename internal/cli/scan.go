package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"toolctl/internal/app"
)

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(validateCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan <tool>",
	Short: "扫描文件系统中的候选安装",
	Long:  "沿增强 PATH 查找该工具的全部可执行文件，逐个验证版本并推断安装器，用于手动登记。",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tool, err := resolveTool(args[0])
		if err != nil {
			return err
		}
		return withDeps(func(deps *app.Deps) error {
			candidates, err := deps.Registry.ScanToolCandidates(cmd.Context(), tool.ID)
			if err != nil {
				return err
			}
			if len(candidates) == 0 {
				fmt.Printf("未找到 %s 的可用安装\n", tool.Name)
				return nil
			}
			for _, c := range candidates {
				fmt.Printf("- %s\n  版本 %s · 方式 %s", c.ToolPath, c.Version, c.InstallMethod)
				if c.InstallerPath != "" {
					fmt.Printf(" · 安装器 %s", c.InstallerPath)
				}
				fmt.Println()
			}
			return nil
		})
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "校验一个可执行文件路径",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(func(deps *app.Deps) error {
			version, err := deps.Registry.ValidateToolPath(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("✓ %s\n", version)
			return nil
		})
	},
}
