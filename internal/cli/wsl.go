package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"toolctl/internal/app"
)

func init() {
	rootCmd.AddCommand(wslCmd)
	wslCmd.AddCommand(wslAddCmd)
}

var wslCmd = &cobra.Command{
	Use:   "wsl",
	Short: "管理 WSL 实例",
}

var wslAddCmd = &cobra.Command{
	Use:   "add <tool> <distro>",
	Short: "在指定 WSL 发行版中探测工具并登记",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tool, err := resolveTool(args[0])
		if err != nil {
			return err
		}
		return withDeps(func(deps *app.Deps) error {
			inst, err := deps.Registry.AddWSLInstance(cmd.Context(), tool.ID, args[1])
			if err != nil {
				return err
			}
			if inst.Installed {
				fmt.Printf("✓ %s 在 %s 中: %s · %s\n", inst.ToolName, inst.WSLDistro, inst.Version, inst.InstallPath)
			} else {
				fmt.Printf("✗ %s 在 %s 中未安装（已记录）\n", inst.ToolName, inst.WSLDistro)
			}
			return nil
		})
	},
}
