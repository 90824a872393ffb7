package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"toolctl/internal/app"
)

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().BoolP("force", "f", false, "忽略已保存的记录，强制重新探测")
}

var detectCmd = &cobra.Command{
	Use:   "detect [tool]",
	Short: "探测本地工具并写入实例库",
	Long:  "不带参数时并发探测全部受支持工具；指定工具时只探测该工具，已有记录默认直接复用。",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return withDeps(func(deps *app.Deps) error {
			ctx := cmd.Context()

			if len(args) == 0 {
				instances, err := deps.Registry.DetectAndPersistLocalTools(ctx)
				if err != nil {
					return err
				}
				for _, inst := range instances {
					if inst.Installed {
						fmt.Printf("✓ %s %s · %s\n", inst.ToolName, inst.Version, inst.InstallPath)
					} else {
						fmt.Printf("✗ %s 未安装\n", inst.ToolName)
					}
				}
				return nil
			}

			tool, err := resolveTool(args[0])
			if err != nil {
				return err
			}
			status, err := deps.Registry.DetectSingleToolWithCache(ctx, tool.ID, force)
			if err != nil {
				return err
			}
			if status.Installed {
				fmt.Printf("✓ %s %s\n", status.Name, status.Version)
			} else {
				fmt.Printf("✗ %s 未安装\n", status.Name)
			}
			return nil
		})
	},
}
