package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"toolctl/internal/app"
	"toolctl/internal/tools"
)

func init() {
	rootCmd.AddCommand(refreshCmd)
	refreshCmd.Flags().Bool("versions-only", false, "只重读已存实例的版本，不做完整探测")
	refreshCmd.Flags().Bool("all", false, "刷新后输出全部实例（含 WSL/SSH），按工具分组")
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "重新探测并同步实例库",
	Long:  "完整刷新：重新探测全部工具，移除已卸载工具的本地实例。--versions-only 只按已存路径重读版本；--all 额外输出分组后的全部实例。",
	RunE: func(cmd *cobra.Command, args []string) error {
		versionsOnly, _ := cmd.Flags().GetBool("versions-only")
		all, _ := cmd.Flags().GetBool("all")
		return withDeps(func(deps *app.Deps) error {
			ctx := cmd.Context()

			if all {
				grouped, err := deps.Registry.RefreshAll(ctx)
				if err != nil {
					return err
				}
				for _, tool := range tools.Catalog {
					fmt.Printf("%s (%d)\n", tool.Name, len(grouped[tool.ID]))
					for _, inst := range grouped[tool.ID] {
						state := "未安装"
						if inst.Installed {
							state = inst.Version
						}
						fmt.Printf("  %-36s %-8s %s\n", inst.InstanceID, inst.ToolType, state)
					}
				}
				return nil
			}

			if versionsOnly {
				statuses, err := deps.Registry.RefreshAllToolVersions(ctx)
				if err != nil {
					return err
				}
				for _, s := range statuses {
					fmt.Printf("- %s: %s\n", s.Name, s.Version)
				}
				return nil
			}

			instances, err := deps.Registry.RefreshLocalTools(ctx)
			if err != nil {
				return err
			}
			if len(instances) == 0 {
				fmt.Println("没有检测到已安装的工具")
				return nil
			}
			for _, inst := range instances {
				fmt.Printf("✓ %s %s · %s\n", inst.ToolName, inst.Version, inst.InstallPath)
			}
			return nil
		})
	},
}
