package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"toolctl/internal/app"
	"toolctl/internal/tools"
)

func init() {
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(checkCmd)
	updateCmd.Flags().BoolP("force", "f", false, "强制重装（npm --force）")
}

// findLocalInstanceID resolves a tool name to its local instance id.
func findLocalInstanceID(deps *app.Deps, toolID string) (string, error) {
	grouped, err := deps.Registry.GetAllGrouped()
	if err != nil {
		return "", err
	}
	for _, inst := range grouped[toolID] {
		if inst.ToolType == tools.TypeLocal {
			return inst.InstanceID, nil
		}
	}
	return "", fmt.Errorf("%s 没有本地实例，先运行 toolctl detect", toolID)
}

var updateCmd = &cobra.Command{
	Use:   "update <tool>",
	Short: "通过登记的安装器升级工具",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		tool, err := resolveTool(args[0])
		if err != nil {
			return err
		}
		return withDeps(func(deps *app.Deps) error {
			id, err := findLocalInstanceID(deps, tool.ID)
			if err != nil {
				return err
			}
			result, err := deps.Registry.UpdateInstance(cmd.Context(), id, force)
			if err != nil {
				return err
			}
			fmt.Println(result.Message)
			if result.CurrentVersion != "" {
				fmt.Printf("当前版本: %s\n", result.CurrentVersion)
			}
			return nil
		})
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <tool>",
	Short: "检查工具是否有新版本",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tool, err := resolveTool(args[0])
		if err != nil {
			return err
		}
		return withDeps(func(deps *app.Deps) error {
			id, err := findLocalInstanceID(deps, tool.ID)
			if err != nil {
				return err
			}
			result, err := deps.Registry.CheckUpdateForInstance(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Printf("- %s: %s", tool.Name, result.CurrentVersion)
			switch {
			case result.LatestVersion == "":
				fmt.Printf("（%s）\n", result.Message)
			case result.HasUpdate:
				fmt.Printf(" → 可升级 %s\n", result.LatestVersion)
			default:
				fmt.Printf("（最新 %s）\n", result.LatestVersion)
			}
			if result.MirrorVersion != "" && result.MirrorIsStale {
				fmt.Printf("  镜像滞后: %s\n", result.MirrorVersion)
			}
			return nil
		})
	},
}
