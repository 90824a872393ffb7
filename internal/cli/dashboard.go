package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"toolctl/internal/app"
	"toolctl/internal/dashboard"
)

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.AddCommand(dashboardLsCmd)
	dashboardCmd.AddCommand(dashboardPinCmd)
	dashboardCmd.AddCommand(dashboardSchemaCmd)
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "管理仪表板的实例选择",
}

var dashboardLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "查看当前的实例选择",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(func(deps *app.Deps) error {
			st, err := deps.Dashboard.Load()
			if err != nil {
				return err
			}
			if len(st.ToolInstanceSelections) == 0 {
				fmt.Println("尚未选择任何实例")
				return nil
			}
			for toolID, instanceID := range st.ToolInstanceSelections {
				fmt.Printf("- %s → %s\n", toolID, instanceID)
			}
			return nil
		})
	},
}

var dashboardPinCmd = &cobra.Command{
	Use:   "pin <tool> <instance-id>",
	Short: "为工具固定一个实例",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tool, err := resolveTool(args[0])
		if err != nil {
			return err
		}
		return withDeps(func(deps *app.Deps) error {
			if err := deps.Dashboard.SetToolSelection(tool.ID, args[1]); err != nil {
				return err
			}
			fmt.Printf("✓ %s → %s\n", tool.ID, args[1])
			return nil
		})
	},
}

var dashboardSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "输出 dashboard.json 的 JSON Schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := dashboard.MarshalSchema(dashboard.StoreSchema())
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	},
}
