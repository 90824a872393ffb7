package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"toolctl/internal/app"
	"toolctl/internal/tools"
)

func init() {
	rootCmd.AddCommand(lsCmd)
	lsCmd.Flags().Bool("deep", false, "额外探测每个工具的安装方式（npm/brew/官方）")
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "列出受支持工具的当前状态",
	Long:  "展示每个受支持工具的安装状态与版本，数据来自实例库，不触发探测。--deep 额外现场探测安装方式。",
	RunE: func(cmd *cobra.Command, args []string) error {
		deep, _ := cmd.Flags().GetBool("deep")
		return withDeps(func(deps *app.Deps) error {
			statuses, err := deps.Registry.GetLocalToolStatus()
			if err != nil {
				return err
			}
			var methods map[string]tools.InstallMethod
			if deep {
				methods, err = deps.Registry.DetectInstallMethods(cmd.Context())
				if err != nil {
					return err
				}
			}
			for _, s := range statuses {
				var line strings.Builder
				line.WriteString(fmt.Sprintf("- %s: ", s.Name))
				if !s.Installed {
					line.WriteString("未安装")
					fmt.Println(line.String())
					continue
				}
				ver := strings.TrimSpace(s.Version)
				if ver == "" {
					ver = "?"
				}
				line.WriteString(ver)
				if m, ok := methods[s.ID]; ok {
					line.WriteString(fmt.Sprintf(" · 方式 %s", m))
				}
				fmt.Println(line.String())
			}
			return nil
		})
	},
}
