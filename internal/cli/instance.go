package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"toolctl/internal/app"
	"toolctl/internal/tools"
)

func init() {
	rootCmd.AddCommand(instanceCmd)
	instanceCmd.AddCommand(instanceLsCmd)
	instanceCmd.AddCommand(instanceAddCmd)
	instanceCmd.AddCommand(instanceRmCmd)
}

var instanceCmd = &cobra.Command{
	Use:     "instance",
	Aliases: []string{"inst"},
	Short:   "管理工具实例",
}

var instanceLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "列出所有已记录的实例",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(func(deps *app.Deps) error {
			grouped, err := deps.Registry.GetAllGrouped()
			if err != nil {
				return err
			}
			for _, tool := range tools.Catalog {
				instances := grouped[tool.ID]
				fmt.Printf("%s (%d)\n", tool.Name, len(instances))
				for _, inst := range instances {
					loc := "local"
					switch inst.ToolType {
					case tools.TypeWSL:
						loc = "wsl:" + inst.WSLDistro
					case tools.TypeSSH:
						if inst.SSHConfig != nil {
							loc = fmt.Sprintf("ssh:%s@%s:%d", inst.SSHConfig.User, inst.SSHConfig.Host, inst.SSHConfig.Port)
						}
					}
					state := "未安装"
					if inst.Installed {
						state = inst.Version
						if state == "" {
							state = "?"
						}
					}
					fmt.Printf("  %-36s %-24s %s\n", inst.InstanceID, loc, state)
				}
			}
			return nil
		})
	},
}

var instanceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "手动登记一个工具实例",
	Long:  "交互式登记：选择工具、填写可执行文件路径与安装方式，路径会先经过版本校验。",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			toolID        string
			path          string
			method        string
			installerPath string
		)

		toolOpts := make([]huh.Option[string], 0, len(tools.Catalog))
		for _, t := range tools.Catalog {
			toolOpts = append(toolOpts, huh.NewOption(t.Name, t.ID))
		}

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewNote().Title("登记实例").Description("手动指定一个已安装的工具可执行文件"),
				huh.NewSelect[string]().
					Title("工具").
					Options(toolOpts...).
					Value(&toolID),
				huh.NewInput().
					Title("可执行文件路径").
					Placeholder("/usr/local/bin/claude").
					Value(&path),
				huh.NewSelect[string]().
					Title("安装方式").
					Options(
						huh.NewOption("npm", string(tools.MethodNpm)),
						huh.NewOption("Homebrew", string(tools.MethodBrew)),
						huh.NewOption("官方安装器", string(tools.MethodOfficial)),
						huh.NewOption("其他", string(tools.MethodOther)),
					).
					Value(&method),
				huh.NewInput().
					Title("安装器路径（「其他」可留空）").
					Placeholder("/opt/homebrew/bin/npm").
					Value(&installerPath),
			),
		)
		if err := form.Run(); err != nil {
			return err // form canceled or failed
		}

		return withDeps(func(deps *app.Deps) error {
			status, err := deps.Registry.AddToolInstance(cmd.Context(), toolID,
				strings.TrimSpace(path), tools.InstallMethod(method), strings.TrimSpace(installerPath))
			if err != nil {
				return err
			}
			fmt.Printf("✓ 已登记 %s %s\n", status.Name, status.Version)
			return nil
		})
	},
}

var instanceRmCmd = &cobra.Command{
	Use:   "rm <instance-id>",
	Short: "删除一个 SSH 实例",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(func(deps *app.Deps) error {
			if err := deps.Registry.DeleteInstance(args[0]); err != nil {
				return err
			}
			fmt.Printf("✓ 已删除 %s\n", args[0])
			return nil
		})
	},
}
