package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"toolctl/internal/app"
	"toolctl/internal/tools"
)

func init() {
	rootCmd.AddCommand(sshCmd)
	sshCmd.AddCommand(sshAddCmd)
	sshAddCmd.Flags().String("host", "", "SSH 主机名（必填）")
	sshAddCmd.Flags().Int("port", 22, "SSH 端口")
	sshAddCmd.Flags().String("user", "", "登录用户")
	sshAddCmd.Flags().String("key", "", "私钥路径")
	_ = sshAddCmd.MarkFlagRequired("host")
}

var sshCmd = &cobra.Command{
	Use:   "ssh",
	Short: "管理 SSH 实例",
}

var sshAddCmd = &cobra.Command{
	Use:   "add <tool>",
	Short: "登记一个远程 SSH 实例",
	Long:  "只记录连接配置，不会立即探测；同一主机端口的重复登记会被拒绝。",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tool, err := resolveTool(args[0])
		if err != nil {
			return err
		}
		host, _ := cmd.Flags().GetString("host")
		port, _ := cmd.Flags().GetInt("port")
		user, _ := cmd.Flags().GetString("user")
		key, _ := cmd.Flags().GetString("key")

		return withDeps(func(deps *app.Deps) error {
			inst, err := deps.Registry.AddSSHInstance(cmd.Context(), tool.ID, tools.SSHConfig{
				Host:    host,
				Port:    port,
				User:    user,
				KeyPath: key,
			})
			if err != nil {
				return err
			}
			fmt.Printf("✓ 已登记 %s（%s）\n", inst.InstanceID, inst.ToolName)
			return nil
		})
	},
}
