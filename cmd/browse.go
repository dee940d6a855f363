package cmd

import (
	"fmt"

	"casegen/internal/tui"

	"github.com/spf13/cobra"
)

// browseCmd 代表 browse 命令.
var browseCmd = &cobra.Command{
	Use:     "browse [session-file]",
	Short:   "在 TUI 中逐条浏览用例脚本",
	Long:    `启动交互式文本界面浏览会话中的用例脚本。不指定会话文件时打开最近一次会话。`,
	Aliases: []string{"tui"},
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		session, err := loadSessionArg(args, cfg)
		if err != nil {
			return fmt.Errorf("打开会话失败: %w", err)
		}
		return tui.Start(session)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
