package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"casegen/internal"

	"github.com/spf13/cobra"
)

// exportCmd 代表 export 命令.
var exportCmd = &cobra.Command{
	Use:   "export <session-file> [xlsx-file]",
	Short: "把会话导出为 Excel",
	Long: `把会话中的用例和脚本导出为 xlsx，每个用例一行。
未指定输出文件时与会话文件同名，扩展名改为 .xlsx。`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := internal.LoadSession(args[0])
		if err != nil {
			return err
		}

		out := strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".xlsx"
		if len(args) == 2 {
			out = args[1]
		}
		if err := internal.ExportWorkbook(session, out); err != nil {
			return err
		}
		fmt.Printf("📊 已导出 %d 条用例: %s\n", len(session.Scripts), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
