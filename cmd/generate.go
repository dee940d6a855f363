package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"casegen/internal"

	"github.com/spf13/cobra"
)

// generateCmd 代表 generate 命令.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "调用大模型设计测试用例并生成脚本",
	Long: `执行完整流程：拉取接口文档和关联模型，结合测试环境变量库让大模型设计用例，
再为每个用例生成前置脚本和签名请求体。

示例：
  casegen generate
  casegen generate --api /erp/opentrade/v2/list/trades --env vars.json
  casegen generate --provider gemini --xlsx cases.xlsx`,
	Aliases: []string{"gen"},
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyPipelineFlags(cmd.Flags(), cfg)
		if timeout, _ := cmd.Flags().GetInt("timeout"); timeout > 0 {
			cfg.TimeoutSeconds = timeout
		}

		designer, err := internal.NewDesignerFromConfig(cfg, newLogger(os.Stderr))
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		fmt.Printf("🚀 正在为接口 %s 设计测试用例 (%s / %s)...\n", cfg.APIPath, cfg.Provider, cfg.ActiveModel())
		fmt.Printf("📄 测试数据: %s\n", internal.InspectEnvFile(cfg.EnvFile))

		session, err := designer.Run(ctx, cfg.APIPath, cfg.EnvFile)
		if err != nil {
			return fmt.Errorf("生成失败: %w", err)
		}

		fmt.Printf("✅ 接口 %s 共设计 %d 条用例\n", session.APITitle, len(session.Scripts))
		printScriptBlocks(session)

		return saveOutputs(cmd, cfg, session)
	},
}

func init() {
	addPipelineFlags(generateCmd.Flags())
	generateCmd.Flags().Int("timeout", 0, "模型请求超时（秒）")
	generateCmd.Flags().String("out", "", "会话保存目录 (默认 ~/.casegen/sessions 或 output_dir)")
	generateCmd.Flags().Bool("no-save", false, "不保存会话文件")
	generateCmd.Flags().String("xlsx", "", "同时导出为 Excel 文件")
	_ = generateCmd.RegisterFlagCompletionFunc("provider", completeProvider)
	rootCmd.AddCommand(generateCmd)
}

// printScriptBlocks 打印会话中每个用例的脚本块.
func printScriptBlocks(s *internal.Session) {
	for _, set := range s.Scripts {
		fmt.Println(internal.RenderScriptBlock(set))
	}
	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
}

// saveOutputs 按标志保存会话和 Excel.
func saveOutputs(cmd *cobra.Command, cfg *internal.Config, s *internal.Session) error {
	noSave, _ := cmd.Flags().GetBool("no-save")
	if !noSave {
		dir, _ := cmd.Flags().GetString("out")
		if dir == "" {
			dir = cfg.OutputDir
		}
		path, err := internal.DefaultSessionPath(dir, s)
		if err != nil {
			return err
		}
		if err := internal.SaveSession(s, path); err != nil {
			return err
		}
		fmt.Printf("💾 会话已保存: %s\n", path)
	}

	if xlsx, _ := cmd.Flags().GetString("xlsx"); xlsx != "" {
		if err := internal.ExportWorkbook(s, xlsx); err != nil {
			return err
		}
		fmt.Printf("📊 已导出 Excel: %s\n", xlsx)
	}
	return nil
}
