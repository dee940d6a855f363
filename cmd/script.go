package cmd

import (
	"context"
	"fmt"
	"os"

	"casegen/internal"

	"github.com/spf13/cobra"
)

// scriptCmd 代表 script 命令.
var scriptCmd = &cobra.Command{
	Use:   "script <cases-file>",
	Short: "不调用大模型，基于已有用例重新生成脚本",
	Long: `读取会话文件或包含用例 JSON 数组的文本（例如保存下来的模型回复），
结合接口文档重新生成前置脚本和请求体。

接口文档默认按会话中记录的接口路径在线获取，也可以用 --doc-file 指定本地文件。

示例：
  casegen script ~/.casegen/sessions/20250701_101500_ab12cd34.json
  casegen script reply.txt --api /erp/opentrade/v2/list/trades
  casegen script cases.json --doc-file trades_doc.json --no-save`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig()
		if err != nil {
			return err
		}

		apiPath := ""
		var cases []internal.TestCase
		if s, err := internal.LoadSession(args[0]); err == nil && len(s.Cases) > 0 {
			apiPath = s.APIPath
			cases = s.Cases
		} else {
			if cases, err = internal.LoadCasesFile(args[0]); err != nil {
				return err
			}
		}
		if v, _ := cmd.Flags().GetString("api"); v != "" {
			apiPath = v
		}
		if v, _ := cmd.Flags().GetString("doc-base-url"); v != "" {
			cfg.DocBaseURL = v
		}
		if apiPath == "" {
			apiPath = cfg.APIPath
		}

		docFile, _ := cmd.Flags().GetString("doc-file")
		doc, err := loadDoc(cmd.Context(), cfg, apiPath, docFile)
		if err != nil {
			return err
		}

		session := internal.NewSession(doc, "", "", cases)
		fmt.Printf("✅ 接口 %s 共 %d 条用例\n", doc.Title, len(session.Scripts))
		printScriptBlocks(session)
		return saveOutputs(cmd, cfg, session)
	},
}

func init() {
	scriptCmd.Flags().String("api", "", "接口路径 (默认取会话记录或配置)")
	scriptCmd.Flags().String("doc-file", "", "本地接口文档 JSON 文件")
	scriptCmd.Flags().String("doc-base-url", "", "接口文档服务地址")
	scriptCmd.Flags().String("out", "", "会话保存目录")
	scriptCmd.Flags().Bool("no-save", false, "不保存会话文件")
	scriptCmd.Flags().String("xlsx", "", "同时导出为 Excel 文件")
	rootCmd.AddCommand(scriptCmd)
}

// loadDoc 优先读取本地文档文件，否则在线获取.
func loadDoc(ctx context.Context, cfg *internal.Config, apiPath, docFile string) (*internal.APIDoc, error) {
	if docFile != "" {
		return internal.LoadAPIDocFile(docFile, apiPath)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return internal.NewDocClient(cfg.DocBaseURL, newLogger(os.Stderr)).Fetch(ctx, apiPath)
}
