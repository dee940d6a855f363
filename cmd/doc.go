package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// docCmd 代表 doc 命令.
var docCmd = &cobra.Command{
	Use:   "doc [api-path]",
	Short: "获取接口文档并列出参数",
	Long: `获取接口文档，列出 request.args 中声明的参数。
带模型链接的参数是复杂对象，生成脚本时会压缩成 JSON 存入变量。

示例：
  casegen doc
  casegen doc /erp/opentrade/v2/list/trades --raw`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if v, _ := cmd.Flags().GetString("doc-base-url"); v != "" {
			cfg.DocBaseURL = v
		}
		apiPath := cfg.APIPath
		if len(args) == 1 {
			apiPath = args[0]
		}

		docFile, _ := cmd.Flags().GetString("doc-file")
		doc, err := loadDoc(cmd.Context(), cfg, apiPath, docFile)
		if err != nil {
			return err
		}

		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			fmt.Println(doc.Raw)
			return nil
		}

		fmt.Printf("📄 %s (%s)\n", doc.Title, doc.Path)
		fmt.Println(strings.Repeat("=", 50))
		if len(doc.Args) == 0 {
			fmt.Println("文档中没有声明参数")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "参数\t类型\t说明")
		for _, arg := range doc.Args {
			typ := "-"
			if arg.Type != nil {
				typ = arg.Type.Name
				if arg.IsComplex() {
					typ += " (复杂对象)"
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", arg.Name, typ, arg.Description)
		}
		return w.Flush()
	},
}

func init() {
	docCmd.Flags().Bool("raw", false, "输出原始文档 JSON")
	docCmd.Flags().String("doc-file", "", "本地接口文档 JSON 文件")
	docCmd.Flags().String("doc-base-url", "", "接口文档服务地址")
	rootCmd.AddCommand(docCmd)
}
