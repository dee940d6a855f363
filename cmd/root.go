package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"casegen/internal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var verbose bool

// rootCmd 代表基础命令，当不带任何子命令调用时执行.
var rootCmd = &cobra.Command{
	Use:   "casegen",
	Short: "接口测试用例与签名脚本生成工具",
	Long: `casegen 调用大模型（豆包或 Gemini）为内部 HTTP 接口设计测试用例，
并为每个用例生成压测工具所需的前置脚本和签名请求体。

支持功能：
- 拉取接口文档，结合测试环境变量库设计用例
- 生成变量定义脚本、MD5 签名脚本和请求体
- 在本地复现签名，浏览、导出历史会话

使用示例：
  casegen generate --api /erp/opentrade/v2/list/trades
  casegen browse
  casegen export session.json cases.xlsx
  casegen config set doubao.api_key sk-xxxx`,
	SilenceUsage: true,
}

// Execute 添加所有子命令到根命令并设置标志.
// 这由main.main()调用。只需要对rootCmd执行一次.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")
}

// newLogger 诊断日志写到 stderr，--verbose 时输出调试级别.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig 加载 .env 和配置文件，返回管理器与叠加环境变量后的配置.
func loadConfig() (*internal.ConfigManager, *internal.Config, error) {
	if err := internal.LoadDotEnv(); err != nil {
		fmt.Printf("⚠️  %v\n", err)
	}
	cm, err := internal.NewConfigManager()
	if err != nil {
		return nil, nil, fmt.Errorf("无法创建配置管理器: %w", err)
	}
	return cm, cm.Effective(), nil
}

// addPipelineFlags 注册会覆盖配置项的通用标志.
func addPipelineFlags(fs *pflag.FlagSet) {
	fs.String("api", "", "接口路径 (默认使用配置中的 api_path)")
	fs.String("env", "", "测试环境变量库文件 (JSON 或 YAML)")
	fs.String("provider", "", "模型提供商 (doubao|gemini)")
	fs.String("doc-base-url", "", "接口文档服务地址")
}

// applyPipelineFlags 用命令行标志覆盖配置.
func applyPipelineFlags(fs *pflag.FlagSet, cfg *internal.Config) {
	if v, _ := fs.GetString("api"); v != "" {
		cfg.APIPath = v
	}
	if v, _ := fs.GetString("env"); v != "" {
		cfg.EnvFile = v
	}
	if v, _ := fs.GetString("provider"); v != "" {
		cfg.Provider = v
	}
	if v, _ := fs.GetString("doc-base-url"); v != "" {
		cfg.DocBaseURL = v
	}
}
