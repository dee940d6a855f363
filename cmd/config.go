package cmd

import (
	"fmt"
	"os"
	"strings"

	"casegen/internal"

	"github.com/spf13/cobra"
)

// configCmd 代表 config 命令.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "查看和修改配置",
	Long: `管理 ~/.casegen/config.toml。API Key 加密保存，显示时脱敏。

环境变量 DOUBAO_API_KEY、GEMINI_API_KEY、CASEGEN_PROVIDER、CASEGEN_DOC_BASE_URL
会覆盖文件中的配置（当前目录下的 .env 文件也会被加载）。`,
}

// configShowCmd 显示配置.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "显示当前配置",
	RunE: func(cmd *cobra.Command, args []string) error {
		cm, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		printConfig(cm.GetConfigPath(), cfg)
		return nil
	},
}

// configSetCmd 修改单个配置项.
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "修改配置项",
	Long: fmt.Sprintf(`修改单个配置项并保存。

可用配置项：
  %s

示例：
  casegen config set provider gemini
  casegen config set doubao.api_key sk-xxxx
  casegen config set doubao.fallback_urls "https://a/chat/completions,https://b/chat/completions"`,
		strings.Join(internal.ConfigKeys(), "\n  ")),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cm, err := internal.NewConfigManager()
		if err != nil {
			return fmt.Errorf("无法创建配置管理器: %w", err)
		}
		if err := cm.Set(args[0], args[1]); err != nil {
			return err
		}

		value := args[1]
		if strings.HasSuffix(args[0], "api_key") {
			value = internal.MaskAPIKey(value)
		}
		fmt.Printf("✅ 已设置 %s = %s\n", args[0], value)
		return nil
	},
}

// configResetCmd 恢复默认配置.
var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "删除配置文件并恢复默认值",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !internal.PromptConfirmation("确定要删除配置文件（包括已保存的 API Key）吗？") {
			fmt.Println("已取消")
			return nil
		}

		cm, err := internal.NewConfigManager()
		if err != nil {
			return fmt.Errorf("无法创建配置管理器: %w", err)
		}
		if err := cm.Reset(); err != nil {
			return err
		}
		fmt.Println("✅ 配置已恢复默认值")
		return nil
	},
}

// configPathCmd 输出配置文件路径.
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "显示配置文件路径",
	RunE: func(cmd *cobra.Command, args []string) error {
		cm, err := internal.NewConfigManager()
		if err != nil {
			return fmt.Errorf("无法创建配置管理器: %w", err)
		}
		fmt.Println(cm.GetConfigPath())
		return nil
	},
}

func init() {
	configResetCmd.Flags().BoolP("yes", "y", false, "跳过确认")
	configCmd.AddCommand(configShowCmd, configSetCmd, configResetCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// printConfig 打印配置，API Key 脱敏.
func printConfig(path string, cfg *internal.Config) {
	fmt.Println("当前配置:")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("配置文件: %s\n", path)
	fmt.Printf("提供商: %s (模型 %s)\n", cfg.Provider, cfg.ActiveModel())
	fmt.Printf("接口路径: %s\n", cfg.APIPath)
	fmt.Printf("文档服务: %s\n", cfg.DocBaseURL)
	fmt.Printf("测试数据: %s\n", cfg.EnvFile)
	fmt.Printf("           %s\n", internal.InspectEnvFile(cfg.EnvFile))
	if cfg.OutputDir != "" {
		fmt.Printf("输出目录: %s\n", cfg.OutputDir)
	}
	fmt.Printf("超时: %s\n", cfg.RequestTimeout())
	fmt.Println()

	fmt.Println("豆包:")
	fmt.Printf("  模型: %s\n", cfg.Doubao.Model)
	fmt.Printf("  地址: %s\n", cfg.Doubao.BaseURL)
	fmt.Printf("  API Key: %s\n", keyStatus(cfg.Doubao.APIKey, internal.EnvDoubaoAPIKey))
	for _, u := range cfg.Doubao.FallbackURLs {
		fmt.Printf("  备用端点: %s\n", u)
	}
	fmt.Println()

	fmt.Println("Gemini:")
	fmt.Printf("  模型: %s\n", cfg.Gemini.Model)
	fmt.Printf("  地址: %s\n", cfg.Gemini.BaseURL)
	fmt.Printf("  API Key: %s\n", keyStatus(cfg.Gemini.APIKey, internal.EnvGeminiAPIKey))
}

func keyStatus(key, envName string) string {
	if key == "" {
		return "未设置"
	}
	status := internal.MaskAPIKey(key)
	if os.Getenv(envName) != "" {
		status += fmt.Sprintf(" (来自 %s)", envName)
	}
	return status
}
