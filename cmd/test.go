package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"casegen/internal"

	"github.com/spf13/cobra"
)

// connectivityPrompt 连通性测试使用的提问.
const connectivityPrompt = "1+1等于几？"

// testCmd represents the test command.
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "测试模型提供商连通性和 API Key 有效性",
	Long: `向模型发送一个简单问题，检查网络、API Key 和模型名称是否可用。

示例：
  casegen test                     # 测试当前提供商
  casegen test --provider gemini   # 测试指定提供商
  casegen test --all --parallel    # 并行测试全部提供商`,
	Aliases: []string{"check", "ping"},
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		parallel, _ := cmd.Flags().GetBool("parallel")
		timeout, _ := cmd.Flags().GetInt("timeout")
		asJSON, _ := cmd.Flags().GetBool("json")
		provider, _ := cmd.Flags().GetString("provider")

		_, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if timeout > 0 {
			cfg.TimeoutSeconds = timeout
		}
		log := newLogger(os.Stderr)

		names := []string{cfg.Provider}
		switch {
		case all:
			names = []string{internal.ProviderDoubao, internal.ProviderGemini}
		case provider != "":
			names = []string{provider}
		}

		results := runProviderTests(cmd.Context(), cfg, names, parallel, log)
		if asJSON {
			PrintResultsAsJSON(results)
		} else {
			for i, r := range results {
				if i > 0 {
					fmt.Println()
				}
				printTestResult(r)
			}
		}

		for _, r := range results {
			if !r.Success {
				return fmt.Errorf("%s 测试失败", r.Name)
			}
		}
		return nil
	},
}

// TestResult 测试结果.
type TestResult struct {
	Name      string `json:"name"`
	Model     string `json:"model"`
	Success   bool   `json:"success"`
	Latency   int64  `json:"latency_ms"`
	Reply     string `json:"reply,omitempty"`
	Error     string `json:"error,omitempty"`
	HasAPIKey bool   `json:"has_api_key"`
}

func init() {
	testCmd.Flags().BoolP("all", "a", false, "测试所有提供商")
	testCmd.Flags().BoolP("parallel", "p", false, "并行测试 (与 --all 配合使用)")
	testCmd.Flags().IntP("timeout", "t", 30, "超时时间（秒）")
	testCmd.Flags().Bool("json", false, "以 JSON 输出结果")
	testCmd.Flags().String("provider", "", "指定提供商 (doubao|gemini)")
	_ = testCmd.RegisterFlagCompletionFunc("provider", completeProvider)
	rootCmd.AddCommand(testCmd)
}

// runProviderTests 依次或并行测试提供商，结果顺序与 names 一致.
func runProviderTests(ctx context.Context, cfg *internal.Config, names []string, parallel bool, log *slog.Logger) []*TestResult {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]*TestResult, len(names))
	if !parallel {
		for i, name := range names {
			results[i] = testProvider(ctx, cfg, name, log)
		}
		return results
	}

	type indexed struct {
		i int
		r *TestResult
	}
	ch := make(chan indexed, len(names))
	for i, name := range names {
		go func() {
			ch <- indexed{i, testProvider(ctx, cfg, name, log)}
		}()
	}
	for range names {
		res := <-ch
		results[res.i] = res.r
	}
	return results
}

// testProvider 测试单个提供商.
func testProvider(ctx context.Context, base *internal.Config, name string, log *slog.Logger) *TestResult {
	cfg := *base
	cfg.Provider = strings.ToLower(name)

	result := &TestResult{
		Name:      cfg.Provider,
		Model:     cfg.ActiveModel(),
		HasAPIKey: cfg.ActiveAPIKey() != "",
	}

	provider, err := internal.NewProvider(&cfg, log)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout())
	defer cancel()

	start := time.Now()
	reply, err := provider.Complete(ctx, connectivityPrompt)
	result.Latency = time.Since(start).Milliseconds()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			result.Error = fmt.Sprintf("请求超时 (%s)", cfg.RequestTimeout())
		} else {
			result.Error = err.Error()
		}
		return result
	}

	result.Success = true
	result.Reply = strings.TrimSpace(reply)
	return result
}

// printTestResult 打印单个测试结果.
func printTestResult(result *TestResult) {
	if result.Success {
		fmt.Printf("✅ %s\n", result.Name)
	} else {
		fmt.Printf("❌ %s\n", result.Name)
	}

	fmt.Printf("   模型: %s\n", result.Model)

	if result.HasAPIKey {
		fmt.Printf("   API Key: ✓ 已配置\n")
	} else {
		fmt.Printf("   API Key: ✗ 未配置\n")
	}

	if result.Latency > 0 {
		fmt.Printf("   延迟: %dms\n", result.Latency)
	}

	if result.Reply != "" {
		fmt.Printf("   回复: %s\n", previewLine(result.Reply, 80))
	}

	if result.Error != "" {
		fmt.Printf("   错误: %s\n", result.Error)
	}
}

// PrintResultsAsJSON 将结果打印为 JSON 格式.
func PrintResultsAsJSON(results []*TestResult) {
	data, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(data))
}

// previewLine 压成一行并截断.
func previewLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
