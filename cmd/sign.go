package cmd

import (
	"fmt"
	"os"
	"time"

	"casegen/internal"

	"github.com/spf13/cobra"
)

// 签名凭据的环境变量.
const (
	envSecret = "CASEGEN_SECRET"
	envAppKey = "CASEGEN_APP_KEY"
)

// signCmd 代表 sign 命令.
var signCmd = &cobra.Command{
	Use:   "sign [session-file]",
	Short: "在本地复现签名脚本，输出最终请求体",
	Long: `用测试环境变量库和前置脚本1中的字面量解析用例的引用参数，
按签名脚本相同的规则计算 _sign，输出可直接发送的请求体。

secret 与 appKey 依次取自 --secret/--app-key、CASEGEN_SECRET/CASEGEN_APP_KEY
环境变量、变量库中名为 secret/appKey 的条目。不指定会话文件时使用最近一次会话。

示例：
  casegen sign --index 2
  casegen sign session.json --all --time 1719800000`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if v, _ := cmd.Flags().GetString("env"); v != "" {
			cfg.EnvFile = v
		}

		session, err := loadSessionArg(args, cfg)
		if err != nil {
			return err
		}

		lib, err := internal.LoadEnvLibrary(cfg.EnvFile)
		if err != nil {
			return err
		}
		vars := internal.EnvValues(lib)

		secret := firstNonEmpty(flagString(cmd, "secret"), os.Getenv(envSecret), vars["secret"])
		appKey := firstNonEmpty(flagString(cmd, "app-key"), os.Getenv(envAppKey), vars["appKey"])
		if secret == "" || appKey == "" {
			return fmt.Errorf("缺少 secret 或 appKey，请通过 --secret/--app-key 或环境变量提供")
		}

		signer := internal.NewSigner(secret, appKey)
		if ts, _ := cmd.Flags().GetInt64("time"); ts > 0 {
			signer.Now = func() time.Time { return time.Unix(ts, 0) }
		}

		all, _ := cmd.Flags().GetBool("all")
		index, _ := cmd.Flags().GetInt("index")
		if !all && (index < 1 || index > len(session.Scripts)) {
			return fmt.Errorf("用例序号超出范围: %d (共 %d 条)", index, len(session.Scripts))
		}

		for i, set := range session.Scripts {
			if !all && i != index-1 {
				continue
			}
			signed := signer.Resolve(set, vars)
			fmt.Printf("🔏 用例 %d: %s\n", i+1, set.CaseName)
			fmt.Printf("   待签名串: %s\n", signed.StringToSign)
			fmt.Printf("   签名: %s\n", signed.Signature)
			fmt.Printf("   请求体: %s\n\n", signed.Body)
		}
		return nil
	},
}

func init() {
	signCmd.Flags().Int("index", 1, "用例序号（从1开始）")
	signCmd.Flags().Bool("all", false, "为全部用例签名")
	signCmd.Flags().String("secret", "", "签名密钥")
	signCmd.Flags().String("app-key", "", "应用 appKey")
	signCmd.Flags().String("env", "", "测试环境变量库文件")
	signCmd.Flags().Int64("time", 0, "固定时间戳（秒），用于复现签名")
	rootCmd.AddCommand(signCmd)
}

// loadSessionArg 读取参数指定的会话，未指定时读取最近的会话.
func loadSessionArg(args []string, cfg *internal.Config) (*internal.Session, error) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	} else {
		latest, err := internal.LatestSession(cfg.OutputDir)
		if err != nil {
			return nil, err
		}
		path = latest
	}
	return internal.LoadSession(path)
}

func flagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
