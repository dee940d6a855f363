package cmd

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"casegen/internal"

	"github.com/spf13/cobra"
)

// completionCmd 代表 completion 命令.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for your shell.

To load completions:

Bash:
  $ source <(casegen completion bash)

Zsh:
  $ casegen completion zsh > "${fpath[1]}/_casegen"

Fish:
  $ casegen completion fish | source

PowerShell:
  $ casegen completion powershell | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(cmd.OutOrStdout(), false)
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return generatePowerShellCompletion(cmd.OutOrStdout())
		default:
			return nil
		}
	},
}

// generatePowerShellCompletion 生成 PowerShell 补全脚本（带安装说明）.
func generatePowerShellCompletion(w io.Writer) error {
	var buf bytes.Buffer
	if err := rootCmd.GenPowerShellCompletion(&buf); err != nil {
		return err
	}

	script := fmt.Sprintf(`# casegen shell completion
if (Get-Command casegen -ErrorAction SilentlyContinue) {
%s
}
`, buf.String())

	_, err := w.Write([]byte(script))
	return err
}

func init() {
	rootCmd.AddCommand(completionCmd)

	configSetCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) != 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return configKeysForCompletion(toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

// completeProvider 补全 --provider 标志，需在标志注册之后调用 RegisterFlagCompletionFunc.
func completeProvider(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{internal.ProviderDoubao, internal.ProviderGemini}, cobra.ShellCompDirectiveNoFileComp
}

// configKeysForCompletion 获取可补全的配置项.
func configKeysForCompletion(toComplete string) []string {
	var keys []string
	for _, k := range internal.ConfigKeys() {
		if strings.HasPrefix(strings.ToLower(k), strings.ToLower(toComplete)) {
			keys = append(keys, k)
		}
	}
	return keys
}
