package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"casegen/internal"

	"github.com/spf13/cobra"
)

// 版本信息变量，通过 ldflags 在构建时注入.
// 构建命令示例:
// go build -tags cli -ldflags "-X casegen/cmd.Version=0.3.0 -X casegen/cmd.GitCommit=abc123 -X casegen/cmd.BuildTime=2025-07-01T00:00:00Z" .
var (
	// Version 版本号.
	Version = "dev"
	// GitCommit Git 提交 hash.
	GitCommit = "unknown"
	// BuildTime 构建时间.
	BuildTime = "unknown"
)

// VersionInfo 版本信息.
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// currentVersion 汇总版本信息，未注入 ldflags 时尝试读取 go install 记录的模块版本和 vcs 信息.
func currentVersion() VersionInfo {
	info := VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  string(internal.GetCurrentPlatform()) + "/" + runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.GitCommit == "unknown":
			info.GitCommit = s.Value
		case s.Key == "vcs.time" && info.BuildTime == "unknown":
			info.BuildTime = s.Value
		}
	}
	return info
}

// versionCmd 代表 version 命令.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Long:  `显示 casegen 的版本、构建时间和 Git 提交信息。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentVersion()

		if short, _ := cmd.Flags().GetBool("short"); short {
			fmt.Println(info.Version)
			return nil
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("casegen %s\n", info.Version)
		fmt.Printf("  Git Commit: %s\n", info.GitCommit)
		fmt.Printf("  Build Time: %s\n", info.BuildTime)
		fmt.Printf("  Go Version: %s\n", info.GoVersion)
		fmt.Printf("  OS/Arch:    %s\n", info.Platform)
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolP("short", "s", false, "只显示版本号")
	versionCmd.Flags().Bool("json", false, "以 JSON 输出")
	rootCmd.AddCommand(versionCmd)
}
