package internal

import (
	"os"
	"path/filepath"
	"runtime"
)

// 配置目录与文件名.
const (
	configDirName  = ".casegen"
	configFileName = "config.toml"
	secretFileName = ".secret"
	sessionDirName = "sessions"
)

// GetCurrentPlatform 获取当前运行平台.
func GetCurrentPlatform() Platform {
	switch runtime.GOOS {
	case "windows":
		return PlatformWindows
	case "darwin":
		return PlatformMac
	case "linux":
		return PlatformLinux
	default:
		return PlatformLinux // 默认使用Linux路径
	}
}

// GetConfigDir 获取配置目录，三个平台都放在用户主目录下.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, configDirName), nil
}

// GetSessionDir 获取默认的会话保存目录.
func GetSessionDir() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, sessionDirName), nil
}

// EnsureDir 确保目录存在，如果不存在则创建.
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}
