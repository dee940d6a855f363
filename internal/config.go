package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// 提供商名称.
const (
	ProviderDoubao = "doubao"
	ProviderGemini = "gemini"
)

// 默认配置.
const (
	DefaultDoubaoBaseURL  = "https://ark.cn-beijing.volces.com/api/v3"
	DefaultDoubaoModel    = "doubao-seed-1-6-250615"
	DefaultGeminiBaseURL  = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel    = "gemini-2.5-pro"
	DefaultDocBaseURL     = "http://114.67.231.162/api/doc"
	DefaultAPIPath        = "/erp/opentrade/v2/list/trades"
	DefaultEnvFile        = "MS_25_Environments_variables.json"
	defaultTimeoutSeconds = 120
)

// 环境变量覆盖.
const (
	EnvDoubaoAPIKey = "DOUBAO_API_KEY"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvProvider     = "CASEGEN_PROVIDER"
	EnvDocBaseURL   = "CASEGEN_DOC_BASE_URL"
)

// DefaultDoubaoFallbackURLs SDK 调用失败后依次尝试的端点.
var DefaultDoubaoFallbackURLs = []string{
	"https://api.volcengine.com/ark/v3/chat/completions",
	"https://ark.cn-beijing.volces.com/api/v3/chat/completions",
}

// DoubaoConfig 豆包配置.
type DoubaoConfig struct {
	APIKey       string   `json:"api_key" toml:"api_key"`
	Model        string   `json:"model" toml:"model"`
	BaseURL      string   `json:"base_url" toml:"base_url"`
	FallbackURLs []string `json:"fallback_urls" toml:"fallback_urls"`
}

// GeminiConfig Gemini 配置.
type GeminiConfig struct {
	APIKey  string `json:"api_key" toml:"api_key"`
	Model   string `json:"model" toml:"model"`
	BaseURL string `json:"base_url" toml:"base_url"`
}

// Config 应用配置，显式传给各个协作者.
type Config struct {
	Provider       string       `json:"provider" toml:"provider"`
	APIPath        string       `json:"api_path" toml:"api_path"`
	DocBaseURL     string       `json:"doc_base_url" toml:"doc_base_url"`
	EnvFile        string       `json:"env_file" toml:"env_file"`
	OutputDir      string       `json:"output_dir" toml:"output_dir"`
	TimeoutSeconds int          `json:"timeout_seconds" toml:"timeout_seconds"`
	Doubao         DoubaoConfig `json:"doubao" toml:"doubao"`
	Gemini         GeminiConfig `json:"gemini" toml:"gemini"`
}

// DefaultConfig 返回默认配置.
func DefaultConfig() *Config {
	return &Config{
		Provider:       ProviderDoubao,
		APIPath:        DefaultAPIPath,
		DocBaseURL:     DefaultDocBaseURL,
		EnvFile:        DefaultEnvFile,
		TimeoutSeconds: defaultTimeoutSeconds,
		Doubao: DoubaoConfig{
			Model:        DefaultDoubaoModel,
			BaseURL:      DefaultDoubaoBaseURL,
			FallbackURLs: append([]string(nil), DefaultDoubaoFallbackURLs...),
		},
		Gemini: GeminiConfig{
			Model:   DefaultGeminiModel,
			BaseURL: DefaultGeminiBaseURL,
		},
	}
}

// RequestTimeout 模型请求超时.
func (c *Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ActiveModel 当前提供商使用的模型.
func (c *Config) ActiveModel() string {
	if strings.EqualFold(c.Provider, ProviderGemini) {
		return c.Gemini.Model
	}
	return c.Doubao.Model
}

// ActiveAPIKey 当前提供商的 API 密钥.
func (c *Config) ActiveAPIKey() string {
	if strings.EqualFold(c.Provider, ProviderGemini) {
		return c.Gemini.APIKey
	}
	return c.Doubao.APIKey
}

// fillDefaults 补全缺失的字段.
func (c *Config) fillDefaults() {
	d := DefaultConfig()
	if c.Provider == "" {
		c.Provider = d.Provider
	}
	if c.APIPath == "" {
		c.APIPath = d.APIPath
	}
	if c.DocBaseURL == "" {
		c.DocBaseURL = d.DocBaseURL
	}
	if c.EnvFile == "" {
		c.EnvFile = d.EnvFile
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = d.TimeoutSeconds
	}
	if c.Doubao.Model == "" {
		c.Doubao.Model = d.Doubao.Model
	}
	if c.Doubao.BaseURL == "" {
		c.Doubao.BaseURL = d.Doubao.BaseURL
	}
	if c.Doubao.FallbackURLs == nil {
		c.Doubao.FallbackURLs = d.Doubao.FallbackURLs
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = d.Gemini.Model
	}
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = d.Gemini.BaseURL
	}
}

// ConfigManager 配置管理器.
type ConfigManager struct {
	configPath string
	config     *Config
	crypto     *CryptoManager
}

// NewConfigManager 在用户主目录下创建配置管理器.
func NewConfigManager() (*ConfigManager, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("获取用户主目录失败: %v", err)
	}
	return NewConfigManagerAt(configDir)
}

// NewConfigManagerAt 使用指定目录创建配置管理器.
func NewConfigManagerAt(configDir string) (*ConfigManager, error) {
	if err := EnsureDir(configDir); err != nil {
		return nil, fmt.Errorf("创建配置目录失败: %v", err)
	}

	secret, err := loadOrCreateSecret(filepath.Join(configDir, secretFileName))
	if err != nil {
		return nil, err
	}

	cm := &ConfigManager{
		configPath: filepath.Join(configDir, configFileName),
		config:     DefaultConfig(),
		crypto:     NewCryptoManager(secret),
	}

	if err := cm.loadConfig(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("加载配置文件失败: %w", err)
	}
	return cm, nil
}

// loadConfig 加载配置文件并解密 API 密钥.
func (cm *ConfigManager) loadConfig() error {
	if _, err := os.Stat(cm.configPath); err != nil {
		return err
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(cm.configPath, cfg); err != nil {
		return err
	}
	cfg.fillDefaults()

	var err error
	if cfg.Doubao.APIKey, err = cm.crypto.DecryptString(cfg.Doubao.APIKey); err != nil {
		return fmt.Errorf("解密豆包 API 密钥失败: %w", err)
	}
	if cfg.Gemini.APIKey, err = cm.crypto.DecryptString(cfg.Gemini.APIKey); err != nil {
		return fmt.Errorf("解密 Gemini API 密钥失败: %w", err)
	}
	cm.config = cfg
	return nil
}

// SaveConfig 保存配置文件，API 密钥加密存储.
func (cm *ConfigManager) SaveConfig() error {
	stored := *cm.config
	var err error
	if stored.Doubao.APIKey, err = cm.crypto.EncryptString(cm.config.Doubao.APIKey); err != nil {
		return fmt.Errorf("加密豆包 API 密钥失败: %w", err)
	}
	if stored.Gemini.APIKey, err = cm.crypto.EncryptString(cm.config.Gemini.APIKey); err != nil {
		return fmt.Errorf("加密 Gemini API 密钥失败: %w", err)
	}

	file, err := os.OpenFile(cm.configPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Printf("警告: 关闭配置文件失败: %v\n", err)
		}
	}()

	return toml.NewEncoder(file).Encode(stored)
}

// GetConfig 返回持久化的配置.
func (cm *ConfigManager) GetConfig() *Config {
	return cm.config
}

// GetConfigPath 返回配置文件路径.
func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}

// Effective 返回叠加环境变量后的配置副本，不会写回文件.
func (cm *ConfigManager) Effective() *Config {
	cfg := *cm.config
	cfg.Doubao.FallbackURLs = append([]string(nil), cm.config.Doubao.FallbackURLs...)
	ApplyEnvOverrides(&cfg)
	return &cfg
}

// Update 替换整个配置并保存.
func (cm *ConfigManager) Update(cfg Config) error {
	cfg.fillDefaults()
	cm.config = &cfg
	return cm.SaveConfig()
}

// Set 按键名修改单个配置项并保存.
func (cm *ConfigManager) Set(key, value string) error {
	c := cm.config
	switch key {
	case "provider":
		v := strings.ToLower(strings.TrimSpace(value))
		if v != ProviderDoubao && v != ProviderGemini {
			return fmt.Errorf("%w: %q", ErrUnknownProvider, value)
		}
		c.Provider = v
	case "api_path":
		c.APIPath = value
	case "doc_base_url":
		c.DocBaseURL = value
	case "env_file":
		c.EnvFile = value
	case "output_dir":
		c.OutputDir = value
	case "timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("timeout_seconds 必须是正整数: %q", value)
		}
		c.TimeoutSeconds = n
	case "doubao.api_key":
		c.Doubao.APIKey = value
	case "doubao.model":
		c.Doubao.Model = value
	case "doubao.base_url":
		c.Doubao.BaseURL = value
	case "doubao.fallback_urls":
		c.Doubao.FallbackURLs = splitList(value)
	case "gemini.api_key":
		c.Gemini.APIKey = value
	case "gemini.model":
		c.Gemini.Model = value
	case "gemini.base_url":
		c.Gemini.BaseURL = value
	default:
		return fmt.Errorf("未知的配置项 '%s'", key)
	}
	return cm.SaveConfig()
}

// ConfigKeys 可通过 Set 修改的配置项.
func ConfigKeys() []string {
	return []string{
		"provider", "api_path", "doc_base_url", "env_file", "output_dir", "timeout_seconds",
		"doubao.api_key", "doubao.model", "doubao.base_url", "doubao.fallback_urls",
		"gemini.api_key", "gemini.model", "gemini.base_url",
	}
}

// Reset 删除配置文件并恢复默认值.
func (cm *ConfigManager) Reset() error {
	if err := os.Remove(cm.configPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("删除配置文件失败: %w", err)
	}
	cm.config = DefaultConfig()
	return nil
}

// LoadDotEnv 加载 .env 文件，文件不存在时忽略.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("加载 %s 失败: %w", p, err)
		}
	}
	return nil
}

// ApplyEnvOverrides 使用环境变量覆盖配置.
func ApplyEnvOverrides(c *Config) {
	if env := os.Getenv(EnvDoubaoAPIKey); env != "" {
		c.Doubao.APIKey = env
	}
	if env := os.Getenv(EnvGeminiAPIKey); env != "" {
		c.Gemini.APIKey = env
	}
	if env := os.Getenv(EnvProvider); env != "" {
		c.Provider = strings.ToLower(env)
	}
	if env := os.Getenv(EnvDocBaseURL); env != "" {
		c.DocBaseURL = env
	}
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
