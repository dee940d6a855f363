package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"casegen/internal"
)

// App GUI 应用结构体，封装 internal 包调用
type App struct {
	ctx           context.Context
	configManager *internal.ConfigManager
	configPath    string
	log           *slog.Logger

	mu      sync.Mutex
	browser *internal.Browser
}

// ConfigDTO 配置数据传输对象，API Key 前端只显示掩码
type ConfigDTO struct {
	Provider       string   `json:"provider"`
	APIPath        string   `json:"api_path"`
	DocBaseURL     string   `json:"doc_base_url"`
	EnvFile        string   `json:"env_file"`
	OutputDir      string   `json:"output_dir"`
	TimeoutSeconds int      `json:"timeout_seconds"`
	DoubaoAPIKey   string   `json:"doubao_api_key"`
	DoubaoModel    string   `json:"doubao_model"`
	DoubaoBaseURL  string   `json:"doubao_base_url"`
	DoubaoFallback []string `json:"doubao_fallback_urls"`
	GeminiAPIKey   string   `json:"gemini_api_key"`
	GeminiModel    string   `json:"gemini_model"`
	GeminiBaseURL  string   `json:"gemini_base_url"`
	HasDoubaoKey   bool     `json:"has_doubao_key"`
	HasGeminiKey   bool     `json:"has_gemini_key"`
	ConfigPath     string   `json:"config_path"`
}

// CaseDTO 当前浏览的用例
type CaseDTO struct {
	Index         int    `json:"index"` // 从1开始
	Total         int    `json:"total"`
	CaseName      string `json:"case_name"`
	VariableDefs  string `json:"variable_defs"`
	SigningScript string `json:"signing_script"`
	RequestBody   string `json:"request_body"`
	Status        string `json:"status"`
}

// GenerateResultDTO 生成结果
type GenerateResultDTO struct {
	SessionID string  `json:"session_id"`
	APITitle  string  `json:"api_title"`
	Count     int     `json:"count"`
	Current   CaseDTO `json:"current"`
}

// NewApp 创建 App 实例
func NewApp() (*App, error) {
	if err := internal.LoadDotEnv(); err != nil {
		return nil, err
	}
	cm, err := internal.NewConfigManager()
	if err != nil {
		return nil, fmt.Errorf("创建配置管理器失败: %w", err)
	}
	return &App{
		ctx:           context.Background(),
		configManager: cm,
		configPath:    cm.GetConfigPath(),
		log:           slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}, nil
}

// GetConfig 获取配置
func (a *App) GetConfig() ConfigDTO {
	return toConfigDTO(a.configManager.GetConfig(), a.configPath)
}

// SaveConfig 保存配置，API Key 为掩码或空时保留原值
func (a *App) SaveConfig(dto ConfigDTO) error {
	current := a.configManager.GetConfig()
	cfg := *current
	cfg.Provider = dto.Provider
	cfg.APIPath = dto.APIPath
	cfg.DocBaseURL = dto.DocBaseURL
	cfg.EnvFile = dto.EnvFile
	cfg.OutputDir = dto.OutputDir
	cfg.TimeoutSeconds = dto.TimeoutSeconds
	cfg.Doubao.Model = dto.DoubaoModel
	cfg.Doubao.BaseURL = dto.DoubaoBaseURL
	if dto.DoubaoFallback != nil {
		cfg.Doubao.FallbackURLs = dto.DoubaoFallback
	}
	cfg.Gemini.Model = dto.GeminiModel
	cfg.Gemini.BaseURL = dto.GeminiBaseURL
	cfg.Doubao.APIKey = mergeAPIKey(current.Doubao.APIKey, dto.DoubaoAPIKey)
	cfg.Gemini.APIKey = mergeAPIKey(current.Gemini.APIKey, dto.GeminiAPIKey)
	return a.configManager.Update(cfg)
}

// ResetConfig 恢复默认配置
func (a *App) ResetConfig() error {
	return a.configManager.Reset()
}

// InspectEnvFile 检查测试数据文件
func (a *App) InspectEnvFile(path string) string {
	return internal.InspectEnvFile(path)
}

// Generate 为接口设计用例并生成脚本，apiPath 为空时使用配置
func (a *App) Generate(apiPath string) (GenerateResultDTO, error) {
	cfg := a.configManager.Effective()
	if apiPath != "" {
		cfg.APIPath = apiPath
	}

	designer, err := internal.NewDesignerFromConfig(cfg, a.log)
	if err != nil {
		return GenerateResultDTO{}, err
	}
	session, err := designer.Run(a.ctx, cfg.APIPath, cfg.EnvFile)
	if err != nil {
		return GenerateResultDTO{}, err
	}

	a.mu.Lock()
	a.browser = internal.NewBrowser(session)
	current := a.currentLocked(fmt.Sprintf("共 %d 条用例", len(session.Scripts)))
	a.mu.Unlock()

	return GenerateResultDTO{
		SessionID: session.ID,
		APITitle:  session.APITitle,
		Count:     len(session.Scripts),
		Current:   current,
	}, nil
}

// OpenSession 打开已保存的会话
func (a *App) OpenSession(path string) (CaseDTO, error) {
	session, err := internal.LoadSession(path)
	if err != nil {
		return CaseDTO{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.browser = internal.NewBrowser(session)
	return a.currentLocked(fmt.Sprintf("已打开 %s", path)), nil
}

// Current 当前用例
func (a *App) Current() CaseDTO {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentLocked("")
}

// Next 下一条用例
func (a *App) Next() CaseDTO {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.browser == nil {
		return CaseDTO{Status: "请先生成用例"}
	}
	_, status := a.browser.Next()
	return a.currentLocked(status)
}

// Prev 上一条用例
func (a *App) Prev() CaseDTO {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.browser == nil {
		return CaseDTO{Status: "请先生成用例"}
	}
	_, status := a.browser.Prev()
	return a.currentLocked(status)
}

// SaveSession 保存当前会话，path 为空时保存到默认目录
func (a *App) SaveSession(path string) (string, error) {
	session, err := a.session()
	if err != nil {
		return "", err
	}
	if path == "" {
		if path, err = internal.DefaultSessionPath(a.configManager.GetConfig().OutputDir, session); err != nil {
			return "", err
		}
	}
	if err := internal.SaveSession(session, path); err != nil {
		return "", err
	}
	return path, nil
}

// ExportWorkbook 导出当前会话为 Excel
func (a *App) ExportWorkbook(path string) error {
	session, err := a.session()
	if err != nil {
		return err
	}
	return internal.ExportWorkbook(session, path)
}

func (a *App) session() (*internal.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.browser == nil || a.browser.Session() == nil {
		return nil, internal.ErrNoSession
	}
	return a.browser.Session(), nil
}

func (a *App) currentLocked(status string) CaseDTO {
	if a.browser == nil {
		return CaseDTO{Status: "请先生成用例"}
	}
	set, ok := a.browser.Current()
	if !ok {
		return CaseDTO{Status: "没有用例"}
	}
	return CaseDTO{
		Index:         a.browser.Index() + 1,
		Total:         a.browser.Len(),
		CaseName:      set.CaseName,
		VariableDefs:  set.VariableDefs,
		SigningScript: set.SigningScript,
		RequestBody:   set.RequestBody,
		Status:        status,
	}
}

func toConfigDTO(cfg *internal.Config, path string) ConfigDTO {
	return ConfigDTO{
		Provider:       cfg.Provider,
		APIPath:        cfg.APIPath,
		DocBaseURL:     cfg.DocBaseURL,
		EnvFile:        cfg.EnvFile,
		OutputDir:      cfg.OutputDir,
		TimeoutSeconds: cfg.TimeoutSeconds,
		DoubaoAPIKey:   internal.MaskAPIKey(cfg.Doubao.APIKey),
		DoubaoModel:    cfg.Doubao.Model,
		DoubaoBaseURL:  cfg.Doubao.BaseURL,
		DoubaoFallback: cfg.Doubao.FallbackURLs,
		GeminiAPIKey:   internal.MaskAPIKey(cfg.Gemini.APIKey),
		GeminiModel:    cfg.Gemini.Model,
		GeminiBaseURL:  cfg.Gemini.BaseURL,
		HasDoubaoKey:   cfg.Doubao.APIKey != "",
		HasGeminiKey:   cfg.Gemini.APIKey != "",
		ConfigPath:     path,
	}
}

// mergeAPIKey 前端回传掩码或空值时保留原 Key
func mergeAPIKey(current, incoming string) string {
	if incoming == "" || incoming == internal.MaskAPIKey(current) {
		return current
	}
	return incoming
}

// Startup 应用启动时的回调
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
}

// DomReady DOM 加载完成时的回调
func (a *App) DomReady(ctx context.Context) {
	// DOM 已准备好
}

// BeforeClose 应用关闭前的回调
func (a *App) BeforeClose(ctx context.Context) (prevent bool) {
	return false
}

// Shutdown 应用关闭时的回调
func (a *App) Shutdown(ctx context.Context) {
	// 清理操作
}
