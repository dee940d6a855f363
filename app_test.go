package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"casegen/internal"
)

// 创建测试用的 App 实例，配置写在临时目录
func createTestApp(t *testing.T) *App {
	t.Helper()

	cm, err := internal.NewConfigManagerAt(t.TempDir())
	if err != nil {
		t.Fatalf("创建测试 App 失败: %v", err)
	}

	return &App{
		configManager: cm,
		configPath:    cm.GetConfigPath(),
		log:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// 创建一个带两条用例的会话文件
func writeTestSession(t *testing.T) string {
	t.Helper()
	cases, err := internal.ExtractCases(`[
		{"case_name":"查询普通商品","parameters":{"goods":"${goodcode}","page":1}},
		{"case_name":"店铺不存在","parameters":{"shop_nick":"none"}}
	]`)
	if err != nil {
		t.Fatal(err)
	}
	doc := &internal.APIDoc{
		Path:  "/erp/trades",
		Title: "订单列表",
		Args:  []internal.ParamDef{{Name: "goods"}, {Name: "page"}, {Name: "shop_nick"}},
	}
	path := filepath.Join(t.TempDir(), "session.json")
	if err := internal.SaveSession(internal.NewSession(doc, internal.ProviderDoubao, "m", cases), path); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestNewApp 测试 App 构造函数
func TestNewApp(t *testing.T) {
	tempDir := t.TempDir()
	for _, key := range []string{"HOME", "USERPROFILE"} {
		t.Setenv(key, tempDir)
	}

	app, err := NewApp()
	if err != nil {
		t.Fatalf("NewApp() 失败: %v", err)
	}
	if app.configManager == nil {
		t.Error("App.configManager 未初始化")
	}
	if !strings.HasPrefix(app.configPath, tempDir) {
		t.Errorf("App.configPath = %s", app.configPath)
	}
}

// TestGetConfig 测试配置读取时密钥脱敏
func TestGetConfig(t *testing.T) {
	app := createTestApp(t)
	if err := app.configManager.Set("doubao.api_key", "sk-1234567890abcdef"); err != nil {
		t.Fatal(err)
	}

	dto := app.GetConfig()
	if dto.DoubaoAPIKey != "sk-1****cdef" {
		t.Errorf("DoubaoAPIKey = %s", dto.DoubaoAPIKey)
	}
	if !dto.HasDoubaoKey || dto.HasGeminiKey {
		t.Errorf("HasDoubaoKey=%v HasGeminiKey=%v", dto.HasDoubaoKey, dto.HasGeminiKey)
	}
	if dto.ConfigPath != app.configPath || dto.Provider != internal.ProviderDoubao {
		t.Errorf("配置信息错误: %+v", dto)
	}
}

// TestSaveConfig 测试前端回传掩码时保留原密钥
func TestSaveConfig(t *testing.T) {
	app := createTestApp(t)
	if err := app.configManager.Set("doubao.api_key", "sk-1234567890abcdef"); err != nil {
		t.Fatal(err)
	}

	dto := app.GetConfig()
	dto.Provider = internal.ProviderGemini
	dto.GeminiAPIKey = "g-new-key-123456"
	dto.TimeoutSeconds = 60
	if err := app.SaveConfig(dto); err != nil {
		t.Fatalf("SaveConfig() 失败: %v", err)
	}

	cfg := app.configManager.GetConfig()
	if cfg.Doubao.APIKey != "sk-1234567890abcdef" {
		t.Errorf("掩码不应覆盖原密钥, 得到 %s", cfg.Doubao.APIKey)
	}
	if cfg.Gemini.APIKey != "g-new-key-123456" || cfg.Provider != internal.ProviderGemini || cfg.TimeoutSeconds != 60 {
		t.Errorf("新配置未保存: %+v", cfg)
	}

	data, err := os.ReadFile(app.configPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "g-new-key-123456") {
		t.Error("配置文件中不应出现明文密钥")
	}
}

// TestMergeAPIKey 测试密钥合并规则
func TestMergeAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		incoming string
		expected string
	}{
		{name: "空值保留", current: "sk-1234567890abcdef", incoming: "", expected: "sk-1234567890abcdef"},
		{name: "掩码保留", current: "sk-1234567890abcdef", incoming: "sk-1****cdef", expected: "sk-1234567890abcdef"},
		{name: "新值覆盖", current: "sk-1234567890abcdef", incoming: "sk-new", expected: "sk-new"},
		{name: "首次设置", current: "", incoming: "sk-new", expected: "sk-new"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mergeAPIKey(tt.current, tt.incoming); got != tt.expected {
				t.Errorf("mergeAPIKey() = %s, 期望 %s", got, tt.expected)
			}
		})
	}
}

// TestResetConfig 测试恢复默认配置
func TestResetConfig(t *testing.T) {
	app := createTestApp(t)
	if err := app.configManager.Set("api_path", "/other"); err != nil {
		t.Fatal(err)
	}
	if err := app.ResetConfig(); err != nil {
		t.Fatalf("ResetConfig() 失败: %v", err)
	}
	if got := app.GetConfig().APIPath; got != internal.DefaultAPIPath {
		t.Errorf("APIPath = %s", got)
	}
}

// TestNavigationWithoutSession 测试没有会话时的导航
func TestNavigationWithoutSession(t *testing.T) {
	app := createTestApp(t)

	for name, dto := range map[string]CaseDTO{"Current": app.Current(), "Next": app.Next(), "Prev": app.Prev()} {
		if dto.Status != "请先生成用例" || dto.Index != 0 {
			t.Errorf("%s() = %+v", name, dto)
		}
	}

	if _, err := app.SaveSession(""); !errors.Is(err, internal.ErrNoSession) {
		t.Errorf("SaveSession() error = %v", err)
	}
	if err := app.ExportWorkbook(filepath.Join(t.TempDir(), "x.xlsx")); !errors.Is(err, internal.ErrNoSession) {
		t.Errorf("ExportWorkbook() error = %v", err)
	}
}

// TestOpenSessionAndNavigate 测试打开会话后浏览用例
func TestOpenSessionAndNavigate(t *testing.T) {
	app := createTestApp(t)
	path := writeTestSession(t)

	dto, err := app.OpenSession(path)
	if err != nil {
		t.Fatalf("OpenSession() 失败: %v", err)
	}
	if dto.Index != 1 || dto.Total != 2 || dto.CaseName != "查询普通商品" {
		t.Errorf("OpenSession() = %+v", dto)
	}
	if !strings.HasSuffix(dto.RequestBody, "goods=${__urlencode(${goodcode})}&page=1") {
		t.Errorf("RequestBody = %s", dto.RequestBody)
	}

	next := app.Next()
	if next.Index != 2 || next.CaseName != "店铺不存在" || next.Status != "显示第 2 条用例" {
		t.Errorf("Next() = %+v", next)
	}
	if last := app.Next(); last.Index != 2 || last.Status != "已经是最后一条" {
		t.Errorf("末尾 Next() = %+v", last)
	}
	if prev := app.Prev(); prev.Index != 1 {
		t.Errorf("Prev() = %+v", prev)
	}

	if _, err := app.OpenSession(filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Error("会话文件不存在时应返回错误")
	}
}

// TestSaveAndExportSession 测试保存和导出当前会话
func TestSaveAndExportSession(t *testing.T) {
	app := createTestApp(t)
	outDir := t.TempDir()
	if err := app.configManager.Set("output_dir", outDir); err != nil {
		t.Fatal(err)
	}
	if _, err := app.OpenSession(writeTestSession(t)); err != nil {
		t.Fatal(err)
	}

	saved, err := app.SaveSession("")
	if err != nil {
		t.Fatalf("SaveSession() 失败: %v", err)
	}
	if filepath.Dir(saved) != outDir {
		t.Errorf("会话保存到 %s, 期望目录 %s", saved, outDir)
	}
	if _, err := internal.LoadSession(saved); err != nil {
		t.Errorf("保存的会话无法读取: %v", err)
	}

	xlsx := filepath.Join(outDir, "cases.xlsx")
	if err := app.ExportWorkbook(xlsx); err != nil {
		t.Fatalf("ExportWorkbook() 失败: %v", err)
	}
	if _, err := os.Stat(xlsx); err != nil {
		t.Errorf("Excel 未生成: %v", err)
	}
}

// TestGenerateMissingKey 测试未配置密钥时生成失败
func TestGenerateMissingKey(t *testing.T) {
	t.Setenv(internal.EnvDoubaoAPIKey, "")
	t.Setenv(internal.EnvProvider, "")
	app := createTestApp(t)

	if _, err := app.Generate(""); !errors.Is(err, internal.ErrMissingAPIKey) {
		t.Errorf("Generate() error = %v", err)
	}
}

// TestLifecycleHooks 测试生命周期回调
func TestLifecycleHooks(t *testing.T) {
	app := createTestApp(t)
	ctx := t.Context()
	app.Startup(ctx)
	if app.ctx != ctx {
		t.Error("Startup 应保存上下文")
	}
	app.DomReady(ctx)
	if app.BeforeClose(ctx) {
		t.Error("BeforeClose 不应阻止关闭")
	}
	app.Shutdown(ctx)
}
