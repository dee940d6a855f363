package internal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Designer 串联接口文档、环境变量库和大模型，设计测试用例并生成脚本.
type Designer struct {
	docs     *DocClient
	provider Provider
	log      *slog.Logger
}

// NewDesigner 创建用例设计器.
func NewDesigner(docs *DocClient, provider Provider, log *slog.Logger) *Designer {
	if log == nil {
		log = slog.Default()
	}
	return &Designer{docs: docs, provider: provider, log: log}
}

// NewDesignerFromConfig 按配置创建文档客户端与提供商.
func NewDesignerFromConfig(cfg *Config, log *slog.Logger) (*Designer, error) {
	provider, err := NewProvider(cfg, log)
	if err != nil {
		return nil, err
	}
	return NewDesigner(NewDocClient(cfg.DocBaseURL, log), provider, log), nil
}

// Design 让模型基于文档和环境变量库设计测试用例.
func (d *Designer) Design(ctx context.Context, doc *APIDoc, envJSON string) ([]TestCase, error) {
	if doc == nil {
		return nil, fmt.Errorf("接口文档为空")
	}

	related := d.docs.CollectRelatedModels(ctx, doc)
	prompt, err := BuildPrompt(NewPromptInput(doc, envJSON, related))
	if err != nil {
		return nil, err
	}

	reply, err := d.provider.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	cases, err := ExtractCases(reply)
	if err != nil {
		d.log.Warn("failed to extract cases from reply", "error", err, "reply", preview(reply, 1000))
		return nil, err
	}
	d.log.Info("cases designed", "count", len(cases), "provider", d.provider.Name())
	return cases, nil
}

// Run 执行完整流程：获取文档、加载环境变量库、设计用例并逐个生成脚本.
func (d *Designer) Run(ctx context.Context, apiPath, envFile string) (*Session, error) {
	doc, err := d.docs.Fetch(ctx, apiPath)
	if err != nil {
		return nil, err
	}

	lib, err := LoadEnvLibrary(envFile)
	if err != nil {
		return nil, err
	}
	if len(lib) == 0 {
		return nil, fmt.Errorf("测试数据文件为空: %s", envFile)
	}

	cases, err := d.Design(ctx, doc, SimplifyEnvLibrary(lib))
	if err != nil {
		return nil, err
	}
	return NewSession(doc, d.provider.Name(), d.provider.Model(), cases), nil
}

// NewSession 为用例生成脚本并组装会话.
func NewSession(doc *APIDoc, provider, model string, cases []TestCase) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		APIPath:   doc.Path,
		APITitle:  doc.Title,
		Provider:  provider,
		Model:     model,
		CreatedAt: time.Now(),
		Cases:     cases,
		Scripts:   make([]ScriptSet, 0, len(cases)),
	}
	for _, tc := range cases {
		s.Scripts = append(s.Scripts, Generate(doc.Args, tc))
	}
	return s
}
