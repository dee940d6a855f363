package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// 模型调用参数.
const (
	completionTemperature = 0.7
	completionMaxTokens   = 4000
)

var (
	// ErrMissingAPIKey 未配置 API 密钥.
	ErrMissingAPIKey = errors.New("未配置 API 密钥")
	// ErrUnknownProvider 未知的模型提供商.
	ErrUnknownProvider = errors.New("未知的模型提供商")
	// ErrEmptyReply 模型没有返回内容.
	ErrEmptyReply = errors.New("模型返回内容为空")
)

// Provider 大模型提供商.
type Provider interface {
	Name() string
	Model() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewProvider 根据配置创建当前选择的提供商.
func NewProvider(cfg *Config, log *slog.Logger) (Provider, error) {
	if log == nil {
		log = slog.Default()
	}
	timeout := cfg.RequestTimeout()
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderDoubao:
		return NewDoubaoProvider(cfg.Doubao, timeout, log)
	case ProviderGemini:
		return NewGeminiProvider(cfg.Gemini, timeout, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// DoubaoProvider 豆包（火山方舟 OpenAI 兼容接口）.
type DoubaoProvider struct {
	client       openai.Client
	apiKey       string
	model        string
	fallbackURLs []string
	http         *http.Client
	log          *slog.Logger
}

// NewDoubaoProvider 创建豆包提供商.
func NewDoubaoProvider(cfg DoubaoConfig, timeout time.Duration, log *slog.Logger) (*DoubaoProvider, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("豆包: %w", ErrMissingAPIKey)
	}
	if log == nil {
		log = slog.Default()
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	return &DoubaoProvider{
		client:       openai.NewClient(opts...),
		apiKey:       apiKey,
		model:        cfg.Model,
		fallbackURLs: cfg.FallbackURLs,
		http:         &http.Client{Timeout: timeout},
		log:          log,
	}, nil
}

// Name 提供商名称.
func (p *DoubaoProvider) Name() string { return ProviderDoubao }

// Model 模型名称.
func (p *DoubaoProvider) Model() string { return p.model }

// Complete 先走 SDK，失败后依次尝试备用端点.
func (p *DoubaoProvider) Complete(ctx context.Context, prompt string) (string, error) {
	p.log.Info("requesting doubao completion", "model", p.model)
	text, err := p.completeSDK(ctx, prompt)
	if err == nil {
		return text, nil
	}
	if ctx.Err() != nil {
		return "", fmt.Errorf("调用豆包API失败: %w", err)
	}

	errs := []error{err}
	for _, endpoint := range p.fallbackURLs {
		p.log.Warn("doubao request failed, trying fallback endpoint", "endpoint", endpoint, "error", err)
		text, err = p.completeHTTP(ctx, endpoint, prompt)
		if err == nil {
			return text, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", endpoint, err))
	}
	return "", fmt.Errorf("调用豆包API失败: %w", errors.Join(errs...))
}

func (p *DoubaoProvider) completeSDK(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(completionTemperature),
		MaxTokens:   openai.Int(completionMaxTokens),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyReply
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *DoubaoProvider) completeHTTP(ctx context.Context, endpoint, prompt string) (string, error) {
	payload := []byte(`{}`)
	var err error
	for _, kv := range []struct {
		path  string
		value interface{}
	}{
		{"model", p.model},
		{"messages.0.role", "user"},
		{"messages.0.content", prompt},
		{"temperature", completionTemperature},
		{"max_tokens", completionMaxTokens},
	} {
		if payload, err = sjson.SetBytes(payload, kv.path, kv.value); err != nil {
			return "", fmt.Errorf("构建请求失败: %w", err)
		}
	}

	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}
	body, err := postJSON(ctx, p.http, endpoint, headers, payload)
	if err != nil {
		return "", err
	}
	content := gjson.GetBytes(body, "choices.0.message.content")
	if !content.Exists() || content.String() == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyReply, preview(string(body), 200))
	}
	return content.String(), nil
}

// GeminiProvider Google Gemini generateContent 接口.
type GeminiProvider struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// NewGeminiProvider 创建 Gemini 提供商.
func NewGeminiProvider(cfg GeminiConfig, timeout time.Duration, log *slog.Logger) (*GeminiProvider, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini: %w", ErrMissingAPIKey)
	}
	if log == nil {
		log = slog.Default()
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	return &GeminiProvider{
		apiKey:  apiKey,
		model:   cfg.Model,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}, nil
}

// Name 提供商名称.
func (p *GeminiProvider) Name() string { return ProviderGemini }

// Model 模型名称.
func (p *GeminiProvider) Model() string { return p.model }

// Complete 调用 generateContent 并拼接候选回复中的全部文本.
func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	p.log.Info("requesting gemini completion", "model", p.model)
	payload, err := sjson.SetBytes([]byte(`{}`), "contents.0.parts.0.text", prompt)
	if err != nil {
		return "", fmt.Errorf("构建请求失败: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, p.model)
	headers := map[string]string{"x-goog-api-key": p.apiKey}
	body, err := postJSON(ctx, p.http, endpoint, headers, payload)
	if err != nil {
		return "", fmt.Errorf("调用Gemini API失败: %w", err)
	}

	var parts []string
	gjson.GetBytes(body, "candidates.0.content.parts.#.text").ForEach(func(_, text gjson.Result) bool {
		parts = append(parts, text.String())
		return true
	})
	text := strings.Join(parts, "")
	if text == "" {
		reason := gjson.GetBytes(body, "candidates.0.finishReason").String()
		if reason == "" {
			reason = gjson.GetBytes(body, "promptFeedback.blockReason").String()
		}
		return "", fmt.Errorf("%w (finishReason=%s)", ErrEmptyReply, reason)
	}
	return text, nil
}

// postJSON 发送 JSON 请求，非 2xx 返回错误.
func postJSON(ctx context.Context, client *http.Client, endpoint string, headers map[string]string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "error.message").String()
		if msg == "" {
			msg = preview(string(body), 200)
		}
		return nil, fmt.Errorf("API返回错误 (HTTP %d): %s", resp.StatusCode, msg)
	}
	return body, nil
}
