package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// 文档请求超时.
const (
	docFetchTimeout   = 30 * time.Second
	modelFetchTimeout = 20 * time.Second
)

// DocClient 接口文档客户端.
type DocClient struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

// NewDocClient 创建接口文档客户端.
func NewDocClient(baseURL string, log *slog.Logger) *DocClient {
	if log == nil {
		log = slog.Default()
	}
	return &DocClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		log:     log,
	}
}

// Fetch 获取并解析接口文档.
func (c *DocClient) Fetch(ctx context.Context, apiPath string) (*APIDoc, error) {
	apiPath = strings.TrimSpace(apiPath)
	if apiPath == "" {
		return nil, fmt.Errorf("接口路径不能为空")
	}
	if !strings.HasPrefix(apiPath, "/") {
		apiPath = "/" + apiPath
	}

	body, err := c.get(ctx, c.baseURL+apiPath, docFetchTimeout)
	if err != nil {
		return nil, fmt.Errorf("获取接口文档失败 %s: %w", apiPath, err)
	}

	doc, err := ParseAPIDoc(apiPath, body)
	if err != nil {
		return nil, fmt.Errorf("解析接口文档失败 %s: %w", apiPath, err)
	}
	c.log.Debug("api doc fetched", "path", apiPath, "args", len(doc.Args))
	return doc, nil
}

// ParseAPIDoc 从文档 JSON 中读取参数列表.
func ParseAPIDoc(apiPath string, body []byte) (*APIDoc, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("文档不是合法的 JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, fmt.Errorf("文档必须是 JSON 对象")
	}

	doc := &APIDoc{
		Path: apiPath,
		Raw:  string(body),
	}
	for _, key := range []string{"name", "title", "path"} {
		if t := root.Get(key).String(); t != "" {
			doc.Title = t
			break
		}
	}
	if doc.Title == "" {
		doc.Title = apiPath
	}

	root.Get("request.args").ForEach(func(_, arg gjson.Result) bool {
		name := arg.Get("name").String()
		if !arg.IsObject() || name == "" {
			return true
		}
		def := ParamDef{
			Name:        name,
			Description: arg.Get("description").String(),
		}
		switch t := arg.Get("type"); {
		case t.IsObject():
			def.Type = &ParamType{Name: t.Get("name").String(), URL: t.Get("url").String()}
		case t.Type == gjson.String && t.String() != "":
			def.Type = &ParamType{Name: t.String()}
		}
		doc.Args = append(doc.Args, def)
		return true
	})
	return doc, nil
}

// CollectRelatedModels 获取复杂对象参数引用的模型文档.
// 单个模型获取失败时记录错误信息，不影响整体流程.
func (c *DocClient) CollectRelatedModels(ctx context.Context, doc *APIDoc) map[string]json.RawMessage {
	models := make(map[string]json.RawMessage)
	if doc == nil {
		return models
	}
	for _, arg := range doc.Args {
		if !arg.IsComplex() {
			continue
		}
		body, err := c.get(ctx, arg.Type.URL, modelFetchTimeout)
		if err == nil && !gjson.ValidBytes(body) {
			err = fmt.Errorf("模型文档不是合法的 JSON")
		}
		if err != nil {
			c.log.Warn("related model fetch failed", "param", arg.Name, "url", arg.Type.URL, "error", err)
			failure, _ := json.Marshal(map[string]string{
				"_error": fmt.Sprintf("fetch_failed: %v", err),
				"url":    arg.Type.URL,
			})
			models[arg.Name] = failure
			continue
		}
		models[arg.Name] = body
	}
	return models
}

func (c *DocClient) get(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, preview(string(body), 200))
	}
	return body, nil
}

// LoadAPIDocFile 从本地文件读取接口文档，apiPath 为空时使用文件名.
func LoadAPIDocFile(path, apiPath string) (*APIDoc, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取接口文档失败: %w", err)
	}
	if apiPath == "" {
		apiPath = filepath.Base(path)
	}
	return ParseAPIDoc(apiPath, body)
}
