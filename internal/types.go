package internal

import "time"

// ParamType 参数类型描述，URL 非空表示复杂对象模型.
type ParamType struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

// ParamDef API 文档中声明的参数.
type ParamDef struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Type        *ParamType `json:"type,omitempty"`
}

// IsComplex 参数值本身是否为 JSON 对象.
func (p ParamDef) IsComplex() bool {
	return p.Type != nil && p.Type.URL != ""
}

// APIDoc 接口文档.
type APIDoc struct {
	Path  string     `json:"path"`
	Title string     `json:"title"`
	Raw   string     `json:"raw,omitempty"` // 原始文档 JSON
	Args  []ParamDef `json:"args"`
}

// CaseParam 用例中的一个参数赋值.
type CaseParam struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
}

// TestCase AI 设计的测试用例，JSON 形式为 {"case_name": ..., "parameters": {...}}.
type TestCase struct {
	Name   string
	Params []CaseParam
}

// Param 按名称查找参数值.
func (tc TestCase) Param(name string) (Value, bool) {
	for _, p := range tc.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return Value{}, false
}

// Set 设置参数值，同名参数覆盖.
func (tc *TestCase) Set(name string, v Value) {
	for i := range tc.Params {
		if tc.Params[i].Name == name {
			tc.Params[i].Value = v
			return
		}
	}
	tc.Params = append(tc.Params, CaseParam{Name: name, Value: v})
}

// EnvVariable 测试环境变量库中的一条.
type EnvVariable struct {
	Name        string `json:"name" yaml:"name"`
	Value       string `json:"value" yaml:"value"`
	Description string `json:"description" yaml:"description"`
}

// Entry 规范参数串中的一项.
type Entry struct {
	Name      string `json:"name"`
	Value     Value  `json:"value"`
	URLEncode bool   `json:"url_encode"` // 引用是否需要 URL 编码
}

// ScriptSet 一个用例生成的全部脚本片段.
type ScriptSet struct {
	CaseName      string      `json:"case_name"`
	Canonical     string      `json:"canonical"`
	VariableDefs  string      `json:"variable_defs"`  // 前置脚本1，可能为空
	SigningScript string      `json:"signing_script"` // 前置脚本2
	RequestBody   string      `json:"request_body"`
	Entries       []Entry     `json:"entries"`
	Literals      []CaseParam `json:"literals,omitempty"` // 前置脚本1写入的变量
}

// Session 一次生成的结果.
type Session struct {
	ID        string      `json:"id"`
	APIPath   string      `json:"api_path"`
	APITitle  string      `json:"api_title"`
	Provider  string      `json:"provider"`
	Model     string      `json:"model"`
	CreatedAt time.Time   `json:"created_at"`
	Cases     []TestCase  `json:"cases"`
	Scripts   []ScriptSet `json:"scripts"`
}

// Platform 平台类型.
type Platform string

const (
	PlatformWindows Platform = "windows"
	PlatformMac     Platform = "mac"
	PlatformLinux   Platform = "linux"
)
