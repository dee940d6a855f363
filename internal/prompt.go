package internal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
)

// PromptInput 构建提示词所需的数据.
type PromptInput struct {
	APIDoc        string // 接口文档 JSON
	EnvLibrary    string // 环境变量库 JSON
	RelatedModels string // 复杂对象模型文档 JSON
}

var casePromptTemplate = template.Must(template.New("cases").Parse(`
你是一位资深的中文测试开发工程师。请基于下面的接口文档和测试环境变量库，设计有业务价值的接口测试用例。

**一、待测接口文档**
` + "```json" + `
{{.APIDoc}}
` + "```" + `

**二、可用的测试环境变量库（含真实业务含义）**
` + "```json" + `
{{.EnvLibrary}}
` + "```" + `

**三、args 中复杂对象参数引用的模型文档（如有）**
- 请依据模型字段构造对应参数（如 query_body、query_extend）的 JSON 结构。
- 只使用与业务相关的必填或常用字段。
` + "```json" + `
{{.RelatedModels}}
` + "```" + `

**设计要求：**
1. 只设计 args 中的业务参数，_app、_t、_sign、_sign_kind 等系统参数由框架处理，不要出现。
2. 根据参数 description 在环境变量库中找到含义最匹配的变量。例如参数 goods 表示"(系统)商品编码"，而变量 goodcode 表示"open测试普通商品编码"，测试普通商品时就应使用 goodcode。
3. 使用环境变量时必须写成 ${变量名} 的引用格式，例如 "goods": "${goodcode}"。
4. 设计有意义的业务组合场景，例如"【专项】查询序列号商品"使用 ${goodcode_sn}，"【组合】查询B2C店铺的组合商品"同时引用 ${b2c_shopNick} 和 ${coproduct}。
5. page 和 limit 不需要边界或异常用例，需要时一律使用字面量 page=1、limit=20。
6. 负向用例同样重要：覆盖业务规则冲突（如 shop_name 与 shop_nick 不能同时为空），需要"不存在"或"非法"数据时可以构造符合类型和长度的具体虚拟值（如 "shop_nick": "non_existent_shop_12345"）。

**输出格式（必须严格遵守）：**
- 整个回答只能是一个合法的 JSON 数组，不要附加任何解释。
- 每个元素包含 case_name 和 parameters 两个键。
- case_name 必须是简洁的中文，体现测试目的。
- parameters 是对象，除 page、limit 和负向用例的虚拟值外，都使用上述引用格式。
`))

// BuildPrompt 渲染设计测试用例的提示词.
func BuildPrompt(in PromptInput) (string, error) {
	if strings.TrimSpace(in.EnvLibrary) == "" {
		in.EnvLibrary = "[]"
	}
	if strings.TrimSpace(in.RelatedModels) == "" {
		in.RelatedModels = "{}"
	}
	var buf bytes.Buffer
	if err := casePromptTemplate.Execute(&buf, in); err != nil {
		return "", fmt.Errorf("渲染提示词失败: %w", err)
	}
	return buf.String(), nil
}

// NewPromptInput 由文档、环境变量库和模型文档组装提示词输入.
func NewPromptInput(doc *APIDoc, envJSON string, related map[string]json.RawMessage) PromptInput {
	in := PromptInput{EnvLibrary: envJSON}
	if doc != nil {
		in.APIDoc = indentJSON(doc.Raw)
	}
	if len(related) > 0 {
		if data, err := json.MarshalIndent(related, "", "  "); err == nil {
			in.RelatedModels = string(data)
		}
	}
	return in
}

func indentJSON(raw string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(raw), "", "  "); err != nil {
		return raw
	}
	return buf.String()
}

// PromptConfirmation 提示用户确认操作.
func PromptConfirmation(message string) bool {
	return promptConfirmation(os.Stdin, message)
}

func promptConfirmation(in io.Reader, message string) bool {
	fmt.Printf("%s [y/n]: ", message)
	reader := bufio.NewReader(in)
	choice, err := reader.ReadString('\n')
	if err != nil && choice == "" {
		return false
	}
	choice = strings.TrimSpace(strings.ToLower(choice))
	return choice == "y" || choice == "yes"
}
