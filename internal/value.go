package internal

import (
	"strings"

	"github.com/tidwall/gjson"
)

// referencePrefix 引用值的文本标记，只在解码边界识别一次.
const referencePrefix = "${"

// ValueKind 参数值类型.
type ValueKind int

const (
	// ValueLiteral 字面量.
	ValueLiteral ValueKind = iota
	// ValueReference 引用运行时变量.
	ValueReference
)

// Value 用例参数值：Literal(text) 或 Reference(name).
type Value struct {
	kind       ValueKind
	text       string // 字面量文本
	ref        string // 引用的变量名
	structured bool   // 字面量是否为 JSON 对象/数组
}

// Literal 创建字面量值.
func Literal(text string) Value {
	return Value{kind: ValueLiteral, text: text}
}

// StructuredLiteral 创建 JSON 对象/数组字面量，raw 为原始 JSON 文本.
func StructuredLiteral(raw string) Value {
	return Value{kind: ValueLiteral, text: raw, structured: true}
}

// Reference 创建引用值.
func Reference(name string) Value {
	return Value{kind: ValueReference, ref: name}
}

// Kind 返回值类型.
func (v Value) Kind() ValueKind { return v.kind }

// IsReference 是否为引用.
func (v Value) IsReference() bool { return v.kind == ValueReference }

// Text 返回字面量文本，引用返回空串.
func (v Value) Text() string { return v.text }

// RefName 返回引用的变量名.
func (v Value) RefName() string { return v.ref }

// Structured 字面量是否来自 JSON 对象/数组.
func (v Value) Structured() bool { return v.structured }

// String 以模型输出中的形式返回值.
func (v Value) String() string {
	if v.kind == ValueReference {
		return referencePrefix + v.ref + "}"
	}
	return v.text
}

// ParseValue 把模型返回的 JSON 值解码为 Value.
// 以 "${" 开头的字符串视为引用，其余为字面量.
func ParseValue(r gjson.Result) Value {
	switch r.Type {
	case gjson.String:
		return parseStringValue(r.String())
	case gjson.Number:
		return Literal(strings.TrimSpace(r.Raw))
	case gjson.True, gjson.False:
		return Literal(r.Raw)
	case gjson.Null:
		return Literal("")
	case gjson.JSON:
		return StructuredLiteral(r.Raw)
	}
	return Literal(r.String())
}

// ParseValueString 对纯文本做同样的识别（用于命令行与 GUI 输入）.
func ParseValueString(s string) Value {
	return parseStringValue(s)
}

func parseStringValue(s string) Value {
	if !strings.HasPrefix(s, referencePrefix) {
		return Literal(s)
	}
	name := strings.TrimPrefix(s, referencePrefix)
	name = strings.TrimSuffix(name, "}")
	return Reference(name)
}

// MarshalJSON 以模型输出中的形式序列化.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == ValueLiteral && v.structured {
		return []byte(v.text), nil
	}
	return marshalJSONString(v.String()), nil
}

// UnmarshalJSON 从会话文件读回.
func (v *Value) UnmarshalJSON(data []byte) error {
	*v = ParseValue(gjson.ParseBytes(data))
	return nil
}
