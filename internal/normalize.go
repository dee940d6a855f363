package internal

import (
	"strings"

	"github.com/tidwall/gjson"
)

// NormalizeCompactJSON 把复杂对象参数的值统一为紧凑的单行 JSON 文本.
// 对象/数组保持键顺序压缩；字符串能解析为 JSON 时压缩，
// 否则把单引号替换为双引号并去掉所有空白.
func NormalizeCompactJSON(v Value) string {
	text := v.Text()
	if v.IsReference() {
		return v.String()
	}
	if v.Structured() || gjson.Valid(text) {
		if compacted, ok := compactJSON(text); ok {
			return compacted
		}
	}
	tmp := strings.ReplaceAll(text, "'", `"`)
	return strings.Join(strings.Fields(tmp), "")
}

// compactJSON 重新序列化为紧凑 JSON：解码 \uXXXX 转义，重复键取最后一个值并保留首次出现的位置.
func compactJSON(text string) (string, bool) {
	if !gjson.Valid(text) {
		return "", false
	}
	var b strings.Builder
	writeCompactJSON(&b, gjson.Parse(text))
	return b.String(), true
}

func writeCompactJSON(b *strings.Builder, r gjson.Result) {
	switch {
	case r.IsObject():
		var keys []string
		values := make(map[string]gjson.Result)
		r.ForEach(func(k, v gjson.Result) bool {
			name := k.String()
			if _, ok := values[name]; !ok {
				keys = append(keys, name)
			}
			values[name] = v
			return true
		})
		b.WriteByte('{')
		for i, name := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.Write(marshalJSONString(name))
			b.WriteByte(':')
			writeCompactJSON(b, values[name])
		}
		b.WriteByte('}')
	case r.IsArray():
		b.WriteByte('[')
		for i, item := range r.Array() {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCompactJSON(b, item)
		}
		b.WriteByte(']')
	case r.Type == gjson.String:
		b.Write(marshalJSONString(r.String()))
	default:
		b.WriteString(r.Raw)
	}
}

// literalText 字面量的单行文本形式.
func literalText(v Value) string {
	if v.Structured() {
		if compacted, ok := compactJSON(v.Text()); ok {
			return compacted
		}
	}
	return v.Text()
}

// escapeJavaString 转义为 Java 字符串字面量内容.
func escapeJavaString(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return r.Replace(s)
}
