package internal

import "testing"

func TestNormalizeCompactJSON(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected string
	}{
		{
			name:     "对象保持键顺序",
			value:    StructuredLiteral("{\n  \"z\": 1,\n  \"a\": [1, 2]\n}"),
			expected: `{"z":1,"a":[1,2]}`,
		},
		{
			name:     "合法JSON文本",
			value:    Literal(`{ "status" : "WAIT_SEND" }`),
			expected: `{"status":"WAIT_SEND"}`,
		},
		{
			name:     "保留字符串内空格",
			value:    Literal(`{"name": "a b"}`),
			expected: `{"name":"a b"}`,
		},
		{
			name:     "单引号伪JSON",
			value:    Literal("{'status': 'WAIT_SEND'}"),
			expected: `{"status":"WAIT_SEND"}`,
		},
		{
			name:     "非JSON文本去除空白",
			value:    Literal(" a \t b\n"),
			expected: "ab",
		},
		{
			name:     "解码unicode转义",
			value:    Literal(`{"k": "\u4e2d\u6587", "e": "\ud83d\ude00"}`),
			expected: `{"k":"中文","e":"😀"}`,
		},
		{
			name:     "重复键取最后一个值",
			value:    StructuredLiteral(`{"a": 1, "b": [true, null, 1.5], "a": {"c": "x\"y"}}`),
			expected: `{"a":{"c":"x\"y"},"b":[true,null,1.5]}`,
		},
		{
			name:     "保留HTML字符",
			value:    Literal(`{"q": "a<b&c"}`),
			expected: `{"q":"a<b&c"}`,
		},
		{
			name:     "引用原样返回",
			value:    Reference("order_query"),
			expected: "${order_query}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeCompactJSON(tt.value); got != tt.expected {
				t.Errorf("NormalizeCompactJSON() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestEscapeJavaString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain", "plain"},
		{`a"b`, `a\"b`},
		{`a\b`, `a\\b`},
		{"line1\nline2", `line1\nline2`},
		{"a\r\tb", `a\r\tb`},
		{`\"`, `\\\"`},
	}

	for _, tt := range tests {
		if got := escapeJavaString(tt.input); got != tt.expected {
			t.Errorf("escapeJavaString(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
