package internal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrNoJSONArray 模型回复中没有 JSON 数组.
	ErrNoJSONArray = errors.New("模型回复中未找到 JSON 数组")
	// ErrNoCases 模型返回了空数组.
	ErrNoCases = errors.New("模型未返回任何测试用例")
)

// FindJSONArray 取回复中第一个 '[' 到最后一个 ']' 之间的文本.
func FindJSONArray(reply string) (string, bool) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start < 0 || end < start {
		return "", false
	}
	return reply[start : end+1], true
}

// ExtractCases 从模型的自由文本回复中解析测试用例数组.
func ExtractCases(reply string) ([]TestCase, error) {
	span, ok := FindJSONArray(reply)
	if !ok {
		return nil, ErrNoJSONArray
	}
	if !gjson.Valid(span) {
		return nil, fmt.Errorf("解析模型回复失败: JSON 数组不合法 (%s)", preview(span, 200))
	}
	arr := gjson.Parse(span)
	if !arr.IsArray() {
		return nil, ErrNoJSONArray
	}

	var cases []TestCase
	var parseErr error
	arr.ForEach(func(_, item gjson.Result) bool {
		tc, err := parseTestCase(item)
		if err != nil {
			parseErr = fmt.Errorf("解析第 %d 个用例失败: %w", len(cases)+1, err)
			return false
		}
		cases = append(cases, tc)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if len(cases) == 0 {
		return nil, ErrNoCases
	}
	return cases, nil
}

// preview 截断过长的文本用于错误信息.
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
