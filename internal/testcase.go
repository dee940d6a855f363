package internal

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"
)

// MarshalJSON 按模型输出的格式序列化，parameters 保持原有顺序.
func (tc TestCase) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"case_name":`)
	buf.Write(marshalJSONString(tc.Name))
	buf.WriteString(`,"parameters":{`)
	for i, p := range tc.Params {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(marshalJSONString(p.Name))
		buf.WriteByte(':')
		raw, err := p.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(raw)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// UnmarshalJSON 解析 {"case_name": ..., "parameters": {...}}.
func (tc *TestCase) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("用例不是合法的 JSON")
	}
	c, err := parseTestCase(gjson.ParseBytes(data))
	if err != nil {
		return err
	}
	*tc = c
	return nil
}

// parseTestCase 从 gjson 节点解析一个用例.
func parseTestCase(r gjson.Result) (TestCase, error) {
	if !r.IsObject() {
		return TestCase{}, fmt.Errorf("用例必须是 JSON 对象")
	}
	tc := TestCase{Name: r.Get("case_name").String()}
	if tc.Name == "" {
		tc.Name = "未命名用例"
	}
	params := r.Get("parameters")
	if params.Exists() && !params.IsObject() {
		return TestCase{}, fmt.Errorf("用例 '%s' 的 parameters 必须是对象", tc.Name)
	}
	params.ForEach(func(key, value gjson.Result) bool {
		tc.Set(key.String(), ParseValue(value))
		return true
	})
	return tc, nil
}
