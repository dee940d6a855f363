package internal

import (
	"encoding/json"
	"testing"

	"github.com/tidwall/gjson"
)

// TestParseValue 测试模型输出值的分类.
func TestParseValue(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		reference  bool
		text       string
		ref        string
		structured bool
	}{
		{name: "引用", raw: `"${goodcode}"`, reference: true, ref: "goodcode"},
		{name: "字符串字面量", raw: `"abc"`, text: "abc"},
		{name: "中间出现标记不算引用", raw: `"x${goodcode}"`, text: "x${goodcode}"},
		{name: "整数", raw: `20`, text: "20"},
		{name: "小数保持原文", raw: `1.50`, text: "1.50"},
		{name: "布尔", raw: `false`, text: "false"},
		{name: "空值", raw: `null`, text: ""},
		{name: "对象", raw: `{"a": 1}`, text: `{"a": 1}`, structured: true},
		{name: "数组", raw: `[1, 2]`, text: `[1, 2]`, structured: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ParseValue(gjson.Parse(tt.raw))
			if v.IsReference() != tt.reference {
				t.Fatalf("IsReference() = %v, 期望 %v", v.IsReference(), tt.reference)
			}
			if tt.reference {
				if v.RefName() != tt.ref {
					t.Errorf("RefName() = %q, 期望 %q", v.RefName(), tt.ref)
				}
				return
			}
			if v.Text() != tt.text {
				t.Errorf("Text() = %q, 期望 %q", v.Text(), tt.text)
			}
			if v.Structured() != tt.structured {
				t.Errorf("Structured() = %v, 期望 %v", v.Structured(), tt.structured)
			}
		})
	}
}

// TestValueString 测试值的文本形式.
func TestValueString(t *testing.T) {
	if got := Reference("goodcode").String(); got != "${goodcode}" {
		t.Errorf("Reference.String() = %q", got)
	}
	if got := Literal("abc").String(); got != "abc" {
		t.Errorf("Literal.String() = %q", got)
	}
	if v := ParseValueString("${shop}"); !v.IsReference() || v.RefName() != "shop" {
		t.Errorf("ParseValueString() = %+v", v)
	}
}

// TestTestCaseJSON 测试用例保存后读回不变.
func TestTestCaseJSON(t *testing.T) {
	raw := `{"case_name":"查询B2C店铺的组合商品","parameters":{"shop_nick":"${b2c_shopNick}","goods":"${coproduct}","page":1,"query_body":{"status":"WAIT_SEND"}}}`

	var tc TestCase
	if err := json.Unmarshal([]byte(raw), &tc); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if tc.Name != "查询B2C店铺的组合商品" || len(tc.Params) != 4 {
		t.Fatalf("解析结果错误: %+v", tc)
	}
	if tc.Params[0].Name != "shop_nick" || tc.Params[3].Name != "query_body" {
		t.Errorf("参数顺序未保留: %+v", tc.Params)
	}

	data, err := json.Marshal(tc)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	var back TestCase
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	for i, p := range tc.Params {
		if back.Params[i].Name != p.Name || back.Params[i].Value.String() != p.Value.String() || back.Params[i].Value.IsReference() != p.Value.IsReference() {
			t.Errorf("第 %d 个参数不一致: %+v != %+v", i, back.Params[i], p)
		}
	}
}

// TestParseTestCaseErrors 测试用例结构错误.
func TestParseTestCaseErrors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		caseNm  string
	}{
		{name: "不是对象", raw: `"abc"`, wantErr: true},
		{name: "parameters不是对象", raw: `{"case_name":"x","parameters":[1]}`, wantErr: true},
		{name: "缺少名称", raw: `{"parameters":{"a":"1"}}`, caseNm: "未命名用例"},
		{name: "缺少参数", raw: `{"case_name":"空参数"}`, caseNm: "空参数"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc, err := parseTestCase(gjson.Parse(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseTestCase() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && tc.Name != tt.caseNm {
				t.Errorf("Name = %q, 期望 %q", tc.Name, tt.caseNm)
			}
		})
	}
}

// TestTestCaseSet 同名参数覆盖.
func TestTestCaseSet(t *testing.T) {
	var tc TestCase
	tc.Set("a", Literal("1"))
	tc.Set("a", Literal("2"))
	if len(tc.Params) != 1 {
		t.Fatalf("参数数量 = %d, 期望 1", len(tc.Params))
	}
	if v, ok := tc.Param("a"); !ok || v.Text() != "2" {
		t.Errorf("Param(a) = %v, %v", v, ok)
	}
	if _, ok := tc.Param("b"); ok {
		t.Error("不存在的参数应返回 false")
	}
}
