package tui

import (
	"strings"
	"testing"

	"casegen/internal"

	tea "github.com/charmbracelet/bubbletea"
)

func testSession(t *testing.T) *internal.Session {
	t.Helper()
	cases, err := internal.ExtractCases(`[
		{"case_name":"查询普通商品","parameters":{"goods":"${goodcode}","page":1}},
		{"case_name":"店铺不存在","parameters":{"shop_nick":"none"}}
	]`)
	if err != nil {
		t.Fatal(err)
	}
	doc := &internal.APIDoc{
		Path:  "/erp/trades",
		Title: "订单列表",
		Args:  []internal.ParamDef{{Name: "goods"}, {Name: "page"}, {Name: "shop_nick"}},
	}
	return internal.NewSession(doc, internal.ProviderDoubao, internal.DefaultDoubaoModel, cases)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m model, keys ...tea.KeyMsg) model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(model)
	}
	return m
}

func TestBrowseNavigation(t *testing.T) {
	s := testSession(t)
	m := newModel(s)

	if m.fragment != fragmentBody || m.status != "共 2 条用例" {
		t.Fatalf("初始状态错误: fragment=%d status=%q", m.fragment, m.status)
	}
	view := m.View()
	if !strings.Contains(view, "用例 1/2: 查询普通商品") || !strings.Contains(view, s.Scripts[0].RequestBody) {
		t.Errorf("初始视图错误:\n%s", view)
	}

	m = press(t, m, runes("j"))
	if m.browser.Index() != 1 || m.status != "显示第 2 条用例" {
		t.Errorf("j 后 index=%d status=%q", m.browser.Index(), m.status)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.status != "已经是最后一条" {
		t.Errorf("到达末尾 status = %q", m.status)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp}, runes("k"))
	if m.browser.Index() != 0 || m.status != "已经是第一条" {
		t.Errorf("回到开头 index=%d status=%q", m.browser.Index(), m.status)
	}
}

func TestFragmentSwitch(t *testing.T) {
	s := testSession(t)
	m := newModel(s)

	tests := []struct {
		key  tea.KeyMsg
		want fragment
		text string
	}{
		{key: runes("1"), want: fragmentVariables, text: s.Scripts[0].VariableDefs},
		{key: runes("2"), want: fragmentSigning, text: s.Scripts[0].SigningScript},
		{key: tea.KeyMsg{Type: tea.KeyTab}, want: fragmentBody, text: s.Scripts[0].RequestBody},
		{key: tea.KeyMsg{Type: tea.KeyTab}, want: fragmentVariables, text: s.Scripts[0].VariableDefs},
	}
	for i, tt := range tests {
		m = press(t, m, tt.key)
		if m.fragment != tt.want {
			t.Errorf("第 %d 步 fragment = %d, 期望 %d", i+1, m.fragment, tt.want)
		}
		if !strings.Contains(m.View(), tt.text) {
			t.Errorf("第 %d 步视图缺少片段内容 %q", i+1, tt.text)
		}
	}
}

func TestFragmentTextEmptyVariables(t *testing.T) {
	set := internal.ScriptSet{SigningScript: "sign", RequestBody: "body"}
	if got := fragmentText(set, fragmentVariables); !strings.Contains(got, "无需定义数据") {
		t.Errorf("fragmentText() = %q", got)
	}
	if fragmentText(set, fragmentSigning) != "sign" || fragmentText(set, fragmentBody) != "body" {
		t.Error("片段内容错误")
	}
}

func TestSummaryScreen(t *testing.T) {
	s := testSession(t)
	m := press(t, newModel(s), runes("j"), runes("s"))
	if m.screen != screenSummary {
		t.Fatalf("screen = %d", m.screen)
	}

	view := m.View()
	for _, want := range []string{"会话: " + s.ID, "订单列表", internal.DefaultDoubaoModel, uiCursor + "2. 店铺不存在"} {
		if !strings.Contains(view, want) {
			t.Errorf("概要视图缺少 %q", want)
		}
	}

	m = press(t, m, runes("b"))
	if m.screen != screenBrowse {
		t.Error("b 应返回浏览屏幕")
	}
}

func TestQuit(t *testing.T) {
	m := newModel(testSession(t))
	next, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q 应返回退出命令")
	}
	if !next.(model).quitting || next.View() != "再见！\n" {
		t.Error("退出后视图错误")
	}

	next, _ = next.(model).Update(tea.WindowSizeMsg{Width: 80})
	if !next.(model).quitting {
		t.Error("非按键消息不应改变状态")
	}
}

func TestEmptySession(t *testing.T) {
	m := newModel(nil)
	if m.status != "会话中没有用例" {
		t.Errorf("status = %q", m.status)
	}
	if !strings.Contains(m.View(), "没有可浏览的用例") {
		t.Error("空会话视图错误")
	}

	m = press(t, m, runes("s"))
	if !strings.Contains(m.View(), "没有加载会话") {
		t.Error("空会话概要视图错误")
	}
}
