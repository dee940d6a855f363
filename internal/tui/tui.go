package tui

import (
	"fmt"
	"strings"

	"casegen/internal"

	tea "github.com/charmbracelet/bubbletea"
)

// screen 定义当前屏幕状态.
type screen int

const (
	screenBrowse  screen = iota // 用例浏览屏幕
	screenSummary               // 会话概要屏幕

	// 按键常量.
	keyCtrlC = "ctrl+c"
	keyUp    = "up"
	keyDown  = "down"
	keyTab   = "tab"

	// UI 常量.
	uiBorderTop    = "╔══════════════════════════════════════╗\n"
	uiBorderBottom = "╚══════════════════════════════════════╝\n\n"
	uiCursor       = "▶ "
)

// fragment 当前显示的脚本片段.
type fragment int

const (
	fragmentVariables fragment = iota // 前置脚本1
	fragmentSigning                   // 前置脚本2
	fragmentBody                      // 请求体
)

var fragmentTitles = []string{
	"(1) 前置脚本 - 定义数据",
	"(2) 前置脚本 - 计算签名",
	"(3) 请求体",
}

// model 是 TUI 应用状态.
type model struct {
	screen   screen
	browser  *internal.Browser
	fragment fragment
	status   string // 状态栏消息
	quitting bool
}

// newModel 基于会话创建初始状态.
func newModel(s *internal.Session) model {
	m := model{
		screen:   screenBrowse,
		browser:  internal.NewBrowser(s),
		fragment: fragmentBody,
	}
	if m.browser.Len() == 0 {
		m.status = "会话中没有用例"
	} else {
		m.status = fmt.Sprintf("共 %d 条用例", m.browser.Len())
	}
	return m
}

// Init 是 Bubble Tea 初始化命令.
func (m model) Init() tea.Cmd {
	return nil
}

// Update 处理按键并更新状态.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch m.screen {
	case screenBrowse:
		return m.updateBrowse(keyMsg)
	case screenSummary:
		return m.updateSummary(keyMsg)
	}
	return m, nil
}

// updateBrowse 处理用例浏览屏幕的按键.
func (m model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyCtrlC, "q":
		m.quitting = true
		return m, tea.Quit
	case keyUp, "k":
		_, m.status = m.browser.Prev()
	case keyDown, "j":
		_, m.status = m.browser.Next()
	case "1":
		m.fragment = fragmentVariables
	case "2":
		m.fragment = fragmentSigning
	case "3":
		m.fragment = fragmentBody
	case keyTab:
		m.fragment = (m.fragment + 1) % fragment(len(fragmentTitles))
	case "s":
		m.screen = screenSummary
	}
	return m, nil
}

// updateSummary 处理会话概要屏幕的按键.
func (m model) updateSummary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case "q", "esc", "b", "s":
		m.screen = screenBrowse
	}
	return m, nil
}

// View 根据模型数据渲染界面.
func (m model) View() string {
	if m.quitting {
		return "再见！\n"
	}

	var s string
	switch m.screen {
	case screenBrowse:
		s = m.viewBrowse()
	case screenSummary:
		s = m.viewSummary()
	}

	if m.status != "" {
		s += fmt.Sprintf("\n» %s\n", m.status)
	}
	return s
}

// viewBrowse 渲染当前用例的选中片段.
func (m model) viewBrowse() string {
	s := uiBorderTop
	s += "║        Casegen 用例脚本浏览          ║\n"
	s += uiBorderBottom

	set, ok := m.browser.Current()
	if !ok {
		s += "没有可浏览的用例\n"
		s += "\n按 q 退出."
		return s
	}

	sess := m.browser.Session()
	s += fmt.Sprintf("接口: %s (%s)\n", sess.APITitle, sess.APIPath)
	s += fmt.Sprintf("用例 %d/%d: %s\n\n", m.browser.Index()+1, m.browser.Len(), set.CaseName)

	for i, title := range fragmentTitles {
		cursor := "  "
		if fragment(i) == m.fragment {
			cursor = uiCursor
		}
		s += fmt.Sprintf("%s%s\n", cursor, title)
	}
	s += "\n" + strings.Repeat("─", 60) + "\n"
	s += fragmentText(set, m.fragment) + "\n"
	s += strings.Repeat("─", 60) + "\n"

	s += "\n按 ↑/k 上一条, ↓/j 下一条, 1/2/3 或 Tab 切换片段, s 查看概要, q 退出."
	return s
}

// viewSummary 渲染会话概要.
func (m model) viewSummary() string {
	s := uiBorderTop
	s += "║             会话概要                 ║\n"
	s += uiBorderBottom

	sess := m.browser.Session()
	if sess == nil {
		s += "没有加载会话\n"
		return s + "\n按 q 或 b 返回."
	}

	s += fmt.Sprintf("会话: %s\n", sess.ID)
	s += fmt.Sprintf("接口: %s (%s)\n", sess.APITitle, sess.APIPath)
	s += fmt.Sprintf("模型: %s / %s\n", sess.Provider, sess.Model)
	s += fmt.Sprintf("生成时间: %s\n\n", sess.CreatedAt.Format("2006-01-02 15:04:05"))

	for i, set := range sess.Scripts {
		cursor := "  "
		if i == m.browser.Index() {
			cursor = uiCursor
		}
		s += fmt.Sprintf("%s%d. %s\n", cursor, i+1, set.CaseName)
	}

	s += "\n按 q 或 b 返回."
	return s
}

// fragmentText 返回片段正文，前置脚本1为空时给出提示.
func fragmentText(set internal.ScriptSet, f fragment) string {
	switch f {
	case fragmentVariables:
		if set.VariableDefs == "" {
			return "(本用例没有字面量参数，无需定义数据)"
		}
		return set.VariableDefs
	case fragmentSigning:
		return set.SigningScript
	default:
		return set.RequestBody
	}
}

// Start 启动用例浏览 TUI.
func Start(s *internal.Session) error {
	p := tea.NewProgram(newModel(s))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI 运行失败: %w", err)
	}
	return nil
}
