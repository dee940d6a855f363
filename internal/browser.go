package internal

import "fmt"

// Browser 逐条浏览会话中的用例脚本.
type Browser struct {
	session *Session
	index   int
}

// NewBrowser 创建浏览器，定位到第一条.
func NewBrowser(s *Session) *Browser {
	return &Browser{session: s}
}

// Session 返回当前会话.
func (b *Browser) Session() *Session {
	return b.session
}

// Len 用例数量.
func (b *Browser) Len() int {
	if b.session == nil {
		return 0
	}
	return len(b.session.Scripts)
}

// Index 当前位置（从0开始）.
func (b *Browser) Index() int {
	return b.index
}

// Current 返回当前用例的脚本，没有用例时返回 false.
func (b *Browser) Current() (ScriptSet, bool) {
	if b.Len() == 0 {
		return ScriptSet{}, false
	}
	return b.session.Scripts[b.index], true
}

// Next 移动到下一条，返回状态描述.
func (b *Browser) Next() (bool, string) {
	if b.Len() == 0 {
		return false, "没有用例"
	}
	if b.index >= b.Len()-1 {
		return false, "已经是最后一条"
	}
	b.index++
	return true, fmt.Sprintf("显示第 %d 条用例", b.index+1)
}

// Prev 移动到上一条，返回状态描述.
func (b *Browser) Prev() (bool, string) {
	if b.Len() == 0 {
		return false, "没有用例"
	}
	if b.index == 0 {
		return false, "已经是第一条"
	}
	b.index--
	return true, fmt.Sprintf("显示第 %d 条用例", b.index+1)
}
