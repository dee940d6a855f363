package internal

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testSession(t *testing.T) *Session {
	t.Helper()
	doc := &APIDoc{
		Path:  "/erp/opentrade/v2/list/trades",
		Title: "订单列表",
		Args:  []ParamDef{{Name: "goods"}, {Name: "page"}, {Name: "limit"}, {Name: "shop_nick"}},
	}
	cases, err := ExtractCases(`[
		{"case_name":"查询普通商品","parameters":{"goods":"${goodcode}","page":1,"limit":20}},
		{"case_name":"店铺不存在","parameters":{"shop_nick":"non_existent_shop_12345"}},
		{"case_name":"查询序列号商品","parameters":{"goods":"${goodcode_sn}"}}
	]`)
	if err != nil {
		t.Fatalf("ExtractCases() error = %v", err)
	}
	return NewSession(doc, ProviderDoubao, DefaultDoubaoModel, cases)
}

func TestNewSession(t *testing.T) {
	s := testSession(t)
	if s.ID == "" {
		t.Error("会话 ID 为空")
	}
	if len(s.Scripts) != len(s.Cases) {
		t.Fatalf("脚本数量 %d 与用例数量 %d 不一致", len(s.Scripts), len(s.Cases))
	}
	if s.Scripts[1].Canonical != "shop_nick=non_existent_shop_12345" {
		t.Errorf("第二条规范串 = %q", s.Scripts[1].Canonical)
	}
	if s.APITitle != "订单列表" || s.Provider != ProviderDoubao {
		t.Errorf("会话元数据错误: %+v", s)
	}
}

func TestSaveAndLoadSession(t *testing.T) {
	s := testSession(t)
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	if err := SaveSession(s, path); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}
	loaded, err := LoadSession(path)
	if err != nil {
		t.Fatalf("LoadSession() error = %v", err)
	}

	if loaded.ID != s.ID || loaded.APIPath != s.APIPath || len(loaded.Scripts) != len(s.Scripts) {
		t.Fatalf("读回的会话不一致: %+v", loaded)
	}
	for i := range s.Scripts {
		if loaded.Scripts[i].RequestBody != s.Scripts[i].RequestBody {
			t.Errorf("第 %d 条请求体不一致", i+1)
		}
		if loaded.Scripts[i].SigningScript != s.Scripts[i].SigningScript {
			t.Errorf("第 %d 条签名脚本不一致", i+1)
		}
	}

	// 读回后重新生成的结果与保存的一致
	doc := &APIDoc{Args: []ParamDef{{Name: "goods"}, {Name: "page"}, {Name: "limit"}, {Name: "shop_nick"}}}
	for i, tc := range loaded.Cases {
		if got := Generate(doc.Args, tc); got.Canonical != s.Scripts[i].Canonical {
			t.Errorf("第 %d 条重新生成的规范串 = %q, 期望 %q", i+1, got.Canonical, s.Scripts[i].Canonical)
		}
	}
	if !loaded.Scripts[0].Entries[0].Value.IsReference() {
		t.Error("读回的引用参数应仍为引用")
	}
}

func TestSaveSessionNil(t *testing.T) {
	if err := SaveSession(nil, filepath.Join(t.TempDir(), "s.json")); err == nil {
		t.Error("空会话应返回错误")
	}
}

func TestDefaultSessionPath(t *testing.T) {
	dir := t.TempDir()
	s := &Session{ID: "abcdef1234567890", CreatedAt: time.Date(2025, 7, 1, 10, 15, 0, 0, time.Local)}

	path, err := DefaultSessionPath(dir, s)
	if err != nil {
		t.Fatalf("DefaultSessionPath() error = %v", err)
	}
	if want := filepath.Join(dir, "20250701_101500_abcdef12.json"); path != want {
		t.Errorf("DefaultSessionPath() = %s, 期望 %s", path, want)
	}

	short := &Session{ID: "ab", CreatedAt: s.CreatedAt}
	if path, _ := DefaultSessionPath(dir, short); !strings.HasSuffix(path, "_ab.json") {
		t.Errorf("短 ID 路径 = %s", path)
	}
}

func TestListAndLatestSession(t *testing.T) {
	dir := t.TempDir()
	if _, err := LatestSession(dir); !errors.Is(err, ErrNoSession) {
		t.Errorf("空目录应返回 ErrNoSession, 得到 %v", err)
	}

	for _, name := range []string{"20250701_101500_a.json", "20250702_090000_b.json", "notes.txt"} {
		writeFile(t, dir, name, "{}")
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0755); err != nil {
		t.Fatal(err)
	}

	paths, err := ListSessions(dir)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("会话数量 = %d, 期望 2: %v", len(paths), paths)
	}

	latest, err := LatestSession(dir)
	if err != nil {
		t.Fatalf("LatestSession() error = %v", err)
	}
	if filepath.Base(latest) != "20250702_090000_b.json" {
		t.Errorf("LatestSession() = %s", latest)
	}

	if paths, err := ListSessions(filepath.Join(dir, "missing")); err != nil || paths != nil {
		t.Errorf("目录不存在时应返回空列表, 得到 %v, %v", paths, err)
	}
}

func TestLoadCasesFile(t *testing.T) {
	dir := t.TempDir()

	sessionPath := filepath.Join(dir, "session.json")
	if err := SaveSession(testSession(t), sessionPath); err != nil {
		t.Fatal(err)
	}
	replyPath := writeFile(t, dir, "reply.txt", "模型回复：\n[{\"case_name\":\"a\",\"parameters\":{\"x\":\"1\"}}]\n")
	emptyPath := writeFile(t, dir, "empty.txt", "没有用例")

	tests := []struct {
		name    string
		path    string
		count   int
		wantErr bool
	}{
		{name: "会话文件", path: sessionPath, count: 3},
		{name: "模型回复", path: replyPath, count: 1},
		{name: "没有数组", path: emptyPath, wantErr: true},
		{name: "文件不存在", path: filepath.Join(dir, "none"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cases, err := LoadCasesFile(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadCasesFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(cases) != tt.count {
				t.Errorf("用例数量 = %d, 期望 %d", len(cases), tt.count)
			}
		})
	}
}
