package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoSession 没有已保存的会话.
var ErrNoSession = errors.New("没有已保存的会话")

// SaveSession 把会话保存为 JSON 文件.
func SaveSession(s *Session, path string) error {
	if s == nil {
		return fmt.Errorf("会话为空")
	}
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化会话失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("写入会话文件失败: %w", err)
	}
	return nil
}

// LoadSession 读取会话文件.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取会话文件失败: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("解析会话文件失败: %w", err)
	}
	return &s, nil
}

// DefaultSessionPath 生成默认的会话文件路径.
func DefaultSessionPath(dir string, s *Session) (string, error) {
	if dir == "" {
		var err error
		if dir, err = GetSessionDir(); err != nil {
			return "", err
		}
	}
	id := s.ID
	if len(id) > 8 {
		id = id[:8]
	}
	name := fmt.Sprintf("%s_%s.json", s.CreatedAt.Format("20060102_150405"), id)
	return filepath.Join(dir, name), nil
}

// LoadCasesFile 读取用例 JSON，支持会话文件或模型回复原文.
func LoadCasesFile(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取用例文件失败: %w", err)
	}
	var s Session
	if json.Unmarshal(data, &s) == nil && len(s.Cases) > 0 {
		return s.Cases, nil
	}
	return ExtractCases(string(data))
}

// ListSessions 列出目录下的会话文件，按文件名（即创建时间）升序.
func ListSessions(dir string) ([]string, error) {
	if dir == "" {
		var err error
		if dir, err = GetSessionDir(); err != nil {
			return nil, err
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取会话目录失败: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// LatestSession 返回最近一次保存的会话文件路径.
func LatestSession(dir string) (string, error) {
	paths, err := ListSessions(dir)
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", ErrNoSession
	}
	return paths[len(paths)-1], nil
}
