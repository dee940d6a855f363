package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// yamlEnvVariable YAML 环境变量库条目，value 可以是标量或结构化值.
type yamlEnvVariable struct {
	Name        string    `yaml:"name"`
	Value       yaml.Node `yaml:"value"`
	Description string    `yaml:"description"`
}

// ResolvePath 相对路径按当前工作目录解析.
func ResolvePath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("获取当前目录失败: %w", err)
	}
	return filepath.Join(wd, path), nil
}

// LoadEnvLibrary 加载测试环境变量库（JSON 数组或 YAML 列表）.
func LoadEnvLibrary(path string) ([]EnvVariable, error) {
	fullPath, err := ResolvePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("读取测试数据文件失败 %s: %w", fullPath, err)
	}

	switch strings.ToLower(filepath.Ext(fullPath)) {
	case ".yaml", ".yml":
		return parseYAMLEnvLibrary(data)
	default:
		return parseJSONEnvLibrary(data)
	}
}

func parseJSONEnvLibrary(data []byte) ([]EnvVariable, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("测试数据文件不是合法的 JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("测试数据文件格式错误，应为 JSON 数组")
	}

	var lib []EnvVariable
	root.ForEach(func(_, item gjson.Result) bool {
		value := item.Get("value")
		text := value.String()
		if value.Type == gjson.JSON || value.Type == gjson.Number {
			text = value.Raw
		}
		lib = append(lib, EnvVariable{
			Name:        item.Get("name").String(),
			Value:       text,
			Description: item.Get("description").String(),
		})
		return true
	})
	return lib, nil
}

func parseYAMLEnvLibrary(data []byte) ([]EnvVariable, error) {
	var items []yamlEnvVariable
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("测试数据文件格式错误，应为 YAML 列表: %w", err)
	}
	lib := make([]EnvVariable, 0, len(items))
	for _, item := range items {
		node := &item.Value
		if node.Kind == yaml.AliasNode && node.Alias != nil {
			node = node.Alias
		}
		text := node.Value
		if node.Kind == yaml.MappingNode || node.Kind == yaml.SequenceNode {
			var b strings.Builder
			if err := writeYAMLNodeJSON(&b, node); err != nil {
				return nil, fmt.Errorf("变量 %s 的值无法转换为 JSON: %w", item.Name, err)
			}
			text = b.String()
		}
		lib = append(lib, EnvVariable{
			Name:        item.Name,
			Value:       text,
			Description: item.Description,
		})
	}
	return lib, nil
}

// writeYAMLNodeJSON 把 YAML 结构化值写成紧凑 JSON，映射保持键顺序.
func writeYAMLNodeJSON(b *strings.Builder, node *yaml.Node) error {
	switch node.Kind {
	case yaml.AliasNode:
		return writeYAMLNodeJSON(b, node.Alias)
	case yaml.MappingNode:
		b.WriteByte('{')
		for i := 0; i+1 < len(node.Content); i += 2 {
			if i > 0 {
				b.WriteByte(',')
			}
			b.Write(marshalJSONString(node.Content[i].Value))
			b.WriteByte(':')
			if err := writeYAMLNodeJSON(b, node.Content[i+1]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	case yaml.SequenceNode:
		b.WriteByte('[')
		for i, item := range node.Content {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeYAMLNodeJSON(b, item); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	default:
		var v any
		if err := node.Decode(&v); err != nil {
			return err
		}
		if s, ok := v.(string); ok {
			b.Write(marshalJSONString(s))
			return nil
		}
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		b.Write(data)
	}
	return nil
}

// SimplifyEnvLibrary 渲染为提示词使用的缩进 JSON.
func SimplifyEnvLibrary(lib []EnvVariable) string {
	if lib == nil {
		lib = []EnvVariable{}
	}
	data, err := json.MarshalIndent(lib, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}

// InspectEnvFile 返回测试数据文件的状态描述.
func InspectEnvFile(path string) string {
	if path == "" {
		return "未选择文件"
	}
	fullPath, err := ResolvePath(path)
	if err != nil {
		return fmt.Sprintf("❌ 文件读取失败: %v", err)
	}
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return "❌ 文件不存在"
	}
	lib, err := LoadEnvLibrary(fullPath)
	if err != nil {
		return fmt.Sprintf("❌ 文件读取失败: %v", err)
	}
	if len(lib) == 0 {
		return "⚠️ 文件格式异常"
	}
	return fmt.Sprintf("✅ 有效文件 (%d 条数据)", len(lib))
}
