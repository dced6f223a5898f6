// Package binding 负责表单标签与初值中的 ${path} 占位符：按路径在 JSON 数据中取值并替换。
package binding

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 若 data 为空或路径不存在，则保留原占位符。
func Interpolate(text string, data any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path := strings.TrimSpace(groups[1])
		if path == "" {
			return match
		}
		if val, ok := Lookup(data, path); ok {
			return format(val)
		}
		return match
	})
}

// Placeholders 返回文本中出现的路径，按出现顺序，不去重。
func Placeholders(text string) []string {
	var out []string
	for _, groups := range exprPattern.FindAllStringSubmatch(text, -1) {
		if p := strings.TrimSpace(groups[1]); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Lookup 按 a.b[0].c 形式的路径取值。
func Lookup(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

// Bool 将字面量或 ${path} 解析为布尔值。
func Bool(raw string, data any) (bool, error) {
	if val, ok := single(raw, data); ok {
		if b, ok := val.(bool); ok {
			return b, nil
		}
		raw = format(val)
	}
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, fmt.Errorf("无法解析布尔值 %q: %w", raw, err)
	}
	return b, nil
}

// Float 将字面量或 ${path} 解析为浮点数。
func Float(raw string, data any) (float64, error) {
	if val, ok := single(raw, data); ok {
		if f, ok := val.(float64); ok {
			return f, nil
		}
		raw = format(val)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("无法解析数值 %q: %w", raw, err)
	}
	return f, nil
}

// Int 将字面量或 ${path} 解析为整数；JSON 数字必须是整数值。
func Int(raw string, data any) (int, error) {
	f, err := Float(raw, data)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("%q 不是整数", raw)
	}
	return int(f), nil
}

// LoadFile 读取 JSON 数据文件，空路径返回 nil。
func LoadFile(path string) (any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return data, nil
}

// Unresolved 报告 raw 是否恰好是一个在 data 中找不到对应值的占位符。
func Unresolved(raw string, data any) bool {
	path, ok := singlePath(raw)
	if !ok {
		return false
	}
	_, found := Lookup(data, path)
	return !found
}

// single 处理整个字符串只有一个占位符的情况，此时保留原始类型。
func single(raw string, data any) (any, bool) {
	path, ok := singlePath(raw)
	if !ok {
		return nil, false
	}
	return Lookup(data, path)
}

func singlePath(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	loc := exprPattern.FindStringSubmatchIndex(trimmed)
	if loc == nil || loc[0] != 0 || loc[1] != len(trimmed) {
		return "", false
	}
	path := strings.TrimSpace(trimmed[loc[2]:loc[3]])
	return path, path != ""
}

func format(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func parseSegment(segment string) (string, []string) {
	name := segment
	indexes := []string{}
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 {
			if rest[0] != '[' {
				break
			}
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
