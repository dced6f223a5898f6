// Package fonts 为预览渲染器加载标签字体：可以来自字节、文件路径或系统字体名。
package fonts

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tdewolff/canvas"
)

// ErrNoSource 表示没有配置任何字体来源。
var ErrNoSource = errors.New("未配置字体来源")

// Source 描述字体来源，优先级 Bytes > Path > System。
type Source struct {
	Bytes  []byte
	Path   string
	System string
}

func (s Source) IsZero() bool { return len(s.Bytes) == 0 && s.Path == "" && s.System == "" }

func (s Source) String() string {
	switch {
	case len(s.Bytes) > 0:
		return fmt.Sprintf("bytes(%d)", len(s.Bytes))
	case s.Path != "":
		return "file:" + s.Path
	case s.System != "":
		return "system:" + s.System
	default:
		return ""
	}
}

// Parse 解析命令行形式的字体描述："system:Name" 表示系统字体，其余视为文件路径。
func Parse(desc string) Source {
	desc = strings.TrimSpace(desc)
	if name, ok := strings.CutPrefix(desc, "system:"); ok {
		return Source{System: name}
	}
	return Source{Path: strings.TrimPrefix(desc, "file:")}
}

// Load 返回字体文件的字节数据。系统字体没有字节形式，需改用 LoadFamily。
func Load(src Source) ([]byte, error) {
	switch {
	case len(src.Bytes) > 0:
		return src.Bytes, nil
	case src.Path != "":
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, fmt.Errorf("读取字体 %s 失败: %w", src.Path, err)
		}
		return data, nil
	case src.System != "":
		return nil, fmt.Errorf("系统字体 %s 只能通过 LoadFamily 加载", src.System)
	default:
		return nil, ErrNoSource
	}
}

// LoadFamily 以 name 创建字体族并加载常规字重。
func LoadFamily(name string, src Source) (*canvas.FontFamily, error) {
	if src.IsZero() {
		return nil, ErrNoSource
	}
	family := canvas.NewFontFamily(name)
	if len(src.Bytes) == 0 && src.Path == "" {
		if err := family.LoadSystemFont(src.System, canvas.FontRegular); err != nil {
			return nil, fmt.Errorf("加载系统字体 %s 失败: %w", src.System, err)
		}
		return family, nil
	}
	data, err := Load(src)
	if err != nil {
		return nil, err
	}
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", src, err)
	}
	return family, nil
}
