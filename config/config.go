// Package config 读取布局参数。YAML 文件与 DSL 中的 config 段共用同一套键名与取值规则。
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/boxform/layout"
)

// 默认预览边界（px）。
const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
)

// 支持的键。
const (
	KeyRowHeight   = "row-height"
	KeyMargin      = "margin"
	KeyFontSize    = "font-size"
	KeySizeCompare = "size-compare"
	KeyWidth       = "width"
	KeyHeight      = "height"
)

// Config 是一次构建所需的布局参数与边界。
type Config struct {
	Metrics layout.Metrics
	Bounds  layout.Vec2

	// 显式设置过行高后，字号变化不再联动行高。
	rowHeightSet bool
}

// Default 返回默认参数：字号 28、行高 38、外边距 2，边界 800x600。
func Default() Config {
	return Config{
		Metrics: layout.DefaultMetrics(),
		Bounds:  layout.Vec2{X: DefaultWidth, Y: DefaultHeight},
	}
}

// Set 按键名设置一个参数。长度可带 px/pt/mm/in 单位，缺省为 px。
// 只设置字号时，行高随之变为字号 + 10。
func (c *Config) Set(key, value string) error {
	if key == KeySizeCompare {
		rule, err := layout.ParseSizeCompare(value)
		if err != nil {
			return err
		}
		c.Metrics.SizeCompare = rule
		return nil
	}

	px, err := layout.ParsePx(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	switch key {
	case KeyRowHeight:
		c.Metrics.RowHeight = px
		c.rowHeightSet = true
	case KeyMargin:
		c.Metrics.Margin = px
	case KeyFontSize:
		c.Metrics.FontSize = px
		if !c.rowHeightSet {
			c.Metrics.RowHeight = px + 10
		}
	case KeyWidth:
		c.Bounds.X = px
	case KeyHeight:
		c.Bounds.Y = px
	default:
		return fmt.Errorf("未知的配置项 %q", key)
	}
	return nil
}

// Scalar 接受 YAML 中的数字或字符串标量，保留原文交给 Set 解析。
type Scalar string

// UnmarshalYAML 实现 yaml.Unmarshaler。
func (s *Scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("第 %d 行：期望标量取值", node.Line)
	}
	*s = Scalar(node.Value)
	return nil
}

type file struct {
	RowHeight   *Scalar `yaml:"row-height"`
	Margin      *Scalar `yaml:"margin"`
	FontSize    *Scalar `yaml:"font-size"`
	SizeCompare *Scalar `yaml:"size-compare"`
	Width       *Scalar `yaml:"width"`
	Height      *Scalar `yaml:"height"`
}

// Load 读取 YAML 配置文件并合并到默认参数上。空路径直接返回默认参数。
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := cfg.Merge(bytes.NewReader(data)); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Merge 解析 YAML 并覆盖已出现的键，未知键视为错误。
func (c *Config) Merge(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parsing YAML: %w", err)
	}

	// 行高先于字号处理，保证显式行高不被联动覆盖。
	entries := []struct {
		key   string
		value *Scalar
	}{
		{KeyRowHeight, f.RowHeight},
		{KeyMargin, f.Margin},
		{KeyFontSize, f.FontSize},
		{KeySizeCompare, f.SizeCompare},
		{KeyWidth, f.Width},
		{KeyHeight, f.Height},
	}
	for _, e := range entries {
		if e.value == nil {
			continue
		}
		if err := c.Set(e.key, string(*e.value)); err != nil {
			return err
		}
	}
	return nil
}
