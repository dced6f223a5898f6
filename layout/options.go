package layout

import (
	"fmt"
	"log/slog"
	"strings"
)

// 默认参数：字号 28，行高 = 字号 + 10，外边距 2。
const (
	DefaultFontSize  = 28.0
	DefaultRowHeight = DefaultFontSize + 10
	DefaultMargin    = 2.0
)

// SizeCompare 决定水平容器如何在子节点中挑选需要上报的尺寸。
type SizeCompare int

const (
	// CompareLegacy 以 result.X*result.Y < cand.X*cand.X 比较（保持历史行为）。
	CompareLegacy SizeCompare = iota
	// CompareArea 以 result.X*result.Y < cand.X*cand.Y 比较。
	CompareArea
	// CompareTallest 上报 (width, 子节点最大高度)。
	CompareTallest
)

func (c SizeCompare) String() string {
	switch c {
	case CompareLegacy:
		return "legacy"
	case CompareArea:
		return "area"
	case CompareTallest:
		return "tallest"
	default:
		return fmt.Sprintf("SizeCompare(%d)", int(c))
	}
}

// ParseSizeCompare 解析 legacy/area/tallest，空字符串视为 legacy。
func ParseSizeCompare(s string) (SizeCompare, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "legacy":
		return CompareLegacy, nil
	case "area":
		return CompareArea, nil
	case "tallest", "max-height":
		return CompareTallest, nil
	default:
		return CompareLegacy, fmt.Errorf("未知的 size-compare 取值 %q", s)
	}
}

// MarshalText 让 SizeCompare 以字符串形式出现在 JSON/YAML 中。
func (c SizeCompare) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText 实现 encoding.TextUnmarshaler。
func (c *SizeCompare) UnmarshalText(text []byte) error {
	v, err := ParseSizeCompare(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Metrics 是布局算法使用的间距参数，单位为像素。
// FontSize 对布局算法不透明，仅透传给控件。
type Metrics struct {
	RowHeight   float64     `json:"rowHeight"`
	Margin      float64     `json:"margin"`
	FontSize    float64     `json:"fontSize"`
	SizeCompare SizeCompare `json:"sizeCompare"`
}

// DefaultMetrics 返回默认参数。
func DefaultMetrics() Metrics {
	return Metrics{
		RowHeight: DefaultRowHeight,
		Margin:    DefaultMargin,
		FontSize:  DefaultFontSize,
	}
}

// WithDefaults 补齐缺省参数：全零时返回 DefaultMetrics，否则只补齐为零的字号与行高，
// 行高缺省时取字号 + 10。外边距为 0 是合法取值，保持不变。
func (m Metrics) WithDefaults() Metrics {
	if m == (Metrics{}) {
		return DefaultMetrics()
	}
	if m.FontSize <= 0 {
		m.FontSize = DefaultFontSize
	}
	if m.RowHeight <= 0 {
		m.RowHeight = m.FontSize + 10
	}
	return m
}

// Options 配置 Manager。
type Options struct {
	Metrics Metrics
	// Bounds 是初始的外部边界尺寸（宽、高）。
	Bounds Vec2
	// Logger 为空时不输出任何日志。
	Logger *slog.Logger
}
