// Package widget 提供表单控件的工厂函数。每个控件在构建会话中登记为一个布局叶子，
// 并通过 layout.Handle 接收布局阶段写回的矩形。控件只保存状态与回调，不负责绘制。
package widget

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ByLCY/boxform/layout"
)

// Kind 是控件的语义类型。
type Kind string

const (
	KindButton     Kind = "button"
	KindToggle     Kind = "toggle"
	KindSlider     Kind = "slider"
	KindInputField Kind = "input"
	KindText       Kind = "text"
	KindDropdown   Kind = "dropdown"
)

// ErrWrongKind 表示对控件调用了不属于其类型的操作。
var ErrWrongKind = errors.New("控件类型不匹配")

// Kinds 返回所有控件类型，顺序固定。
func Kinds() []Kind {
	return []Kind{KindButton, KindToggle, KindSlider, KindInputField, KindText, KindDropdown}
}

// HasLabel 报告该类型是否显示标签文本；滑块与下拉框只有名称。
func (k Kind) HasLabel() bool {
	return k != KindSlider && k != KindDropdown
}

// Widget 是一个控件实例。
type Widget struct {
	kind     Kind
	name     string
	label    string
	fontSize float64

	manager   *layout.Manager
	node      *layout.Node
	rect      layout.Rect
	destroyed bool

	on      bool
	value   float64
	text    string
	index   int
	options []string

	clicks  []func(*Widget)
	toggles []func(*Widget, bool)
	slides  []func(*Widget, float64)
	inputs  []func(*Widget, string)
	selects []func(*Widget, int)
}

var (
	_ layout.Handle    = (*Widget)(nil)
	_ layout.Describer = (*Widget)(nil)
)

// newWidget 创建控件并登记到构建器当前容器。
func newWidget(b *layout.Builder, kind Kind, label string) *Widget {
	w := &Widget{kind: kind, name: label, manager: b.Manager()}
	if kind.HasLabel() && label != "" {
		w.label = label
		w.fontSize = b.Metrics().FontSize
	}
	w.node = b.Leaf(w)
	w.node.SetName(label)
	return w
}

// Button 创建按钮，action 在 Click 时调用。
func Button(b *layout.Builder, label string, action func(*Widget)) *Widget {
	w := newWidget(b, KindButton, label)
	if action != nil {
		w.OnClick(action)
	}
	return w
}

// Toggle 创建开关。
func Toggle(b *layout.Builder, label string, action func(*Widget, bool)) *Widget {
	w := newWidget(b, KindToggle, label)
	if action != nil {
		w.OnToggle(action)
	}
	return w
}

// Slider 创建取值范围为 [0,1] 的滑块。
func Slider(b *layout.Builder, label string, action func(*Widget, float64), initValue float64) *Widget {
	w := newWidget(b, KindSlider, label)
	w.value = clamp01(initValue)
	if action != nil {
		w.OnSlide(action)
	}
	return w
}

// InputField 创建输入框。
func InputField(b *layout.Builder, label string, action func(*Widget, string), initValue string) *Widget {
	w := newWidget(b, KindInputField, label)
	w.text = initValue
	if action != nil {
		w.OnInput(action)
	}
	return w
}

// Text 创建静态文本。
func Text(b *layout.Builder, label string) *Widget {
	return newWidget(b, KindText, label)
}

// Dropdown 创建下拉框，initValue 为选中项下标。
func Dropdown(b *layout.Builder, label string, action func(*Widget, int), initValue int, options ...string) *Widget {
	w := newWidget(b, KindDropdown, label)
	w.options = append([]string(nil), options...)
	w.index = initValue
	if action != nil {
		w.OnSelect(action)
	}
	return w
}

func (w *Widget) Kind() Kind { return w.kind }
func (w *Widget) Name() string { return w.name }
func (w *Widget) Label() string { return w.label }
func (w *Widget) FontSize() float64 { return w.fontSize }
func (w *Widget) Node() *layout.Node { return w.node }
func (w *Widget) Rect() layout.Rect { return w.rect }
func (w *Widget) Destroyed() bool { return w.destroyed }
func (w *Widget) On() bool { return w.on }
func (w *Widget) Value() float64 { return w.value }
func (w *Widget) Text() string { return w.text }
func (w *Widget) Index() int { return w.index }
func (w *Widget) Options() []string { return append([]string(nil), w.options...) }

// SetName 修改控件名称（默认与标签相同）。
func (w *Widget) SetName(name string) {
	w.name = name
	w.node.SetName(name)
}

// SetRect 实现 layout.Handle。
func (w *Widget) SetRect(r layout.Rect) { w.rect = r }

// Describe 实现 layout.Describer。
func (w *Widget) Describe() layout.WidgetInfo {
	return layout.WidgetInfo{
		Kind:     string(w.kind),
		Name:     w.name,
		Label:    w.label,
		Value:    w.valueString(),
		FontSize: w.fontSize,
	}
}

func (w *Widget) valueString() string {
	switch w.kind {
	case KindToggle:
		return strconv.FormatBool(w.on)
	case KindSlider:
		return strconv.FormatFloat(w.value, 'f', -1, 64)
	case KindInputField:
		return w.text
	case KindDropdown:
		if w.index >= 0 && w.index < len(w.options) {
			return w.options[w.index]
		}
		return strconv.Itoa(w.index)
	default:
		return ""
	}
}

// Destroy 销毁控件：解除布局叶子上的矩形，之后的布局中该叶子为零尺寸。
// 所属 Manager 的记忆边界随之失效，下一次 Relayout 会让兄弟节点补位。
func (w *Widget) Destroy() {
	if w.destroyed {
		return
	}
	w.destroyed = true
	w.node.Detach()
	w.rect = layout.Rect{}
	if w.manager != nil {
		w.manager.Invalidate()
	}
}

func (w *Widget) expect(kind Kind, op string) {
	if w.kind != kind {
		panic(fmt.Errorf("widget: %w: %s 不支持 %s", ErrWrongKind, w.kind, op))
	}
}

// OnClick 追加点击回调。
func (w *Widget) OnClick(fn func(*Widget)) *Widget {
	w.expect(KindButton, "OnClick")
	w.clicks = append(w.clicks, fn)
	return w
}

// OnToggle 追加开关状态变化回调。
func (w *Widget) OnToggle(fn func(*Widget, bool)) *Widget {
	w.expect(KindToggle, "OnToggle")
	w.toggles = append(w.toggles, fn)
	return w
}

// OnSlide 追加滑块取值变化回调。
func (w *Widget) OnSlide(fn func(*Widget, float64)) *Widget {
	w.expect(KindSlider, "OnSlide")
	w.slides = append(w.slides, fn)
	return w
}

// OnInput 追加输入变化回调。
func (w *Widget) OnInput(fn func(*Widget, string)) *Widget {
	w.expect(KindInputField, "OnInput")
	w.inputs = append(w.inputs, fn)
	return w
}

// OnSelect 追加选中项变化回调。
func (w *Widget) OnSelect(fn func(*Widget, int)) *Widget {
	w.expect(KindDropdown, "OnSelect")
	w.selects = append(w.selects, fn)
	return w
}

// Click 模拟一次点击。已销毁的控件不再响应。
func (w *Widget) Click() {
	w.expect(KindButton, "Click")
	if w.destroyed {
		return
	}
	for _, fn := range w.clicks {
		fn(w)
	}
}

// SetOn 设置开关状态，状态变化时触发回调。
func (w *Widget) SetOn(on bool) {
	w.expect(KindToggle, "SetOn")
	if w.destroyed || w.on == on {
		return
	}
	w.on = on
	for _, fn := range w.toggles {
		fn(w, on)
	}
}

// SetValue 设置滑块取值（截断到 [0,1]），取值变化时触发回调。
func (w *Widget) SetValue(v float64) {
	w.expect(KindSlider, "SetValue")
	v = clamp01(v)
	if w.destroyed || w.value == v {
		return
	}
	w.value = v
	for _, fn := range w.slides {
		fn(w, v)
	}
}

// SetText 设置输入框内容，内容变化时触发回调。
func (w *Widget) SetText(s string) {
	w.expect(KindInputField, "SetText")
	if w.destroyed || w.text == s {
		return
	}
	w.text = s
	for _, fn := range w.inputs {
		fn(w, s)
	}
}

// Select 选中第 i 项。有选项列表时越界下标返回错误。
func (w *Widget) Select(i int) error {
	w.expect(KindDropdown, "Select")
	if len(w.options) > 0 && (i < 0 || i >= len(w.options)) {
		return fmt.Errorf("下拉框 %s 没有第 %d 项（共 %d 项）", w.name, i, len(w.options))
	}
	if w.destroyed || w.index == i {
		return nil
	}
	w.index = i
	for _, fn := range w.selects {
		fn(w, i)
	}
	return nil
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
