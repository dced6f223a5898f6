// Package form 将 DSL 文档编译为控件树：容器语句通过 layout.Builder 打开作用域，
// 控件语句调用 widget 工厂登记叶子，构建结束时完成一次布局。
package form

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/boxform/binding"
	"github.com/ByLCY/boxform/config"
	"github.com/ByLCY/boxform/dsl"
	"github.com/ByLCY/boxform/layout"
	"github.com/ByLCY/boxform/widget"
)

// Options 控制编译过程。
type Options struct {
	// Config 是文件级参数；零值时使用 config.Default()。DSL 的 config 段在其上覆盖。
	Config config.Config
	// Data 用于 ${path} 插值。
	Data   any
	Logger *slog.Logger
}

// Form 是编译后的表单。
type Form struct {
	name    string
	version string

	manager    *layout.Manager
	widgets    []*widget.Widget
	byName     map[string]*widget.Widget
	containers map[string]*layout.Node
}

func (f *Form) Name() string { return f.name }
func (f *Form) Version() string { return f.version }
func (f *Form) Manager() *layout.Manager { return f.manager }
func (f *Form) Widgets() []*widget.Widget { return append([]*widget.Widget(nil), f.widgets...) }

// Widget 按名称查找控件；同名时返回第一个。
func (f *Form) Widget(name string) (*widget.Widget, bool) {
	w, ok := f.byName[name]
	return w, ok
}

// Container 按 name 参数查找容器节点。
func (f *Form) Container(name string) (*layout.Node, bool) {
	n, ok := f.containers[name]
	return n, ok
}

// Resize 通知新的外部边界，尺寸未变时不重新布局。
func (f *Form) Resize(bounds layout.Vec2) bool { return f.manager.SetBounds(bounds) }

// Snapshot 返回当前几何快照。
func (f *Form) Snapshot() *layout.Result { return f.manager.Snapshot() }

// Load 读取并编译 DSL 文件。
func Load(path string, opts Options) (*Form, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开 DSL 文件 %s: %w", path, err)
	}
	defer file.Close()
	return Read(path, file, opts)
}

// Read 从 r 解析并编译，filename 仅用于错误位置。
func Read(filename string, r io.Reader, opts Options) (*Form, error) {
	doc, err := dsl.ParseFile(filename, r)
	if err != nil {
		return nil, fmt.Errorf("解析 DSL 失败: %w", err)
	}
	return Compile(doc, opts)
}

// Compile 编译已解析的文档。
func Compile(doc *dsl.Document, opts Options) (*Form, error) {
	if doc == nil || doc.Body == nil {
		return nil, fmt.Errorf("文档为空")
	}
	cfg := opts.Config
	if cfg == (config.Config{}) {
		cfg = config.Default()
	}

	var body []*dsl.Statement
	for _, st := range doc.Body.Statements {
		if st.Command != nil && st.Command.Name == "config" {
			if err := applyConfig(&cfg, st.Command, opts.Data); err != nil {
				return nil, err
			}
			continue
		}
		body = append(body, st)
	}

	f := &Form{
		name:       doc.Name,
		version:    doc.Version,
		byName:     map[string]*widget.Widget{},
		containers: map[string]*layout.Node{},
		manager: layout.NewManager(layout.Options{
			Metrics: cfg.Metrics,
			Bounds:  cfg.Bounds,
			Logger:  opts.Logger,
		}),
	}
	c := &compiler{form: f, data: opts.Data, explicit: map[string]bool{}}
	f.manager.Build(func(b *layout.Builder) {
		c.statements(b, body)
	})
	if c.err != nil {
		return nil, c.err
	}
	return f, nil
}

func applyConfig(cfg *config.Config, cmd *dsl.Command, data any) error {
	if len(cmd.Args) > 0 {
		return at(cmd.Pos, fmt.Errorf("config 不接受参数"))
	}
	if cmd.Block == nil {
		return at(cmd.Pos, fmt.Errorf("config 语句缺少配置块"))
	}
	for _, st := range cmd.Block.Statements {
		a := st.Assignment
		if a == nil {
			return at(cmd.Pos, fmt.Errorf("config 段只允许 key: value"))
		}
		if err := cfg.Set(a.Key, binding.Interpolate(a.Value.Raw(), data)); err != nil {
			return at(a.Pos, err)
		}
	}
	return nil
}

type compiler struct {
	form     *Form
	data     any
	explicit map[string]bool
	err      error
}

// statements 依次编译语句；出现第一个错误后跳过其余语句，作用域仍按 defer 正常关闭。
func (c *compiler) statements(b *layout.Builder, stmts []*dsl.Statement) {
	for _, st := range stmts {
		if c.err != nil {
			return
		}
		switch {
		case st.Command != nil:
			if err := c.command(b, st.Command); err != nil {
				c.err = at(st.Command.Pos, err)
			}
		case st.Text != nil:
			if err := c.register(widget.Text(b, c.interpolate(string(st.Text.Value))), ""); err != nil {
				c.err = err
			}
		case st.Assignment != nil:
			c.err = at(st.Assignment.Pos, fmt.Errorf("容器中不允许赋值语句 %s", st.Assignment.Key))
		}
	}
}

func (c *compiler) command(b *layout.Builder, cmd *dsl.Command) error {
	a, err := c.parseArgs(cmd)
	if err != nil {
		return err
	}

	switch cmd.Name {
	case "vertical", "horizontal":
		if a.hasLabel || a.hasValue {
			return fmt.Errorf("%s 不接受标签或取值", cmd.Name)
		}
		if a.equal && cmd.Name == "vertical" {
			return fmt.Errorf("equal 只适用于 horizontal")
		}
		if cmd.Block == nil {
			return fmt.Errorf("%s 语句缺少子内容", cmd.Name)
		}
		if a.name != "" {
			if _, dup := c.form.containers[a.name]; dup {
				return fmt.Errorf("容器名称 %q 重复", a.name)
			}
		}
		body := func(n *layout.Node) {
			if a.name != "" {
				n.SetName(a.name)
				c.form.containers[a.name] = n
			}
			c.statements(b, cmd.Block.Statements)
		}
		if cmd.Name == "vertical" {
			b.Vertical(body)
		} else {
			b.Horizontal(!a.equal, body)
		}
		return nil
	case "config":
		return fmt.Errorf("config 段只能出现在表单顶层")
	}

	kind := widget.Kind(cmd.Name)
	if !knownKind(kind) {
		return fmt.Errorf("未知的语句 %q", cmd.Name)
	}
	if a.equal {
		return fmt.Errorf("equal 只适用于 horizontal")
	}
	if cmd.Block != nil && kind != widget.KindDropdown && kind != widget.KindText {
		return fmt.Errorf("%s 不接受子内容", kind)
	}
	if a.hasValue && (kind == widget.KindButton || kind == widget.KindText) {
		return fmt.Errorf("%s 不接受 value", kind)
	}

	label := a.label
	if kind == widget.KindText && cmd.Block != nil {
		text, err := textBlock(cmd.Block)
		if err != nil {
			return err
		}
		if a.hasLabel {
			return fmt.Errorf("text 不能同时使用标签与文本块")
		}
		label, a.hasLabel = c.interpolate(text), true
	}
	if !a.hasLabel {
		return fmt.Errorf("%s 缺少标签", kind)
	}

	var w *widget.Widget
	switch kind {
	case widget.KindButton:
		w = widget.Button(b, label, nil)
	case widget.KindText:
		w = widget.Text(b, label)
	case widget.KindToggle:
		on := false
		if a.hasValue {
			if on, err = binding.Bool(a.value, c.data); err != nil {
				return err
			}
		}
		w = widget.Toggle(b, label, nil)
		w.SetOn(on)
	case widget.KindSlider:
		v := 0.0
		if a.hasValue {
			if v, err = binding.Float(a.value, c.data); err != nil {
				return err
			}
		}
		w = widget.Slider(b, label, nil, v)
	case widget.KindInputField:
		w = widget.InputField(b, label, nil, c.interpolate(a.value))
	case widget.KindDropdown:
		options, err := c.dropdownOptions(cmd.Block)
		if err != nil {
			return err
		}
		index := 0
		if a.hasValue {
			if index, err = optionIndex(a.value, options, c.data); err != nil {
				return err
			}
		}
		w = widget.Dropdown(b, label, nil, index, options...)
	}
	return c.register(w, a.name)
}

func (c *compiler) register(w *widget.Widget, name string) error {
	if name != "" {
		if c.explicit[name] {
			return fmt.Errorf("控件名称 %q 重复", name)
		}
		c.explicit[name] = true
		w.SetName(name)
	}
	c.form.widgets = append(c.form.widgets, w)
	if _, ok := c.form.byName[w.Name()]; !ok || name != "" {
		c.form.byName[w.Name()] = w
	}
	return nil
}

func (c *compiler) interpolate(s string) string { return binding.Interpolate(s, c.data) }

type args struct {
	label    string
	hasLabel bool
	name     string
	value    string
	hasValue bool
	equal    bool
}

// parseArgs 识别 "标签" name <id> value <v> equal 形式的参数。
func (c *compiler) parseArgs(cmd *dsl.Command) (args, error) {
	var a args
	for i := 0; i < len(cmd.Args); i++ {
		lx := cmd.Args[i]
		switch {
		case i == 0 && lx.IsString():
			a.label, a.hasLabel = c.interpolate(lx.Value), true
		case lx.Type == "Ident" && (lx.Value == "name" || lx.Value == "value"):
			if i+1 >= len(cmd.Args) {
				return a, fmt.Errorf("%s 缺少取值", lx.Value)
			}
			i++
			switch {
			case lx.Value == "name":
				a.name = c.interpolate(cmd.Args[i].Value)
			case binding.Unresolved(cmd.Args[i].Value, c.data):
				// 没有数据的绑定视为未设置，控件保持默认初值。
				a.value, a.hasValue = "", false
			default:
				a.value, a.hasValue = cmd.Args[i].Value, true
			}
		case lx.Type == "Ident" && lx.Value == "equal":
			a.equal = true
		default:
			return a, fmt.Errorf("无法识别的参数 %s", lx.Raw)
		}
	}
	return a, nil
}

func (c *compiler) dropdownOptions(block *dsl.Block) ([]string, error) {
	if block == nil {
		return nil, nil
	}
	var options []string
	for _, st := range block.Statements {
		if st.Assignment == nil || st.Assignment.Key != "options" {
			return nil, fmt.Errorf("dropdown 子内容只允许 options: [...]")
		}
		for _, o := range st.Assignment.Value.Strings() {
			options = append(options, c.interpolate(o))
		}
	}
	return options, nil
}

// optionIndex 接受下标或选项文本。
func optionIndex(raw string, options []string, data any) (int, error) {
	if i, err := binding.Int(raw, data); err == nil {
		if len(options) > 0 && (i < 0 || i >= len(options)) {
			return 0, fmt.Errorf("下拉框没有第 %d 项（共 %d 项）", i, len(options))
		}
		return i, nil
	}
	text := binding.Interpolate(raw, data)
	for i, o := range options {
		if o == text {
			return i, nil
		}
	}
	return 0, fmt.Errorf("下拉框中没有选项 %q", text)
}

func textBlock(block *dsl.Block) (string, error) {
	var parts []string
	for _, st := range block.Statements {
		if st.Text == nil {
			return "", fmt.Errorf("text 块只允许字符串")
		}
		parts = append(parts, string(st.Text.Value))
	}
	return strings.Join(parts, "\n"), nil
}

func knownKind(k widget.Kind) bool {
	for _, known := range widget.Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

func at(pos lexer.Position, err error) error {
	if pos.Line == 0 {
		return err
	}
	return fmt.Errorf("%s: %w", pos, err)
}
