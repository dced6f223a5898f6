package form

import (
	"errors"
	"io/fs"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ByLCY/boxform/config"
	"github.com/ByLCY/boxform/dsl"
	"github.com/ByLCY/boxform/layout"
	"github.com/ByLCY/boxform/widget"
)

const demoForm = `
form Demo {
  button "Button1"
  horizontal name row {
    vertical name left {
      button "Button2-1"
      button "Button2-2"
      horizontal {
        vertical { button "Button3-1" }
        vertical {
          button "Button3-2"
          button "Button3-3"
        }
      }
    }
    vertical {
      button "Button2-3"
      toggle "Toggle" value true
    }
  }
}
`

var approx = cmpopts.EquateApprox(0, 1e-6)

func compile(t *testing.T, src string, opts Options) *Form {
	t.Helper()
	f, err := Read("test.form", strings.NewReader(src), opts)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return f
}

func rectOf(t *testing.T, f *Form, name string) layout.Rect {
	t.Helper()
	w, ok := f.Widget(name)
	if !ok {
		t.Fatalf("widget %q not found", name)
	}
	return w.Rect()
}

func TestCompileDemoGeometry(t *testing.T) {
	f := compile(t, demoForm, Options{})
	if f.Name() != "Demo" || f.Manager().Passes() != 1 {
		t.Fatalf("unexpected form %q passes=%d", f.Name(), f.Manager().Passes())
	}

	third := 800.0 / 3
	rect := func(x, y, w float64) layout.Rect {
		return layout.Rect{Position: layout.Vec2{X: x, Y: y}, Size: layout.Vec2{X: w, Y: 38}}
	}
	want := map[string]layout.Rect{
		"Button1":   rect(2, -2, 796),
		"Button2-1": rect(2, -44, 2*third-4),
		"Button2-2": rect(2, -86, 2*third-4),
		"Button3-1": rect(2, -128, third-4),
		"Button3-2": rect(third+2, -128, third-4),
		"Button3-3": rect(third+2, -170, third-4),
		"Button2-3": rect(2*third+2, -44, third-4),
		"Toggle":    rect(2*third+2, -86, third-4),
	}
	for name, r := range want {
		if diff := cmp.Diff(r, rectOf(t, f, name), approx); diff != "" {
			t.Fatalf("%s rect mismatch (-want +got):\n%s", name, diff)
		}
	}

	row, ok := f.Container("row")
	if !ok || row.ColumnWeight() != 3 || !row.AdjustWidth() {
		t.Fatalf("row container missing or wrong: %+v", row)
	}
	left, _ := f.Container("left")
	if left.ColumnWeight() != 2 {
		t.Fatalf("left weight = %d, want 2", left.ColumnWeight())
	}
	if got := f.Snapshot().Height(); math.Abs(got-210) > 1e-9 {
		t.Fatalf("form height = %g, want 210", got)
	}

	toggle, _ := f.Widget("Toggle")
	if !toggle.On() {
		t.Fatalf("toggle initial value should be true")
	}
}

func TestCompileConfigAndBinding(t *testing.T) {
	src := `
form Profile v2 {
  config {
    font-size: 14
    margin: 0
    size-compare: tallest
  }
  text { "Hello, ${user.name}!" }
  horizontal equal {
    input "Name" name nameField value "${user.name}"
    slider "Volume" value "${user.volume}"
    dropdown "Theme" value "${user.theme}" {
      options: ["light", "dark"]
    }
  }
}
`
	data := map[string]any{
		"user": map[string]any{"name": "Alice", "volume": 0.25, "theme": "dark"},
	}
	f := compile(t, src, Options{Data: data})

	m := f.Manager().Metrics()
	if m.FontSize != 14 || m.RowHeight != 24 || m.Margin != 0 || m.SizeCompare != layout.CompareTallest {
		t.Fatalf("config block not applied: %+v", m)
	}
	if f.Version() != "v2" {
		t.Fatalf("version = %q", f.Version())
	}

	greeting := f.Widgets()[0]
	if greeting.Kind() != widget.KindText || greeting.Label() != "Hello, Alice!" {
		t.Fatalf("text widget = %s %q", greeting.Kind(), greeting.Label())
	}
	input, ok := f.Widget("nameField")
	if !ok || input.Text() != "Alice" || input.Label() != "Name" {
		t.Fatalf("input not bound: %+v", input)
	}
	slider, _ := f.Widget("Volume")
	if slider.Value() != 0.25 {
		t.Fatalf("slider value = %g", slider.Value())
	}
	dropdown, _ := f.Widget("Theme")
	if dropdown.Index() != 1 || len(dropdown.Options()) != 2 {
		t.Fatalf("dropdown index = %d options = %v", dropdown.Index(), dropdown.Options())
	}

	// equal 切分：三个控件各占 1/3。
	for _, w := range f.Widgets()[1:] {
		if got := w.Rect().Size.X; math.Abs(got-800.0/3) > 1e-9 {
			t.Fatalf("%s width = %g, want %g", w.Name(), got, 800.0/3)
		}
	}
	if got := f.Snapshot().Height(); got != 48 {
		t.Fatalf("height with tallest rule = %g, want 48", got)
	}
}

func TestCompileKeepsDefaultsWithoutData(t *testing.T) {
	src := `
form Profile {
  toggle "Admin" value "${user.admin}"
  slider "Volume" value "${user.volume}"
  input "Name" value "${user.name}"
  dropdown "Theme" value "${user.theme}" {
    options: ["light", "dark"]
  }
}
`
	for _, data := range []any{nil, map[string]any{"user": map[string]any{}}} {
		f := compile(t, src, Options{Data: data})
		admin, _ := f.Widget("Admin")
		slider, _ := f.Widget("Volume")
		input, _ := f.Widget("Name")
		dropdown, _ := f.Widget("Theme")
		if admin.On() || slider.Value() != 0 || input.Text() != "" || dropdown.Index() != 0 {
			t.Fatalf("unbound values should keep widget defaults: on=%v value=%g text=%q index=%d",
				admin.On(), slider.Value(), input.Text(), dropdown.Index())
		}
	}

	if _, err := Read("bad.form", strings.NewReader(`form F { slider "s" value "v=${x}" }`), Options{}); err == nil {
		t.Fatalf("a value mixing text and placeholders is still parsed literally")
	}
}

func TestCompileUsesFileConfig(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Set(config.KeyWidth, "400"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	f := compile(t, `form F { button "A" }`, Options{Config: cfg})
	if got := rectOf(t, f, "A").Size.X; got != 396 {
		t.Fatalf("button width = %g, want 396", got)
	}

	if !f.Resize(layout.Vec2{X: 200, Y: 600}) {
		t.Fatalf("resize should relayout")
	}
	if f.Resize(layout.Vec2{X: 200, Y: 600}) {
		t.Fatalf("second resize with same bounds should be skipped")
	}
	if got := rectOf(t, f, "A").Size.X; got != 196 {
		t.Fatalf("button width after resize = %g, want 196", got)
	}
}

func TestCompileErrors(t *testing.T) {
	cases := map[string]string{
		"unknown command":    `form F { slidr "x" }`,
		"missing label":      `form F { button }`,
		"container label":    `form F { vertical "x" { } }`,
		"missing block":      `form F { vertical }`,
		"equal on vertical":  `form F { vertical equal { } }`,
		"bad toggle":         `form F { toggle "t" value maybe }`,
		"bad option":         `form F { dropdown "d" value nope { options: ["a"] } }`,
		"option range":       `form F { dropdown "d" value 4 { options: ["a"] } }`,
		"duplicate name":     `form F { button "a" name x; button "b" name x }`,
		"nested config":      `form F { vertical { config { margin: 1 } } }`,
		"bad config value":   `form F { config { margin: wide } }`,
		"unknown config key": `form F { config { colour: red } }`,
		"button value":       `form F { button "a" value 1 }`,
		"stray assignment":   `form F { vertical { margin: 1 } }`,
		"dangling name":      `form F { button "a" name }`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Read("bad.form", strings.NewReader(src), Options{}); err == nil {
				t.Fatalf("expected error for %s", src)
			}
		})
	}
}

func TestCompileErrorCarriesPosition(t *testing.T) {
	_, err := Read("bad.form", strings.NewReader("form F {\n  vertical {\n    slidr \"x\"\n  }\n}\n"), Options{})
	if err == nil || !strings.Contains(err.Error(), "bad.form:3:") {
		t.Fatalf("error should point at line 3, got %v", err)
	}
}

func TestCompileNilDocument(t *testing.T) {
	if _, err := Compile(nil, Options{}); err == nil {
		t.Fatalf("nil document should fail")
	}
	if _, err := Compile(&dsl.Document{Name: "X"}, Options{}); err == nil {
		t.Fatalf("document without body should fail")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("does-not-exist.form", Options{})
	if err == nil {
		t.Fatalf("missing file should fail")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("error should wrap fs.ErrNotExist, got %v", err)
	}
}

func TestWidgetsReactAfterCompile(t *testing.T) {
	f := compile(t, demoForm, Options{})
	clicked := 0
	b, _ := f.Widget("Button3-3")
	b.OnClick(func(*widget.Widget) { clicked++ })
	b.Click()
	if clicked != 1 {
		t.Fatalf("click handler not called")
	}

	b.Destroy()
	if !f.Resize(f.Manager().Bounds()) {
		t.Fatalf("destroy should force the next relayout")
	}
	if !b.Rect().Size.IsZero() {
		t.Fatalf("destroyed widget keeps rect %+v", b.Rect())
	}
	if got := len(f.Snapshot().Leaves()); got != 7 {
		t.Fatalf("snapshot leaves = %d, want 7", got)
	}
	toggle := rectOf(t, f, "Toggle")
	if math.Abs(toggle.Position.Y+86) > 1e-9 {
		t.Fatalf("toggle should stay at y=-86, got %g", toggle.Position.Y)
	}
}
