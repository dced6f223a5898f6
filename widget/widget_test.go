package widget

import (
	"errors"
	"testing"

	"github.com/ByLCY/boxform/layout"
)

func newManager() *layout.Manager {
	return layout.NewManager(layout.Options{
		Metrics: layout.DefaultMetrics(),
		Bounds:  layout.Vec2{X: 400, Y: 300},
	})
}

func TestFactoriesRegisterLeaves(t *testing.T) {
	m := newManager()
	var all []*Widget
	m.Build(func(b *layout.Builder) {
		all = append(all,
			Button(b, "Button1", nil),
			Toggle(b, "Enabled", nil),
			Slider(b, "Volume", nil, 0.25),
			InputField(b, "Name", nil, "alice"),
			Text(b, "Hello"),
			Dropdown(b, "Mode", nil, 1, "fast", "slow"),
		)
	})

	if got := m.Root().Len(); got != len(all) {
		t.Fatalf("root children = %d, want %d", got, len(all))
	}
	for i, w := range all {
		if w.Kind() != Kinds()[i] {
			t.Fatalf("widget %d kind = %s, want %s", i, w.Kind(), Kinds()[i])
		}
		r := w.Rect()
		if r.Size.X != 396 || r.Size.Y != 38 {
			t.Fatalf("%s rect size = %+v, want (396,38)", w.Kind(), r.Size)
		}
		if want := -float64(i)*42 - 2; r.Position.Y != want {
			t.Fatalf("%s y = %g, want %g", w.Kind(), r.Position.Y, want)
		}
	}
}

func TestLabelsFollowKind(t *testing.T) {
	m := newManager()
	var button, slider, dropdown *Widget
	m.Build(func(b *layout.Builder) {
		button = Button(b, "OK", nil)
		slider = Slider(b, "Volume", nil, 0)
		dropdown = Dropdown(b, "Mode", nil, 0)
	})
	if button.Label() != "OK" || button.FontSize() != layout.DefaultFontSize {
		t.Fatalf("button label/font = %q/%g", button.Label(), button.FontSize())
	}
	if slider.Label() != "" || slider.Name() != "Volume" {
		t.Fatalf("slider should only carry a name, got label=%q name=%q", slider.Label(), slider.Name())
	}
	if dropdown.Label() != "" || dropdown.Node().Name() != "Mode" {
		t.Fatalf("dropdown should only carry a name")
	}
}

func TestCallbacks(t *testing.T) {
	m := newManager()
	var log []string
	var button, toggle, slider, input, dropdown *Widget
	m.Build(func(b *layout.Builder) {
		button = Button(b, "Go", func(w *Widget) { log = append(log, "click:"+w.Name()) })
		toggle = Toggle(b, "Flag", func(w *Widget, on bool) {
			if on {
				log = append(log, "toggle:on")
			} else {
				log = append(log, "toggle:off")
			}
		})
		slider = Slider(b, "Level", func(w *Widget, v float64) { log = append(log, "slide") }, 0.5)
		input = InputField(b, "Name", func(w *Widget, s string) { log = append(log, "input:"+s) }, "")
		dropdown = Dropdown(b, "Pick", func(w *Widget, i int) { log = append(log, "select:"+w.Options()[i]) }, 0, "a", "b")
	})

	button.Click()
	toggle.SetOn(true)
	toggle.SetOn(true) // 未变化，不触发
	slider.SetValue(0.5)
	slider.SetValue(3)
	input.SetText("bob")
	if err := dropdown.Select(1); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := dropdown.Select(5); err == nil {
		t.Fatalf("out of range selection should fail")
	}

	want := []string{"click:Go", "toggle:on", "slide", "input:bob", "select:b"}
	if len(log) != len(want) {
		t.Fatalf("events = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("event %d = %q, want %q", i, log[i], want[i])
		}
	}
	if slider.Value() != 1 {
		t.Fatalf("slider value should clamp to 1, got %g", slider.Value())
	}
	if got := dropdown.Describe().Value; got != "b" {
		t.Fatalf("dropdown describe value = %q, want b", got)
	}
}

func TestDestroyCollapsesLeaf(t *testing.T) {
	m := newManager()
	var first, second *Widget
	m.Build(func(b *layout.Builder) {
		first = Button(b, "First", nil)
		second = Button(b, "Second", nil)
	})
	if second.Rect().Position.Y != -44 {
		t.Fatalf("second y = %g, want -44", second.Rect().Position.Y)
	}

	first.Destroy()
	if !m.Relayout(m.Bounds()) {
		t.Fatalf("destroy should invalidate the bounds memo")
	}

	if !first.Rect().Size.IsZero() {
		t.Fatalf("destroyed widget keeps rect %+v", first.Rect())
	}
	if first.Node().Frame().Size != (layout.Vec2{}) {
		t.Fatalf("destroyed leaf should report zero size")
	}
	if second.Rect().Position.Y != -2 {
		t.Fatalf("second should move up to y=-2, got %g", second.Rect().Position.Y)
	}

	called := false
	first.OnClick(func(*Widget) { called = true })
	first.Click()
	if called {
		t.Fatalf("destroyed widget should ignore clicks")
	}
}

func TestWrongKindPanics(t *testing.T) {
	m := newManager()
	var text *Widget
	m.Build(func(b *layout.Builder) { text = Text(b, "label") })
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrWrongKind) {
			t.Fatalf("expected ErrWrongKind panic, got %v", r)
		}
	}()
	text.Click()
}
