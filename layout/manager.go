package layout

import (
	"context"
	"log/slog"
)

// Manager 持有根容器、布局参数与最近一次布局所用的边界尺寸。
// 同一 Manager 同时只允许一个构建会话。
type Manager struct {
	metrics Metrics
	root    *Node
	logger  *slog.Logger

	bounds     Vec2 // 当前外部边界
	lastBounds Vec2 // 最近一次布局使用的边界
	laidOut    bool
	passes     int

	session *Builder
}

// NewManager 创建 Manager。Metrics 中为零的字号与行高按 WithDefaults 补齐。
func NewManager(opts Options) *Manager {
	return &Manager{
		metrics: opts.Metrics.WithDefaults(),
		bounds:  opts.Bounds,
		logger:  opts.Logger,
		root:    NewVertical(),
	}
}

func (m *Manager) Metrics() Metrics { return m.metrics }
func (m *Manager) Root() *Node { return m.root }
func (m *Manager) Bounds() Vec2 { return m.bounds }

// Passes 返回实际执行过的布局次数（被记忆化跳过的不计）。
func (m *Manager) Passes() int { return m.passes }

// Active 报告是否有构建会话进行中。
func (m *Manager) Active() bool { return m.session != nil }

// SetMetrics 更新布局参数，下一次 Relayout 会强制重新计算。
func (m *Manager) SetMetrics(metrics Metrics) {
	m.metrics = metrics
	m.laidOut = false
}

// Invalidate 使记忆的边界失效，下一次 Relayout 即使边界未变也会重新布局。
// 树结构在会话之外变化（例如控件销毁）后调用。
func (m *Manager) Invalidate() { m.laidOut = false }

// Begin 开启构建会话：新建空的纵向根容器作为插入目标。会话不可嵌套。
func (m *Manager) Begin() *Builder {
	if m.session != nil {
		misuse(ErrSessionActive, "请先结束当前会话")
	}
	m.root = NewVertical()
	b := &Builder{manager: m, root: m.root, stack: []*Node{m.root}}
	m.session = b
	return b
}

// Build 在一个会话中执行 fn，正常返回后结束会话并布局。
// fn panic 时会话仍会被释放，Manager 可以继续使用。
func (m *Manager) Build(fn func(b *Builder)) *Node {
	b := m.Begin()
	ok := false
	defer func() {
		if !ok {
			b.release()
		}
	}()
	fn(b)
	b.End()
	ok = true
	return m.root
}

// SetBounds 由外部边界在尺寸变化时调用。
func (m *Manager) SetBounds(bounds Vec2) bool {
	return m.Relayout(bounds)
}

// Relayout 在边界尺寸变化时对整棵树重新布局，尺寸未变时直接跳过并返回 false。
func (m *Manager) Relayout(bounds Vec2) bool {
	m.bounds = bounds
	if m.laidOut && bounds == m.lastBounds {
		m.log(slog.LevelDebug, "跳过布局：边界未变化", bounds)
		return false
	}
	m.apply(bounds)
	return true
}

// forceLayout 在树结构变化后无条件布局一次。
func (m *Manager) forceLayout() {
	m.apply(m.bounds)
}

func (m *Manager) apply(bounds Vec2) {
	size := m.root.ApplyLayout(m.metrics, Zero(), bounds.X)
	m.lastBounds = bounds
	m.laidOut = true
	m.passes++
	m.log(slog.LevelDebug, "完成布局", bounds, slog.Float64("height", size.Y), slog.Int("pass", m.passes))
}

func (m *Manager) log(level slog.Level, msg string, bounds Vec2, attrs ...slog.Attr) {
	if m.logger == nil {
		return
	}
	attrs = append(attrs, slog.Float64("width", bounds.X), slog.Float64("boundsHeight", bounds.Y))
	m.logger.LogAttrs(context.Background(), level, msg, attrs...)
}
