package layout

// 该文件定义布局结果的快照结构，供渲染预览与调试 JSON 共用。

// Result 是某次布局之后整棵树的几何快照。
type Result struct {
	Bounds  Vec2    `json:"bounds"`
	Metrics Metrics `json:"metrics"`
	Passes  int     `json:"passes"`
	Root    Box     `json:"root"`
}

// Box 描述一个节点的布局结果。
type Box struct {
	Kind        string      `json:"kind"`
	Name        string      `json:"name,omitempty"`
	Weight      int         `json:"weight"`
	AdjustWidth bool        `json:"adjustWidth,omitempty"`
	Frame       Rect        `json:"frame"`             // 槽位位置 + 上报尺寸
	Content     *Rect       `json:"content,omitempty"` // 叶子写给控件的矩形
	Widget      *WidgetInfo `json:"widget,omitempty"`
	Children    []Box       `json:"children,omitempty"`
}

// WidgetInfo 是控件的只读描述，由实现了 Describer 的 Handle 提供。
type WidgetInfo struct {
	Kind     string  `json:"kind"`
	Name     string  `json:"name,omitempty"`
	Label    string  `json:"label,omitempty"`
	Value    string  `json:"value,omitempty"`
	FontSize float64 `json:"fontSize,omitempty"`
}

// Describer 可由 Handle 实现，用于在快照中附带控件信息。
type Describer interface {
	Describe() WidgetInfo
}

// Snapshot 导出当前树的几何信息。
func (m *Manager) Snapshot() *Result {
	return &Result{
		Bounds:  m.bounds,
		Metrics: m.metrics,
		Passes:  m.passes,
		Root:    snapshotNode(m.root),
	}
}

func snapshotNode(n *Node) Box {
	box := Box{
		Kind:        n.kind.String(),
		Name:        n.name,
		Weight:      n.ColumnWeight(),
		AdjustWidth: n.adjustWidth,
		Frame:       n.frame,
	}
	if n.kind == KindLeaf {
		if n.handle != nil {
			content := n.content
			box.Content = &content
		}
		if d, ok := n.handle.(Describer); ok {
			info := d.Describe()
			box.Widget = &info
		}
		return box
	}
	for _, c := range n.children {
		box.Children = append(box.Children, snapshotNode(c))
	}
	return box
}

// Leaves 按先序返回所有已绑定控件的叶子。
func (r *Result) Leaves() []Box {
	var out []Box
	var visit func(b Box)
	visit = func(b Box) {
		if b.Kind == KindLeaf.String() {
			if b.Content != nil {
				out = append(out, b)
			}
			return
		}
		for _, c := range b.Children {
			visit(c)
		}
	}
	visit(r.Root)
	return out
}

// Height 返回根容器上报的总高度。
func (r *Result) Height() float64 { return r.Root.Frame.Size.Y }
