package layout

import "fmt"

// Kind 标识节点变体。
type Kind int

const (
	KindLeaf Kind = iota
	KindVertical
	KindHorizontal
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindVertical:
		return "vertical"
	case KindHorizontal:
		return "horizontal"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Node 是布局树中的一个节点：叶子（控件占位）或纵向/横向容器。
type Node struct {
	kind        Kind
	name        string
	children    []*Node
	adjustWidth bool

	// 叶子专用：控件矩形，nil 表示控件尚未创建或已销毁。
	handle Handle

	// 最近一次布局写入的结果。
	frame   Rect // 分配到的槽位位置 + 上报尺寸
	content Rect // 叶子写给控件的矩形（已扣除 margin）
}

// NewLeaf 创建叶子节点，h 可以为 nil。
func NewLeaf(h Handle) *Node {
	return &Node{kind: KindLeaf, handle: h}
}

// NewVertical 创建纵向容器。
func NewVertical() *Node {
	return &Node{kind: KindVertical}
}

// NewHorizontal 创建横向容器；adjustWidth 为 true 时按列权重分配宽度，否则平分。
func NewHorizontal(adjustWidth bool) *Node {
	return &Node{kind: KindHorizontal, adjustWidth: adjustWidth}
}

func (n *Node) Kind() Kind { return n.kind }
func (n *Node) Name() string { return n.name }
func (n *Node) AdjustWidth() bool { return n.adjustWidth }
func (n *Node) IsContainer() bool { return n.kind != KindLeaf }
func (n *Node) Len() int { return len(n.children) }
func (n *Node) Frame() Rect { return n.frame }
func (n *Node) Content() Rect { return n.content }
func (n *Node) Handle() Handle { return n.handle }
func (n *Node) SetName(name string) { n.name = name }

// Children 返回子节点副本，按插入顺序排列。
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Child 返回第 i 个子节点。
func (n *Node) Child(i int) *Node { return n.children[i] }

// Add 追加子节点。对叶子调用属于编程错误。
func (n *Node) Add(child *Node) {
	if !n.IsContainer() {
		panic(fmt.Errorf("layout: %w: 不能向叶子添加子节点", ErrNotContainer))
	}
	if child == nil {
		panic(fmt.Errorf("layout: 子节点为空"))
	}
	n.children = append(n.children, child)
}

// Attach 绑定控件矩形。
func (n *Node) Attach(h Handle) { n.handle = h }

// Detach 解除控件矩形，之后该叶子的布局结果为零尺寸。
func (n *Node) Detach() { n.handle = nil }

// ColumnWeight 计算列权重：叶子为 1，纵向容器取子节点最大值（至少 1），横向容器取子节点之和。
// 构建期间可能继续追加子节点，因此每次都重新计算。
func (n *Node) ColumnWeight() int {
	switch n.kind {
	case KindVertical:
		total := 1
		for _, c := range n.children {
			total = max(total, c.ColumnWeight())
		}
		return total
	case KindHorizontal:
		total := 0
		for _, c := range n.children {
			total += c.ColumnWeight()
		}
		return total
	default:
		return 1
	}
}

// ApplyLayout 在 position 处以可用宽度 width 排布该节点，返回其占用尺寸（含 margin）。
func (n *Node) ApplyLayout(m Metrics, position Vec2, width float64) Vec2 {
	var size Vec2
	switch n.kind {
	case KindLeaf:
		size = n.applyLeaf(m, position, width)
	case KindVertical:
		size = n.applyVertical(m, position, width)
	case KindHorizontal:
		size = n.applyHorizontal(m, position, width)
	}
	n.frame = Rect{Position: position, Size: size}
	return size
}

func (n *Node) applyLeaf(m Metrics, position Vec2, width float64) Vec2 {
	if n.handle == nil {
		n.content = Rect{}
		return Zero()
	}
	n.content = Rect{
		Position: Vec2{X: position.X + m.Margin, Y: position.Y - m.Margin},
		Size:     Vec2{X: width - m.Margin*2, Y: m.RowHeight},
	}
	n.handle.SetRect(n.content)
	return Vec2{X: width, Y: m.RowHeight + m.Margin*2}
}

func (n *Node) applyVertical(m Metrics, position Vec2, width float64) Vec2 {
	if len(n.children) == 0 {
		return Zero()
	}
	result := Vec2{X: width}
	for _, c := range n.children {
		size := c.ApplyLayout(m, position, width)
		position.Y -= size.Y
		result.Y += size.Y
	}
	return result
}

func (n *Node) applyHorizontal(m Metrics, position Vec2, width float64) Vec2 {
	if len(n.children) == 0 {
		return Zero()
	}
	totalColumns := float64(n.ColumnWeight())
	count := float64(len(n.children))

	var result Vec2
	for _, c := range n.children {
		slice := width / count
		if n.adjustWidth && totalColumns > 0 {
			slice = width * float64(c.ColumnWeight()) / totalColumns
		}

		size := c.ApplyLayout(m, position, slice)
		switch m.SizeCompare {
		case CompareArea:
			if result.X*result.Y < size.X*size.Y {
				result = size
			}
		case CompareTallest:
			result.Y = max(result.Y, size.Y)
		default:
			// 历史行为：候选面积取 width*width。
			if result.X*result.Y < size.X*size.X {
				result = size
			}
		}

		// 槽位预先分配，游标按槽宽而非子节点上报宽度前进。
		position.X += slice
	}
	if m.SizeCompare == CompareTallest && result.Y > 0 {
		result.X = width
	}
	return result
}

// Walk 先序遍历节点树，depth 从 0 开始；fn 返回 false 时不再深入该子树。
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.children {
		c.walk(fn, depth+1)
	}
}
