package layout

// 坐标约定：原点在左上角，x 向右增长，y 向下为负。

// Vec2 是二维向量，既用于位置也用于尺寸。
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Zero 返回零向量。
func Zero() Vec2 { return Vec2{} }

// Add 返回两个向量之和。
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

// IsZero 判断是否为零向量。
func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Rect 是布局阶段写回给控件的矩形：左上角位置与尺寸。
type Rect struct {
	Position Vec2 `json:"position"`
	Size     Vec2 `json:"size"`
}

// Handle 是控件暴露给布局阶段的可写矩形。
type Handle interface {
	SetRect(r Rect)
}
