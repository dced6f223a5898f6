package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"slices"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/boxform/fonts"
	"github.com/ByLCY/boxform/layout"
	"github.com/ByLCY/boxform/renderer"
)

// 线宽与页边距均为 mm。
const (
	frameStrokeWidth = 0.2
	leafStrokeWidth  = 0.3
	pagePadding      = 5.0
	labelInset       = 1.0
	ellipsis         = "…"
)

var (
	verticalStroke   = canvas.Hex("#4a90d9")
	horizontalStroke = canvas.Hex("#d98c4a")
	leafStroke       = canvas.Hex("#333333")
	leafFill         = canvas.Hex("#eef2f7")
	labelColor       = canvas.Hex("#1e1e1e")
	transparent      = color.RGBA{0, 0, 0, 0}
)

// Renderer 通过 github.com/tdewolff/canvas 把布局快照画成 PDF 线框图。
type Renderer struct {
	font           fonts.Source
	title          string
	creator        string
	hideContainers bool

	fontMu     sync.Mutex
	fontLoaded bool
	family     *canvas.FontFamily
	fontErr    error
	faces      map[float64]*canvas.FontFace
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the canvas renderer.
type Options struct {
	// Font 为标签字体；为空或加载失败时只画矩形，不画标签。
	Font           fonts.Source
	Title          string
	Creator        string
	HideContainers bool
}

// NewRenderer creates a renderer with the given options.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{
		font:           opts.Font,
		title:          opts.Title,
		creator:        opts.Creator,
		hideContainers: opts.HideContainers,
		faces:          map[float64]*canvas.FontFace{},
	}
}

// Render renders the snapshot into a single-page PDF.
// 没有控件的表单输出与边界同尺寸的空白页。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	leaves := result.Leaves()

	widthPx := result.Bounds.X
	if widthPx <= 0 {
		widthPx = result.Root.Frame.Size.X
	}
	heightPx := max(result.Bounds.Y, result.Height())
	pageW := widthPx*layout.PxToMm + pagePadding*2
	pageH := heightPx*layout.PxToMm + pagePadding*2

	var buf bytes.Buffer
	writer := pdf.New(&buf, pageW, pageH, nil)
	writer.SetInfo(r.title, "layout preview", strings.Join(widgetKinds(leaves), ", "), "", r.creator)

	c := canvas.New(pageW, pageH)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 左上角为原点，y 向下
	ctx.SetFillColor(canvas.White)
	ctx.DrawPath(0, 0, canvas.Rectangle(pageW, pageH))

	if !r.hideContainers {
		r.drawContainers(ctx, result.Root)
	}
	for _, leaf := range leaves {
		r.drawLeaf(ctx, leaf, result.Metrics)
	}
	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// FontError 返回标签字体加载失败的原因；尚未渲染或加载成功时为 nil。
func (r *Renderer) FontError() error {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	return r.fontErr
}

// drawContainers 先序绘制容器边框，零尺寸容器跳过。
func (r *Renderer) drawContainers(ctx *canvas.Context, box layout.Box) {
	if box.Kind == layout.KindLeaf.String() {
		return
	}
	if !box.Frame.Size.IsZero() {
		stroke := verticalStroke
		if box.Kind == layout.KindHorizontal.String() {
			stroke = horizontalStroke
		}
		x, y, w, h := toPage(box.Frame)
		ctx.SetFillColor(transparent)
		ctx.SetStrokeColor(stroke)
		ctx.SetStrokeWidth(frameStrokeWidth)
		ctx.DrawPath(x, y, canvas.Rectangle(w, h))
	}
	for _, child := range box.Children {
		r.drawContainers(ctx, child)
	}
}

func (r *Renderer) drawLeaf(ctx *canvas.Context, leaf layout.Box, m layout.Metrics) {
	x, y, w, h := toPage(*leaf.Content)
	ctx.SetFillColor(leafFill)
	ctx.SetStrokeColor(leafStroke)
	ctx.SetStrokeWidth(leafStrokeWidth)
	ctx.DrawPath(x, y, canvas.Rectangle(w, h))

	text := labelText(leaf)
	if text == "" {
		return
	}
	sizePx := m.FontSize
	if leaf.Widget != nil && leaf.Widget.FontSize > 0 {
		sizePx = leaf.Widget.FontSize
	}
	// 字号不超过行高，避免标签溢出控件矩形。
	sizePx = min(sizePx, leaf.Content.Size.Y)
	face := r.face(sizePx * layout.PxToPt)
	if face == nil {
		return
	}
	text = fitText(text, w-labelInset*2, face.TextWidth)
	if text == "" {
		return
	}
	metrics := face.Metrics()
	baseline := y + (h-(metrics.Ascent+metrics.Descent))/2 + metrics.Ascent
	ctx.DrawText(x+labelInset, baseline, canvas.NewTextLine(face, text, canvas.Left))
}

// face 返回指定字号（pt）的字体面，字体不可用时返回 nil。
func (r *Renderer) face(sizePt float64) *canvas.FontFace {
	if sizePt <= 0 {
		return nil
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if !r.fontLoaded {
		r.fontLoaded = true
		r.family, r.fontErr = fonts.LoadFamily("boxform-label", r.font)
	}
	if r.family == nil {
		return nil
	}
	if f, ok := r.faces[sizePt]; ok {
		return f
	}
	f := r.family.Face(sizePt, labelColor, canvas.FontRegular, canvas.FontNormal)
	r.faces[sizePt] = f
	return f
}

// toPage 把布局矩形（px，y 向上为正）换算成页面坐标（mm，y 向下为正）。
func toPage(rc layout.Rect) (x, y, w, h float64) {
	x = pagePadding + rc.Position.X*layout.PxToMm
	y = pagePadding - rc.Position.Y*layout.PxToMm
	w = rc.Size.X * layout.PxToMm
	h = rc.Size.Y * layout.PxToMm
	return x, y, w, h
}

// labelText 优先使用标签，没有标签的控件（滑块、下拉框）显示名称，有取值时附在后面。
func labelText(leaf layout.Box) string {
	info := leaf.Widget
	if info == nil {
		return leaf.Name
	}
	text := info.Label
	if text == "" {
		text = info.Name
	}
	if info.Value != "" {
		if text == "" {
			return info.Value
		}
		text += " [" + info.Value + "]"
	}
	return strings.ReplaceAll(text, "\n", " ")
}

// fitText 截断超出 limit（mm）的文本并追加省略号；连省略号都放不下时返回空串。
func fitText(text string, limit float64, width func(string) float64) string {
	if limit <= 0 {
		return ""
	}
	if width(text) <= limit {
		return text
	}
	if width(ellipsis) > limit {
		return ""
	}
	var builder strings.Builder
	for _, r := range text {
		builder.WriteRune(r)
		if width(builder.String()+ellipsis) > limit {
			runes := []rune(builder.String())
			return string(runes[:len(runes)-1]) + ellipsis
		}
	}
	return builder.String()
}

func widgetKinds(leaves []layout.Box) []string {
	var kinds []string
	for _, leaf := range leaves {
		if leaf.Widget == nil || slices.Contains(kinds, leaf.Widget.Kind) {
			continue
		}
		kinds = append(kinds, leaf.Widget.Kind)
	}
	return kinds
}
