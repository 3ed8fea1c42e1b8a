package translator

import (
	"regexp"
	"strings"
)

// Rect 页面坐标矩形（原点在左上角，Y轴向下）
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width 矩形宽度
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height 矩形高度
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// IsEmpty 判断矩形是否为空
func (r Rect) IsEmpty() bool {
	return r.X1 <= r.X0 || r.Y1 <= r.Y0
}

// Union 返回两个矩形的并集
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	u := r
	if o.X0 < u.X0 {
		u.X0 = o.X0
	}
	if o.Y0 < u.Y0 {
		u.Y0 = o.Y0
	}
	if o.X1 > u.X1 {
		u.X1 = o.X1
	}
	if o.Y1 > u.Y1 {
		u.Y1 = o.Y1
	}
	return u
}

// Contains 判断是否完全包含另一个矩形
func (r Rect) Contains(o Rect) bool {
	return o.X0 >= r.X0 && o.Y0 >= r.Y0 && o.X1 <= r.X1 && o.Y1 <= r.Y1
}

// 样式位标记（与提取阶段保持一致）
const (
	FlagBold   = 1 << 0 // 粗体
	FlagItalic = 1 << 1 // 斜体
	FlagMono   = 1 << 2 // 等宽
)

// Span 提取出的最小带样式文本片段，提取后不可变
type Span struct {
	Text  string  `json:"text"`
	BBox  Rect    `json:"bbox"`
	Size  float64 `json:"size"`
	Color int     `json:"color"` // 打包的RGB整数 0xRRGGBB
	Flags int     `json:"flags"`
}

// Line 共享同一文本基线的Span序列
type Line struct {
	Spans []Span `json:"spans"`
}

// Block 源引擎报告的结构化文本容器（类似段落）
type Block struct {
	Lines []Line `json:"lines"`
}

// Page 单页提取结果
type Page struct {
	Number int     `json:"number"` // 从1开始
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Blocks []Block `json:"blocks"`
}

// GroupKind 文本组类别
type GroupKind string

const (
	KindParagraph GroupKind = "paragraph"
	KindSubItem   GroupKind = "sub-item"
	KindHeading   GroupKind = "heading"
)

// TextGroup 重建出的语义文本组，作为翻译和渲染的最小单位
type TextGroup struct {
	Spans     []Span    `json:"spans"`
	BBox      Rect      `json:"bbox"`
	AvgSize   float64   `json:"avg_size"`
	Color     int       `json:"color"`
	Flags     int       `json:"flags"`
	Kind      GroupKind `json:"kind"`
	IsHeading bool      `json:"is_heading"`
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeWhitespace 折叠连续空白为单个空格并去掉首尾空白
func NormalizeWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
}

// CombinedText 返回组内所有Span拼接并规整空白后的文本
func (g *TextGroup) CombinedText() string {
	parts := make([]string, 0, len(g.Spans))
	for _, span := range g.Spans {
		parts = append(parts, strings.TrimSpace(span.Text))
	}
	return NormalizeWhitespace(strings.Join(parts, " "))
}

// LastSpan 返回组内最后一个Span，空组返回nil
func (g *TextGroup) LastSpan() *Span {
	if len(g.Spans) == 0 {
		return nil
	}
	return &g.Spans[len(g.Spans)-1]
}

// Alignment 文本对齐方式，按组推导
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignJustify
)

// String 返回CSS风格的对齐名称
func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustify:
		return "justify"
	default:
		return "left"
	}
}
