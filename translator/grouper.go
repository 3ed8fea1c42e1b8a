package translator

import (
	"sort"
	"strings"
)

// GrouperConfig 分组器参数
type GrouperConfig struct {
	VerticalWeight      float64 // 垂直间距权重（行高倍数）
	HorizontalThreshold float64 // 水平跳跃阈值（pt）
	IndentThreshold     float64 // 缩进阈值（pt）
	HeadingSizeFactor   float64 // 标题字号因子（相对中位数）
	BasicSizeDiff       float64 // 基础字号相对差阈值
}

// DefaultGrouperConfig 返回默认分组参数
func DefaultGrouperConfig() GrouperConfig {
	return GrouperConfig{
		VerticalWeight:      1.5,
		HorizontalThreshold: 15,
		IndentThreshold:     15,
		HeadingSizeFactor:   1.2,
		BasicSizeDiff:       0.2,
	}
}

// Grouper 文本分组器
// 把提取出的 块->行->Span 树重建为语义文本组（段落、子项、标题）。
// 实现为有序行流上的贪心状态机：一个可变的"当前组"累加器
// 加上一个纯函数的边界判定，便于独立测试。
type Grouper struct {
	cfg GrouperConfig
}

// NewGrouper 创建默认参数的分组器
func NewGrouper() *Grouper {
	return NewGrouperWithConfig(DefaultGrouperConfig())
}

// NewGrouperWithConfig 创建指定参数的分组器
func NewGrouperWithConfig(cfg GrouperConfig) *Grouper {
	return &Grouper{cfg: cfg}
}

// lineStats 单行聚合统计
type lineStats struct {
	spans   []Span
	left    float64 // 最小x0
	right   float64 // 最大x1
	midY    float64 // y0均值
	height  float64 // 高度均值
	avgSize float64 // 字号均值
}

// computeLineStats 计算一行的聚合统计，忽略空白Span；整行为空时返回false
func computeLineStats(line Line) (lineStats, bool) {
	var st lineStats
	for _, span := range line.Spans {
		if strings.TrimSpace(span.Text) == "" {
			continue
		}
		st.spans = append(st.spans, span)
	}
	if len(st.spans) == 0 {
		return st, false
	}

	st.left = st.spans[0].BBox.X0
	st.right = st.spans[0].BBox.X1
	var sumY, sumH, sumSize float64
	for _, span := range st.spans {
		if span.BBox.X0 < st.left {
			st.left = span.BBox.X0
		}
		if span.BBox.X1 > st.right {
			st.right = span.BBox.X1
		}
		sumY += span.BBox.Y0
		sumH += span.BBox.Height()
		sumSize += span.Size
	}
	n := float64(len(st.spans))
	st.midY = sumY / n
	st.height = sumH / n
	st.avgSize = sumSize / n
	return st, true
}

// median 中位数（偶数个取中间两数均值）
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// headingThreshold 计算整页的标题字号阈值（所有非空Span字号中位数 × 因子）
func (g *Grouper) headingThreshold(blocks []Block) float64 {
	var sizes []float64
	for _, block := range blocks {
		for _, line := range block.Lines {
			for _, span := range line.Spans {
				if strings.TrimSpace(span.Text) != "" {
					sizes = append(sizes, span.Size)
				}
			}
		}
	}
	return median(sizes) * g.cfg.HeadingSizeFactor
}

// Group 把一页的块序列重建为文本组序列
// 组永远不会跨块合并；输出顺序即渲染顺序（块内行序、块间文档序）。
func (g *Grouper) Group(blocks []Block) []*TextGroup {
	threshold := g.headingThreshold(blocks)

	var groups []*TextGroup
	for _, block := range blocks {
		var lines []lineStats
		for _, line := range block.Lines {
			if st, ok := computeLineStats(line); ok {
				lines = append(lines, st)
			}
		}
		if len(lines) == 0 {
			continue
		}

		// 块的基准左边距：各行左边缘的中位数
		lefts := make([]float64, len(lines))
		for i, ln := range lines {
			lefts[i] = ln.left
		}
		baselineLeft := median(lefts)

		var current *TextGroup
		var prevMidY float64
		hasPrev := false

		for _, ln := range lines {
			isHeading := ln.avgSize >= threshold
			indent := ln.left-baselineLeft > g.cfg.IndentThreshold

			if current == nil || g.isBoundary(current, ln, prevMidY, hasPrev, isHeading, indent) {
				if current != nil {
					groups = append(groups, current)
				}
				current = newGroup(isHeading, indent)
			}

			for _, span := range ln.spans {
				mergeSpan(current, span)
			}
			prevMidY = ln.midY
			hasPrev = true
		}
		if current != nil {
			groups = append(groups, current)
		}
	}
	return groups
}

// isBoundary 纯边界判定：决定当前行是否结束正在累积的组
// 各规则独立判定、按序生效，任何一条成立都会开新组；
// 标题连续规则是例外，它会强制续组。
func (g *Grouper) isBoundary(current *TextGroup, ln lineStats, prevMidY float64, hasPrev bool, isHeading, indent bool) bool {
	boundary := false

	// 大的垂直跳跃结束当前组
	if hasPrev && ln.midY-prevMidY > ln.height*g.cfg.VerticalWeight {
		boundary = true
	}
	// 起点远在当前组右侧的水平跳跃
	if ln.left > current.BBox.X1+g.cfg.HorizontalThreshold {
		boundary = true
	}
	// 段落后出现缩进子项必然断组
	if indent && current.Kind == KindParagraph {
		boundary = true
	}
	// 标题贪心合并：当前组是标题且本行也是标题字号，强制续组
	if current.IsHeading && isHeading {
		boundary = false
	}
	// 样式差异兜底
	if g.styleMismatch(current, ln, prevMidY, hasPrev) {
		boundary = true
	}
	return boundary
}

// styleMismatch 样式差异兜底判定
// 本行首个Span的字号与组内均值相对差超限，且垂直邻近与水平衔接
// 两项测试都不通过，且颜色或样式位也不一致时断组。
func (g *Grouper) styleMismatch(current *TextGroup, ln lineStats, prevMidY float64, hasPrev bool) bool {
	first := ln.spans[0]

	sizeDiffers := false
	if current.AvgSize > 0 {
		rel := (first.Size - current.AvgSize) / current.AvgSize
		if rel < 0 {
			rel = -rel
		}
		sizeDiffers = rel > g.cfg.BasicSizeDiff
	}
	if !sizeDiffers {
		return false
	}

	// 垂直邻近测试
	vOK := true
	if hasPrev {
		gap := ln.midY - prevMidY
		if gap < 0 {
			gap = -gap
		}
		vOK = gap < ln.height*g.cfg.VerticalWeight
	}
	// 水平衔接测试：行首与组右边缘的距离
	hGap := first.BBox.X0 - current.BBox.X1
	if hGap < 0 {
		hGap = -hGap
	}
	hOK := hGap < g.cfg.HorizontalThreshold
	if vOK || hOK {
		return false
	}

	return first.Color != current.Color || first.Flags != current.Flags
}

// newGroup 按首行特征创建空组并分类
func newGroup(isHeading, indent bool) *TextGroup {
	kind := KindParagraph
	if isHeading {
		kind = KindHeading
	} else if indent {
		kind = KindSubItem
	}
	return &TextGroup{
		Kind:      kind,
		IsHeading: isHeading,
	}
}

// mergeSpan 把Span并入当前组
// 字号用两点均值平滑（新Span的边际影响逐步衰减），
// 颜色与样式位固定为首个Span的取值，包围盒取并集、单调不收缩。
func mergeSpan(group *TextGroup, span Span) {
	if len(group.Spans) == 0 {
		group.AvgSize = span.Size
		group.Color = span.Color
		group.Flags = span.Flags
		group.BBox = span.BBox
	} else {
		group.AvgSize = (group.AvgSize + span.Size) / 2
		group.BBox = group.BBox.Union(span.BBox)
	}
	group.Spans = append(group.Spans, span)
}
