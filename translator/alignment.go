package translator

import "strings"

// 对齐判定默认参数
const (
	DefaultAlignTolerance = 60.0 // 对齐容差（pt）
	DefaultJustifyMinWord = 10   // 两端对齐的最小词数
)

// ClassifyAlignment 依据组内最后一个Span的几何位置推断对齐意图
// 末行贴边是最强的对齐信号（例如右对齐图注的末行紧贴右边距）。
// 规则按序判定：左边缘贴页左 -> 左对齐；右边缘贴页右 -> 右对齐；
// 中心贴页面中线 -> 居中；否则默认左对齐。
func ClassifyAlignment(lastSpanBBox Rect, pageWidth, tolerance float64) Alignment {
	xMin := lastSpanBBox.X0
	xMax := lastSpanBBox.X1
	center := xMin + lastSpanBBox.Width()/2

	switch {
	case abs(xMin) <= tolerance:
		return AlignLeft
	case abs(xMax-pageWidth) <= tolerance:
		return AlignRight
	case abs(center-pageWidth/2) <= tolerance:
		return AlignCenter
	default:
		return AlignLeft
	}
}

// IsLongTextBlock 判断文本是否足够长（词数达到阈值）
func IsLongTextBlock(text string, minWords int) bool {
	return len(strings.Fields(text)) >= minWords
}

// AlignmentForGroup 计算组的最终对齐方式
// 几何判定之后做一次提升：长段落在左对齐时默认用两端对齐排版。
func AlignmentForGroup(group *TextGroup, pageWidth float64) Alignment {
	last := group.LastSpan()
	if last == nil {
		return AlignLeft
	}
	alignment := ClassifyAlignment(last.BBox, pageWidth, DefaultAlignTolerance)
	if alignment == AlignLeft && IsLongTextBlock(group.CombinedText(), DefaultJustifyMinWord) {
		return AlignJustify
	}
	return alignment
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
