package translator

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"

	enginepdf "pdf-translator-web/pdf"
)

// RenderOutcome 单个文本组的渲染结果
type RenderOutcome int

const (
	RenderOK       RenderOutcome = iota // 富文本排版成功
	RenderDegraded                      // 回退为简单排版
	RenderFailed                        // 两种排版均失败
)

const (
	renderScaleFloor     = 0.4  // 富文本排版允许的最小缩放
	renderRetryShrink    = 0.95 // 简单排版每次重试的字号缩放
	renderMaxRetries     = 3
	justifyWordSpacing   = 0.1 // 两端对齐时的字间距系数
	nearWhiteThreshold   = 2.7 // RGB分量之和超过该值视为近白
	defaultLineHeightMul = 1.2
)

// Renderer 负责擦除原文并写入译文
type Renderer struct {
	engine      enginepdf.PageEngine
	measurer    TextMeasurer
	fontName    string
	minFontSize float64
	logger      *SessionLogger
}

// NewRenderer 创建渲染器
func NewRenderer(engine enginepdf.PageEngine, measurer TextMeasurer, fontName string, minFontSize float64, logger *SessionLogger) *Renderer {
	if minFontSize <= 0 {
		minFontSize = DefaultMinFontSize
	}
	return &Renderer{
		engine:      engine,
		measurer:    measurer,
		fontName:    fontName,
		minFontSize: minFontSize,
		logger:      logger,
	}
}

// DisplayColor 把打包的RGB整数转为输出颜色，近白色强制改黑避免白底不可见
func DisplayColor(packed int) enginepdf.RGB {
	r := uint8((packed >> 16) & 0xFF)
	g := uint8((packed >> 8) & 0xFF)
	b := uint8(packed & 0xFF)
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	if c.R+c.G+c.B > nearWhiteThreshold {
		return enginepdf.Black
	}
	return enginepdf.RGB{R: r, G: g, B: b}
}

func engineAlign(a Alignment) enginepdf.Align {
	switch a {
	case AlignCenter:
		return enginepdf.AlignCenter
	case AlignRight:
		return enginepdf.AlignRight
	case AlignJustify:
		return enginepdf.AlignJustify
	default:
		return enginepdf.AlignLeft
	}
}

// RenderGroup 擦除组所在区域并放置译文，返回渲染结果
func (r *Renderer) RenderGroup(group *TextGroup, text string, pageWidth float64) RenderOutcome {
	text = NormalizeWhitespace(text)
	if text == "" {
		return RenderOK
	}

	box := enginepdf.Rect{
		X: group.BBox.X0,
		Y: group.BBox.Y0,
		W: group.BBox.Width(),
		H: group.BBox.Height(),
	}
	if box.W <= 0 || box.H <= 0 {
		return RenderOK
	}

	// 先擦后写
	if err := r.engine.PaintRect(box, enginepdf.White); err != nil {
		r.logger.Warn("擦除原文区域失败", map[string]interface{}{"error": err.Error()})
	}

	align := AlignmentForGroup(group, pageWidth)
	size := FitFontSize(r.measurer, text, box.W, box.H, group.AvgSize, r.minFontSize)

	style := enginepdf.TextStyle{
		FontFamily: r.fontName,
		FontSize:   size,
		Color:      DisplayColor(group.Color),
		Align:      engineAlign(align),
		LineHeight: defaultLineHeightMul,
	}
	if align == AlignJustify {
		style.WordSpacing = justifyWordSpacing
	}

	if err := r.engine.PlaceTextRich(box, text, style, renderScaleFloor); err == nil {
		return RenderOK
	} else {
		r.logger.Warn("富文本排版失败，回退简单排版", map[string]interface{}{
			"error": err.Error(),
			"text":  truncateForLog(text),
		})
	}

	// 简单排版不支持两端对齐
	fallbackAlign := style.Align
	if fallbackAlign == enginepdf.AlignJustify {
		fallbackAlign = enginepdf.AlignLeft
	}
	fallbackSize := style.FontSize
	for attempt := 0; attempt < renderMaxRetries; attempt++ {
		status := r.engine.PlaceTextSimple(box, text, style.FontFamily, fallbackSize, style.Color, fallbackAlign)
		if status >= 0 {
			return RenderDegraded
		}
		if status == -2 {
			break
		}
		fallbackSize *= renderRetryShrink
		if fallbackSize < r.minFontSize {
			fallbackSize = r.minFontSize
		}
	}

	r.logger.Error("文本放置失败", nil, map[string]interface{}{"text": truncateForLog(text)})
	return RenderFailed
}

func truncateForLog(s string) string {
	runes := []rune(s)
	if len(runes) <= 40 {
		return s
	}
	return fmt.Sprintf("%s...", string(runes[:40]))
}
