package pdf

import (
	"fmt"
	"strings"

	"github.com/signintech/gopdf"
)

// RGB 8位颜色分量
type RGB struct {
	R uint8
	G uint8
	B uint8
}

var (
	White = RGB{255, 255, 255}
	Black = RGB{0, 0, 0}
)

// Align 简单排版的对齐方式
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
	AlignJustify
)

// Rect 页面上的放置区域（左上原点）
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// TextStyle 富排版样式块
type TextStyle struct {
	FontFamily  string
	FontSize    float64
	Color       RGB
	Align       Align
	LineHeight  float64 // 行高系数，零值按1.2处理
	WordSpacing float64 // 两端对齐时的额外词距提示（字号的倍数）
}

// PageEngine 外部PDF引擎边界
// 覆盖了管线消费的全部绘制与持久化操作，便于用测试替身隔离核心逻辑。
type PageEngine interface {
	// EmbedFont 向文档嵌入TTF字体，整个文档只做一次
	EmbedFont(family, fontPath string) error
	// BeginPage 切换到第pageNum页（从1开始）并导入原始页面内容
	BeginPage(pageNum int) error
	// PageSize 返回第pageNum页的宽高（pt）
	PageSize(pageNum int) (float64, float64, error)
	// PaintRect 用指定颜色填充矩形（擦除原始字形）
	PaintRect(box Rect, color RGB) error
	// PlaceTextRich 富排版放置：自动换行、对齐、允许缩放到scaleFloor
	PlaceTextRich(box Rect, text string, style TextStyle, scaleFloor float64) error
	// PlaceTextSimple 简单放置，返回状态码：>=0成功，负值表示放不下
	PlaceTextSimple(box Rect, text, family string, size float64, color RGB, align Align) int
	// Save 持久化输出文件
	Save(outputPath string) error
}

// OverlayEngine 基于gopdf的覆盖式页面引擎
// 逐页把原始页面导入为模板铺底，再在其上绘制擦除矩形和译文，
// 原页面的图片、矢量图形与页面结构保持不变。
type OverlayEngine struct {
	gp         *gopdf.GoPdf
	sourcePath string
	dims       []PageDim
}

// NewOverlayEngine 打开源PDF并准备覆盖绘制
func NewOverlayEngine(sourcePath string) (*OverlayEngine, error) {
	dims, err := PageDimensions(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("读取页面尺寸失败: %w", err)
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("PDF不含任何页面: %s", sourcePath)
	}

	gp := &gopdf.GoPdf{}
	gp.Start(gopdf.Config{PageSize: gopdf.Rect{W: dims[0].Width, H: dims[0].Height}})

	return &OverlayEngine{
		gp:         gp,
		sourcePath: sourcePath,
		dims:       dims,
	}, nil
}

// PageCount 页数
func (e *OverlayEngine) PageCount() int {
	return len(e.dims)
}

// EmbedFont 嵌入TTF字体
func (e *OverlayEngine) EmbedFont(family, fontPath string) error {
	if err := e.gp.AddTTFFont(family, fontPath); err != nil {
		return fmt.Errorf("嵌入字体失败 (%s): %w", fontPath, err)
	}
	return nil
}

// BeginPage 新建一页并把原始页面导入铺底
// gofpdi在遇到不支持的PDF时会panic，这里转换为错误返回。
func (e *OverlayEngine) BeginPage(pageNum int) (err error) {
	if pageNum < 1 || pageNum > len(e.dims) {
		return fmt.Errorf("页码越界: %d", pageNum)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("导入第%d页失败: %v", pageNum, r)
		}
	}()

	dim := e.dims[pageNum-1]
	e.gp.AddPageWithOption(gopdf.PageOption{
		PageSize: &gopdf.Rect{W: dim.Width, H: dim.Height},
	})
	tpl := e.gp.ImportPage(e.sourcePath, pageNum, "/MediaBox")
	e.gp.UseImportedTemplate(tpl, 0, 0, dim.Width, dim.Height)
	return nil
}

// PageSize 返回页面尺寸
func (e *OverlayEngine) PageSize(pageNum int) (float64, float64, error) {
	if pageNum < 1 || pageNum > len(e.dims) {
		return 0, 0, fmt.Errorf("页码越界: %d", pageNum)
	}
	dim := e.dims[pageNum-1]
	return dim.Width, dim.Height, nil
}

// PaintRect 填充矩形
func (e *OverlayEngine) PaintRect(box Rect, color RGB) error {
	e.gp.SetFillColor(color.R, color.G, color.B)
	e.gp.RectFromUpperLeftWithStyle(box.X, box.Y, box.W, box.H, "F")
	return nil
}

// PlaceTextRich 富排版放置
// 自己做按词换行与对齐，两端对齐通过分配行内剩余空间实现；
// 内容放不下时整体缩放重排，缩到scaleFloor仍放不下则报错。
func (e *OverlayEngine) PlaceTextRich(box Rect, text string, style TextStyle, scaleFloor float64) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	lineHeight := style.LineHeight
	if lineHeight <= 0 {
		lineHeight = 1.2
	}
	if scaleFloor <= 0 || scaleFloor > 1 {
		scaleFloor = 0.4
	}

	words := strings.Fields(text)
	for scale := 1.0; scale >= scaleFloor; scale *= 0.95 {
		size := style.FontSize * scale
		if err := e.gp.SetFont(style.FontFamily, "", size); err != nil {
			return fmt.Errorf("设置字体失败: %w", err)
		}
		lines, err := e.wrapWords(words, box.W)
		if err != nil {
			return err
		}
		totalHeight := float64(len(lines)) * size * lineHeight
		if totalHeight <= box.H {
			e.drawLines(box, lines, size, lineHeight, style)
			return nil
		}
	}
	return fmt.Errorf("富排版放置失败：内容在缩放下限内仍放不下")
}

// wrapLine 已换行的单行及其测量宽度
type wrapLine struct {
	words []string
	width float64
}

// wrapWords 按词贪心换行，超宽的单词独占一行
func (e *OverlayEngine) wrapWords(words []string, maxWidth float64) ([]wrapLine, error) {
	spaceWidth, err := e.gp.MeasureTextWidth(" ")
	if err != nil {
		return nil, fmt.Errorf("测量文本失败: %w", err)
	}

	var lines []wrapLine
	var cur wrapLine
	for _, word := range words {
		w, err := e.gp.MeasureTextWidth(word)
		if err != nil {
			return nil, fmt.Errorf("测量文本失败: %w", err)
		}
		need := w
		if len(cur.words) > 0 {
			need += spaceWidth
		}
		if len(cur.words) > 0 && cur.width+need > maxWidth {
			lines = append(lines, cur)
			cur = wrapLine{}
			need = w
		}
		cur.words = append(cur.words, word)
		cur.width += need
	}
	if len(cur.words) > 0 {
		lines = append(lines, cur)
	}
	return lines, nil
}

// drawLines 绘制已换行的文本
func (e *OverlayEngine) drawLines(box Rect, lines []wrapLine, size, lineHeight float64, style TextStyle) {
	e.gp.SetTextColor(style.Color.R, style.Color.G, style.Color.B)
	spaceWidth, _ := e.gp.MeasureTextWidth(" ")

	y := box.Y
	for i, line := range lines {
		lastLine := i == len(lines)-1
		switch {
		case style.Align == AlignJustify && !lastLine && len(line.words) > 1:
			// 两端对齐：把剩余空间加上词距提示摊到词间
			extra := (box.W - line.width) / float64(len(line.words)-1)
			if extra < 0 {
				extra = 0
			}
			gap := spaceWidth + extra + style.WordSpacing*size
			x := box.X
			for _, word := range line.words {
				e.gp.SetXY(x, y)
				e.gp.Cell(nil, word)
				w, _ := e.gp.MeasureTextWidth(word)
				x += w + gap
			}
		default:
			x := box.X
			switch style.Align {
			case AlignCenter:
				x = box.X + (box.W-line.width)/2
			case AlignRight:
				x = box.X + box.W - line.width
			}
			if x < box.X {
				x = box.X
			}
			e.gp.SetXY(x, y)
			e.gp.Cell(nil, strings.Join(line.words, " "))
		}
		y += size * lineHeight
	}
}

// PlaceTextSimple 简单放置
// 只支持左/中/右对齐，不缩放不重排；放不下返回负的状态码，
// 与富排版的逐级回退配合使用。
func (e *OverlayEngine) PlaceTextSimple(box Rect, text, family string, size float64, color RGB, align Align) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	if align == AlignJustify {
		align = AlignLeft
	}
	if err := e.gp.SetFont(family, "", size); err != nil {
		return -2
	}
	lines, err := e.wrapWords(strings.Fields(text), box.W)
	if err != nil {
		return -2
	}
	totalHeight := float64(len(lines)) * size * 1.2
	if totalHeight > box.H {
		return -1
	}

	e.drawLines(box, lines, size, 1.2, TextStyle{
		FontFamily: family,
		FontSize:   size,
		Color:      color,
		Align:      align,
	})
	return len(lines)
}

// Save 写出PDF文件
func (e *OverlayEngine) Save(outputPath string) error {
	if err := e.gp.WritePdf(outputPath); err != nil {
		return fmt.Errorf("保存PDF失败: %w", err)
	}
	return nil
}
