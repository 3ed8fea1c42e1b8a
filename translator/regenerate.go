package translator

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// RegeneratedGroup 重建页面时的一个文本放置项
type RegeneratedGroup struct {
	Box   Rect
	Text  string
	Size  float64
	Color int
	Align Alignment
}

// RegeneratedPage 重建输出的一页
type RegeneratedPage struct {
	Width  float64
	Height float64
	Groups []RegeneratedGroup
}

// Regenerator 原页面无法作为模板导入时，用纯文本方式重建整份文档
// 只保留文本内容与位置，不保留原始图形背景。
type Regenerator struct {
	fontName string
	fontPath string
	minSize  float64
	logger   *SessionLogger
}

// NewRegenerator 创建重建器
func NewRegenerator(fontName, fontPath string, minSize float64, logger *SessionLogger) *Regenerator {
	if minSize <= 0 {
		minSize = DefaultMinFontSize
	}
	return &Regenerator{
		fontName: fontName,
		fontPath: fontPath,
		minSize:  minSize,
		logger:   logger,
	}
}

// Regenerate 把所有页面写为新PDF
func (g *Regenerator) Regenerate(pages []RegeneratedPage, outputPath string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("重建PDF异常: %v", r)
		}
	}()

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddUTF8Font(g.fontName, "", g.fontPath)
	if pdf.Err() {
		return fmt.Errorf("加载字体失败: %v", pdf.Error())
	}

	for i, page := range pages {
		w, h := page.Width, page.Height
		if w <= 0 || h <= 0 {
			w, h = 595.28, 841.89
		}
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})

		for _, group := range page.Groups {
			g.placeGroup(pdf, group)
		}
		if pdf.Err() {
			return fmt.Errorf("重建第%d页失败: %v", i+1, pdf.Error())
		}
	}

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("写出重建PDF失败: %w", err)
	}
	g.logger.Info("已用纯文本方式重建文档", map[string]interface{}{
		"pages":  len(pages),
		"output": outputPath,
	})
	return nil
}

func (g *Regenerator) placeGroup(pdf *gofpdf.Fpdf, group RegeneratedGroup) {
	text := NormalizeWhitespace(group.Text)
	if text == "" {
		return
	}
	size := group.Size
	if size < g.minSize {
		size = g.minSize
	}
	color := DisplayColor(group.Color)

	pdf.SetFont(g.fontName, "", size)
	pdf.SetTextColor(int(color.R), int(color.G), int(color.B))
	pdf.SetXY(group.Box.X0, group.Box.Y0)

	align := "L"
	switch group.Align {
	case AlignCenter:
		align = "C"
	case AlignRight:
		align = "R"
	}
	width := group.Box.Width()
	if width <= 0 {
		width = 100
	}
	pdf.MultiCell(width, size*defaultLineHeightMul, text, "", align, false)
}
