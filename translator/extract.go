package translator

import (
	"fmt"
	"sort"
	"strings"

	dpdf "github.com/dslipak/pdf"
	lpdf "github.com/ledongthuc/pdf"

	enginepdf "pdf-translator-web/pdf"
)

// textFrag 解析器输出的最小文本片段（基线坐标，自底向上）
type textFrag struct {
	text     string
	x, y, w  float64
	font     string
	fontSize float64
}

// Extractor 从PDF提取带位置的文本跨度
type Extractor struct {
	logger *SessionLogger
}

// NewExtractor 创建提取器，logger可为nil
func NewExtractor(logger *SessionLogger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract 提取所有页面，优先ledongthuc解析，整体失败时回退dslipak
func (e *Extractor) Extract(path string) ([]Page, error) {
	dims, err := enginepdf.PageDimensions(path)
	if err != nil {
		return nil, fmt.Errorf("读取页面尺寸失败: %w", err)
	}

	pages, err := e.extractPrimary(path, dims)
	if err != nil {
		e.logger.Warn("主解析器失败，回退备用解析器", map[string]interface{}{
			"file":  path,
			"error": err.Error(),
		})
		pages, err = e.extractFallback(path, dims)
		if err != nil {
			return nil, fmt.Errorf("文本提取失败: %w", err)
		}
	}
	return pages, nil
}

func (e *Extractor) extractPrimary(path string, dims []enginepdf.PageDim) (pages []Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("解析器异常: %v", r)
		}
	}()

	f, reader, err := lpdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开PDF失败: %w", err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		dim := pageDim(dims, i)
		frags := e.readPagePrimary(reader, i)
		pages = append(pages, buildPage(i, dim, frags))
	}
	return pages, nil
}

// readPagePrimary 单页读取，页级panic不影响其他页
func (e *Extractor) readPagePrimary(reader *lpdf.Reader, pageNum int) (frags []textFrag) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("页面内容解析异常，跳过该页文本", map[string]interface{}{
				"page":  pageNum,
				"error": fmt.Sprintf("%v", r),
			})
			frags = nil
		}
	}()

	p := reader.Page(pageNum)
	if p.V.IsNull() {
		return nil
	}
	for _, t := range p.Content().Text {
		if t.S == "" {
			continue
		}
		frags = append(frags, textFrag{
			text:     t.S,
			x:        t.X,
			y:        t.Y,
			w:        t.W,
			font:     t.Font,
			fontSize: t.FontSize,
		})
	}
	return frags
}

func (e *Extractor) extractFallback(path string, dims []enginepdf.PageDim) (pages []Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("备用解析器异常: %v", r)
		}
	}()

	reader, err := dpdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("备用解析器打开PDF失败: %w", err)
	}

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		dim := pageDim(dims, i)
		var frags []textFrag
		func() {
			defer func() { recover() }()
			p := reader.Page(i)
			if p.V.IsNull() {
				return
			}
			for _, t := range p.Content().Text {
				if t.S == "" {
					continue
				}
				frags = append(frags, textFrag{
					text:     t.S,
					x:        t.X,
					y:        t.Y,
					w:        t.W,
					font:     t.Font,
					fontSize: t.FontSize,
				})
			}
		}()
		pages = append(pages, buildPage(i, dim, frags))
	}
	return pages, nil
}

func pageDim(dims []enginepdf.PageDim, pageNum int) enginepdf.PageDim {
	if pageNum-1 < len(dims) {
		return dims[pageNum-1]
	}
	// Letter尺寸兜底
	return enginepdf.PageDim{Width: 612, Height: 792}
}

// buildPage 把片段聚成行、合并跨度、再按竖向间距切块
// 解析器基线坐标自底向上，这里统一翻转为自顶向下。
func buildPage(number int, dim enginepdf.PageDim, frags []textFrag) Page {
	page := Page{
		Number: number,
		Width:  dim.Width,
		Height: dim.Height,
	}
	if len(frags) == 0 {
		return page
	}

	lines := clusterLines(frags)
	built := make([]Line, 0, len(lines))
	for _, lf := range lines {
		spans := mergeFragments(lf, dim.Height)
		if len(spans) > 0 {
			built = append(built, Line{Spans: spans})
		}
	}
	page.Blocks = splitBlocks(built)
	return page
}

// clusterLines 按基线Y聚行，容差取半个字号
func clusterLines(frags []textFrag) [][]textFrag {
	sorted := make([]textFrag, len(frags))
	copy(sorted, frags)
	// 先自上而下（基线Y从大到小），同行内从左到右
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].y != sorted[j].y {
			return sorted[i].y > sorted[j].y
		}
		return sorted[i].x < sorted[j].x
	})

	var lines [][]textFrag
	for _, f := range sorted {
		placed := false
		if n := len(lines); n > 0 {
			last := lines[n-1]
			ref := last[0]
			tol := ref.fontSize * 0.5
			if tol < 2 {
				tol = 2
			}
			if abs(f.y-ref.y) <= tol {
				lines[n-1] = append(last, f)
				placed = true
			}
		}
		if !placed {
			lines = append(lines, []textFrag{f})
		}
	}
	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].x < line[j].x })
	}
	return lines
}

// mergeFragments 同行内把字符级片段合并为跨度
// 同字体同字号且间距小的片段归入同一跨度，间距近似空格宽时补空格。
func mergeFragments(frags []textFrag, pageHeight float64) []Span {
	var spans []Span
	var cur *Span
	var curEnd float64
	var curFont string
	var text strings.Builder

	flush := func() {
		if cur != nil {
			cur.Text = text.String()
			if strings.TrimSpace(cur.Text) != "" {
				spans = append(spans, *cur)
			}
			cur = nil
			text.Reset()
		}
	}

	for _, f := range frags {
		size := f.fontSize
		if size <= 0 {
			size = 10
		}
		bbox := Rect{
			X0: f.x,
			Y0: pageHeight - f.y - size,
			X1: f.x + f.w,
			Y1: pageHeight - f.y,
		}
		gap := f.x - curEnd
		sameStyle := cur != nil && curFont == f.font && abs(cur.Size-size) < 0.1

		switch {
		case sameStyle && gap <= size*0.25:
			text.WriteString(f.text)
			cur.BBox = cur.BBox.Union(bbox)
		case sameStyle && gap <= size*1.0:
			text.WriteString(" ")
			text.WriteString(f.text)
			cur.BBox = cur.BBox.Union(bbox)
		default:
			flush()
			cur = &Span{
				BBox:  bbox,
				Size:  size,
				Color: 0,
				Flags: fontFlags(f.font),
			}
			curFont = f.font
			text.WriteString(f.text)
		}
		curEnd = f.x + f.w
	}
	flush()
	return spans
}

// fontFlags 从字体名推断样式标志
func fontFlags(font string) int {
	flags := 0
	lower := strings.ToLower(font)
	if strings.Contains(lower, "bold") {
		flags |= FlagBold
	}
	if strings.Contains(lower, "italic") || strings.Contains(lower, "oblique") {
		flags |= FlagItalic
	}
	if strings.Contains(lower, "mono") || strings.Contains(lower, "courier") {
		flags |= FlagMono
	}
	return flags
}

// splitBlocks 行间竖向空隙明显大于行高时另起新块
func splitBlocks(lines []Line) []Block {
	if len(lines) == 0 {
		return nil
	}
	var blocks []Block
	cur := Block{Lines: []Line{lines[0]}}

	for i := 1; i < len(lines); i++ {
		prev := lineBBox(cur.Lines[len(cur.Lines)-1])
		next := lineBBox(lines[i])
		gap := next.Y0 - prev.Y1
		height := prev.Height()
		if next.Height() > height {
			height = next.Height()
		}
		if height <= 0 {
			height = 10
		}
		if gap > height*1.5 {
			blocks = append(blocks, cur)
			cur = Block{}
		}
		cur.Lines = append(cur.Lines, lines[i])
	}
	blocks = append(blocks, cur)
	return blocks
}

func lineBBox(line Line) Rect {
	var r Rect
	for i, s := range line.Spans {
		if i == 0 {
			r = s.BBox
		} else {
			r = r.Union(s.BBox)
		}
	}
	return r
}
