package translator

import (
	"testing"

	enginepdf "pdf-translator-web/pdf"
)

// TestClusterLines 测试按基线Y聚行
func TestClusterLines(t *testing.T) {
	frags := []textFrag{
		{text: "下", x: 50, y: 100, w: 20, fontSize: 12},
		{text: "上A", x: 50, y: 700, w: 20, fontSize: 12},
		{text: "上B", x: 80, y: 701, w: 20, fontSize: 12}, // 与上A基线差1pt，同一行
		{text: "中", x: 50, y: 400, w: 20, fontSize: 12},
	}

	lines := clusterLines(frags)
	if len(lines) != 3 {
		t.Fatalf("期望3行，实际%d行", len(lines))
	}
	// 基线Y大的在前（页面上方）
	if lines[0][0].text != "上A" || lines[0][1].text != "上B" {
		t.Errorf("首行内容错误: %v", lines[0])
	}
	if lines[1][0].text != "中" || lines[2][0].text != "下" {
		t.Errorf("行序错误")
	}
	t.Logf("✓ 3行聚类，自上而下，行内从左到右")
}

// TestMergeFragmentsJoin 测试字符片段合并为跨度
func TestMergeFragmentsJoin(t *testing.T) {
	// 三个紧邻片段（间距<0.25字号）应合并为单个跨度
	frags := []textFrag{
		{text: "He", x: 50, y: 700, w: 12, font: "Helvetica", fontSize: 12},
		{text: "ll", x: 62, y: 700, w: 10, font: "Helvetica", fontSize: 12},
		{text: "o", x: 72.5, y: 700, w: 6, font: "Helvetica", fontSize: 12},
	}

	spans := mergeFragments(frags, 792)
	if len(spans) != 1 {
		t.Fatalf("期望1个跨度，实际%d个", len(spans))
	}
	if spans[0].Text != "Hello" {
		t.Errorf("合并文本错误: %q", spans[0].Text)
	}
	t.Logf("✓ 紧邻片段合并: %q", spans[0].Text)
}

// TestMergeFragmentsSpaceGap 测试词间距插入空格
func TestMergeFragmentsSpaceGap(t *testing.T) {
	frags := []textFrag{
		{text: "Hello", x: 50, y: 700, w: 30, font: "Helvetica", fontSize: 12},
		// 间距6pt（0.5字号），介于合并与断开之间 -> 补空格
		{text: "world", x: 86, y: 700, w: 30, font: "Helvetica", fontSize: 12},
	}

	spans := mergeFragments(frags, 792)
	if len(spans) != 1 {
		t.Fatalf("期望1个跨度，实际%d个", len(spans))
	}
	if spans[0].Text != "Hello world" {
		t.Errorf("应补空格: %q", spans[0].Text)
	}
	t.Logf("✓ 词间距补空格: %q", spans[0].Text)
}

// TestMergeFragmentsStyleBreak 测试字体变化断开跨度
func TestMergeFragmentsStyleBreak(t *testing.T) {
	frags := []textFrag{
		{text: "正文", x: 50, y: 700, w: 30, font: "Helvetica", fontSize: 12},
		{text: "粗体", x: 81, y: 700, w: 30, font: "Helvetica-Bold", fontSize: 12},
	}

	spans := mergeFragments(frags, 792)
	if len(spans) != 2 {
		t.Fatalf("字体变化应断开: 期望2个跨度，实际%d个", len(spans))
	}
	if spans[1].Flags&FlagBold == 0 {
		t.Error("第二个跨度应带粗体标志")
	}
	t.Logf("✓ 字体变化断开跨度并识别粗体")
}

// TestMergeFragmentsYFlip 测试坐标翻转为自顶向下
func TestMergeFragmentsYFlip(t *testing.T) {
	const pageHeight = 792.0
	frags := []textFrag{
		{text: "text", x: 50, y: 700, w: 30, font: "F", fontSize: 12},
	}

	spans := mergeFragments(frags, pageHeight)
	if len(spans) != 1 {
		t.Fatalf("期望1个跨度，实际%d个", len(spans))
	}
	bbox := spans[0].BBox
	// 基线700、字号12 -> 顶部 792-700-12=80，底部 792-700=92
	if bbox.Y0 != 80 || bbox.Y1 != 92 {
		t.Errorf("Y翻转错误: Y0=%.1f Y1=%.1f", bbox.Y0, bbox.Y1)
	}
	if bbox.Y1 <= bbox.Y0 {
		t.Error("自顶向下坐标应满足Y1>Y0")
	}
	t.Logf("✓ 基线y=700翻转为顶向下[%.0f, %.0f]", bbox.Y0, bbox.Y1)
}

// TestFontFlags 测试字体名样式推断
func TestFontFlags(t *testing.T) {
	cases := []struct {
		font string
		want int
	}{
		{"Helvetica", 0},
		{"Helvetica-Bold", FlagBold},
		{"Times-Italic", FlagItalic},
		{"Times-BoldItalic", FlagBold | FlagItalic},
		{"Courier", FlagMono},
		{"ABCDEF+ArialMT-Oblique", FlagItalic},
	}
	for _, tc := range cases {
		if got := fontFlags(tc.font); got != tc.want {
			t.Errorf("fontFlags(%q)=%d, 期望%d", tc.font, got, tc.want)
		}
	}
	t.Logf("✓ 字体名样式位推断")
}

// TestSplitBlocks 测试竖向大间隙分块
func TestSplitBlocks(t *testing.T) {
	mk := func(y0, y1 float64) Line {
		return Line{Spans: []Span{{
			Text: "x",
			BBox: Rect{X0: 50, Y0: y0, X1: 300, Y1: y1},
			Size: 12,
		}}}
	}
	lines := []Line{
		mk(100, 112),
		mk(114, 126), // 间隙2pt -> 同块
		mk(200, 212), // 间隙74pt -> 新块
		mk(214, 226),
	}

	blocks := splitBlocks(lines)
	if len(blocks) != 2 {
		t.Fatalf("期望2块，实际%d块", len(blocks))
	}
	if len(blocks[0].Lines) != 2 || len(blocks[1].Lines) != 2 {
		t.Errorf("分块行数错误: %d + %d", len(blocks[0].Lines), len(blocks[1].Lines))
	}
	t.Logf("✓ 大竖向间隙切分为2块")
}

// TestBuildPageEmpty 测试空页面
func TestBuildPageEmpty(t *testing.T) {
	page := buildPage(3, enginepdf.PageDim{Width: 612, Height: 792}, nil)
	if page.Number != 3 || page.Width != 612 || page.Height != 792 {
		t.Errorf("页面元数据错误: %+v", page)
	}
	if len(page.Blocks) != 0 {
		t.Errorf("空页面不应有块: %d", len(page.Blocks))
	}
	t.Logf("✓ 空页面保留编号与尺寸")
}

// TestBuildPagePipeline 测试片段到块的完整重建
func TestBuildPagePipeline(t *testing.T) {
	frags := []textFrag{
		// 第一段两行（基线自底向上：700在页面上方）
		{text: "First line", x: 50, y: 700, w: 100, font: "F", fontSize: 12},
		{text: "Second line", x: 50, y: 686, w: 100, font: "F", fontSize: 12},
		// 大间隙后的第二段
		{text: "Far below", x: 50, y: 500, w: 100, font: "F", fontSize: 12},
	}

	page := buildPage(1, enginepdf.PageDim{Width: 612, Height: 792}, frags)
	if len(page.Blocks) != 2 {
		t.Fatalf("期望2块，实际%d块", len(page.Blocks))
	}
	if len(page.Blocks[0].Lines) != 2 {
		t.Errorf("首块应有2行，实际%d行", len(page.Blocks[0].Lines))
	}
	if page.Blocks[0].Lines[0].Spans[0].Text != "First line" {
		t.Errorf("首行内容错误: %q", page.Blocks[0].Lines[0].Spans[0].Text)
	}
	t.Logf("✓ 片段 -> %d块（%d+%d行）", len(page.Blocks),
		len(page.Blocks[0].Lines), len(page.Blocks[1].Lines))
}
