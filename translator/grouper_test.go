package translator

import (
	"testing"
)

// makeSpan 构造测试Span
func makeSpan(text string, x0, y0, x1, y1, size float64) Span {
	return Span{
		Text: text,
		BBox: Rect{X0: x0, Y0: y0, X1: x1, Y1: y1},
		Size: size,
	}
}

// makeLine 单Span行
func makeLine(span Span) Line {
	return Line{Spans: []Span{span}}
}

// TestGroupDistantLinesSplit 测试垂直间距过大的两行会被分成两组
func TestGroupDistantLinesSplit(t *testing.T) {
	blocks := []Block{{
		Lines: []Line{
			makeLine(makeSpan("第一行文本", 50, 100, 300, 112, 12)),
			makeLine(makeSpan("第二行文本", 50, 350, 300, 362, 12)),
		},
	}}

	grouper := NewGrouper()
	groups := grouper.Group(blocks)

	t.Logf("输入2行（垂直间距250pt），输出%d组", len(groups))
	if len(groups) != 2 {
		t.Fatalf("期望2组，实际%d组", len(groups))
	}
	t.Logf("✓ 大垂直间距正确断组")
}

// TestGroupAdjacentLinesMerge 测试垂直相邻的行合并为一组
func TestGroupAdjacentLinesMerge(t *testing.T) {
	blocks := []Block{{
		Lines: []Line{
			makeLine(makeSpan("段落第一行", 50, 100, 300, 112, 12)),
			makeLine(makeSpan("段落第二行", 50, 114, 300, 126, 12)),
			makeLine(makeSpan("段落第三行", 50, 128, 280, 140, 12)),
		},
	}}

	grouper := NewGrouper()
	groups := grouper.Group(blocks)

	if len(groups) != 1 {
		t.Fatalf("期望1组，实际%d组", len(groups))
	}
	g := groups[0]
	t.Logf("✓ 相邻3行合并为一组: %q", g.CombinedText())

	if g.Kind != KindParagraph {
		t.Errorf("期望段落类别，实际%s", g.Kind)
	}
	if len(g.Spans) != 3 {
		t.Errorf("期望组内3个Span，实际%d", len(g.Spans))
	}
}

// TestGroupBBoxUnion 测试组包围盒覆盖全部成员Span
func TestGroupBBoxUnion(t *testing.T) {
	spans := []Span{
		makeSpan("甲", 50, 100, 120, 112, 12),
		makeSpan("乙", 125, 100, 200, 112, 12),
		makeSpan("丙", 50, 114, 310, 126, 12),
	}
	blocks := []Block{{
		Lines: []Line{
			{Spans: []Span{spans[0], spans[1]}},
			makeLine(spans[2]),
		},
	}}

	groups := NewGrouper().Group(blocks)
	if len(groups) != 1 {
		t.Fatalf("期望1组，实际%d组", len(groups))
	}

	bbox := groups[0].BBox
	t.Logf("组包围盒: (%.1f, %.1f, %.1f, %.1f)", bbox.X0, bbox.Y0, bbox.X1, bbox.Y1)
	for i, span := range spans {
		if !bbox.Contains(span.BBox) {
			t.Errorf("包围盒未包含第%d个Span: %+v", i, span.BBox)
		}
	}
	if bbox.X0 != 50 || bbox.Y0 != 100 || bbox.X1 != 310 || bbox.Y1 != 126 {
		t.Errorf("包围盒并集计算错误: %+v", bbox)
	}
	t.Logf("✓ 包围盒单调扩展，覆盖全部Span")
}

// TestGroupHeadingContinuity 测试标题字号的连续行强制合并
func TestGroupHeadingContinuity(t *testing.T) {
	// 正文字号10，标题字号14；字号中位数10，标题阈值12
	blocks := []Block{{
		Lines: []Line{
			makeLine(makeSpan("章节标题上半", 50, 100, 300, 114, 14)),
			// 垂直间距40pt，超过1.5倍行高，常规规则会断组
			makeLine(makeSpan("章节标题下半", 50, 140, 300, 154, 14)),
			makeLine(makeSpan("正文第一行", 50, 170, 300, 180, 10)),
			makeLine(makeSpan("正文第二行", 50, 182, 300, 192, 10)),
			makeLine(makeSpan("正文第三行", 50, 194, 300, 204, 10)),
		},
	}}

	groups := NewGrouper().Group(blocks)
	t.Logf("输出%d组", len(groups))
	if len(groups) != 2 {
		t.Fatalf("期望2组（标题+正文），实际%d组", len(groups))
	}

	if !groups[0].IsHeading || groups[0].Kind != KindHeading {
		t.Errorf("第一组应为标题: kind=%s heading=%v", groups[0].Kind, groups[0].IsHeading)
	}
	if len(groups[0].Spans) != 2 {
		t.Errorf("标题组应合并2行，实际%d个Span", len(groups[0].Spans))
	}
	if groups[1].IsHeading {
		t.Error("正文组不应标记为标题")
	}
	t.Logf("✓ 标题连续行强制合并: %q", groups[0].CombinedText())
}

// TestGroupIndentedSubItem 测试段落后的缩进行另起子项组
func TestGroupIndentedSubItem(t *testing.T) {
	blocks := []Block{{
		Lines: []Line{
			makeLine(makeSpan("段落行一", 50, 100, 300, 112, 12)),
			makeLine(makeSpan("段落行二", 50, 114, 300, 126, 12)),
			// 缩进30pt，超过缩进阈值
			makeLine(makeSpan("缩进列表项", 80, 128, 300, 140, 12)),
		},
	}}

	groups := NewGrouper().Group(blocks)
	if len(groups) != 2 {
		t.Fatalf("期望2组，实际%d组", len(groups))
	}
	if groups[1].Kind != KindSubItem {
		t.Errorf("缩进行应分类为子项，实际%s", groups[1].Kind)
	}
	t.Logf("✓ 段落后缩进行正确分出子项组")
}

// TestGroupNeverCrossesBlocks 测试组不跨块合并
func TestGroupNeverCrossesBlocks(t *testing.T) {
	// 两个块的行垂直紧邻，但分属不同块
	blocks := []Block{
		{Lines: []Line{makeLine(makeSpan("块一内容", 50, 100, 300, 112, 12))}},
		{Lines: []Line{makeLine(makeSpan("块二内容", 50, 114, 300, 126, 12))}},
	}

	groups := NewGrouper().Group(blocks)
	if len(groups) != 2 {
		t.Fatalf("跨块不应合并：期望2组，实际%d组", len(groups))
	}
	t.Logf("✓ 组边界不跨越块边界")
}

// TestGroupCountBounds 测试组数量的上下界
func TestGroupCountBounds(t *testing.T) {
	blocks := []Block{{
		Lines: []Line{
			makeLine(makeSpan("行一", 50, 100, 200, 112, 12)),
			makeLine(makeSpan("行二", 50, 114, 200, 126, 12)),
			makeLine(makeSpan("行三", 50, 300, 200, 312, 12)),
			makeLine(makeSpan("行四", 50, 314, 200, 326, 12)),
		},
	}}

	groups := NewGrouper().Group(blocks)
	lineCount := 4
	if len(groups) < 1 {
		t.Fatal("非空块至少产生1组")
	}
	if len(groups) > lineCount {
		t.Fatalf("组数(%d)不应超过行数(%d)", len(groups), lineCount)
	}
	t.Logf("✓ 组数在[1, %d]范围内: %d", lineCount, len(groups))
}

// TestGroupSkipsWhitespaceSpans 测试纯空白Span不参与分组
func TestGroupSkipsWhitespaceSpans(t *testing.T) {
	blocks := []Block{{
		Lines: []Line{
			{Spans: []Span{
				makeSpan("   ", 10, 100, 40, 112, 12),
				makeSpan("有效文本", 50, 100, 300, 112, 12),
			}},
			{Spans: []Span{makeSpan("\t \n", 50, 114, 300, 126, 12)}},
		},
	}}

	groups := NewGrouper().Group(blocks)
	if len(groups) != 1 {
		t.Fatalf("期望1组，实际%d组", len(groups))
	}
	if len(groups[0].Spans) != 1 {
		t.Errorf("空白Span不应进入组: 组内有%d个Span", len(groups[0].Spans))
	}
	if groups[0].BBox.X0 != 50 {
		t.Errorf("空白Span不应影响包围盒: X0=%.1f", groups[0].BBox.X0)
	}
	t.Logf("✓ 纯空白Span被忽略")
}

// TestGroupEmptyInput 测试空输入
func TestGroupEmptyInput(t *testing.T) {
	if got := NewGrouper().Group(nil); len(got) != 0 {
		t.Errorf("空输入应返回0组，实际%d", len(got))
	}
	if got := NewGrouper().Group([]Block{{}}); len(got) != 0 {
		t.Errorf("空块应返回0组，实际%d", len(got))
	}
	t.Logf("✓ 空输入返回空结果")
}

// TestMergeSpanRunningAverage 测试字号两点滑动均值
func TestMergeSpanRunningAverage(t *testing.T) {
	group := &TextGroup{}
	mergeSpan(group, makeSpan("一", 0, 0, 10, 10, 10))
	if group.AvgSize != 10 {
		t.Fatalf("首个Span后均值应为10，实际%.2f", group.AvgSize)
	}
	mergeSpan(group, makeSpan("二", 10, 0, 20, 10, 20))
	if group.AvgSize != 15 {
		t.Fatalf("两点均值应为15，实际%.2f", group.AvgSize)
	}
	mergeSpan(group, makeSpan("三", 20, 0, 30, 10, 15))
	if group.AvgSize != 15 {
		t.Fatalf("(15+15)/2应为15，实际%.2f", group.AvgSize)
	}
	t.Logf("✓ 字号滑动均值: %.2f", group.AvgSize)
}

// TestMergeSpanKeepsFirstStyle 测试颜色与样式位取首个Span
func TestMergeSpanKeepsFirstStyle(t *testing.T) {
	group := &TextGroup{}
	first := makeSpan("红", 0, 0, 10, 10, 10)
	first.Color = 0xFF0000
	first.Flags = FlagBold
	second := makeSpan("蓝", 10, 0, 20, 10, 10)
	second.Color = 0x0000FF
	second.Flags = FlagItalic

	mergeSpan(group, first)
	mergeSpan(group, second)

	if group.Color != 0xFF0000 {
		t.Errorf("颜色应保持首个Span的值: %#x", group.Color)
	}
	if group.Flags != FlagBold {
		t.Errorf("样式位应保持首个Span的值: %d", group.Flags)
	}
	t.Logf("✓ 颜色与样式位按首个Span固定")
}

// TestMedian 测试中位数
func TestMedian(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"奇数个", []float64{3, 1, 2}, 2},
		{"偶数个", []float64{1, 2, 3, 4}, 2.5},
		{"单元素", []float64{7}, 7},
		{"空", nil, 0},
	}
	for _, tc := range cases {
		if got := median(tc.values); got != tc.want {
			t.Errorf("%s: median(%v)=%v, 期望%v", tc.name, tc.values, got, tc.want)
		}
	}
	t.Logf("✓ 中位数计算正确")
}

// TestComputeLineStats 测试行统计
func TestComputeLineStats(t *testing.T) {
	line := Line{Spans: []Span{
		makeSpan("甲", 100, 50, 150, 62, 12),
		makeSpan("乙", 155, 50, 250, 62, 14),
	}}

	st, ok := computeLineStats(line)
	if !ok {
		t.Fatal("非空行应返回统计结果")
	}
	if st.left != 100 || st.right != 250 {
		t.Errorf("左右边缘错误: left=%.1f right=%.1f", st.left, st.right)
	}
	if st.avgSize != 13 {
		t.Errorf("字号均值应为13，实际%.2f", st.avgSize)
	}
	if st.midY != 50 {
		t.Errorf("midY应为50，实际%.2f", st.midY)
	}

	if _, ok := computeLineStats(Line{Spans: []Span{makeSpan("  ", 0, 0, 10, 10, 12)}}); ok {
		t.Error("纯空白行应返回false")
	}
	t.Logf("✓ 行统计: left=%.1f right=%.1f avgSize=%.1f", st.left, st.right, st.avgSize)
}
