package translator

import (
	"testing"

	"golang.org/x/image/math/fixed"
)

// TestKernScale 测试字距缩放值按实际渲染字号换算为26.6定点数
func TestKernScale(t *testing.T) {
	cases := []struct {
		size float64
		want fixed.Int26_6
	}{
		{6, fixed.Int26_6(384)},
		{12, fixed.Int26_6(768)},
		{16, fixed.Int26_6(1024)},
		{10.5, fixed.Int26_6(672)},
	}
	for _, c := range cases {
		if got := kernScale(c.size); got != c.want {
			t.Errorf("字号%.1f的缩放值=%d，期望%d", c.size, got, c.want)
		} else {
			t.Logf("✓ 字号%.1f -> %d", c.size, got)
		}
	}
}
