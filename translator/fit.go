package translator

import "strings"

// Fit求解参数
const (
	DefaultMinFontSize  = 6.0   // 最小字号
	fitMaxIterations    = 20    // 最大收缩迭代次数
	fitShrinkFactor     = 0.999 // 每轮收缩系数
	fitWidthMargin      = 0.95  // 盒宽的可用比例
	fitHeightMargin     = 0.95  // 盒高的可用比例
	fitLineHeightFactor = 1.2   // 行高系数
)

// FitFontSize 在原始包围盒内为译文求解字号
// 从原字号开始单调收缩：估算需要的行数和总高度，放得下即停。
// 刻意不用二分，用迭代次数换简单性，避免在临界点附近震荡。
// 返回值恒不小于minSize。
func FitFontSize(measurer TextMeasurer, text string, boxWidth, boxHeight, originalSize, minSize float64) float64 {
	if strings.TrimSpace(text) == "" {
		return originalSize
	}

	fontSize := originalSize
	for i := 0; i < fitMaxIterations; i++ {
		textWidth, err := measurer.MeasureText(text, fontSize)
		if err != nil {
			// 测量失败（如字形缺失）时退回保守值
			fontSize = originalSize * 0.99
			if v := minSize + 2; v < fontSize {
				fontSize = v
			}
			break
		}

		linesNeeded := textWidth / (boxWidth * fitWidthMargin)
		if linesNeeded < 1 {
			linesNeeded = 1
		}
		estimatedHeight := linesNeeded * fontSize * fitLineHeightFactor
		if estimatedHeight <= boxHeight*fitHeightMargin {
			break
		}

		fontSize *= fitShrinkFactor
		if fontSize < minSize {
			fontSize = minSize
			break
		}
	}

	if fontSize < minSize {
		fontSize = minSize
	}
	return fontSize
}
