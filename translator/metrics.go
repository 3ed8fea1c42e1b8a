package translator

import (
	"fmt"
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/math/fixed"
)

// TextMeasurer 文本宽度测量接口（适配器尺寸计算与测试替身共用）
type TextMeasurer interface {
	// MeasureText 返回文本在指定字号下的渲染宽度（pt）
	MeasureText(text string, fontSize float64) (float64, error)
}

// FontMetrics 基于真实TTF字体文件的精确文本度量
// 绑定单个字体文件，文档翻译期间独占使用、只读测量。
type FontMetrics struct {
	font       *truetype.Font
	fontPath   string
	widthCache map[string]float64
	mutex      sync.RWMutex
}

// LoadFontMetrics 读取并解析TTF字体文件
func LoadFontMetrics(fontPath string) (*FontMetrics, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("读取字体文件失败: %w", err)
	}
	ttfFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("解析字体失败: %w", err)
	}
	return &FontMetrics{
		font:       ttfFont,
		fontPath:   fontPath,
		widthCache: make(map[string]float64),
	}, nil
}

// Path 返回字体文件路径
func (m *FontMetrics) Path() string {
	return m.fontPath
}

// kernScale 字距调整的26.6定点缩放：72 DPI下1pt=1px，即字号×64
// 字距必须随实际渲染字号缩放，不能用字体单位数充当缩放值。
func kernScale(fontSize float64) fixed.Int26_6 {
	return fixed.Int26_6(fontSize * 64)
}

// MeasureText 计算文本宽度（含字距调整，72 DPI，单位pt）
func (m *FontMetrics) MeasureText(text string, fontSize float64) (float64, error) {
	if text == "" {
		return 0, nil
	}

	cacheKey := fmt.Sprintf("%.2f:%s", fontSize, text)
	m.mutex.RLock()
	if width, ok := m.widthCache[cacheKey]; ok {
		m.mutex.RUnlock()
		return width, nil
	}
	m.mutex.RUnlock()

	face := truetype.NewFace(m.font, &truetype.Options{
		Size: fontSize,
		DPI:  72, // PDF使用72 DPI
	})
	defer face.Close()

	totalWidth := fixed.Int26_6(0)
	measured := 0
	prevIndex := truetype.Index(0)

	for _, r := range text {
		index := m.font.Index(r)
		if index == 0 {
			// 字体不含该字形，跳过但记下，整行都测不了时报错
			continue
		}
		advance, ok := face.GlyphAdvance(r)
		if !ok {
			continue
		}
		totalWidth += advance
		measured++

		if prevIndex != 0 {
			totalWidth += m.font.Kern(kernScale(fontSize), prevIndex, index)
		}
		prevIndex = index
	}

	if measured == 0 {
		return 0, fmt.Errorf("字体 %s 不支持该文本的任何字形", m.fontPath)
	}

	width := float64(totalWidth) / 64.0
	m.mutex.Lock()
	m.widthCache[cacheKey] = width
	m.mutex.Unlock()
	return width, nil
}
