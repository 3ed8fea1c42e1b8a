package pdf

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageDim 页面宽高（pt）
type PageDim struct {
	Width  float64
	Height float64
}

// Validate 校验PDF文件结构
func Validate(path string) error {
	if err := api.ValidateFile(path, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("PDF校验失败: %w", err)
	}
	return nil
}

// PageCount 获取PDF页数
func PageCount(path string) (int, error) {
	count, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("获取页数失败: %w", err)
	}
	return count, nil
}

// PageDimensions 获取每页的MediaBox尺寸
func PageDimensions(path string) ([]PageDim, error) {
	dims, err := api.PageDimsFile(path)
	if err != nil {
		return nil, fmt.Errorf("获取页面尺寸失败: %w", err)
	}
	result := make([]PageDim, 0, len(dims))
	for _, d := range dims {
		result = append(result, PageDim{Width: d.Width, Height: d.Height})
	}
	return result, nil
}

// Optimize 原地优化输出文件（垃圾回收、压缩流，等价于常见的保存清理选项）
func Optimize(path string) error {
	if err := api.OptimizeFile(path, "", model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("优化PDF失败: %w", err)
	}
	return nil
}
