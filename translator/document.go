package translator

import (
	"errors"
	"fmt"
	"sync"

	enginepdf "pdf-translator-web/pdf"
)

// errPageImport 原页面无法导入为模板的哨兵错误，触发纯文本重建
// 字体嵌入与保存失败不属于此类，它们是致命错误、直接向上返回。
var errPageImport = errors.New("页面导入失败")

// Options 单次文档翻译的参数
type Options struct {
	TargetLanguage   string
	FontFile         string // TTF字体完整路径
	MinFontSize      float64
	TranslateWorkers int                   // 翻译并发数，<=1为串行
	Progress         func(page, total int) // 每页完成后的回调，可为nil
}

// Report 翻译完成后的统计结果
type Report struct {
	Pages       int
	Groups      int
	Translated  int
	Degraded    int
	Failed      int
	Regenerated bool // 原页面无法导入，输出为纯文本重建
	Warnings    []string
	OutputPath  string
}

// DocumentTranslator 整份文档的翻译编排
type DocumentTranslator struct {
	translator *SafeTranslator
	extractor  *Extractor
	logger     *SessionLogger
}

// NewDocumentTranslator 创建编排器
func NewDocumentTranslator(translator *SafeTranslator, logger *SessionLogger) *DocumentTranslator {
	return &DocumentTranslator{
		translator: translator,
		extractor:  NewExtractor(logger),
		logger:     logger,
	}
}

// pageWork 一页的分组与译文，译文按分组顺序对齐
type pageWork struct {
	page                Page
	groups              []*TextGroup
	translationsOrdered []string
}

// Translate 翻译整份文档并写出到outputPath
// 字体嵌入失败视为致命错误；单个分组的渲染异常只记入警告。
func (d *DocumentTranslator) Translate(inputPath, outputPath string, opts Options) (*Report, error) {
	if err := enginepdf.Validate(inputPath); err != nil {
		return nil, fmt.Errorf("输入文件校验失败: %w", err)
	}

	pages, err := d.extractor.Extract(inputPath)
	if err != nil {
		return nil, err
	}

	measurer, err := LoadFontMetrics(opts.FontFile)
	if err != nil {
		return nil, fmt.Errorf("加载字体度量失败: %w", err)
	}
	fontName := FontNameFromPath(opts.FontFile)

	report := &Report{Pages: len(pages), OutputPath: outputPath}
	grouper := NewGrouper()

	// 先分组并翻译全部页面，渲染阶段只做排版
	works := make([]pageWork, len(pages))
	for i, page := range pages {
		groups := grouper.Group(page.Blocks)
		texts := make([]string, len(groups))
		for j, g := range groups {
			texts[j] = g.CombinedText()
		}
		works[i] = pageWork{
			page:                page,
			groups:              groups,
			translationsOrdered: d.translateBatch(texts, opts.TargetLanguage, opts.TranslateWorkers),
		}
		report.Groups += len(groups)
		report.Translated += len(groups)
	}

	useOverlay := true
	engine, err := enginepdf.NewOverlayEngine(inputPath)
	if err != nil {
		d.logger.Warn("覆盖引擎初始化失败，改用纯文本重建", map[string]interface{}{"error": err.Error()})
		useOverlay = false
	}

	if useOverlay {
		err = d.renderOverlay(engine, works, fontName, measurer, opts, report)
		switch {
		case err == nil:
		case errors.Is(err, errPageImport):
			d.logger.Warn("页面导入失败，改用纯文本重建", map[string]interface{}{"error": err.Error()})
			// 部分覆盖阶段累计的统计与警告作废，重建阶段重新计数
			report.discardOverlayStats()
			useOverlay = false
		default:
			// 字体嵌入或保存失败：致命，不做重建
			return nil, err
		}
	}
	if !useOverlay {
		if err := d.regenerate(works, fontName, opts, report); err != nil {
			return nil, err
		}
		report.Regenerated = true
	}

	// 输出后的优化与校验失败不阻断结果
	if err := enginepdf.Optimize(outputPath); err != nil {
		d.warn(report, fmt.Sprintf("输出优化失败: %v", err))
	}
	if err := enginepdf.Validate(outputPath); err != nil {
		d.warn(report, fmt.Sprintf("输出校验失败: %v", err))
	}

	d.logger.Info("文档翻译完成", map[string]interface{}{
		"pages":      report.Pages,
		"groups":     report.Groups,
		"degraded":   report.Degraded,
		"failed":     report.Failed,
		"fallbacks":  d.translator.Fallbacks(),
		"output":     outputPath,
	})
	return report, nil
}

// renderOverlay 在原页面模板上逐页擦写
// 字体嵌入和保存失败原样返回（致命）；页面导入失败包装为errPageImport，
// 由调用方决定是否回退纯文本重建。
func (d *DocumentTranslator) renderOverlay(engine enginepdf.PageEngine, works []pageWork, fontName string, measurer TextMeasurer, opts Options, report *Report) error {
	if err := engine.EmbedFont(fontName, opts.FontFile); err != nil {
		return fmt.Errorf("嵌入字体失败: %w", err)
	}
	renderer := NewRenderer(engine, measurer, fontName, opts.MinFontSize, d.logger)

	for i, work := range works {
		if err := engine.BeginPage(work.page.Number); err != nil {
			return fmt.Errorf("%w: %v", errPageImport, err)
		}
		for j, group := range work.groups {
			d.renderOne(renderer, group, work.translationsOrdered[j], work.page.Width, report)
		}
		if opts.Progress != nil {
			opts.Progress(i+1, len(works))
		}
	}
	if err := engine.Save(report.OutputPath); err != nil {
		return fmt.Errorf("保存输出失败: %w", err)
	}
	return nil
}

// discardOverlayStats 作废覆盖阶段累计的降级/失败统计与警告
// 覆盖输出已被放弃，这些计数对最终产物没有意义。
func (r *Report) discardOverlayStats() {
	r.Degraded = 0
	r.Failed = 0
	r.Warnings = nil
}

// renderOne 单组渲染，异常只降级为警告
func (d *DocumentTranslator) renderOne(renderer *Renderer, group *TextGroup, text string, pageWidth float64, report *Report) {
	defer func() {
		if r := recover(); r != nil {
			report.Failed++
			d.warn(report, fmt.Sprintf("分组渲染异常: %v", r))
		}
	}()

	switch renderer.RenderGroup(group, text, pageWidth) {
	case RenderDegraded:
		report.Degraded++
	case RenderFailed:
		report.Failed++
		d.warn(report, fmt.Sprintf("文本放置失败: %s", truncateForLog(text)))
	}
}

// regenerate 覆盖方式不可用时的纯文本重建
func (d *DocumentTranslator) regenerate(works []pageWork, fontName string, opts Options, report *Report) error {
	gen := NewRegenerator(fontName, opts.FontFile, opts.MinFontSize, d.logger)
	pages := make([]RegeneratedPage, 0, len(works))
	for i, work := range works {
		rp := RegeneratedPage{Width: work.page.Width, Height: work.page.Height}
		for j, group := range work.groups {
			rp.Groups = append(rp.Groups, RegeneratedGroup{
				Box:   group.BBox,
				Text:  work.translationsOrdered[j],
				Size:  group.AvgSize,
				Color: group.Color,
				Align: AlignmentForGroup(group, work.page.Width),
			})
		}
		pages = append(pages, rp)
		if opts.Progress != nil {
			opts.Progress(i+1, len(works))
		}
	}
	return gen.Regenerate(pages, report.OutputPath)
}

// translateBatch 批量翻译，结果顺序与输入一致
// workers>1时用有界并发，渲染阶段仍按原顺序消费。
func (d *DocumentTranslator) translateBatch(texts []string, lang string, workers int) []string {
	results := make([]string, len(texts))
	if workers <= 1 || len(texts) <= 1 {
		for i, t := range texts {
			results[i] = d.translator.Translate(t, lang)
		}
		return results
	}

	if workers > len(texts) {
		workers = len(texts)
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = d.translator.Translate(texts[i], lang)
			}
		}()
	}
	for i := range texts {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

func (d *DocumentTranslator) warn(report *Report, msg string) {
	report.Warnings = append(report.Warnings, msg)
	d.logger.Warn(msg, nil)
}
