package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pdf-translator-web/translator"
)

// 批量翻译工具：把目录下的所有PDF翻译为一个或多个目标语言
//
//	go run ./demo -in ./docs -out ./out -langs hi,ta
func main() {
	var (
		inPath  = flag.String("in", "", "输入PDF文件或目录")
		outDir  = flag.String("out", "outputs", "输出目录")
		langs   = flag.String("langs", "hi", "目标语言代码，逗号分隔")
		workers = flag.Int("workers", 1, "单份文档的翻译并发数")
	)
	flag.Parse()

	if *inPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := translator.LoadConfig()
	fonts := translator.NewFontResolver(cfg.FontsDir)

	files, err := collectPDFs(*inPath)
	if err != nil {
		log.Fatalf("收集输入文件失败: %v", err)
	}
	if len(files) == 0 {
		log.Fatalf("未找到PDF文件: %s", *inPath)
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("创建输出目录失败: %v", err)
	}

	logger, err := translator.NewSessionLogger(cfg.LogDir, "batch", true)
	if err != nil {
		log.Printf("日志初始化失败，仅输出到控制台: %v", err)
	}
	defer logger.Close()

	cache, err := translator.NewCache(cfg.CacheDir)
	if err != nil {
		log.Printf("缓存初始化失败，翻译不走缓存: %v", err)
	}
	provider := cfg.BuildProvider()
	if cache != nil {
		provider = translator.NewCachingProvider(provider, cache)
	}
	safe := translator.NewSafeTranslator(provider, logger)
	doc := translator.NewDocumentTranslator(safe, logger)

	targets := strings.Split(*langs, ",")
	succeeded, failed := 0, 0
	start := time.Now()

	for _, file := range files {
		for _, lang := range targets {
			lang = strings.TrimSpace(lang)
			if lang == "" {
				continue
			}
			fontFile, err := fonts.FontFile(lang)
			if err != nil {
				log.Printf("[跳过] %s -> %s: %v", file, lang, err)
				failed++
				continue
			}

			outputName := translator.OutputFileName(filepath.Base(file), lang)
			outputPath := filepath.Join(*outDir, outputName)

			report, err := doc.Translate(file, outputPath, translator.Options{
				TargetLanguage:   lang,
				FontFile:         fontFile,
				MinFontSize:      cfg.MinFontSize,
				TranslateWorkers: *workers,
				Progress: func(page, total int) {
					fmt.Printf("\r%s -> %s: %d/%d页", filepath.Base(file), lang, page, total)
				},
			})
			fmt.Println()
			if err != nil {
				log.Printf("[失败] %s -> %s: %v", file, lang, err)
				failed++
				continue
			}
			succeeded++
			log.Printf("[完成] %s (%d页 %d组, 降级%d 失败%d) -> %s",
				filepath.Base(file), report.Pages, report.Groups, report.Degraded, report.Failed, outputPath)
			for _, w := range report.Warnings {
				log.Printf("  警告: %s", w)
			}
		}
	}

	log.Printf("批量翻译结束: 成功%d 失败%d 耗时%s", succeeded, failed, time.Since(start).Round(time.Second))
	if failed > 0 {
		os.Exit(1)
	}
}

// collectPDFs 输入为文件时直接返回，目录时收集一层内的所有PDF
func collectPDFs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	return files, nil
}
