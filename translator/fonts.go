package translator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DefaultFontFiles 语言代码到字体文件名的映射
// 马拉地语与印地语共用天城文字体，阿萨姆语共用孟加拉文字体。
func DefaultFontFiles() map[string]string {
	return map[string]string{
		"en": "NotoSans-VariableFont_wdth,wght.ttf",
		"hi": "NotoSansDevanagari-VariableFont_wdth,wght.ttf",
		"bn": "NotoSansBengali-VariableFont_wdth,wght.ttf",
		"kn": "NotoSansKannada-VariableFont_wdth,wght.ttf",
		"mr": "NotoSansDevanagari-VariableFont_wdth,wght.ttf",
		"ta": "NotoSansTamil-VariableFont_wdth,wght.ttf",
		"te": "NotoSansTelugu-VariableFont_wdth,wght.ttf",
		"gu": "NotoSansGujarati-VariableFont_wdth,wght.ttf",
		"pa": "NotoSansGurmukhi-VariableFont_wdth,wght.ttf",
		"or": "NotoSansOriya-VariableFont_wdth,wght.ttf",
		"ml": "NotoSansMalayalam-VariableFont_wdth,wght.ttf",
		"as": "NotoSansBengali-VariableFont_wdth,wght.ttf",
	}
}

// FontResolver 按语言解析字体文件
type FontResolver struct {
	dir   string
	files map[string]string
}

// NewFontResolver 创建字体解析器，dir为字体文件目录
func NewFontResolver(dir string) *FontResolver {
	return &FontResolver{
		dir:   dir,
		files: DefaultFontFiles(),
	}
}

// FontFile 返回语言对应的字体文件完整路径
func (f *FontResolver) FontFile(langCode string) (string, error) {
	code := strings.ToLower(strings.TrimSpace(langCode))
	if _, err := language.Parse(code); err != nil {
		return "", fmt.Errorf("无效的语言代码 %q: %w", langCode, err)
	}
	filename, ok := f.files[code]
	if !ok {
		return "", fmt.Errorf("不支持的语言: %s", langCode)
	}
	path := filepath.Join(f.dir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("字体文件不存在 (%s): %w", path, err)
	}
	return path, nil
}

// Supported 判断是否支持该语言
func (f *FontResolver) Supported(langCode string) bool {
	_, ok := f.files[strings.ToLower(strings.TrimSpace(langCode))]
	return ok
}

// LanguageInfo 支持的语言及其显示名称
type LanguageInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SupportedLanguages 返回按代码排序的语言列表（英文显示名）
func (f *FontResolver) SupportedLanguages() []LanguageInfo {
	codes := make([]string, 0, len(f.files))
	for code := range f.files {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	namer := display.English.Languages()
	languages := make([]LanguageInfo, 0, len(codes))
	for _, code := range codes {
		tag, err := language.Parse(code)
		name := code
		if err == nil {
			name = namer.Name(tag)
		}
		languages = append(languages, LanguageInfo{Code: code, Name: name})
	}
	return languages
}

// FontNameFromPath 从字体文件路径推导字体族名
// 取文件名去扩展名后按'-'切分的第一段。
func FontNameFromPath(fontPath string) string {
	filename := filepath.Base(fontPath)
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	if idx := strings.Index(name, "-"); idx > 0 {
		name = name[:idx]
	}
	return name
}

// OutputFileName 按输入文件名与语言代码推导输出文件名
// 以"_org"结尾的文件名把该后缀替换为"_{lang}"，否则直接追加。
func OutputFileName(inputFileName, langCode string) string {
	ext := filepath.Ext(inputFileName)
	name := strings.TrimSuffix(inputFileName, ext)
	if strings.HasSuffix(name, "_org") {
		name = strings.TrimSuffix(name, "_org")
	}
	return name + "_" + langCode + ext
}
