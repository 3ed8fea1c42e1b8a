package translator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// ProviderType 翻译提供商类型
type ProviderType string

const (
	ProviderAzure          ProviderType = "azure"
	ProviderLibreTranslate ProviderType = "libretranslate"
	ProviderStatic         ProviderType = "static"
)

// Provider 翻译提供商接口
type Provider interface {
	// Translate 把text翻译为targetLanguage（两位语言代码）
	Translate(text, targetLanguage string) (string, error)
	GetName() string
}

// AzureConfig Azure Translator配置
// 凭据通过显式配置传入，不依赖任何进程级可变状态。
type AzureConfig struct {
	Key      string        `json:"key"`
	Endpoint string        `json:"endpoint"`
	Region   string        `json:"region"`
	Timeout  time.Duration `json:"timeout"`
}

// DefaultAzureEndpoint Azure Translator默认端点
const DefaultAzureEndpoint = "https://api.cognitive.microsofttranslator.com"

// AzureProvider Azure Translator v3 提供商
type AzureProvider struct {
	config     AzureConfig
	httpClient *http.Client
}

// NewAzureProvider 创建Azure翻译提供商
func NewAzureProvider(config AzureConfig) *AzureProvider {
	if config.Endpoint == "" {
		config.Endpoint = DefaultAzureEndpoint
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	return &AzureProvider{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

func (p *AzureProvider) GetName() string {
	return string(ProviderAzure)
}

// Translate 调用Azure Translator v3 REST接口
func (p *AzureProvider) Translate(text, targetLanguage string) (string, error) {
	endpoint := fmt.Sprintf("%s/translate?api-version=3.0&to=%s",
		p.config.Endpoint, url.QueryEscape(targetLanguage))

	payload := []map[string]string{{"Text": text}}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", p.config.Key)
	req.Header.Set("Ocp-Apim-Subscription-Region", p.config.Region)
	req.Header.Set("Content-Type", "application/json")

	body, err := doRequest(p.httpClient, req)
	if err != nil {
		return "", err
	}

	// Azure返回列表套列表的结构，取第一条翻译
	var resp []struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}
	if len(resp) == 0 || len(resp[0].Translations) == 0 {
		return "", fmt.Errorf("API 未返回翻译结果")
	}
	return resp[0].Translations[0].Text, nil
}

// LibreTranslateProvider LibreTranslate 提供商（无密钥场景）
type LibreTranslateProvider struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// NewLibreTranslateProvider 创建LibreTranslate提供商
func NewLibreTranslateProvider(apiURL, apiKey string) *LibreTranslateProvider {
	return &LibreTranslateProvider{
		apiURL: apiURL,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (p *LibreTranslateProvider) GetName() string {
	return string(ProviderLibreTranslate)
}

func (p *LibreTranslateProvider) Translate(text, targetLanguage string) (string, error) {
	reqBody := map[string]interface{}{
		"q":      text,
		"source": "auto",
		"target": targetLanguage,
		"format": "text",
	}
	if p.apiKey != "" {
		reqBody["api_key"] = p.apiKey
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequest(http.MethodPost, p.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := doRequest(p.httpClient, req)
	if err != nil {
		return "", err
	}

	var resp struct {
		TranslatedText string `json:"translatedText"`
		Error          string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("翻译错误: %s", resp.Error)
	}
	if resp.TranslatedText == "" {
		return "", fmt.Errorf("API 未返回翻译结果")
	}
	return resp.TranslatedText, nil
}

// StaticProvider 静态提供商：按映射表查找，缺省原样返回
// 用于测试与干跑（恒等翻译）。
type StaticProvider struct {
	Mapping map[string]string
}

// NewStaticProvider 创建静态提供商，mapping可为nil（恒等翻译）
func NewStaticProvider(mapping map[string]string) *StaticProvider {
	return &StaticProvider{Mapping: mapping}
}

func (p *StaticProvider) GetName() string {
	return string(ProviderStatic)
}

func (p *StaticProvider) Translate(text, targetLanguage string) (string, error) {
	if p.Mapping != nil {
		if translated, ok := p.Mapping[text]; ok {
			return translated, nil
		}
	}
	return text, nil
}

// doRequest 执行HTTP请求并读取响应体
func doRequest(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API 请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API 返回错误 (状态码 %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// SafeTranslator 不抛错的翻译包装
// 任何内部失败都记录警告并回退到原文，保证调用方永远拿到可渲染文本。
type SafeTranslator struct {
	provider  Provider
	logger    *SessionLogger
	mutex     sync.Mutex
	fallbacks int
}

// NewSafeTranslator 创建安全翻译包装
func NewSafeTranslator(provider Provider, logger *SessionLogger) *SafeTranslator {
	return &SafeTranslator{provider: provider, logger: logger}
}

// Translate 翻译文本，失败时回退原文（永不失败）
func (s *SafeTranslator) Translate(text, targetLanguage string) string {
	translated, err := s.provider.Translate(text, targetLanguage)
	if err != nil {
		s.mutex.Lock()
		s.fallbacks++
		s.mutex.Unlock()
		s.logger.Warn("翻译失败，回退到原文", map[string]interface{}{
			"提供商":  s.provider.GetName(),
			"目标语言": targetLanguage,
			"原因":   err.Error(),
		})
		return text
	}
	return translated
}

// Fallbacks 返回回退原文的次数
func (s *SafeTranslator) Fallbacks() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.fallbacks
}
