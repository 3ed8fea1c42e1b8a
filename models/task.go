package models

import "time"

// TranslateTask 单个PDF翻译任务
type TranslateTask struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"-"`
	SourceFile     string    `json:"sourceFile"`
	TargetLanguage string    `json:"targetLanguage"`
	Status         string    `json:"status"` // pending, processing, completed, failed
	Progress       float64   `json:"progress"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	CompletedAt    time.Time `json:"completedAt,omitempty"`
	OutputPath     string    `json:"-"`
	OutputName     string    `json:"outputName,omitempty"`

	// 完成后的统计
	Pages       int      `json:"pages,omitempty"`
	Groups      int      `json:"groups,omitempty"`
	Degraded    int      `json:"degraded,omitempty"`
	Failed      int      `json:"failed,omitempty"`
	Regenerated bool     `json:"regenerated,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

// TranslateRequest 翻译请求参数，提供商字段为空时用服务端配置
type TranslateRequest struct {
	TargetLanguage string `json:"targetLanguage"`
	Provider       string `json:"provider,omitempty"` // azure, libretranslate, static

	AzureKey      string `json:"azureKey,omitempty"`
	AzureEndpoint string `json:"azureEndpoint,omitempty"`
	AzureRegion   string `json:"azureRegion,omitempty"`

	LibreURL    string `json:"libreUrl,omitempty"`
	LibreAPIKey string `json:"libreApiKey,omitempty"`

	ForceRetranslate bool `json:"forceRetranslate,omitempty"` // 忽略现有缓存
}
