package translator

import (
	"testing"
)

// TestCacheRoundTrip 测试缓存写入与命中
func TestCacheRoundTrip(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	if err != nil {
		t.Fatalf("创建缓存失败: %v", err)
	}

	key := CacheKey("azure", "Hello world", "hi")
	if _, ok := cache.Get(key); ok {
		t.Fatal("未写入的键不应命中")
	}

	if err := cache.Set(key, "नमस्ते दुनिया"); err != nil {
		t.Fatalf("写入缓存失败: %v", err)
	}
	got, ok := cache.Get(key)
	if !ok {
		t.Fatal("写入后应命中")
	}
	if got != "नमस्ते दुनिया" {
		t.Errorf("缓存内容错误: %s", got)
	}
	t.Logf("✓ 缓存命中: %s", got)
}

// TestCacheDisable 测试禁用后只写不读
func TestCacheDisable(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	if err != nil {
		t.Fatalf("创建缓存失败: %v", err)
	}

	key := CacheKey("azure", "text", "ta")
	cache.Set(key, "cached")
	cache.DisableCache()

	if _, ok := cache.Get(key); ok {
		t.Error("禁用后不应命中")
	}
	// 禁用只影响读取，写入仍然生效
	if err := cache.Set(key, "updated"); err != nil {
		t.Errorf("禁用后写入失败: %v", err)
	}
	t.Logf("✓ 禁用后只写不读")
}

// TestCacheKeyDistinct 测试不同维度产生不同缓存键
func TestCacheKeyDistinct(t *testing.T) {
	base := CacheKey("azure", "text", "hi")
	variants := []string{
		CacheKey("libretranslate", "text", "hi"),
		CacheKey("azure", "other", "hi"),
		CacheKey("azure", "text", "ta"),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("变体%d与基准键冲突: %s", i, v)
		}
	}
	t.Logf("✓ 提供商/文本/语言任一维度不同即不同键")
}

// countingProvider 记录真实调用次数的提供商
type countingProvider struct {
	calls int
}

func (p *countingProvider) Translate(text, lang string) (string, error) {
	p.calls++
	return "译文:" + text, nil
}
func (p *countingProvider) GetName() string { return "counting" }

// TestCachingProvider 测试缓存包装避免重复调用
func TestCachingProvider(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	if err != nil {
		t.Fatalf("创建缓存失败: %v", err)
	}
	inner := &countingProvider{}
	provider := NewCachingProvider(inner, cache)

	for i := 0; i < 3; i++ {
		got, err := provider.Translate("same text", "hi")
		if err != nil {
			t.Fatalf("第%d次翻译失败: %v", i+1, err)
		}
		if got != "译文:same text" {
			t.Errorf("第%d次结果错误: %s", i+1, got)
		}
	}

	if inner.calls != 1 {
		t.Errorf("重复文本应只调用底层1次，实际%d次", inner.calls)
	}
	t.Logf("✓ 3次请求只产生%d次底层调用", inner.calls)
}

// TestCachingProviderErrorNotCached 测试失败结果不写缓存
func TestCachingProviderErrorNotCached(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	if err != nil {
		t.Fatalf("创建缓存失败: %v", err)
	}
	provider := NewCachingProvider(failingProvider{}, cache)

	if _, err := provider.Translate("text", "hi"); err == nil {
		t.Fatal("底层失败应透出错误")
	}
	if _, ok := cache.Get(CacheKey("failing", "text", "hi")); ok {
		t.Error("失败结果不应写入缓存")
	}
	t.Logf("✓ 失败不污染缓存")
}
