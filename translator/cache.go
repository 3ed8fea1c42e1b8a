package translator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Cache 文件系统翻译缓存
type Cache struct {
	dir      string
	mutex    sync.RWMutex
	disabled bool
}

// NewCache 创建缓存
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// DisableCache 禁用缓存读取（用于强制重新翻译，仍会写入）
func (c *Cache) DisableCache() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.disabled = true
}

// Get 读取缓存
func (c *Cache) Get(key string) (string, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.disabled {
		return "", false
	}
	data, err := os.ReadFile(c.entryPath(key))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Set 写入缓存
func (c *Cache) Set(key, value string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return os.WriteFile(c.entryPath(key), []byte(value), 0644)
}

func (c *Cache) entryPath(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(hash[:])+".txt")
}

// CacheKey 组合翻译缓存键
func CacheKey(providerName, text, targetLanguage string) string {
	return fmt.Sprintf("%s|%s|%s", providerName, targetLanguage, text)
}

// CachingProvider 给任意提供商套一层翻译缓存
type CachingProvider struct {
	inner Provider
	cache *Cache
}

// NewCachingProvider 创建带缓存的提供商
func NewCachingProvider(inner Provider, cache *Cache) *CachingProvider {
	return &CachingProvider{inner: inner, cache: cache}
}

func (p *CachingProvider) GetName() string {
	return p.inner.GetName()
}

func (p *CachingProvider) Translate(text, targetLanguage string) (string, error) {
	key := CacheKey(p.inner.GetName(), text, targetLanguage)
	if p.cache != nil {
		if cached, ok := p.cache.Get(key); ok {
			return cached, nil
		}
	}
	translated, err := p.inner.Translate(text, targetLanguage)
	if err != nil {
		return "", err
	}
	if p.cache != nil {
		p.cache.Set(key, translated)
	}
	return translated, nil
}
