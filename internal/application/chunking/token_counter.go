package chunking

import "sync"

// TokenEstimator 底层 token 计数能力
type TokenEstimator interface {
	CountTokens(text string) int
}

// Counter 带缓存的 token 计数器
// 按文本精确值做 memo，仅在单次运行内有效，不跨进程持久化
type Counter struct {
	estimator TokenEstimator
	mu        sync.Mutex
	cache     map[string]int
}

// NewCounter 创建 token 计数器
func NewCounter(estimator TokenEstimator) *Counter {
	return &Counter{
		estimator: estimator,
		cache:     make(map[string]int),
	}
}

// Count 计算文本的 token 数量（命中缓存时不再调用底层编码器）
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}

	c.mu.Lock()
	if n, ok := c.cache[text]; ok {
		c.mu.Unlock()
		return n
	}
	c.mu.Unlock()

	n := c.estimator.CountTokens(text)

	c.mu.Lock()
	c.cache[text] = n
	c.mu.Unlock()

	return n
}

// CacheSize 当前缓存条目数
func (c *Counter) CacheSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}
