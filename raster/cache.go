// Package raster 负责二维码、条码、图片与图标的栅格化、单色转换与缓存。
package raster

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// 缓存容量：派生栅格与解码后的源图片分开计数。
const (
	DerivedCacheSize = 96
	SourceCacheSize  = 32
)

// Cache 是按字符串键索引的 LRU 缓存：命中会把条目移到队尾，超出容量时淘汰最久未访问的条目。
type Cache[V any] struct {
	lru *lru.Cache[string, V]
}

// NewCache 创建容量为 size 的缓存，size<=0 时按 1 处理。
func NewCache[V any](size int) *Cache[V] {
	if size <= 0 {
		size = 1
	}
	c, err := lru.New[string, V](size)
	if err != nil {
		// 仅在 size<=0 时出错，上面已排除。
		panic(err)
	}
	return &Cache[V]{lru: c}
}

// GetOrBuild 命中时直接返回；未命中时调用 build 并写入缓存。build 出错时不缓存。
func (c *Cache[V]) GetOrBuild(key string, build func() (V, error)) (V, error) {
	if v, ok := c.lru.Get(key); ok {
		return v, nil
	}
	v, err := build()
	if err != nil {
		return v, err
	}
	c.lru.Add(key, v)
	return v, nil
}

// Add 写入或覆盖 key，超出容量时淘汰最久未访问的条目。
func (c *Cache[V]) Add(key string, v V) { c.lru.Add(key, v) }

// Get 查询并刷新访问顺序。
func (c *Cache[V]) Get(key string) (V, bool) { return c.lru.Get(key) }

// Contains 查询键是否存在，不影响访问顺序。
func (c *Cache[V]) Contains(key string) bool { return c.lru.Contains(key) }

// Keys 按从旧到新的顺序返回所有键。
func (c *Cache[V]) Keys() []string { return c.lru.Keys() }

// Len 返回条目数量。
func (c *Cache[V]) Len() int { return c.lru.Len() }

// Purge 清空缓存。
func (c *Cache[V]) Purge() { c.lru.Purge() }
