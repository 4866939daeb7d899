/*
Copyright 2026, Cossack Labs Limited

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package connection

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

// DefaultCacheSize is the number of connection strings DescriptorCache keeps by default
const DefaultCacheSize = 256

type cacheKey struct {
	serverKind       string
	connectionString string
}

// DescriptorCache keeps descriptors of successfully parsed connection strings. Safe for concurrent use.
type DescriptorCache struct {
	lock  sync.Mutex
	cache *lru.Cache
}

// NewDescriptorCache returns cache with at most size entries, size <= 0 means DefaultCacheSize
func NewDescriptorCache(size int) *DescriptorCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &DescriptorCache{cache: lru.New(size)}
}

// Get returns copy of cached descriptor
func (cache *DescriptorCache) Get(serverKind, connectionString string) (*Descriptor, bool) {
	cache.lock.Lock()
	value, ok := cache.cache.Get(cacheKey{serverKind, connectionString})
	cache.lock.Unlock()
	if !ok {
		return nil, false
	}
	descriptor := value.(Descriptor)
	return &descriptor, true
}

// Add stores copy of descriptor
func (cache *DescriptorCache) Add(descriptor *Descriptor) {
	cache.lock.Lock()
	cache.cache.Add(cacheKey{descriptor.ServerKind, descriptor.ConnectionString}, *descriptor)
	cache.lock.Unlock()
}

// Len returns number of cached descriptors
func (cache *DescriptorCache) Len() int {
	cache.lock.Lock()
	defer cache.lock.Unlock()
	return cache.cache.Len()
}

// Parse returns cached descriptor or parses connection string with Parse and caches result if it has no error
func (cache *DescriptorCache) Parse(serverKind, connectionString string) (*Descriptor, error) {
	if descriptor, ok := cache.Get(serverKind, connectionString); ok {
		return descriptor, nil
	}
	descriptor, err := Parse(serverKind, connectionString)
	if err != nil {
		return descriptor, err
	}
	cache.Add(descriptor)
	return descriptor, nil
}
