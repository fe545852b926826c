package cache

import (
	"container/list"
	"sync"
	"time"
)

// MemoryStore is a bounded in-memory key-value store with expiration.
// When the capacity is exceeded the least recently used entry is evicted.
// Used to keep finished session reports warm without a round trip to the
// database on every read.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List
}

type memoryItem struct {
	key        string
	value      string
	expireTime time.Time
}

// NewMemoryStore creates a new bounded in-memory store
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = 64
	}
	return &MemoryStore{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Set stores a key-value pair with expiration
func (ms *MemoryStore) Set(key string, value string, expiration time.Duration) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if el, exists := ms.items[key]; exists {
		item := el.Value.(*memoryItem)
		item.value = value
		item.expireTime = time.Now().Add(expiration)
		ms.order.MoveToFront(el)
		return
	}

	el := ms.order.PushFront(&memoryItem{
		key:        key,
		value:      value,
		expireTime: time.Now().Add(expiration),
	})
	ms.items[key] = el

	for ms.order.Len() > ms.capacity {
		oldest := ms.order.Back()
		if oldest == nil {
			break
		}
		ms.order.Remove(oldest)
		delete(ms.items, oldest.Value.(*memoryItem).key)
	}
}

// Get retrieves a value by key (returns false if not found or expired)
func (ms *MemoryStore) Get(key string) (string, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	el, exists := ms.items[key]
	if !exists {
		return "", false
	}

	item := el.Value.(*memoryItem)
	if time.Now().After(item.expireTime) {
		ms.order.Remove(el)
		delete(ms.items, key)
		return "", false
	}

	ms.order.MoveToFront(el)
	return item.value, true
}

// Delete removes a key
func (ms *MemoryStore) Delete(key string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if el, exists := ms.items[key]; exists {
		ms.order.Remove(el)
		delete(ms.items, key)
	}
}

// Len reports the number of live entries, expired or not
func (ms *MemoryStore) Len() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.order.Len()
}
