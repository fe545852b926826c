package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestMemoryStore_SetGet(t *testing.T) {
	ms := NewMemoryStore(4)
	ms.Set("a", "1", time.Minute)

	if v, ok := ms.Get("a"); !ok || v != "1" {
		t.Fatalf("expected hit with value 1, got %q %v", v, ok)
	}
	if _, ok := ms.Get("missing"); ok {
		t.Fatal("missing key must miss")
	}
}

func TestMemoryStore_Expiration(t *testing.T) {
	ms := NewMemoryStore(4)
	ms.Set("a", "1", 10*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	if _, ok := ms.Get("a"); ok {
		t.Fatal("expired entry must miss")
	}
	if ms.Len() != 0 {
		t.Fatalf("expired entry must be dropped on read, len=%d", ms.Len())
	}
}

func TestMemoryStore_EvictsLeastRecentlyUsed(t *testing.T) {
	ms := NewMemoryStore(3)
	for i := 1; i <= 3; i++ {
		ms.Set(fmt.Sprintf("k%d", i), "v", time.Minute)
	}

	// touch k1 so k2 becomes the eviction candidate
	if _, ok := ms.Get("k1"); !ok {
		t.Fatal("k1 must be present")
	}

	ms.Set("k4", "v", time.Minute)

	if _, ok := ms.Get("k2"); ok {
		t.Fatal("k2 should have been evicted")
	}
	for _, key := range []string{"k1", "k3", "k4"} {
		if _, ok := ms.Get(key); !ok {
			t.Fatalf("%s should have survived", key)
		}
	}
}

func TestMemoryStore_UpdateMovesToFront(t *testing.T) {
	ms := NewMemoryStore(2)
	ms.Set("a", "1", time.Minute)
	ms.Set("b", "2", time.Minute)
	ms.Set("a", "3", time.Minute)
	ms.Set("c", "4", time.Minute)

	if _, ok := ms.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if v, _ := ms.Get("a"); v != "3" {
		t.Fatalf("update lost, got %q", v)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ms := NewMemoryStore(2)
	ms.Set("a", "1", time.Minute)
	ms.Delete("a")
	if _, ok := ms.Get("a"); ok {
		t.Fatal("deleted key must miss")
	}
	ms.Delete("a") // idempotent
}
