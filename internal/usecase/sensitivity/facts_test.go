package sensitivity

import (
	"sync"
	"testing"
)

// Transport events and webhook deliveries extract facts from different
// goroutines, so the store must survive concurrent writers.
func TestFactStore_ConcurrentExtract(t *testing.T) {
	fs := NewFactStore()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				fs.Extract("I work at Acme Corp, reach me at grace@example.com")
				fs.Get(FactEmployer)
				fs.Len()
			}
		}()
	}
	wg.Wait()

	if v, ok := fs.Get(FactEmployer); !ok || v != "Acme Corp" {
		t.Fatalf("expected employer fact after concurrent writes, got %q ok=%v", v, ok)
	}
	if fs.Len() != 2 {
		t.Fatalf("expected 2 facts, got %d", fs.Len())
	}
}
