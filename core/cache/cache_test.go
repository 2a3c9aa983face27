package cache

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestLRUCache_GetPut(t *testing.T) {
	c := NewLRUCache[string, int](Config{MaxSize: 2})

	c.Put("a", 1)
	c.Put("b", 2)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v", v, ok)
	}

	// b is now least recently used.
	c.Put("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should still be cached")
	}

	c.Put("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("updated value = %d, want 10", v)
	}

	s := c.Stats()
	if s.Size != 2 || s.MaxSize != 2 || s.Evictions != 1 || s.Hits != 3 || s.Misses != 1 {
		t.Errorf("Stats() = %+v", s)
	}
	if r := s.HitRate(); r != 0.75 {
		t.Errorf("HitRate() = %v, want 0.75", r)
	}
}

func TestLRUCache_RemoveClear(t *testing.T) {
	c := NewLRUCache[int, string](DefaultConfig())
	for i := 0; i < 10; i++ {
		c.Put(i, fmt.Sprint(i))
	}
	c.Remove(3)
	c.Remove(42)
	if c.Len() != 9 {
		t.Errorf("Len() = %d, want 9", c.Len())
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
	if (Stats{}).HitRate() != 0 {
		t.Error("empty stats hit rate should be 0")
	}
}

func TestLRUCache_OnEvict(t *testing.T) {
	var evicted []any
	c := NewLRUCache[string, int](Config{
		MaxSize: 1,
		OnEvict: func(key, value any) { evicted = append(evicted, key) },
	})
	c.Put("x", 1)
	c.Put("y", 2)
	c.Remove("y")
	if len(evicted) != 1 || evicted[0] != "x" {
		t.Errorf("evicted = %v, want [x]", evicted)
	}
}

func TestLRUCache_Unlimited(t *testing.T) {
	c := NewLRUCache[int, int](Config{MaxSize: -1})
	for i := 0; i < 1000; i++ {
		c.Put(i, i)
	}
	if c.Len() != 1000 {
		t.Errorf("Len() = %d, want 1000", c.Len())
	}
}

func TestLRUCache_Concurrent(t *testing.T) {
	c := NewLRUCache[int, int](Config{MaxSize: 64})
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				c.Put(i%100, g)
				c.Get(i % 50)
			}
		}(g)
	}
	wg.Wait()
	if c.Len() > 64 {
		t.Errorf("Len() = %d exceeds MaxSize", c.Len())
	}
}

type page struct {
	id       int64
	redirect string
}

func fakeLookup(pages map[string]page, calls *int) Lookup {
	return func(title string) (int64, string, bool, error) {
		*calls++
		p, ok := pages[title]
		return p.id, p.redirect, ok, nil
	}
}

func TestResolver(t *testing.T) {
	pages := map[string]page{
		"Bank":           {id: 1},
		"Geldhaus":       {id: 2, redirect: "Kreditinstitut"},
		"Kreditinstitut": {id: 3},
		"Sparkasse":      {id: 4, redirect: "Geldhaus"},
		"Schleife":       {id: 5, redirect: "Schleife"},
		"Tot":            {id: 6, redirect: "Fehlt"},
	}
	calls := 0
	r := NewResolver(fakeLookup(pages, &calls), Config{MaxSize: 10})

	tests := map[string]int64{
		"Bank":      1,
		"Geldhaus":  3,
		"Sparkasse": 3,
		"Schleife":  0,
		"Tot":       0,
		"Unbekannt": 0,
	}
	for title, want := range tests {
		got, err := r.Resolve(title)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("Resolve(%q) = %d, want %d", title, got, want)
		}
	}

	before := calls
	for title := range tests {
		r.Resolve(title)
	}
	if calls != before {
		t.Errorf("cached resolutions hit lookup %d more times", calls-before)
	}
	if r.Stats().Hits < int64(len(tests)) {
		t.Errorf("Stats().Hits = %d, want at least %d", r.Stats().Hits, len(tests))
	}
}

func TestResolver_CachesChain(t *testing.T) {
	pages := map[string]page{
		"Geldhaus":       {id: 2, redirect: "Kreditinstitut"},
		"Kreditinstitut": {id: 3},
		"Sparkasse":      {id: 4, redirect: "Geldhaus"},
	}
	calls := 0
	r := NewResolver(fakeLookup(pages, &calls), Config{MaxSize: 10})

	if id, _ := r.Resolve("Geldhaus"); id != 3 {
		t.Fatalf("Resolve(Geldhaus) = %d", id)
	}
	if calls != 2 {
		t.Fatalf("lookups = %d, want 2", calls)
	}
	// Sparkasse redirects to the cached Geldhaus.
	if id, _ := r.Resolve("Sparkasse"); id != 3 {
		t.Fatalf("Resolve(Sparkasse) = %d", id)
	}
	if calls != 3 {
		t.Errorf("lookups = %d, want 3", calls)
	}
	// Kreditinstitut was cached as part of the first chain.
	if id, _ := r.Resolve("Kreditinstitut"); id != 3 || calls != 3 {
		t.Errorf("Resolve(Kreditinstitut) = %d after %d lookups", id, calls)
	}
}

func TestResolver_Error(t *testing.T) {
	boom := errors.New("db closed")
	r := NewResolver(func(string) (int64, string, bool, error) { return 0, "", false, boom }, DefaultConfig())
	if _, err := r.Resolve("Bank"); !errors.Is(err, boom) {
		t.Errorf("Resolve() error = %v, want %v", err, boom)
	}
}
