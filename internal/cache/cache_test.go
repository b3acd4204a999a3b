package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	c := New[string](100, time.Hour)
	c.Set("k1", "v1")

	v, ok := c.Get("k1")
	if !ok || v != "v1" {
		t.Errorf("Expected ('v1', true), got ('%s', %v)", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Expected miss for absent key")
	}
}

func TestCache_AddIsFirstWriterWins(t *testing.T) {
	c := New[int](100, time.Hour)

	if !c.Add("k", 1) {
		t.Fatal("Expected first Add to succeed")
	}
	if c.Add("k", 2) {
		t.Error("Expected second Add to report the key as taken")
	}
	if v, _ := c.Get("k"); v != 1 {
		t.Errorf("Expected the first value to survive, got %d", v)
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c := New[string](100, time.Hour)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	if _, ok := c.Get("k"); !ok {
		t.Fatal("Expected live entry")
	}

	c.now = func() time.Time { return now.Add(2 * time.Hour) }
	if _, ok := c.Get("k"); ok {
		t.Error("Expected entry to expire after TTL")
	}
	if !c.Add("k", "v2") {
		t.Error("Expected Add to treat the expired entry as absent")
	}
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	c := New[string](100, 0)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	c.now = func() time.Time { return now.Add(1000 * time.Hour) }
	if _, ok := c.Get("k"); !ok {
		t.Error("Expected zero-TTL entry to stay live")
	}
}

func TestCache_CapacityEviction(t *testing.T) {
	// Per-shard capacity of 1: every shard evicts on its second insert.
	c := New[int](shardCount, time.Hour)

	for i := 0; i < 10*shardCount; i++ {
		c.Set(fmt.Sprintf("key-%d", i), i)
	}
	if n := c.Len(); n > shardCount {
		t.Errorf("Expected at most %d live entries, got %d", shardCount, n)
	}
	if n := c.Len(); n == 0 {
		t.Error("Expected eviction to keep the newest entries, not drop everything")
	}
}

func TestCache_Purge(t *testing.T) {
	c := New[string](100, time.Hour)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("k1", "v1")
	c.Set("k2", "v2")

	c.now = func() time.Time { return now.Add(2 * time.Hour) }
	if removed := c.Purge(); removed != 2 {
		t.Errorf("Expected 2 purged entries, got %d", removed)
	}
	if n := c.Len(); n != 0 {
		t.Errorf("Expected empty cache after purge, got %d", n)
	}
}

func TestCache_ConcurrentAdd(t *testing.T) {
	c := New[int](1000, time.Hour)

	const workers = 32
	var wg sync.WaitGroup
	wins := make(chan bool, workers)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(v int) {
			defer wg.Done()
			wins <- c.Add("contended", v)
		}(i)
	}
	wg.Wait()
	close(wins)

	won := 0
	for w := range wins {
		if w {
			won++
		}
	}
	if won != 1 {
		t.Errorf("Expected exactly one winning Add, got %d", won)
	}
}

func TestCache_Delete(t *testing.T) {
	c := New[string](100, time.Hour)
	c.Set("k", "v")
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("Expected deleted key to miss")
	}
}
