package service

import (
	"context"
	"log"
	"sync"
	"time"
)

// Purger is anything with expired entries worth sweeping.
type Purger interface {
	Purge() int
}

// CacheJanitor periodically sweeps expired entries out of the in-memory
// caches so idle tenants do not pin memory between requests.
type CacheJanitor struct {
	purgers  []Purger
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCacheJanitor creates a janitor over the given caches.
func NewCacheJanitor(interval time.Duration, purgers ...Purger) *CacheJanitor {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &CacheJanitor{purgers: purgers, interval: interval}
}

// Start launches the sweep loop.
func (j *CacheJanitor) Start(ctx context.Context) {
	j.ctx, j.cancel = context.WithCancel(ctx)

	j.wg.Add(1)
	go j.sweepLoop()
}

// Stop stops the sweep loop.
func (j *CacheJanitor) Stop() {
	if j.cancel != nil {
		j.cancel()
	}
	j.wg.Wait()
}

func (j *CacheJanitor) sweepLoop() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.ctx.Done():
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *CacheJanitor) sweep() {
	removed := 0
	for _, p := range j.purgers {
		removed += p.Purge()
	}
	if removed > 0 {
		log.Printf("[Janitor] removed %d expired cache entries", removed)
	}
}
