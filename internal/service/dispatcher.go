package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/tradewatch/trade-bridge/internal/biz/repo"
	"github.com/tradewatch/trade-bridge/internal/biz/usecase"
)

// NotificationDispatcher delivers alert notifications asynchronously
// through the gateway. Enqueue never blocks: when the queue is full the
// task is dropped and logged, so a slow gateway cannot stall ingestion.
type NotificationDispatcher struct {
	tenantRepo repo.TenantRepo
	gateway    repo.GatewayClient

	queue   chan usecase.NotificationTask
	workers int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewNotificationDispatcher creates a dispatcher with a bounded queue.
func NewNotificationDispatcher(tenantRepo repo.TenantRepo, gateway repo.GatewayClient, queueSize, workers int) *NotificationDispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 2
	}
	return &NotificationDispatcher{
		tenantRepo: tenantRepo,
		gateway:    gateway,
		queue:      make(chan usecase.NotificationTask, queueSize),
		workers:    workers,
	}
}

// Start launches the delivery workers.
func (d *NotificationDispatcher) Start(ctx context.Context) {
	d.ctx, d.cancel = context.WithCancel(ctx)

	d.wg.Add(d.workers)
	for i := 0; i < d.workers; i++ {
		go d.deliverLoop()
	}

	log.Printf("[Dispatcher] Started with %d workers", d.workers)
}

// Stop stops the workers. Queued tasks that have not started delivery
// are abandoned.
func (d *NotificationDispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
	log.Println("[Dispatcher] Stopped")
}

// Enqueue submits a task for delivery without blocking.
func (d *NotificationDispatcher) Enqueue(task usecase.NotificationTask) {
	select {
	case d.queue <- task:
	default:
		log.Printf("[Dispatcher] queue full, dropping notification for tenant %s", task.TenantID)
	}
}

func (d *NotificationDispatcher) deliverLoop() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return
		case task := <-d.queue:
			d.deliver(task)
		}
	}
}

// deliver sends one notification with a small retry budget.
func (d *NotificationDispatcher) deliver(task usecase.NotificationTask) {
	tenant, err := d.tenantRepo.GetByID(d.ctx, task.TenantID)
	if err != nil || tenant == nil {
		log.Printf("[Dispatcher] tenant %s unavailable, dropping notification: %v", task.TenantID, err)
		return
	}
	creds := tenant.Credentials()

	backoff := time.Second
	for attempt := 1; attempt <= 3; attempt++ {
		err := d.gateway.SendText(d.ctx, creds, task.Destination, task.Text)
		if err == nil {
			return
		}
		log.Printf("[Dispatcher] delivery attempt %d to %s failed: %v", attempt, task.Destination, err)

		select {
		case <-d.ctx.Done():
			return
		case <-time.After(backoff):
			backoff *= 2
		}
	}
	log.Printf("[Dispatcher] giving up on notification to %s for tenant %s", task.Destination, task.TenantID)
}

// Send delivers a notification synchronously on behalf of a tenant.
func (d *NotificationDispatcher) Send(ctx context.Context, tenantID, destination, text string) error {
	tenant, err := d.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if tenant == nil {
		return nil
	}
	return d.gateway.SendText(ctx, tenant.Credentials(), destination, text)
}
