package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
	"github.com/tradewatch/trade-bridge/internal/biz/repo"
)

// Dispatcher receives notification tasks for asynchronous delivery. The
// implementation owns its own retry policy; Enqueue must never block the
// ingestion path.
type Dispatcher interface {
	Enqueue(task NotificationTask)
}

// NotificationTask is one pending alert notification.
type NotificationTask struct {
	TenantID    string
	Destination string
	Text        string
}

// AlertMatcher evaluates newly persisted trade records against the owning
// tenant's active subscriptions and hands matches to the dispatcher.
// Matching is strictly scoped to one tenant; dispatch failures are the
// dispatcher's problem and never fail ingestion.
type AlertMatcher struct {
	alertRepo  repo.AlertRepo
	dispatcher Dispatcher
}

// NewAlertMatcher creates an alert matcher.
func NewAlertMatcher(alertRepo repo.AlertRepo, dispatcher Dispatcher) *AlertMatcher {
	return &AlertMatcher{alertRepo: alertRepo, dispatcher: dispatcher}
}

// Evaluate matches one record against the tenant's subscriptions. Returns
// the number of alerts triggered.
func (m *AlertMatcher) Evaluate(ctx context.Context, rec *domain.TradeRecord) int {
	subs, err := m.alertRepo.ListActive(ctx, rec.TenantID)
	if err != nil {
		log.Printf("[AlertMatcher] listing subscriptions failed for tenant %s: %v", rec.TenantID, err)
		return 0
	}

	triggered := 0
	now := time.Now()
	for _, sub := range subs {
		if !sub.Matches(rec) {
			continue
		}
		if err := m.alertRepo.MarkTriggered(ctx, sub.TenantID, sub.ID, now); err != nil {
			log.Printf("[AlertMatcher] marking subscription %s failed: %v", sub.ID, err)
		}
		m.dispatcher.Enqueue(NotificationTask{
			TenantID:    sub.TenantID,
			Destination: sub.Destination,
			Text:        notificationText(rec),
		})
		triggered++
	}
	return triggered
}

func notificationText(rec *domain.TradeRecord) string {
	price := "price on request"
	if rec.HasPrice() {
		price = fmt.Sprintf("%s %.0f", rec.Currency, rec.Price)
	}
	label := "Listing"
	if rec.Kind == domain.TradeRequirement {
		label = "Requirement"
	}
	text := fmt.Sprintf("%s alert: %s", label, rec.Reference)
	if rec.Brand != "" {
		text += " " + rec.Brand
	}
	if rec.Variant != "" {
		text += " " + rec.Variant
	}
	text += fmt.Sprintf(" at %s in %s (from %s)", price, rec.ChannelName, rec.SenderDisplay)
	return text
}
