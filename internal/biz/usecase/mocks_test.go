package usecase

import (
	"context"
	"time"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
	"github.com/tradewatch/trade-bridge/internal/biz/repo"
)

// Mock implementations shared across the package tests.

type mockTenantRepo struct {
	byInstance map[string]*domain.Tenant
	byID       map[string]*domain.Tenant
	err        error
}

func newMockTenantRepo(tenants ...*domain.Tenant) *mockTenantRepo {
	m := &mockTenantRepo{
		byInstance: make(map[string]*domain.Tenant),
		byID:       make(map[string]*domain.Tenant),
	}
	for _, t := range tenants {
		m.byInstance[t.InstanceID] = t
		m.byID[t.ID] = t
	}
	return m
}

func (m *mockTenantRepo) GetByInstance(ctx context.Context, instanceID string) (*domain.Tenant, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byInstance[instanceID], nil
}

func (m *mockTenantRepo) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byID[id], nil
}

func (m *mockTenantRepo) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Tenant, error) {
	var out []*domain.Tenant
	for _, t := range m.byID {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTenantRepo) Save(ctx context.Context, t *domain.Tenant) error {
	m.byInstance[t.InstanceID] = t
	m.byID[t.ID] = t
	return nil
}

type mockTradeRepo struct {
	saved           []*domain.TradeRecord
	saveErr         error
	phoneBackfills  int
	backfillPhone   string
	backfillDisplay string
}

func (m *mockTradeRepo) Save(ctx context.Context, rec *domain.TradeRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, rec)
	return nil
}

func (m *mockTradeRepo) List(ctx context.Context, f repo.TradeFilter) ([]*domain.TradeRecord, error) {
	if len(f.VisibleTenants) == 0 {
		return nil, nil
	}
	visible := make(map[string]bool, len(f.VisibleTenants))
	for _, id := range f.VisibleTenants {
		visible[id] = true
	}
	var out []*domain.TradeRecord
	for _, rec := range m.saved {
		if !visible[rec.TenantID] {
			continue
		}
		if rec.Inventory && rec.TenantID != f.RequesterID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *mockTradeRepo) BackfillSenderPhone(ctx context.Context, tenantID, displayName, phone string) (int64, error) {
	m.phoneBackfills++
	m.backfillDisplay = displayName
	m.backfillPhone = phone
	var n int64
	for _, rec := range m.saved {
		if rec.TenantID == tenantID && rec.SenderDisplay == displayName && rec.SenderPhone == "" {
			rec.SenderPhone = phone
			n++
		}
	}
	return n, nil
}

func (m *mockTradeRepo) BackfillChannelName(ctx context.Context, tenantID, channelID, name string) (int64, error) {
	var n int64
	for _, rec := range m.saved {
		if rec.TenantID == tenantID && rec.ChannelID == channelID && rec.ChannelName != name {
			rec.ChannelName = name
			n++
		}
	}
	return n, nil
}

type mockContactRepo struct {
	contacts    []*domain.Contact
	listErr     error
	channelSets map[string]string // contact id -> channel id
}

func (m *mockContactRepo) ListByTenant(ctx context.Context, tenantID string) ([]*domain.Contact, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*domain.Contact
	for _, c := range m.contacts {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockContactRepo) Save(ctx context.Context, c *domain.Contact) error {
	m.contacts = append(m.contacts, c)
	return nil
}

func (m *mockContactRepo) SetChannel(ctx context.Context, tenantID, contactID, channelID string) error {
	if m.channelSets == nil {
		m.channelSets = make(map[string]string)
	}
	m.channelSets[contactID] = channelID
	return nil
}

type mockChannelRepo struct {
	channels map[string]*domain.Channel // tenantID|channelID
	upserts  int
}

func channelMapKey(tenantID, channelID string) string {
	return tenantID + "|" + channelID
}

func (m *mockChannelRepo) Get(ctx context.Context, tenantID, channelID string) (*domain.Channel, error) {
	return m.channels[channelMapKey(tenantID, channelID)], nil
}

func (m *mockChannelRepo) Upsert(ctx context.Context, ch *domain.Channel) error {
	if m.channels == nil {
		m.channels = make(map[string]*domain.Channel)
	}
	m.channels[channelMapKey(ch.TenantID, ch.ID)] = ch
	m.upserts++
	return nil
}

func (m *mockChannelRepo) ListByTenant(ctx context.Context, visibleTenants []string) ([]*domain.Channel, error) {
	var out []*domain.Channel
	for _, id := range visibleTenants {
		for _, ch := range m.channels {
			if ch.TenantID == id {
				out = append(out, ch)
			}
		}
	}
	return out, nil
}

type mockAlertRepo struct {
	alerts    []*domain.AlertSubscription
	triggered []string
}

func (m *mockAlertRepo) ListActive(ctx context.Context, tenantID string) ([]*domain.AlertSubscription, error) {
	var out []*domain.AlertSubscription
	for _, a := range m.alerts {
		if a.TenantID == tenantID && a.Active {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAlertRepo) List(ctx context.Context, visibleTenants []string) ([]*domain.AlertSubscription, error) {
	var out []*domain.AlertSubscription
	for _, id := range visibleTenants {
		for _, a := range m.alerts {
			if a.TenantID == id {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (m *mockAlertRepo) Get(ctx context.Context, tenantID, id string) (*domain.AlertSubscription, error) {
	for _, a := range m.alerts {
		if a.TenantID == tenantID && a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (m *mockAlertRepo) Save(ctx context.Context, sub *domain.AlertSubscription) error {
	for i, a := range m.alerts {
		if a.TenantID == sub.TenantID && a.ID == sub.ID {
			m.alerts[i] = sub
			return nil
		}
	}
	m.alerts = append(m.alerts, sub)
	return nil
}

func (m *mockAlertRepo) Delete(ctx context.Context, tenantID, id string) error {
	for i, a := range m.alerts {
		if a.TenantID == tenantID && a.ID == id {
			m.alerts = append(m.alerts[:i], m.alerts[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockAlertRepo) MarkTriggered(ctx context.Context, tenantID, id string, at time.Time) error {
	m.triggered = append(m.triggered, id)
	for _, a := range m.alerts {
		if a.TenantID == tenantID && a.ID == id {
			a.TriggeredCount++
			t := at
			a.LastTriggered = &t
		}
	}
	return nil
}

type mockAuditRepo struct {
	saved []*domain.MessageAudit
}

func (m *mockAuditRepo) Save(ctx context.Context, a *domain.MessageAudit) error {
	m.saved = append(m.saved, a)
	return nil
}

func (m *mockAuditRepo) List(ctx context.Context, visibleTenants []string, limit int) ([]*domain.MessageAudit, error) {
	var out []*domain.MessageAudit
	for _, id := range visibleTenants {
		for _, a := range m.saved {
			if a.TenantID == id {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (m *mockAuditRepo) last() *domain.MessageAudit {
	if len(m.saved) == 0 {
		return nil
	}
	return m.saved[len(m.saved)-1]
}

type mockGateway struct {
	channels []repo.ChannelInfo
	listErr  error
	sent     []string
}

func (m *mockGateway) ListChannels(ctx context.Context, creds domain.GatewayCredentials) ([]repo.ChannelInfo, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.channels, nil
}

func (m *mockGateway) SendText(ctx context.Context, creds domain.GatewayCredentials, destination, text string) error {
	m.sent = append(m.sent, destination+": "+text)
	return nil
}

type mockDispatcher struct {
	tasks []NotificationTask
}

func (m *mockDispatcher) Enqueue(task NotificationTask) {
	m.tasks = append(m.tasks, task)
}
