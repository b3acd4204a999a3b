package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
	"github.com/tradewatch/trade-bridge/internal/biz/repo"
)

// contactRepo implements the contact directory on sqlite.
type contactRepo struct {
	db *sql.DB
}

// NewContactRepo creates a new contact repository.
func NewContactRepo(db *sql.DB) (repo.ContactRepo, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS contacts (
			id TEXT NOT NULL,
			tenant_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			channel_id TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (tenant_id, id)
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create contacts table: %w", err)
	}
	return &contactRepo{db: db}, nil
}

// ListByTenant returns all contacts uploaded by the tenant.
func (r *contactRepo) ListByTenant(ctx context.Context, tenantID string) ([]*domain.Contact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tenant_id, name, phone, channel_id, created_at, updated_at
		FROM contacts WHERE tenant_id = ?
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var out []*domain.Contact
	for rows.Next() {
		var c domain.Contact
		var createdAt, updatedAt int64
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.Phone, &c.ChannelID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		c.CreatedAt = time.Unix(createdAt, 0)
		c.UpdatedAt = time.Unix(updatedAt, 0)
		out = append(out, &c)
	}
	return out, rows.Err()
}

// Save upserts a contact, preserving the channel attribution and creation
// time of an existing row.
func (r *contactRepo) Save(ctx context.Context, c *domain.Contact) error {
	now := time.Now().Unix()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contacts (id, tenant_id, name, phone, channel_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tenant_id, id) DO UPDATE SET
			name = excluded.name,
			phone = excluded.phone,
			updated_at = excluded.updated_at
	`, c.ID, c.TenantID, c.Name, c.Phone, c.ChannelID, now, now)
	if err != nil {
		return fmt.Errorf("failed to save contact: %w", err)
	}
	return nil
}

// SetChannel backfills the channel a contact was observed in.
func (r *contactRepo) SetChannel(ctx context.Context, tenantID, contactID, channelID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE contacts SET channel_id = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ?
	`, channelID, time.Now().Unix(), tenantID, contactID)
	if err != nil {
		return fmt.Errorf("failed to set contact channel: %w", err)
	}
	return nil
}

// channelRepo implements the persisted channel directory on sqlite.
type channelRepo struct {
	db *sql.DB
}

// NewChannelRepo creates a new channel repository.
func NewChannelRepo(db *sql.DB) (repo.ChannelRepo, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS channels (
			tenant_id TEXT NOT NULL,
			id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			participant_count INTEGER NOT NULL DEFAULT 0,
			last_seen INTEGER NOT NULL,
			PRIMARY KEY (tenant_id, id)
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create channels table: %w", err)
	}
	return &channelRepo{db: db}, nil
}

// Get fetches a channel by id.
func (r *channelRepo) Get(ctx context.Context, tenantID, channelID string) (*domain.Channel, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT tenant_id, id, name, participant_count, last_seen
		FROM channels WHERE tenant_id = ? AND id = ?
	`, tenantID, channelID)

	var ch domain.Channel
	var lastSeen int64
	err := row.Scan(&ch.TenantID, &ch.ID, &ch.Name, &ch.ParticipantCount, &lastSeen)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query channel: %w", err)
	}
	ch.LastSeen = time.Unix(lastSeen, 0)
	return &ch, nil
}

// Upsert stores or refreshes a channel row. A zero participant count
// keeps the previously known value.
func (r *channelRepo) Upsert(ctx context.Context, ch *domain.Channel) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO channels (tenant_id, id, name, participant_count, last_seen)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (tenant_id, id) DO UPDATE SET
			name = excluded.name,
			participant_count = CASE WHEN excluded.participant_count > 0
				THEN excluded.participant_count ELSE channels.participant_count END,
			last_seen = excluded.last_seen
	`, ch.TenantID, ch.ID, ch.Name, ch.ParticipantCount, ch.LastSeen.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert channel: %w", err)
	}
	return nil
}

// ListByTenant returns channels for the visible tenant set.
func (r *channelRepo) ListByTenant(ctx context.Context, visibleTenants []string) ([]*domain.Channel, error) {
	if len(visibleTenants) == 0 {
		return nil, nil
	}
	ph, args := placeholders(visibleTenants)
	rows, err := r.db.QueryContext(ctx, `
		SELECT tenant_id, id, name, participant_count, last_seen
		FROM channels WHERE tenant_id IN (`+ph+`)
		ORDER BY last_seen DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	var out []*domain.Channel
	for rows.Next() {
		var ch domain.Channel
		var lastSeen int64
		if err := rows.Scan(&ch.TenantID, &ch.ID, &ch.Name, &ch.ParticipantCount, &lastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		ch.LastSeen = time.Unix(lastSeen, 0)
		out = append(out, &ch)
	}
	return out, rows.Err()
}
