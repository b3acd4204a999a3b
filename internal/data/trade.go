package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
	"github.com/tradewatch/trade-bridge/internal/biz/repo"
)

// tradeRepo implements the trade record repository on sqlite.
type tradeRepo struct {
	db *sql.DB
}

// NewTradeRepo creates a new trade record repository.
func NewTradeRepo(db *sql.DB) (repo.TradeRepo, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			reference TEXT NOT NULL,
			brand TEXT NOT NULL DEFAULT '',
			family TEXT NOT NULL DEFAULT '',
			year INTEGER NOT NULL DEFAULT 0,
			variant TEXT NOT NULL DEFAULT '',
			condition TEXT NOT NULL DEFAULT '',
			price REAL NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT '',
			month_code TEXT NOT NULL DEFAULT '',
			sender_display TEXT NOT NULL DEFAULT '',
			sender_phone TEXT NOT NULL DEFAULT '',
			channel_id TEXT NOT NULL DEFAULT '',
			channel_name TEXT NOT NULL DEFAULT '',
			raw_line TEXT NOT NULL DEFAULT '',
			message_id TEXT NOT NULL DEFAULT '',
			inventory INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create trades table: %w", err)
	}
	for _, stmt := range []string{
		`CREATE INDEX IF NOT EXISTS idx_trades_tenant ON trades(tenant_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_reference ON trades(tenant_id, reference)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_sender ON trades(tenant_id, sender_display)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create trades index: %w", err)
		}
	}
	return &tradeRepo{db: db}, nil
}

const tradeColumns = `id, tenant_id, kind, reference, brand, family, year, variant,
	condition, price, currency, month_code, sender_display, sender_phone,
	channel_id, channel_name, raw_line, message_id, inventory, created_at`

// Save persists a new trade record.
func (r *tradeRepo) Save(ctx context.Context, rec *domain.TradeRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO trades (`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.TenantID, string(rec.Kind), rec.Reference, rec.Brand, rec.Family,
		rec.Year, rec.Variant, string(rec.Condition), rec.Price, rec.Currency,
		rec.MonthCode, rec.SenderDisplay, rec.SenderPhone, rec.ChannelID,
		rec.ChannelName, rec.RawLine, rec.MessageID, boolInt(rec.Inventory),
		rec.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save trade record: %w", err)
	}
	return nil
}

// List returns records matching the filter, newest first. The visible
// tenant set is mandatory: an empty set matches nothing.
func (r *tradeRepo) List(ctx context.Context, f repo.TradeFilter) ([]*domain.TradeRecord, error) {
	if len(f.VisibleTenants) == 0 {
		return nil, nil
	}

	ph, args := placeholders(f.VisibleTenants)
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE tenant_id IN (` + ph + `)`

	// Inventory records stay private to their owner even when the
	// workspace is shared.
	query += ` AND (inventory = 0 OR tenant_id = ?)`
	args = append(args, f.RequesterID)

	if f.Reference != "" {
		query += ` AND reference = ? COLLATE NOCASE`
		args = append(args, f.Reference)
	}
	if f.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(f.Kind))
	}
	if f.ChannelID != "" {
		query += ` AND channel_id = ?`
		args = append(args, f.ChannelID)
	}
	query += ` ORDER BY created_at DESC`
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list trade records: %w", err)
	}
	defer rows.Close()

	var out []*domain.TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanTrade(rows *sql.Rows) (*domain.TradeRecord, error) {
	var rec domain.TradeRecord
	var kind, condition string
	var inventory int
	var createdAt int64
	err := rows.Scan(
		&rec.ID, &rec.TenantID, &kind, &rec.Reference, &rec.Brand, &rec.Family,
		&rec.Year, &rec.Variant, &condition, &rec.Price, &rec.Currency,
		&rec.MonthCode, &rec.SenderDisplay, &rec.SenderPhone, &rec.ChannelID,
		&rec.ChannelName, &rec.RawLine, &rec.MessageID, &inventory, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Kind = domain.TradeKind(kind)
	rec.Condition = domain.Condition(condition)
	rec.Inventory = inventory != 0
	rec.CreatedAt = time.Unix(createdAt, 0)
	return &rec, nil
}

// BackfillSenderPhone fills the phone on earlier records sharing the
// display name that still lack one.
func (r *tradeRepo) BackfillSenderPhone(ctx context.Context, tenantID, displayName, phone string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE trades SET sender_phone = ?
		WHERE tenant_id = ? AND sender_display = ? AND sender_phone = ''
	`, phone, tenantID, displayName)
	if err != nil {
		return 0, fmt.Errorf("failed to backfill sender phone: %w", err)
	}
	return result.RowsAffected()
}

// BackfillChannelName replaces the channel-name display on earlier records
// of the channel.
func (r *tradeRepo) BackfillChannelName(ctx context.Context, tenantID, channelID, name string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE trades SET channel_name = ?
		WHERE tenant_id = ? AND channel_id = ? AND channel_name != ?
	`, name, tenantID, channelID, name)
	if err != nil {
		return 0, fmt.Errorf("failed to backfill channel name: %w", err)
	}
	return result.RowsAffected()
}
