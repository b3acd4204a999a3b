package data

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tradewatch/trade-bridge/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// Repositories contains all sqlite-backed repositories, sharing one
// database handle.
type Repositories struct {
	Tenant  repo.TenantRepo
	Trade   repo.TradeRepo
	Alert   repo.AlertRepo
	Audit   repo.AuditRepo
	Contact repo.ContactRepo
	Channel repo.ChannelRepo

	db *sql.DB
}

// NewRepositories opens the database and creates all repositories.
func NewRepositories(dbPath string) (*Repositories, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	tenantRepo, err := NewTenantRepo(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	tradeRepo, err := NewTradeRepo(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	alertRepo, err := NewAlertRepo(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	auditRepo, err := NewAuditRepo(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	contactRepo, err := NewContactRepo(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	channelRepo, err := NewChannelRepo(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Repositories{
		Tenant:  tenantRepo,
		Trade:   tradeRepo,
		Alert:   alertRepo,
		Audit:   auditRepo,
		Contact: contactRepo,
		Channel: channelRepo,
		db:      db,
	}, nil
}

// Close closes the shared database connection.
func (r *Repositories) Close() error {
	return r.db.Close()
}

// placeholders renders "?, ?, ?" for an IN clause and the matching args.
// An empty input produces no placeholders; callers must guard with a
// match-nothing clause instead of dropping the filter.
func placeholders(ids []string) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", "), args
}
