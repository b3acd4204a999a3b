package domain

import "time"

// AuditStatus is the terminal status recorded for every inbound event.
type AuditStatus string

const (
	AuditPending     AuditStatus = "pending"
	AuditProcessed   AuditStatus = "processed"
	AuditDuplicate   AuditStatus = "duplicate"
	AuditIgnored     AuditStatus = "ignored"
	AuditRequirement AuditStatus = "requirement"
	AuditError       AuditStatus = "error"
)

// MessageAudit is the per-inbound-event audit row. Tenants observe
// ingestion failures only through this status and detail; no internal
// error detail is exposed on the wire.
type MessageAudit struct {
	ID           string
	TenantID     string
	MessageID    string
	Status       AuditStatus
	Listings     int
	Requirements int
	Detail       string
	CreatedAt    time.Time
}
