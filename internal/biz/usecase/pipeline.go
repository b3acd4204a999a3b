package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
	"github.com/tradewatch/trade-bridge/internal/biz/repo"
)

// Ack is the JSON acknowledgement returned for every webhook delivery.
type Ack struct {
	Status       string `json:"status"`
	Reason       string `json:"reason,omitempty"`
	Listings     int    `json:"listings"`
	Requirements int    `json:"requirements"`
}

// Pipeline is the ingestion orchestrator: tenant resolution, envelope
// normalization, deduplication, classification, identity resolution,
// extraction, persistence, alert matching and audit. Each delivery is an
// independent unit of work; the only shared state are the injected caches.
type Pipeline struct {
	tenants    *TenantResolver
	deduper    *Deduper
	classifier *Classifier
	senders    *SenderResolver
	channels   *ChannelResolver
	parser     *Parser
	matcher    *AlertMatcher
	tradeRepo  repo.TradeRepo
	auditRepo  repo.AuditRepo

	// RematchDuplicates re-runs alert matching for detected duplicates.
	// Observed default is off: duplicates are audited but not re-matched.
	RematchDuplicates bool
}

// NewPipeline wires the ingestion pipeline.
func NewPipeline(
	tenants *TenantResolver,
	deduper *Deduper,
	classifier *Classifier,
	senders *SenderResolver,
	channels *ChannelResolver,
	parser *Parser,
	matcher *AlertMatcher,
	tradeRepo repo.TradeRepo,
	auditRepo repo.AuditRepo,
) *Pipeline {
	return &Pipeline{
		tenants:    tenants,
		deduper:    deduper,
		classifier: classifier,
		senders:    senders,
		channels:   channels,
		parser:     parser,
		matcher:    matcher,
		tradeRepo:  tradeRepo,
		auditRepo:  auditRepo,
	}
}

// Process handles one webhook delivery. It returns an error only for the
// two edge-visible failures (authorization, malformed payload); every
// internal failure degrades to an audit status and a well-formed ack.
func (p *Pipeline) Process(ctx context.Context, payload []byte) (*Ack, error) {
	if !json.Valid(payload) {
		return nil, domain.ErrMalformedPayload
	}

	tenant, err := p.tenants.Resolve(ctx, ExtractInstanceID(payload))
	if err != nil {
		return nil, err
	}

	msg, kind := Normalize(payload)
	if kind == domain.EnvelopeUnknown {
		// A valid, ignorable terminal state: audit it so volume stays
		// observable, then acknowledge.
		p.audit(ctx, tenant.ID, "", domain.AuditIgnored, 0, 0, domain.ReasonUnknownShape)
		return &Ack{Status: string(domain.AuditIgnored), Reason: domain.ReasonUnknownShape}, nil
	}

	duplicate := false
	if fresh := p.deduper.Check(tenant.ID, msg); !fresh {
		p.audit(ctx, tenant.ID, msg.ID, domain.AuditDuplicate, 0, 0, "")
		if !p.RematchDuplicates {
			return &Ack{Status: string(domain.AuditDuplicate), Reason: domain.ReasonDuplicate}, nil
		}
		// Rematch policy: re-run alert evaluation over the extracted
		// records without persisting them again.
		duplicate = true
	}

	class, reason := p.classifier.Classify(tenant, msg)
	if class == domain.ClassIgnored {
		if duplicate {
			return &Ack{Status: string(domain.AuditDuplicate), Reason: domain.ReasonDuplicate}, nil
		}
		p.audit(ctx, tenant.ID, msg.ID, domain.AuditIgnored, 0, 0, reason)
		return &Ack{Status: string(domain.AuditIgnored), Reason: reason}, nil
	}

	identity, err := p.senders.Resolve(ctx, tenant.ID, msg.SenderAddress, senderDisplay(msg), msg.ChannelID)
	if err != nil {
		return p.fail(ctx, tenant.ID, msg.ID, fmt.Errorf("resolve sender: %w", err)), nil
	}
	channelName := p.channels.Resolve(ctx, tenant, msg.ChannelID)

	lines := p.parser.Parse(msg.Text)
	if len(lines) == 0 {
		if duplicate {
			return &Ack{Status: string(domain.AuditDuplicate), Reason: domain.ReasonDuplicate}, nil
		}
		// ParseSkip: a normal outcome, not an error.
		p.audit(ctx, tenant.ID, msg.ID, domain.AuditProcessed, 0, 0, domain.ReasonNoRecords)
		return &Ack{Status: string(domain.AuditProcessed), Reason: domain.ReasonNoRecords}, nil
	}

	tradeKind := domain.TradeListing
	status := domain.AuditProcessed
	if class == domain.ClassRequest {
		tradeKind = domain.TradeRequirement
		status = domain.AuditRequirement
	}

	created := 0
	for _, line := range lines {
		rec := recordFromLine(tenant.ID, tradeKind, line, msg, identity, channelName)
		if duplicate {
			p.matcher.Evaluate(ctx, rec)
			continue
		}
		if err := p.tradeRepo.Save(ctx, rec); err != nil {
			return p.fail(ctx, tenant.ID, msg.ID, fmt.Errorf("persist record: %w", err)), nil
		}
		created++
		p.matcher.Evaluate(ctx, rec)
	}
	if duplicate {
		return &Ack{Status: string(domain.AuditDuplicate), Reason: domain.ReasonDuplicate}, nil
	}

	listings, requirements := created, 0
	if tradeKind == domain.TradeRequirement {
		listings, requirements = 0, created
	}
	p.audit(ctx, tenant.ID, msg.ID, status, listings, requirements, "")
	return &Ack{Status: string(status), Listings: listings, Requirements: requirements}, nil
}

func recordFromLine(
	tenantID string,
	kind domain.TradeKind,
	line domain.ParsedLine,
	msg *domain.CanonicalMessage,
	identity domain.SenderIdentity,
	channelName string,
) *domain.TradeRecord {
	return &domain.TradeRecord{
		ID:            uuid.NewString(),
		TenantID:      tenantID,
		Kind:          kind,
		Reference:     line.Reference,
		Brand:         line.Brand,
		Family:        line.Family,
		Year:          line.Year,
		Variant:       line.Variant,
		Condition:     line.Condition,
		Price:         line.Price,
		Currency:      line.Currency,
		MonthCode:     line.MonthCode,
		SenderDisplay: identity.DisplayName,
		SenderPhone:   identity.Phone,
		ChannelID:     msg.ChannelID,
		ChannelName:   channelName,
		RawLine:       line.RawLine,
		MessageID:     msg.ID,
		CreatedAt:     time.Unix(msg.TimestampSeconds, 0),
	}
}

// senderDisplay derives a human display for the sender before the
// directory has spoken: the push name when the envelope carried one, the
// phone for direct addresses, the opaque local part otherwise.
func senderDisplay(msg *domain.CanonicalMessage) string {
	if msg.SenderDisplay != "" {
		return msg.SenderDisplay
	}
	if phone := domain.PhoneFromDirectAddress(msg.SenderAddress); phone != "" {
		return phone
	}
	addr := msg.SenderAddress
	for i := 0; i < len(addr); i++ {
		if addr[i] == '@' {
			return addr[:i]
		}
	}
	return addr
}

// fail converts an internal failure into an audit row and an error ack.
// The webhook response stays well-formed; the tenant observes the failure
// through audit status only.
func (p *Pipeline) fail(ctx context.Context, tenantID, messageID string, err error) *Ack {
	log.Printf("[Pipeline] ingest failed for tenant %s: %v", tenantID, err)
	p.audit(ctx, tenantID, messageID, domain.AuditError, 0, 0, err.Error())
	return &Ack{Status: string(domain.AuditError), Reason: "internal"}
}

func (p *Pipeline) audit(ctx context.Context, tenantID, messageID string, status domain.AuditStatus, listings, requirements int, detail string) {
	a := &domain.MessageAudit{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		MessageID:    messageID,
		Status:       status,
		Listings:     listings,
		Requirements: requirements,
		Detail:       detail,
		CreatedAt:    time.Now(),
	}
	if err := p.auditRepo.Save(ctx, a); err != nil {
		log.Printf("[Pipeline] audit write failed for tenant %s: %v", tenantID, err)
	}
}
