package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
)

const maxWebhookBody = 1 << 20

// handleWebhook ingests one gateway delivery. Only two conditions surface
// as HTTP errors; everything else acknowledges with 200 so the gateway
// never retries a delivery we have already audited.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	ack, err := s.pipeline.Process(r.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTenantNotAuthorized):
			writeError(w, http.StatusForbidden, "unknown instance")
		case errors.Is(err, domain.ErrMalformedPayload):
			writeError(w, http.StatusBadRequest, "malformed payload")
		default:
			log.Printf("[Server] webhook processing failed: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

type directorySyncRequest struct {
	Entries []domain.DirectoryEntry `json:"entries"`
}

func (s *Server) handleDirectorySync(w http.ResponseWriter, r *http.Request) {
	var req directorySyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := s.dirSync.Apply(r.Context(), requester(r), req.Entries); err != nil {
		log.Printf("[Server] directory sync failed: %v", err)
		writeError(w, http.StatusInternalServerError, "sync failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"applied": len(req.Entries)})
}

type tradeDTO struct {
	ID            string  `json:"id"`
	TenantID      string  `json:"tenant_id"`
	Kind          string  `json:"kind"`
	Reference     string  `json:"reference"`
	Brand         string  `json:"brand,omitempty"`
	Family        string  `json:"family,omitempty"`
	Year          int     `json:"year,omitempty"`
	Variant       string  `json:"variant,omitempty"`
	Condition     string  `json:"condition,omitempty"`
	Price         float64 `json:"price,omitempty"`
	Currency      string  `json:"currency,omitempty"`
	MonthCode     string  `json:"month_code,omitempty"`
	SenderDisplay string  `json:"sender_display"`
	SenderPhone   string  `json:"sender_phone,omitempty"`
	ChannelID     string  `json:"channel_id"`
	ChannelName   string  `json:"channel_name"`
	RawLine       string  `json:"raw_line"`
	MessageID     string  `json:"message_id"`
	Inventory     bool    `json:"inventory,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

func toTradeDTO(rec *domain.TradeRecord) tradeDTO {
	return tradeDTO{
		ID:            rec.ID,
		TenantID:      rec.TenantID,
		Kind:          string(rec.Kind),
		Reference:     rec.Reference,
		Brand:         rec.Brand,
		Family:        rec.Family,
		Year:          rec.Year,
		Variant:       rec.Variant,
		Condition:     string(rec.Condition),
		Price:         rec.Price,
		Currency:      rec.Currency,
		MonthCode:     rec.MonthCode,
		SenderDisplay: rec.SenderDisplay,
		SenderPhone:   rec.SenderPhone,
		ChannelID:     rec.ChannelID,
		ChannelName:   rec.ChannelName,
		RawLine:       rec.RawLine,
		MessageID:     rec.MessageID,
		Inventory:     rec.Inventory,
		CreatedAt:     rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	filter, err := s.access.TradeFilterFor(r.Context(), requester(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "resolving visibility failed")
		return
	}

	q := r.URL.Query()
	filter.Reference = q.Get("reference")
	filter.ChannelID = q.Get("channel_id")
	switch q.Get("kind") {
	case "listing":
		filter.Kind = domain.TradeListing
	case "requirement":
		filter.Kind = domain.TradeRequirement
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	recs, err := s.tradeRepo.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing trades failed")
		return
	}
	out := make([]tradeDTO, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toTradeDTO(rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{"trades": out})
}

type channelDTO struct {
	TenantID         string `json:"tenant_id"`
	ID               string `json:"id"`
	Name             string `json:"name"`
	ParticipantCount int    `json:"participants"`
	LastSeen         string `json:"last_seen"`
}

func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	visible, err := s.access.VisibleTenants(r.Context(), requester(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "resolving visibility failed")
		return
	}
	channels, err := s.channelRepo.ListByTenant(r.Context(), visible)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing channels failed")
		return
	}
	out := make([]channelDTO, 0, len(channels))
	for _, ch := range channels {
		out = append(out, channelDTO{
			TenantID:         ch.TenantID,
			ID:               ch.ID,
			Name:             ch.Name,
			ParticipantCount: ch.ParticipantCount,
			LastSeen:         ch.LastSeen.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"channels": out})
}

type contactDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	ChannelID string `json:"channel_id,omitempty"`
}

// handleListContacts returns the requester's own directory. Contact
// directories are never shared across a workspace.
func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.contactRepo.ListByTenant(r.Context(), requester(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing contacts failed")
		return
	}
	out := make([]contactDTO, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, contactDTO{ID: c.ID, Name: c.Name, Phone: c.Phone, ChannelID: c.ChannelID})
	}
	writeJSON(w, http.StatusOK, map[string]any{"contacts": out})
}

type auditDTO struct {
	ID           string `json:"id"`
	TenantID     string `json:"tenant_id"`
	MessageID    string `json:"message_id"`
	Status       string `json:"status"`
	Listings     int    `json:"listings"`
	Requirements int    `json:"requirements"`
	Detail       string `json:"detail,omitempty"`
	CreatedAt    string `json:"created_at"`
}

func (s *Server) handleListAudits(w http.ResponseWriter, r *http.Request) {
	visible, err := s.access.VisibleTenants(r.Context(), requester(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "resolving visibility failed")
		return
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	audits, err := s.auditRepo.List(r.Context(), visible, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing audits failed")
		return
	}
	out := make([]auditDTO, 0, len(audits))
	for _, a := range audits {
		out = append(out, auditDTO{
			ID:           a.ID,
			TenantID:     a.TenantID,
			MessageID:    a.MessageID,
			Status:       string(a.Status),
			Listings:     a.Listings,
			Requirements: a.Requirements,
			Detail:       a.Detail,
			CreatedAt:    a.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"audits": out})
}

type alertDTO struct {
	ID             string   `json:"id"`
	TenantID       string   `json:"tenant_id"`
	Reference      string   `json:"reference"`
	Variant        string   `json:"variant,omitempty"`
	MinPrice       *float64 `json:"min_price,omitempty"`
	MaxPrice       *float64 `json:"max_price,omitempty"`
	Currency       string   `json:"currency,omitempty"`
	Destination    string   `json:"destination"`
	Active         bool     `json:"active"`
	TriggeredCount int      `json:"triggered_count"`
	LastTriggered  string   `json:"last_triggered,omitempty"`
	CreatedAt      string   `json:"created_at"`
}

func toAlertDTO(sub *domain.AlertSubscription) alertDTO {
	dto := alertDTO{
		ID:             sub.ID,
		TenantID:       sub.TenantID,
		Reference:      sub.Reference,
		Variant:        sub.Variant,
		MinPrice:       sub.MinPrice,
		MaxPrice:       sub.MaxPrice,
		Currency:       sub.Currency,
		Destination:    sub.Destination,
		Active:         sub.Active,
		TriggeredCount: sub.TriggeredCount,
		CreatedAt:      sub.CreatedAt.UTC().Format(time.RFC3339),
	}
	if sub.LastTriggered != nil {
		dto.LastTriggered = sub.LastTriggered.UTC().Format(time.RFC3339)
	}
	return dto
}

type alertRequest struct {
	Reference   string   `json:"reference"`
	Variant     string   `json:"variant"`
	MinPrice    *float64 `json:"min_price"`
	MaxPrice    *float64 `json:"max_price"`
	Currency    string   `json:"currency"`
	Destination string   `json:"destination"`
	Active      *bool    `json:"active"`
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	subs, err := s.alertRepo.List(r.Context(), []string{requester(r)})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing alerts failed")
		return
	}
	out := make([]alertDTO, 0, len(subs))
	for _, sub := range subs {
		out = append(out, toAlertDTO(sub))
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": out})
}

func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var req alertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Reference == "" || req.Destination == "" {
		writeError(w, http.StatusBadRequest, "reference and destination are required")
		return
	}
	sub := &domain.AlertSubscription{
		ID:          uuid.NewString(),
		TenantID:    requester(r),
		Reference:   req.Reference,
		Variant:     req.Variant,
		MinPrice:    req.MinPrice,
		MaxPrice:    req.MaxPrice,
		Currency:    req.Currency,
		Destination: req.Destination,
		Active:      true,
		CreatedAt:   time.Now(),
	}
	if req.Active != nil {
		sub.Active = *req.Active
	}
	if err := s.alertRepo.Save(r.Context(), sub); err != nil {
		writeError(w, http.StatusInternalServerError, "saving alert failed")
		return
	}
	writeJSON(w, http.StatusCreated, toAlertDTO(sub))
}

func (s *Server) handleGetAlert(w http.ResponseWriter, r *http.Request) {
	sub, err := s.loadOwnAlert(w, r)
	if sub == nil || err != nil {
		return
	}
	writeJSON(w, http.StatusOK, toAlertDTO(sub))
}

func (s *Server) handleUpdateAlert(w http.ResponseWriter, r *http.Request) {
	sub, err := s.loadOwnAlert(w, r)
	if sub == nil || err != nil {
		return
	}
	var req alertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Reference != "" {
		sub.Reference = req.Reference
	}
	if req.Destination != "" {
		sub.Destination = req.Destination
	}
	sub.Variant = req.Variant
	sub.MinPrice = req.MinPrice
	sub.MaxPrice = req.MaxPrice
	sub.Currency = req.Currency
	if req.Active != nil {
		sub.Active = *req.Active
	}
	if err := s.alertRepo.Save(r.Context(), sub); err != nil {
		writeError(w, http.StatusInternalServerError, "saving alert failed")
		return
	}
	writeJSON(w, http.StatusOK, toAlertDTO(sub))
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.alertRepo.Delete(r.Context(), requester(r), id); err != nil {
		writeError(w, http.StatusInternalServerError, "deleting alert failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// loadOwnAlert fetches the path alert scoped to the requester, writing the
// HTTP error itself when the alert is unavailable.
func (s *Server) loadOwnAlert(w http.ResponseWriter, r *http.Request) (*domain.AlertSubscription, error) {
	id := mux.Vars(r)["id"]
	sub, err := s.alertRepo.Get(r.Context(), requester(r), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "loading alert failed")
		return nil, err
	}
	if sub == nil {
		writeError(w, http.StatusNotFound, "alert not found")
		return nil, nil
	}
	return sub, nil
}
