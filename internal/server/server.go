// Package server exposes the webhook endpoint and the tenant-facing query
// API over HTTP.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tradewatch/trade-bridge/internal/biz/repo"
	"github.com/tradewatch/trade-bridge/internal/biz/usecase"
)

// Server is the HTTP front of the bridge: one unauthenticated-looking
// webhook route (the payload itself authorizes via instance id) and the
// /api routes gated by the X-Tenant-ID header.
type Server struct {
	pipeline *usecase.Pipeline
	dirSync  *usecase.DirectorySync
	access   *usecase.AccessControl

	tenantRepo  repo.TenantRepo
	tradeRepo   repo.TradeRepo
	alertRepo   repo.AlertRepo
	auditRepo   repo.AuditRepo
	contactRepo repo.ContactRepo
	channelRepo repo.ChannelRepo

	httpSrv *http.Server
}

// NewServer creates the HTTP server.
func NewServer(
	addr string,
	pipeline *usecase.Pipeline,
	dirSync *usecase.DirectorySync,
	access *usecase.AccessControl,
	tenantRepo repo.TenantRepo,
	tradeRepo repo.TradeRepo,
	alertRepo repo.AlertRepo,
	auditRepo repo.AuditRepo,
	contactRepo repo.ContactRepo,
	channelRepo repo.ChannelRepo,
) *Server {
	s := &Server{
		pipeline:    pipeline,
		dirSync:     dirSync,
		access:      access,
		tenantRepo:  tenantRepo,
		tradeRepo:   tradeRepo,
		alertRepo:   alertRepo,
		auditRepo:   auditRepo,
		contactRepo: contactRepo,
		channelRepo: channelRepo,
	}
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Router builds the route table. Exposed for tests.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/webhook", s.handleWebhook).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.tenantMiddleware)
	api.HandleFunc("/directory/sync", s.handleDirectorySync).Methods(http.MethodPost)
	api.HandleFunc("/trades", s.handleListTrades).Methods(http.MethodGet)
	api.HandleFunc("/channels", s.handleListChannels).Methods(http.MethodGet)
	api.HandleFunc("/contacts", s.handleListContacts).Methods(http.MethodGet)
	api.HandleFunc("/audits", s.handleListAudits).Methods(http.MethodGet)
	api.HandleFunc("/alerts", s.handleListAlerts).Methods(http.MethodGet)
	api.HandleFunc("/alerts", s.handleCreateAlert).Methods(http.MethodPost)
	api.HandleFunc("/alerts/{id}", s.handleGetAlert).Methods(http.MethodGet)
	api.HandleFunc("/alerts/{id}", s.handleUpdateAlert).Methods(http.MethodPut)
	api.HandleFunc("/alerts/{id}", s.handleDeleteAlert).Methods(http.MethodDelete)

	return r
}

// Start runs the listener until it fails or Stop is called.
func (s *Server) Start() error {
	log.Printf("[Server] Listening on %s", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the listener down, letting in-flight requests finish.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// tenantHeader is the authenticated caller for /api routes.
const tenantHeader = "X-Tenant-ID"

type ctxKey int

const requesterKey ctxKey = 0

// tenantMiddleware rejects /api calls whose X-Tenant-ID does not name an
// active tenant. The header is trusted; transport auth sits in front of
// this service.
func (s *Server) tenantMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(tenantHeader)
		if id == "" {
			writeError(w, http.StatusForbidden, "missing tenant header")
			return
		}
		tenant, err := s.tenantRepo.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "tenant lookup failed")
			return
		}
		if tenant == nil || !tenant.Active {
			writeError(w, http.StatusForbidden, "unknown or inactive tenant")
			return
		}
		ctx := context.WithValue(r.Context(), requesterKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requester(r *http.Request) string {
	id, _ := r.Context().Value(requesterKey).(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Server] writing response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
