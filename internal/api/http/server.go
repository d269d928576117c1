// Package http exposes the operator surface: health, metrics, audit-log
// queries, rollbacks, payroll compensation and approval decisions. The
// player-facing command surface is the service layer itself, consumed by the
// external chat presentation layer.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"economy-core/internal/domain"
	"economy-core/internal/security"
	"economy-core/internal/service"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	audit     service.AuditService
	orch      service.Orchestrator
	approvals service.ApprovalService
	tokens    security.TokenManager
}

func NewServer(audit service.AuditService, orch service.Orchestrator, approvals service.ApprovalService, tokens security.TokenManager) *Server {
	return &Server{audit: audit, orch: orch, approvals: approvals, tokens: tokens}
}

// Router builds the ops API router. Everything under /api is token-guarded.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.authMiddleware)
	api.HandleFunc("/audit/rollbackable", s.handleFindRollbackable).Methods(http.MethodGet)
	api.HandleFunc("/audit/{id}/rollback", s.handleRollback).Methods(http.MethodPost)
	api.HandleFunc("/audit/{id}/confirm", s.handleConfirm).Methods(http.MethodPost)
	api.HandleFunc("/payroll/runs/{runId}/compensate", s.handleCompensate).Methods(http.MethodPost)
	api.HandleFunc("/approvals/{id}/approve", s.handleApprove).Methods(http.MethodPost)
	api.HandleFunc("/approvals/{id}/reject", s.handleReject).Methods(http.MethodPost)
	return r
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := s.tokens.ValidateToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		r.Header.Set("X-Operator", claims.Operator)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFindRollbackable(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.TransactionFilter{
		GuildID: q.Get("guild_id"),
		UserID:  q.Get("user_id"),
		Type:    domain.TransactionType(q.Get("type")),
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.ParseInt(limit, 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = int32(n)
	}

	records, err := s.audit.FindRollbackable(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *Server) handleRollback(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inverse, err := s.audit.Rollback(r.Context(), id, r.Header.Get("X-Operator"), body.Reason)
	if errors.Is(err, domain.ErrRollbackNotAllowed) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"inverse": inverse})
}

// handleConfirm resolves a timed-out transaction the operator has reconciled
// against the ledger.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	err = s.audit.Confirm(r.Context(), id)
	if errors.Is(err, domain.ErrNotUnconfirmed) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
}

func (s *Server) handleCompensate(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["runId"]
	result, err := s.orch.Compensate(r.Context(), runID, r.Header.Get("X-Operator"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	s.resolveApproval(w, r, true)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	s.resolveApproval(w, r, false)
}

func (s *Server) resolveApproval(w http.ResponseWriter, r *http.Request, approve bool) {
	id := mux.Vars(r)["id"]
	reviewer := r.Header.Get("X-Operator")

	var err error
	if approve {
		err = s.approvals.Approve(r.Context(), id, reviewer)
	} else {
		err = s.approvals.Reject(r.Context(), id, reviewer)
	}
	switch {
	case errors.Is(err, domain.ErrApprovalAlreadyResolved):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrApprovalExpired):
		writeError(w, http.StatusGone, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
