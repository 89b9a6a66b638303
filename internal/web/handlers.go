package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/openfiling/disclosure-cli/internal/model"
	"github.com/openfiling/disclosure-cli/internal/store"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListOfficials(w http.ResponseWriter, r *http.Request) {
	filter := store.OfficialFilter{
		Chamber: model.Chamber(r.URL.Query().Get("chamber")),
		Limit:   queryInt(r, "limit", 100),
		Offset:  queryInt(r, "offset", 0),
	}
	officials, err := s.store.ListOfficials(r.Context(), filter)
	if err != nil {
		s.log.Error("list officials", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "list officials failed")
		return
	}
	if officials == nil {
		officials = []model.Official{}
	}
	s.respondJSON(w, http.StatusOK, officials)
}

func (s *Server) handleGetOfficial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	official, err := s.store.GetOfficial(r.Context(), id)
	if err != nil {
		s.log.Error("get official", zap.Int64("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "get official failed")
		return
	}
	if official == nil {
		s.respondError(w, http.StatusNotFound, "official not found")
		return
	}
	s.respondJSON(w, http.StatusOK, official)
}

func tradeFilterFromQuery(r *http.Request) store.TradeFilter {
	q := r.URL.Query()
	filter := store.TradeFilter{
		Ticker:  q.Get("ticker"),
		TxType:  model.TxType(q.Get("transaction_type")),
		Chamber: model.Chamber(q.Get("chamber")),
		Limit:   queryInt(r, "limit", 100),
		Offset:  queryInt(r, "offset", 0),
	}
	if raw := q.Get("official_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.OfficialID = id
		}
	}
	return filter
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := s.store.ListTrades(r.Context(), tradeFilterFromQuery(r))
	if err != nil {
		s.log.Error("list trades", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "list trades failed")
		return
	}
	if trades == nil {
		trades = []store.TradeRow{}
	}
	s.respondJSON(w, http.StatusOK, trades)
}

func (s *Server) handleGetTrade(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	trade, err := s.store.GetTrade(r.Context(), id)
	if err != nil {
		s.log.Error("get trade", zap.Int64("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "get trade failed")
		return
	}
	if trade == nil {
		s.respondError(w, http.StatusNotFound, "trade not found")
		return
	}
	s.respondJSON(w, http.StatusOK, trade)
}

func (s *Server) handleListTradeSources(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	trade, err := s.store.GetTrade(r.Context(), id)
	if err != nil {
		s.log.Error("get trade", zap.Int64("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "get trade failed")
		return
	}
	if trade == nil {
		s.respondError(w, http.StatusNotFound, "trade not found")
		return
	}
	sources, err := s.store.ListTradeSources(r.Context(), id)
	if err != nil {
		s.log.Error("list trade sources", zap.Int64("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "list trade sources failed")
		return
	}
	if sources == nil {
		sources = []model.TradeSource{}
	}
	s.respondJSON(w, http.StatusOK, sources)
}

func (s *Server) handleExportTrades(w http.ResponseWriter, r *http.Request) {
	filter := tradeFilterFromQuery(r)
	if filter.Limit == 100 && r.URL.Query().Get("limit") == "" {
		filter.Limit = 10000
	}
	trades, err := s.store.ListTrades(r.Context(), filter)
	if err != nil {
		s.log.Error("export trades", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trades.csv"`)
	if err := WriteTradesCSV(w, trades); err != nil {
		s.log.Error("write trades csv", zap.Error(err))
	}
}

func (s *Server) handleTriggerIngest(w http.ResponseWriter, r *http.Request) {
	if s.exec == nil || s.runner == nil {
		s.respondError(w, http.StatusServiceUnavailable, "ingestion not available")
		return
	}

	var req struct {
		Limit int `json:"limit"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	job, err := s.exec.Enqueue("ingest", func(ctx context.Context) (any, error) {
		return s.runner.Run(ctx, req.Limit)
	})
	if err != nil {
		s.log.Error("enqueue ingest", zap.Error(err))
		s.respondError(w, http.StatusServiceUnavailable, "job queue full")
		return
	}

	s.respondJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": string(job.Status),
	})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if s.exec == nil {
		s.respondError(w, http.StatusServiceUnavailable, "jobs not available")
		return
	}
	s.respondJSON(w, http.StatusOK, s.exec.List(queryInt(r, "limit", 50)))
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	if s.exec == nil {
		s.respondError(w, http.StatusServiceUnavailable, "jobs not available")
		return
	}
	job := s.exec.Get(chi.URLParam(r, "id"))
	if job == nil {
		s.respondError(w, http.StatusNotFound, "job not found")
		return
	}
	s.respondJSON(w, http.StatusOK, job)
}

func (s *Server) handleListIngestRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListIngestRuns(r.Context(), queryInt(r, "limit", 25))
	if err != nil {
		s.log.Error("list ingest runs", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "list ingest runs failed")
		return
	}
	if runs == nil {
		runs = []store.IngestRun{}
	}
	s.respondJSON(w, http.StatusOK, runs)
}

func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		model.AlertRule
		Active *bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	rule := req.AlertRule
	rule.ID = 0
	rule.Active = req.Active == nil || *req.Active

	if err := s.store.CreateAlertRule(r.Context(), &rule); err != nil {
		s.log.Error("create alert rule", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "create alert rule failed")
		return
	}
	s.respondJSON(w, http.StatusCreated, rule)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	rules, err := s.store.ListAlertRules(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		s.log.Error("list alert rules", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "list alert rules failed")
		return
	}
	if rules == nil {
		rules = []model.AlertRule{}
	}
	s.respondJSON(w, http.StatusOK, rules)
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	deleted, err := s.store.DeleteAlertRule(r.Context(), id)
	if err != nil {
		s.log.Error("delete alert rule", zap.Int64("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "delete alert rule failed")
		return
	}
	if !deleted {
		s.respondError(w, http.StatusNotFound, "alert rule not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
