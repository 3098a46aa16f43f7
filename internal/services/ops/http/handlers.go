// Package http provides the ops transport: run triggers, issue browsing,
// negative cache maintenance and budget readouts
package http

import (
	"context"
	stdhttp "net/http"
	"strconv"
	"time"

	perr "cartelera/internal/platform/errors"
	"cartelera/internal/platform/logger"
	phttp "cartelera/internal/platform/net/http"
	"cartelera/internal/platform/net/http/bind"
	budgetsvc "cartelera/internal/services/budget/service"
	ingestdomain "cartelera/internal/services/ingest/domain"
	ingestsvc "cartelera/internal/services/ingest/service"
	issuedomain "cartelera/internal/services/issues/domain"
	issuesvc "cartelera/internal/services/issues/service"
	negsvc "cartelera/internal/services/negcache/service"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
	defaultDays     = 30
)

// Register mounts the ops endpoints
func Register(r phttp.Router, runner *ingestsvc.Runner, sources map[string]ingestdomain.Source,
	negcache *negsvc.Service, issues *issuesvc.Service, budget *budgetsvc.Service,
) {
	h := &handlers{
		runner:   runner,
		sources:  sources,
		negcache: negcache,
		issues:   issues,
		budget:   budget,
	}

	r.Post("/runs/{source}", h.triggerRun)
	r.Get("/issues", h.listIssues)
	r.Get("/negative-cache", h.listNegativeCache)
	r.Delete("/negative-cache", h.resetNegativeCache)
	r.Get("/budget/{service}", h.budgetReport)
}

type handlers struct {
	runner   *ingestsvc.Runner
	sources  map[string]ingestdomain.Source
	negcache *negsvc.Service
	issues   *issuesvc.Service
	budget   *budgetsvc.Service
}

func (h *handlers) triggerRun(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	name := phttp.URLParam(r, "source")
	src, ok := h.sources[name]
	if !ok {
		phttp.RespondError(w, r, perr.NotFoundf("unknown source %q", name))
		return
	}

	// The run outlives the request; only cancellation is detached
	runCtx := context.WithoutCancel(r.Context())
	go func() {
		summary, err := h.runner.Run(runCtx, src)
		if err != nil {
			logger.C(runCtx).Error().Err(err).Str("source", name).Msg("triggered run failed")
			return
		}
		logger.C(runCtx).Info().
			Str("source", name).
			Int("events", summary.TotalEvents).
			Int("catalog_calls", summary.CatalogCalls).
			Msg("triggered run finished")
	}()

	phttp.RespondAccepted(w, r, map[string]any{"source": name, "status": "started"})
}

type issueFilterInput struct {
	Severity string `json:"severity" validate:"omitempty,oneof=warning error"`
	Task     string `json:"task"`
	Page     int    `json:"page"      validate:"min=1"`
	PageSize int    `json:"page_size" validate:"min=1,max=500"`
}

type issueDTO struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Task      string         `json:"task"`
	Message   string         `json:"message"`
	Trace     string         `json:"trace,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
	Severity  string         `json:"severity"`
	CreatedAt time.Time      `json:"created_at"`
}

func (h *handlers) listIssues(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	q := r.URL.Query()
	in := issueFilterInput{
		Severity: q.Get("severity"),
		Task:     q.Get("task"),
		Page:     intParam(q.Get("page"), 1),
		PageSize: intParam(q.Get("page_size"), defaultPageSize),
	}
	if err := bind.Struct(&in); err != nil {
		phttp.RespondError(w, r, err)
		return
	}

	items, total, err := h.issues.List(r.Context(), issuedomain.Filter{
		Severity: in.Severity,
		Task:     in.Task,
		Limit:    in.PageSize,
		Offset:   (in.Page - 1) * in.PageSize,
	})
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}

	out := make([]issueDTO, 0, len(items))
	for _, is := range items {
		out = append(out, issueDTO{
			ID:        is.ID.String(),
			Name:      is.Name,
			Task:      is.Task,
			Message:   is.Message,
			Trace:     is.Trace,
			Context:   is.Context,
			Severity:  is.Severity,
			CreatedAt: is.CreatedAt,
		})
	}
	phttp.RespondList(w, r, out, total, in.Page, in.PageSize)
}

type negEntryDTO struct {
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	OriginalTitle string    `json:"original_title,omitempty"`
	Reason        string    `json:"reason"`
	Attempts      int       `json:"attempts"`
	FirstSeen     time.Time `json:"first_seen"`
	LastSeen      time.Time `json:"last_seen"`
}

func (h *handlers) listNegativeCache(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	q := r.URL.Query()
	page := intParam(q.Get("page"), 1)
	pageSize := intParam(q.Get("page_size"), defaultPageSize)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	items, total, err := h.negcache.List(r.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}

	out := make([]negEntryDTO, 0, len(items))
	for _, e := range items {
		out = append(out, negEntryDTO{
			URL:           e.URL,
			Title:         e.Title,
			OriginalTitle: e.OriginalTitle,
			Reason:        e.Reason,
			Attempts:      e.Attempts,
			FirstSeen:     e.FirstSeen,
			LastSeen:      e.LastSeen,
		})
	}
	phttp.RespondList(w, r, out, total, page, pageSize)
}

func (h *handlers) resetNegativeCache(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		phttp.RespondError(w, r, perr.Newf(perr.ErrorCodeValidation, "url query parameter is required"))
		return
	}
	if err := h.negcache.Reset(r.Context(), url); err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	phttp.RespondNoContent(w, r)
}

type budgetDayDTO struct {
	Day          string    `json:"day"`
	CallCount    int64     `json:"call_count"`
	LastCalledAt time.Time `json:"last_called_at"`
}

func (h *handlers) budgetReport(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	service := phttp.URLParam(r, "service")
	days := intParam(r.URL.Query().Get("days"), defaultDays)
	if days < 1 || days > 365 {
		days = defaultDays
	}

	total, err := h.budget.Total(r.Context(), service)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	counters, err := h.budget.DailyCounts(r.Context(), service, days)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}

	daily := make([]budgetDayDTO, 0, len(counters))
	for _, c := range counters {
		daily = append(daily, budgetDayDTO{
			Day:          c.Day.Format("2006-01-02"),
			CallCount:    c.CallCount,
			LastCalledAt: c.LastCalledAt,
		})
	}
	phttp.RespondOK(w, r, map[string]any{
		"service": service,
		"total":   total,
		"daily":   daily,
	})
}

func intParam(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
