package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
	"github.com/dvloznov/finance-dashboard/internal/dashboard"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/jobs"
	"github.com/dvloznov/finance-dashboard/internal/store"
)

// TransactionsHandler handles transaction-related endpoints.
type TransactionsHandler struct {
	svc *dashboard.Service
	log zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(svc *dashboard.Service, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		svc: svc,
		log: log,
	}
}

// ListTransactions handles GET /api/transactions
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	transactions := h.svc.FilterTransactions(query.Get("category"), query.Get("type"))

	// Return array directly for frontend compatibility
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, transactions)
}

// ImportCSV handles POST /api/transactions/import
// The request body is the raw CSV content.
func (h *TransactionsHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if len(body) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "CSV content is required")
		return
	}

	stats, err := h.svc.ImportCSV(r.Context(), string(body))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to import CSV")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to import transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, stats)
}

// UpdateCategory handles PUT /api/transactions/{id}/category
func (h *TransactionsHandler) UpdateCategory(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Category == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Category is required")
		return
	}

	err := h.svc.SetCategory(r.Context(), id, req.Category)
	switch {
	case errors.Is(err, dashboard.ErrUnknownCategory):
		middleware.WriteError(w, http.StatusBadRequest, "Unknown category")
		return
	case errors.Is(err, store.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	case err != nil:
		h.log.Error().Err(err).Str("id", id).Msg("Failed to update category")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update category")
		return
	}

	tx, _ := h.svc.Transaction(id)
	middleware.WriteJSON(w, http.StatusOK, tx)
}

// SummaryHandler handles the dashboard summary endpoint.
type SummaryHandler struct {
	svc *dashboard.Service
	log zerolog.Logger
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(svc *dashboard.Service, log zerolog.Logger) *SummaryHandler {
	return &SummaryHandler{
		svc: svc,
		log: log,
	}
}

// GetSummary handles GET /api/summary
func (h *SummaryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.svc.Summary())
}

// CategoriesHandler handles category-related endpoints.
type CategoriesHandler struct {
	svc *dashboard.Service
	log zerolog.Logger
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(svc *dashboard.Service, log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{
		svc: svc,
		log: log,
	}
}

// ListCategories handles GET /api/categories
func (h *CategoriesHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.svc.Categories()

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// CategorizeHandler enqueues batch categorization runs.
type CategorizeHandler struct {
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewCategorizeHandler creates a new categorize handler.
func NewCategorizeHandler(publisher jobs.Publisher, log zerolog.Logger) *CategorizeHandler {
	return &CategorizeHandler{
		publisher: publisher,
		log:       log,
	}
}

// EnqueueCategorization handles POST /api/categorize
// The run happens asynchronously; poll the returned job for the outcome.
func (h *CategorizeHandler) EnqueueCategorization(w http.ResponseWriter, r *http.Request) {
	job := &jobs.CategorizeJob{}

	if err := h.publisher.PublishCategorize(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue categorization job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue categorization job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Msg("Categorization job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// InsightsHandler handles the insights endpoint.
type InsightsHandler struct {
	svc *dashboard.Service
	log zerolog.Logger
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(svc *dashboard.Service, log zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{
		svc: svc,
		log: log,
	}
}

// GenerateInsights handles POST /api/insights
// The response always carries displayable text; model trouble shows up
// in the text and the rate_limited flag, never as an HTTP error.
func (h *InsightsHandler) GenerateInsights(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.svc.Insights(r.Context()))
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
