package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/pagerank-service/pkg/models"
	"github.com/gilchrisn/pagerank-service/pkg/report"
	"github.com/gilchrisn/pagerank-service/pkg/service"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	jobService   *service.JobService
	maxBodyBytes int64
	startedAt    time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(jobService *service.JobService, maxBodyBytes int64) *Handlers {
	return &Handlers{
		jobService:   jobService,
		maxBodyBytes: maxBodyBytes,
		startedAt:    time.Now(),
	}
}

// SubmitRank handles POST /api/v1/rank
func (h *Handlers) SubmitRank(w http.ResponseWriter, r *http.Request) {
	if !ValidateContentType(r, "application/json") {
		WriteErrorResponse(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
		return
	}

	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	var req models.RankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	job, err := h.jobService.Submit(req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			WriteErrorResponse(w, http.StatusBadRequest, "Invalid ranking request", err)
			return
		}
		WriteErrorResponse(w, http.StatusInternalServerError, "Failed to submit job", err)
		return
	}

	WriteSuccessResponse(w, http.StatusAccepted, "Job submitted", job)
}

// ListJobs handles GET /api/v1/jobs
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := h.jobService.List()
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})

	WriteSuccessResponse(w, http.StatusOK, "Jobs retrieved", jobs)
}

// GetJob handles GET /api/v1/jobs/{jobId}
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]

	job, err := h.jobService.Get(jobID)
	if err != nil {
		WriteErrorResponse(w, http.StatusNotFound, "Job not found", err)
		return
	}

	WriteSuccessResponse(w, http.StatusOK, "Job retrieved", job)
}

// GetJobResult handles GET /api/v1/jobs/{jobId}/result. The optional
// format query parameter (json, yaml, toml) returns a raw export instead
// of the JSON envelope.
func (h *Handlers) GetJobResult(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]

	topK := 0
	if s := r.URL.Query().Get("top"); s != "" {
		k, err := strconv.Atoi(s)
		if err != nil || k < 0 {
			WriteErrorResponse(w, http.StatusBadRequest, "Invalid top parameter", err)
			return
		}
		topK = k
	}

	result, err := h.jobService.GetResult(jobID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrJobNotFound):
			WriteErrorResponse(w, http.StatusNotFound, "Job not found", err)
		case errors.Is(err, service.ErrResultNotReady):
			WriteErrorResponse(w, http.StatusConflict, "Result not ready", err)
		default:
			WriteErrorResponse(w, http.StatusInternalServerError, "Failed to load result", err)
		}
		return
	}

	formatParam := r.URL.Query().Get("format")
	if formatParam == "" {
		WriteSuccessResponse(w, http.StatusOK, "Result retrieved", report.NewSummary(result, topK))
		return
	}

	format, err := report.ParseFormat(formatParam)
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Unsupported format", err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	if err := report.Export(w, result, format, topK); err != nil {
		log.Error().Err(err).Str("job_id", jobID).Str("format", string(format)).Msg("Failed to export result")
	}
}

var contentTypes = map[report.Format]string{
	report.FormatJSON: "application/json",
	report.FormatYAML: "application/yaml",
	report.FormatTOML: "application/toml",
}

// CancelJob handles DELETE /api/v1/jobs/{jobId}
func (h *Handlers) CancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]

	if err := h.jobService.Cancel(jobID); err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			WriteErrorResponse(w, http.StatusNotFound, "Job not found", err)
			return
		}
		WriteErrorResponse(w, http.StatusConflict, "Job cannot be cancelled", err)
		return
	}

	WriteSuccessResponse(w, http.StatusOK, "Job cancelled", nil)
}

// HealthCheck handles GET /api/v1/health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteSuccessResponse(w, http.StatusOK, "Service is healthy", map[string]interface{}{
		"status": "healthy",
		"uptime": time.Since(h.startedAt).String(),
	})
}
