package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/pagerank-service/pkg/config"
	"github.com/gilchrisn/pagerank-service/pkg/graphio"
	"github.com/gilchrisn/pagerank-service/pkg/models"
	"github.com/gilchrisn/pagerank-service/pkg/pagerank"
)

var (
	// ErrJobNotFound is returned for unknown or expired job ids.
	ErrJobNotFound = errors.New("job not found")

	// ErrResultNotReady is returned while a job has not completed.
	ErrResultNotReady = errors.New("result not ready")

	// ErrInvalidRequest wraps request validation failures.
	ErrInvalidRequest = errors.New("invalid request")
)

const defaultTopK = 10

// JobService runs ranking jobs in the background
type JobService struct {
	jobs            map[string]*models.Job
	results         map[string]*pagerank.Result
	cancels         map[string]context.CancelFunc
	cache           *lru.Cache[string, *pagerank.Result]
	workers         chan struct{}
	mutex           sync.RWMutex
	jobTimeout      time.Duration
	jobTTL          time.Duration
	cleanupInterval time.Duration
	maxIterations   int
	maxNodes        int
	done            chan struct{}
	closeOnce       sync.Once
}

// NewJobService creates a new job service and starts its cleanup loop
func NewJobService(cfg config.JobConfig) (*JobService, error) {
	cache, err := lru.New[string, *pagerank.Result](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}

	service := &JobService{
		jobs:            make(map[string]*models.Job),
		results:         make(map[string]*pagerank.Result),
		cancels:         make(map[string]context.CancelFunc),
		cache:           cache,
		workers:         make(chan struct{}, cfg.MaxWorkers),
		jobTimeout:      cfg.JobTimeout,
		jobTTL:          cfg.ResultTTL,
		cleanupInterval: cfg.CleanupInterval,
		maxIterations:   cfg.MaxIterations,
		maxNodes:        cfg.MaxNodes,
		done:            make(chan struct{}),
	}

	if service.cleanupInterval > 0 {
		go service.cleanupLoop()
	}

	return service, nil
}

// Close stops the cleanup loop and cancels running jobs
func (s *JobService) Close() {
	s.closeOnce.Do(func() {
		close(s.done)

		s.mutex.Lock()
		defer s.mutex.Unlock()
		for _, cancel := range s.cancels {
			cancel()
		}
	})
}

// Submit validates the request, creates a job and queues it
func (s *JobService) Submit(req models.RankRequest) (*models.Job, error) {
	graph, err := buildGraph(req, s.maxNodes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := graph.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	topK := req.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	now := time.Now()
	job := &models.Job{
		ID: uuid.New().String(),
		Request: models.JobRequest{
			Nodes:        graph.NumNodes,
			Edges:        graph.NumEdges(),
			Iterations:   req.Iterations,
			InitialValue: req.InitialValue,
			TopK:         topK,
		},
		Status: models.JobStatusQueued,
		Progress: models.JobProgress{
			Percentage: 0,
			Message:    "Queued",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	key := cacheKey(graph, req.Iterations, req.InitialValue)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.jobs[job.ID] = job

	if cached, ok := s.cache.Get(key); ok {
		job.Cached = true
		s.completeLocked(job, cached)
		log.Info().Str("job_id", job.ID).Msg("Job served from cache")
		return snapshot(job), nil
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if s.jobTimeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), s.jobTimeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	s.cancels[job.ID] = cancel

	log.Info().
		Str("job_id", job.ID).
		Int("nodes", graph.NumNodes).
		Int("edges", job.Request.Edges).
		Int("iterations", req.Iterations).
		Int("initial_value", req.InitialValue).
		Msg("Job submitted")

	go s.processJob(ctx, job.ID, graph, req.Iterations, req.InitialValue, key)

	return snapshot(job), nil
}

// Get retrieves a copy of a job by ID
func (s *JobService) Get(jobID string) (*models.Job, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return snapshot(job), nil
}

// GetResult retrieves the full rank vector of a completed job
func (s *JobService) GetResult(jobID string) (*pagerank.Result, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	result, exists := s.results[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: job %s is %s", ErrResultNotReady, jobID, job.Status)
	}
	return result, nil
}

// List returns copies of all known jobs
func (s *JobService) List() []*models.Job {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	jobs := make([]*models.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, snapshot(job))
	}
	return jobs
}

// Cancel cancels a queued or running job
func (s *JobService) Cancel(jobID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if job.Status.IsTerminal() {
		return fmt.Errorf("job %s already %s", jobID, job.Status)
	}

	if cancel, ok := s.cancels[jobID]; ok {
		cancel()
		delete(s.cancels, jobID)
	}

	now := time.Now()
	job.Status = models.JobStatusCancelled
	job.Progress.Message = "Cancelled"
	job.UpdatedAt = now
	job.CompletedAt = &now

	log.Info().Str("job_id", jobID).Msg("Job cancelled")
	return nil
}

func (s *JobService) processJob(ctx context.Context, jobID string, graph *pagerank.Graph, iterations, initialValue int, key string) {
	// Acquire worker slot
	select {
	case s.workers <- struct{}{}:
		defer func() { <-s.workers }()
	case <-ctx.Done():
		s.finish(jobID, nil, ctx.Err(), key)
		return
	}

	if !s.markRunning(jobID) {
		return
	}

	cfg := pagerank.NewConfig()
	cfg.Set("algorithm.iterations", iterations)
	cfg.Set("algorithm.initial_value", initialValue)
	cfg.Set("algorithm.max_iterations", s.maxIterations)
	cfg.Set("logging.level", "warn")

	result, err := pagerank.Run(ctx, graph, cfg, nil)
	s.finish(jobID, result, err, key)
}

func (s *JobService) markRunning(jobID string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists || job.Status.IsTerminal() {
		return false
	}

	now := time.Now()
	job.Status = models.JobStatusRunning
	job.Progress = models.JobProgress{Percentage: 10, Message: "Running PageRank"}
	job.StartedAt = &now
	job.UpdatedAt = now
	return true
}

func (s *JobService) finish(jobID string, result *pagerank.Result, err error, key string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if cancel, ok := s.cancels[jobID]; ok {
		cancel()
		delete(s.cancels, jobID)
	}

	job, exists := s.jobs[jobID]
	if !exists || job.Status.IsTerminal() {
		return
	}

	now := time.Now()
	job.UpdatedAt = now
	job.CompletedAt = &now

	switch {
	case err == nil:
		s.cache.Add(key, result)
		s.completeLocked(job, result)
		log.Info().
			Str("job_id", jobID).
			Int("iterations", result.Iterations).
			Int64("runtime_ms", result.RuntimeMS).
			Msg("Job completed")

	case errors.Is(err, pagerank.ErrNotConverged) && result != nil:
		// keep the best-effort vector but report the failure
		s.results[jobID] = result
		job.Result = toJobResult(result, job.Request.TopK)
		job.Status = models.JobStatusFailed
		job.Error = err.Error()
		job.Progress.Message = "Did not converge"
		log.Warn().Str("job_id", jobID).Err(err).Msg("Job did not converge")

	case errors.Is(err, context.Canceled):
		job.Status = models.JobStatusCancelled
		job.Progress.Message = "Cancelled"

	default:
		job.Status = models.JobStatusFailed
		job.Error = err.Error()
		job.Progress.Message = "Failed"
		log.Error().Str("job_id", jobID).Err(err).Msg("Job failed")
	}
}

func (s *JobService) completeLocked(job *models.Job, result *pagerank.Result) {
	now := time.Now()
	s.results[job.ID] = result
	job.Result = toJobResult(result, job.Request.TopK)
	job.Status = models.JobStatusCompleted
	job.Progress = models.JobProgress{Percentage: 100, Message: "Completed"}
	job.UpdatedAt = now
	if job.CompletedAt == nil {
		job.CompletedAt = &now
	}
}

func (s *JobService) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup(time.Now())
		case <-s.done:
			return
		}
	}
}

// cleanup drops finished jobs older than the result TTL
func (s *JobService) cleanup(now time.Time) int {
	if s.jobTTL <= 0 {
		return 0
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	removed := 0
	for id, job := range s.jobs {
		if job.Status.IsTerminal() && now.Sub(job.UpdatedAt) > s.jobTTL {
			delete(s.jobs, id)
			delete(s.results, id)
			removed++
		}
	}

	if removed > 0 {
		log.Debug().Int("removed", removed).Msg("Expired jobs cleaned up")
	}
	return removed
}

// buildGraph rejects node counts above maxNodes before allocating anything.
// maxNodes <= 0 means no limit.
func buildGraph(req models.RankRequest, maxNodes int) (*pagerank.Graph, error) {
	if strings.TrimSpace(req.Graph) != "" {
		graph, _, err := graphio.ParseLimit(strings.NewReader(req.Graph), maxNodes)
		return graph, err
	}

	if req.Nodes <= 0 {
		return nil, fmt.Errorf("either graph text or a positive node count is required")
	}
	if maxNodes > 0 && req.Nodes > maxNodes {
		return nil, fmt.Errorf("%w: %d requested, limit is %d", graphio.ErrTooManyNodes, req.Nodes, maxNodes)
	}

	// out-of-range pairs are dropped, as when loading a file
	graph := pagerank.NewGraph(req.Nodes)
	for _, e := range req.Edges {
		_ = graph.AddEdge(e[0], e[1])
	}
	return graph, nil
}

func cacheKey(graph *pagerank.Graph, iterations, initialValue int) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%d|%d\n", graph.NumNodes, iterations, initialValue)
	for u, targets := range graph.Adjacency {
		for _, v := range targets {
			fmt.Fprintf(h, "%d %d\n", u, v)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func toJobResult(result *pagerank.Result, topK int) *models.JobResult {
	top := result.Top(topK)
	ranks := make([]models.NodeRank, len(top))
	for i, nr := range top {
		ranks[i] = models.NodeRank{Node: nr.Node, Rank: nr.Rank}
	}

	return &models.JobResult{
		Iterations:    result.Iterations,
		Converged:     result.Converged,
		Delta:         result.Delta,
		Mode:          result.Mode.String(),
		DanglingNodes: result.DanglingNodes,
		RuntimeMS:     result.RuntimeMS,
		Top:           ranks,
	}
}

func snapshot(job *models.Job) *models.Job {
	clone := *job
	if job.Result != nil {
		result := *job.Result
		result.Top = append([]models.NodeRank(nil), job.Result.Top...)
		clone.Result = &result
	}
	return &clone
}
