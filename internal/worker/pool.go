// Package worker implements the buffered worker pool that runs registration
// submissions off the HTTP request goroutines:
// - Backpressure handling via load shedding
// - A bounded number of concurrent (simulated) backend calls
// - Graceful shutdown that drains queued submissions

package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/mettlestate/tournament-site/internal/logic"
	"github.com/mettlestate/tournament-site/internal/models"
)

// ErrPoolStopped is delivered to jobs that can no longer be processed.
var ErrPoolStopped = errors.New("submission pool stopped")

// Prometheus metrics
var (
	submissionsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tournament_submissions_enqueued_total",
		Help: "Total number of registration submissions accepted by the queue",
	})

	submissionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tournament_submissions_processed_total",
		Help: "Total number of registration submissions processed by workers, by outcome",
	}, []string{"outcome"})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tournament_worker_queue_depth",
		Help: "Current depth of the submission queue",
	})

	submissionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tournament_submission_duration_seconds",
		Help:    "Duration of registration submissions, from dequeue to result",
		Buckets: prometheus.DefBuckets,
	})

	submissionsLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tournament_submissions_load_shed_total",
		Help: "Total number of submissions rejected because the queue was full",
	})
)

// Result is what a worker reports back for one job.
type Result struct {
	Receipt *models.RegistrationReceipt
	Err     error
}

// Job represents a unit of work for the worker pool
type Job struct {
	ID        string
	Ctx       context.Context
	Form      models.RegistrationForm
	Result    chan Result
	Timestamp time.Time
}

// NewJob wraps a form for submission. Result is buffered so a worker never
// blocks on a caller that went away.
func NewJob(ctx context.Context, form models.RegistrationForm) *Job {
	return &Job{
		ID:        uuid.NewString(),
		Ctx:       ctx,
		Form:      form,
		Result:    make(chan Result, 1),
		Timestamp: time.Now(),
	}
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount int
	QueueSize   int
	Submitter   logic.Submitter
	Logger      *zap.Logger
}

// Pool manages a pool of workers for async registration processing
type Pool struct {
	config   PoolConfig
	jobQueue chan *Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger

	mu      sync.RWMutex
	stopped bool
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan *Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	// Start queue depth reporter
	go p.reportQueueDepth()

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
	)
}

// Stop gracefully shuts down the worker pool. Jobs already queued are
// still processed.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobQueue)
	p.mu.Unlock()

	p.logger.Info("Stopping worker pool...")
	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
	p.logger.Info("Worker pool stopped")
}

// Enqueue adds a job to the queue. It never blocks: when the queue is full
// or the pool is stopped the job is shed and false is returned.
func (p *Pool) Enqueue(job *Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		p.logger.Warnw("Worker pool stopped, dropping submission", "job", job.ID)
		submissionsLoadShed.Inc()
		return false
	}

	select {
	case p.jobQueue <- job:
		submissionsEnqueued.Inc()
		return true
	default:
		p.logger.Warnw("Submission queue full, shedding load",
			"job", job.ID,
			"queueSize", p.config.QueueSize,
		)
		submissionsLoadShed.Inc()
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// worker processes jobs until the queue is closed and drained
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debugw("Worker started", "worker", id)

	for job := range p.jobQueue {
		p.process(id, job)
	}

	p.logger.Debugw("Worker exiting, queue drained", "worker", id)
}

func (p *Pool) process(id int, job *Job) {
	ctx := job.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	// The caller gave up while the job sat in the queue.
	if err := ctx.Err(); err != nil {
		p.logger.Infow("Skipping abandoned submission", "worker", id, "job", job.ID, "waited", time.Since(job.Timestamp))
		submissionsProcessed.WithLabelValues("abandoned").Inc()
		job.Result <- Result{Err: err}
		return
	}

	start := time.Now()
	receipt, err := p.config.Submitter.Submit(ctx, job.Form)
	submissionDuration.Observe(time.Since(start).Seconds())

	outcome := "success"
	var verr *logic.ValidationError
	switch {
	case errors.As(err, &verr):
		outcome = "invalid"
	case err != nil:
		outcome = "failed"
		p.logger.Errorw("Submission failed",
			"worker", id,
			"job", job.ID,
			"duration", time.Since(start),
			"error", err,
		)
	default:
		p.logger.Debugw("Submission processed", "worker", id, "job", job.ID, "count", receipt.Count)
	}
	submissionsProcessed.WithLabelValues(outcome).Inc()

	job.Result <- Result{Receipt: receipt, Err: err}
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}
