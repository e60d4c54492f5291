// Package jobs runs the bot's periodic maintenance work: session
// sweeping, rate-limit and idempotency key cleanup, catalog cache
// warming.
package jobs

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "background_job_runs_total",
			Help: "Total background job executions by job and status.",
		},
		[]string{"job", "status"},
	)
	jobDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "background_job_duration_seconds",
			Help:    "Background job execution time in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)
)

// Job is one periodic task.
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

// Runner executes registered jobs on their own tickers until the
// context is canceled.
type Runner struct {
	jobs []Job
	log  *slog.Logger
}

// NewRunner constructs an empty Runner.
func NewRunner(log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{log: log}
}

// Register adds a job. Jobs with no interval or function are ignored.
func (r *Runner) Register(job Job) {
	if job.Fn == nil || job.Interval <= 0 {
		return
	}
	r.jobs = append(r.jobs, job)
}

// Run blocks until ctx is canceled, running every registered job on its
// interval. A panicking job is logged and retried on the next tick.
func (r *Runner) Run(ctx context.Context) {
	var wg sync.WaitGroup

	r.log.Info("background jobs starting", slog.Int("job_count", len(r.jobs)))

	for _, job := range r.jobs {
		j := job
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.loop(ctx, j)
		}()
	}

	wg.Wait()
	r.log.Info("background jobs stopped")
}

func (r *Runner) loop(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx, job)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context, job Job) {
	defer func() {
		if rec := recover(); rec != nil {
			jobRunsTotal.WithLabelValues(job.Name, "panic").Inc()
			r.log.Error("background job panicked",
				slog.String("job", job.Name),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()

	start := time.Now()
	err := job.Fn(ctx)
	jobDurationSeconds.WithLabelValues(job.Name).Observe(time.Since(start).Seconds())

	if err != nil {
		jobRunsTotal.WithLabelValues(job.Name, "error").Inc()
		r.log.Warn("background job failed", slog.String("job", job.Name), slog.Any("error", err))
		return
	}

	jobRunsTotal.WithLabelValues(job.Name, "ok").Inc()
}
