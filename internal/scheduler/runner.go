// Package scheduler runs the periodic lifecycle jobs: the retention sweep
// that expires lapsed snapshots and the health refresh that republishes the
// overview gauges.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/edvin/drtrack/internal/core"
)

const (
	JobExpirySweep   = "expiry_sweep"
	JobHealthRefresh = "health_refresh"

	jobTimeout = 2 * time.Minute
)

// Sweeper expires successful snapshots whose retention has lapsed.
type Sweeper interface {
	ExpireDue(ctx context.Context, limit int) (int, error)
}

// OverviewSource computes the dashboard overview.
type OverviewSource interface {
	Get(ctx context.Context) (*core.Overview, error)
}

// Recorder publishes job outcomes and overview gauges.
type Recorder interface {
	PublishOverview(ov *core.Overview)
	ObserveJob(job string, d time.Duration, err error)
}

// Options configures job schedules. An empty schedule disables its job.
type Options struct {
	ExpirySweepSchedule   string
	ExpirySweepBatch      int
	HealthRefreshSchedule string
}

// Runner owns the cron instance and the job implementations.
type Runner struct {
	cron     *cron.Cron
	logger   zerolog.Logger
	sweeper  Sweeper
	overview OverviewSource
	recorder Recorder
	batch    int
	baseCtx  context.Context
}

// NewRunner parses the schedules and registers the enabled jobs. Nothing runs
// until Start.
func NewRunner(logger zerolog.Logger, sweeper Sweeper, overview OverviewSource, recorder Recorder, opts Options) (*Runner, error) {
	cl := cronLogger{logger: logger}
	r := &Runner{
		cron: cron.New(cron.WithLogger(cl), cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		)),
		logger:   logger.With().Str("component", "scheduler").Logger(),
		sweeper:  sweeper,
		overview: overview,
		recorder: recorder,
		batch:    opts.ExpirySweepBatch,
		baseCtx:  context.Background(),
	}

	jobs := []struct {
		name     string
		schedule string
		run      func(context.Context) error
	}{
		{JobExpirySweep, opts.ExpirySweepSchedule, r.SweepExpired},
		{JobHealthRefresh, opts.HealthRefreshSchedule, r.RefreshHealth},
	}
	for _, j := range jobs {
		if j.schedule == "" {
			r.logger.Info().Str("job", j.name).Msg("job disabled")
			continue
		}
		j := j
		if _, err := r.cron.AddFunc(j.schedule, func() { r.runJob(j.name, j.run) }); err != nil {
			return nil, fmt.Errorf("schedule %s %q: %w", j.name, j.schedule, err)
		}
	}
	return r, nil
}

// Start begins running jobs. Jobs derive their context from ctx.
func (r *Runner) Start(ctx context.Context) {
	r.baseCtx = ctx
	r.cron.Start()
	r.logger.Info().Int("jobs", len(r.cron.Entries())).Msg("scheduler started")
}

// Stop prevents new runs and waits for running jobs, up to ctx's deadline.
func (r *Runner) Stop(ctx context.Context) {
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
		r.logger.Warn().Msg("scheduler stop timed out with jobs still running")
	}
}

func (r *Runner) runJob(name string, run func(context.Context) error) {
	ctx, cancel := context.WithTimeout(r.baseCtx, jobTimeout)
	defer cancel()
	logger := r.logger.With().Str("job", name).Logger()
	ctx = logger.WithContext(ctx)

	start := time.Now()
	err := run(ctx)
	elapsed := time.Since(start)
	r.recorder.ObserveJob(name, elapsed, err)
	if err != nil {
		logger.Error().Err(err).Dur("duration", elapsed).Msg("job failed")
		return
	}
	logger.Debug().Dur("duration", elapsed).Msg("job finished")
}

// SweepExpired expires lapsed snapshots batch by batch until a batch comes
// back short.
func (r *Runner) SweepExpired(ctx context.Context) error {
	total := 0
	for {
		n, err := r.sweeper.ExpireDue(ctx, r.batch)
		total += n
		if err != nil {
			return fmt.Errorf("expire snapshots: %w", err)
		}
		if n == 0 || r.batch <= 0 || n < r.batch {
			break
		}
	}
	if total > 0 {
		zerolog.Ctx(ctx).Info().Int("expired", total).Msg("expired backup snapshots")
	}
	return nil
}

// RefreshHealth recomputes the overview and publishes it.
func (r *Runner) RefreshHealth(ctx context.Context) error {
	ov, err := r.overview.Get(ctx)
	if err != nil {
		return fmt.Errorf("compute overview: %w", err)
	}
	r.recorder.PublishOverview(ov)
	return nil
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
