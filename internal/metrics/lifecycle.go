package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/edvin/drtrack/internal/core"
	"github.com/edvin/drtrack/internal/model"
)

const namespace = "drtrack"

// Lifecycle holds the collectors describing backup and drill state.
type Lifecycle struct {
	transitions *prometheus.CounterVec

	snapshots           *prometheus.GaugeVec
	unhealthy           prometheus.Gauge
	latestSuccess       prometheus.Gauge
	drills              *prometheus.GaugeVec
	passedWithinQuarter prometheus.Gauge
	outstandingIssues   prometheus.Gauge

	jobRuns     *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
}

// NewLifecycle creates the collectors and registers them on reg.
func NewLifecycle(reg prometheus.Registerer) *Lifecycle {
	l := &Lifecycle{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_transitions_total",
			Help:      "Committed lifecycle transitions by entity kind and status change.",
		}, []string{"kind", "from", "to"}),
		snapshots: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backup_snapshots",
			Help:      "Recent backup snapshots by status.",
		}, []string{"status"}),
		unhealthy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backup_unhealthy",
			Help:      "Recent backup snapshots that failed or expired.",
		}),
		latestSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "latest_backup_success_timestamp",
			Help:      "Unix time of the most recent successful backup completion, 0 if none.",
		}),
		drills: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "drills",
			Help:      "Recent recovery drills by status.",
		}, []string{"status"}),
		passedWithinQuarter: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "drills_passed_within_quarter",
			Help:      "Passed drills verified in the last 90 days.",
		}),
		outstandingIssues: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "drills_outstanding_issues",
			Help:      "Drills that are not passed and reported issues.",
		}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_job_runs_total",
			Help:      "Background job runs by job and result.",
		}, []string{"job", "result"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scheduler_job_duration_seconds",
			Help:      "Background job run duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
	}
	reg.MustRegister(
		l.transitions, l.snapshots, l.unhealthy, l.latestSuccess,
		l.drills, l.passedWithinQuarter, l.outstandingIssues,
		l.jobRuns, l.jobDuration,
	)
	return l
}

// ObserveTransition counts a committed transition. It has the shape of
// core.TransitionObserver.
func (l *Lifecycle) ObserveTransition(_ context.Context, rec model.Record, from string) {
	if from == "" {
		from = "new"
	}
	l.transitions.WithLabelValues(string(rec.Kind), from, rec.Status()).Inc()
}

// PublishOverview sets the state gauges from an overview.
func (l *Lifecycle) PublishOverview(ov *core.Overview) {
	for status, n := range ov.Backups.Summary.ByStatus {
		l.snapshots.WithLabelValues(status).Set(float64(n))
	}
	l.unhealthy.Set(float64(ov.Backups.Summary.Unhealthy))
	l.latestSuccess.Set(isoUnix(ov.Backups.Summary.LatestSuccessAt))

	for status, n := range ov.Drills.Summary.ByStatus {
		l.drills.WithLabelValues(status).Set(float64(n))
	}
	l.passedWithinQuarter.Set(float64(ov.Drills.Summary.PassedWithinQuarter))
	l.outstandingIssues.Set(float64(ov.Drills.Summary.OutstandingIssues))
}

// ObserveJob records one background job run.
func (l *Lifecycle) ObserveJob(job string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	l.jobRuns.WithLabelValues(job, result).Inc()
	l.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func isoUnix(s *string) float64 {
	if s == nil {
		return 0
	}
	t, err := time.Parse(model.ISOLayout, *s)
	if err != nil {
		return 0
	}
	return float64(t.Unix())
}
