package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"ytdlsync/src/features/config"
	"ytdlsync/src/features/syncing"
)

// PushRun pushes the metrics of one finished run to the configured
// Pushgateway. A scheduled batch job has no scrape surface of its own, so
// the push model is the only way the numbers survive the process.
func PushRun(cfg config.Metrics, summary *syncing.RunSummary) error {
	listed := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ytdlsync_files_listed",
		Help: "Number of files the download server listed as pending.",
	})
	placed := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ytdlsync_files_placed",
		Help: "Number of files placed into the library this run.",
	})
	failed := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ytdlsync_files_failed",
		Help: "Number of files that failed this run.",
	})
	duration := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ytdlsync_run_duration_seconds",
		Help: "Wall clock duration of the run.",
	})
	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ytdlsync_last_run_timestamp_seconds",
		Help: "Unix timestamp of the last completed run.",
	})

	listed.Set(float64(summary.Listed))
	placed.Set(float64(summary.Placed()))
	failed.Set(float64(summary.Failed()))
	duration.Set(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
	lastRun.Set(float64(summary.FinishedAt.Unix()))

	registry := prometheus.NewRegistry()
	registry.MustRegister(listed, placed, failed, duration, lastRun)

	job := cfg.Job
	if job == "" {
		job = "ytdlsync"
	}
	return push.New(cfg.Gateway, job).Gatherer(registry).Push()
}
