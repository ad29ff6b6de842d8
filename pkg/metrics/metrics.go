// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics exposes Prometheus counters and histograms for the
// patch pipeline, and an http.Handler to serve them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the counters and histograms the parser and archive
// commit path report against. Each caller should construct one
// Registry and share it across an apply run.
type Registry struct {
	DiffsApplied   *prometheus.CounterVec
	MergeErrors    *prometheus.CounterVec
	DeleteMisses   prometheus.Counter
	CommitWrites   prometheus.Counter
	CommitFailures prometheus.Counter
	ParseDuration  *prometheus.HistogramVec
}

// NewRegistry registers every metric against reg (use
// prometheus.NewRegistry() for an isolated registry in tests, or
// prometheus.DefaultRegisterer in cmd/scriptpatch).
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		DiffsApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scriptpatch_diffs_applied_total",
			Help: "Diffs successfully merged into a target, by dialect.",
		}, []string{"dialect"}),
		MergeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scriptpatch_merge_errors_total",
			Help: "Diffs that failed to parse or merge, by error kind.",
		}, []string{"kind"}),
		DeleteMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "scriptpatch_delete_misses_total",
			Help: "Delete-flagged diff nodes with no matching target entry.",
		}),
		CommitWrites: factory.NewCounter(prometheus.CounterOpts{
			Name: "scriptpatch_commit_writes_total",
			Help: "Archive entries successfully replaced by a commit.",
		}),
		CommitFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "scriptpatch_commit_failures_total",
			Help: "Commits that aborted after writing zero or more entries.",
		}),
		ParseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scriptpatch_parse_duration_seconds",
			Help:    "Wall-clock time to parse and merge one diff.",
			Buckets: prometheus.DefBuckets,
		}, []string{"dialect"}),
	}
}

// Handler returns the http.Handler cmd/scriptpatch serve mounts at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
