// Package metrics
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PagesFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propscout_pages_fetched_total",
			Help: "Total number of pages fetched, labeled by outcome.",
		},
		[]string{"outcome"},
	)
	ExtractionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "propscout_extraction_duration_seconds",
			Help:    "Duration of a single listing extraction in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
	Extractions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propscout_extractions_total",
			Help: "Total number of extraction calls, labeled by outcome.",
		},
		[]string{"outcome"},
	)
	JobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propscout_jobs_total",
			Help: "Total number of crawl jobs, labeled by mode and final status.",
		},
		[]string{"mode", "status"},
	)
	ListingsScraped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "propscout_listings_scraped_total",
			Help: "Total number of listing pages processed by crawl jobs.",
		},
	)
	ActiveLoops = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "propscout_active_loops",
			Help: "Number of automation loops (history or watcher) currently armed.",
		},
	)
)

func init() {
	prometheus.MustRegister(PagesFetched)
	prometheus.MustRegister(ExtractionDuration)
	prometheus.MustRegister(Extractions)
	prometheus.MustRegister(JobsTotal)
	prometheus.MustRegister(ListingsScraped)
	prometheus.MustRegister(ActiveLoops)
}
