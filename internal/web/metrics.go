// Package web serves the ore, component and block pages, their forms with
// the server-side row editors, and the JSON, sitemap and export endpoints.
package web

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/powerman/structlog"
)

var log = structlog.New(structlog.KeyUnit, "web")

var (
	handlerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "se2calc",
		Name:      "handler_duration_seconds",
		Help:      "Time spent handling a request, by handler.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{"handler"})

	editorActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "se2calc",
		Name:      "editor_actions_total",
		Help:      "Row editor actions posted, by editor and action.",
	}, []string{"editor", "action"})

	submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "se2calc",
		Name:      "submissions_total",
		Help:      "Form submissions, by form and result.",
	}, []string{"form", "result"})
)

func ElapsedPrint(msg string, start time.Time) {
	elapsed := time.Since(start)
	handlerDuration.WithLabelValues(msg).Observe(elapsed.Seconds())
	log.Debug(msg, "elapsed", elapsed)
}

func AddMetricsHandler(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.Handler())
}
