package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sprinttap_submissions_total",
		Help: "Score submissions by outcome (accepted or rejected).",
	}, []string{"outcome"})

	boardRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sprinttap_leaderboard_requests_total",
		Help: "Leaderboard reads served.",
	})

	submittedBestMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sprinttap_submitted_best_ms",
		Help:    "Best reaction times of accepted submissions.",
		Buckets: []float64{100, 150, 200, 250, 300, 400, 500, 750, 1000, 2000},
	})
)

func init() {
	prometheus.MustRegister(submissionsTotal, boardRequests, submittedBestMs)
}
