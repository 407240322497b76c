package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RowsValidated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "rows_validated_total", Help: "Rows surviving each validation stage"},
		[]string{"stage"},
	)
	RowsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "rows_dropped_total", Help: "Rows dropped during validation"},
		[]string{"stage", "reason"},
	)
	StepsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "sim_steps_total", Help: "Simulation steps processed"},
	)
	FillsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sim_fills_total", Help: "Executed order legs"},
		[]string{"leg"},
	)
	CancelsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "sim_cancels_total", Help: "Steps cancelled on latency lookup miss"},
	)
)

func init() {
	prometheus.MustRegister(RowsValidated, RowsDropped, StepsTotal, FillsTotal, CancelsTotal)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{ Addr: addr, Handler: mux }
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
