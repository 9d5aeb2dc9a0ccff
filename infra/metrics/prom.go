package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	coremetrics "github.com/fleetops/rotaplan/core/metrics"
)

// PromSink pushes solve-run metrics to a Prometheus Pushgateway. A push per
// run fits the batch nature of the planner better than a scrape endpoint on a
// short-lived process.
type PromSink struct {
	pusher    *push.Pusher
	runs      *prometheus.CounterVec
	objective prometheus.Gauge
	wallTime  prometheus.Gauge
	leased    prometheus.Gauge
	bought    prometheus.Gauge
}

// NewPromSink builds a sink targeting the configured Pushgateway.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	reg := prometheus.NewRegistry()
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rotaplan_solve_runs_total",
		Help: "Total number of planning runs by terminal status",
	}, []string{"status"})
	objective := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rotaplan_solve_objective",
		Help: "Objective value of the last planning run",
	})
	wallTime := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rotaplan_solve_wall_time_seconds",
		Help: "Wall time of the last planning run",
	})
	leased := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rotaplan_solve_leased_weeks",
		Help: "Aircraft-weeks covered by leased engines in the last plan",
	})
	bought := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rotaplan_solve_engines_bought",
		Help: "Spare engines purchased in the last plan",
	})
	for _, c := range []prometheus.Collector{runs, objective, wallTime, leased, bought} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return &PromSink{
		pusher:    push.New(cfg.PushgatewayURL, cfg.JobName).Gatherer(reg),
		runs:      runs,
		objective: objective,
		wallTime:  wallTime,
		leased:    leased,
		bought:    bought,
	}, nil
}

// RecordSolve updates the collectors and pushes them, grouped by run id.
func (s *PromSink) RecordSolve(rec coremetrics.SolveRecord) error {
	s.runs.WithLabelValues(rec.Status).Inc()
	s.objective.Set(rec.Objective)
	s.wallTime.Set(rec.WallTime.Seconds())
	s.leased.Set(float64(rec.LeasedWeeks))
	s.bought.Set(float64(rec.EnginesBought))
	return s.pusher.Grouping("run_id", rec.RunID).Push()
}

// Close is a no-op: each record is pushed eagerly.
func (s *PromSink) Close() error { return nil }
