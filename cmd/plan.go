package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fleetops/rotaplan/config"
	coremetrics "github.com/fleetops/rotaplan/core/metrics"
	"github.com/fleetops/rotaplan/core/mip"
	"github.com/fleetops/rotaplan/core/planner"
	corereport "github.com/fleetops/rotaplan/core/report"
	"github.com/fleetops/rotaplan/infra/ingest"
	"github.com/fleetops/rotaplan/infra/logger"
	inframetrics "github.com/fleetops/rotaplan/infra/metrics"
	infrareport "github.com/fleetops/rotaplan/infra/report"
	"github.com/fleetops/rotaplan/infra/solver"
	"github.com/fleetops/rotaplan/internal/eventbus"
	"github.com/fleetops/rotaplan/internal/runid"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build the scheduling model, solve it and write the reports",
	RunE:  runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applyPlannerOverride(cfg); err != nil {
		return err
	}
	cfg.Logging.Apply()
	logg := logger.New("plan")

	params, err := ingest.Load(cfg.DataDir, cfg.Planner)
	if err != nil {
		return err
	}
	logg.Infof("loaded %d aircraft, %d engines (%d spare), horizon %d weeks",
		params.NumAircraft(), len(params.Engines), len(params.ExtraIDs()), params.Horizon)

	mdl, vars, err := planner.Build(params)
	if err != nil {
		return fmt.Errorf("build model: %w", err)
	}
	planner.WarmStart(mdl, vars, params)
	logg.Infof("model %s declared: %d variables, %d constraints", mdl.Name(), mdl.NumVars(), mdl.NumConstrs())

	ids := runid.NewFileCounter(filepath.Join(cfg.OutputDir, "last_run_id.txt"))
	runID, err := ids.Next()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	bus := eventbus.New()
	defer bus.Close()
	sub := bus.Subscribe()
	go func() {
		for ev := range sub {
			switch e := ev.(type) {
			case eventbus.Incumbent:
				logg.Infof("incumbent: objective %.2f after %d nodes", e.Objective, e.Nodes)
			case eventbus.NodeProgress:
				logg.Debugf("search: %d nodes, bound %.2f", e.Nodes, e.BestBound)
			}
		}
	}()

	if cfg.Solver.TimeLimitSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Solver.TimeLimitSeconds)*time.Second)
		defer cancel()
	}

	engine := solver.New(solver.Options{MaxNodes: cfg.Solver.MaxNodes, Bus: bus})
	started := time.Now()
	sol, err := engine.Solve(ctx, mdl)
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}
	elapsed := time.Since(started)
	logg.Infof("solve finished in %s with status %s", elapsed.Round(time.Millisecond), sol.Status)

	sink := buildSink(cfg.Metrics)
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			logg.Errorf("metrics close: %v", cerr)
		}
	}()

	rec := coremetrics.SolveRecord{RunID: runID, Status: sol.Status.String(), WallTime: elapsed}

	if !sol.HasValues() {
		// A plan without a feasible solution is a normal, user-visible
		// outcome; the solver status is surfaced verbatim and no report is
		// written.
		logg.Warnf("no feasible solution (status %s); reports skipped", sol.Status)
		if merr := sink.RecordSolve(rec); merr != nil {
			logg.Errorf("metrics: %v", merr)
		}
		return nil
	}

	logg.Infof("objective: %.2f", sol.Objective)
	planeRows, weekRows, err := corereport.Extract(sol, vars, params)
	if err != nil {
		return fmt.Errorf("extract solution: %w", err)
	}

	writer := infrareport.NewWriter(cfg.OutputDir)
	planePath, err := writer.WritePlaneStatus(runID, params.Horizon, planeRows)
	if err != nil {
		return fmt.Errorf("write plane status: %w", err)
	}
	weekPath, err := writer.WriteWeeklySummary(runID, params.Horizon, weekRows)
	if err != nil {
		return fmt.Errorf("write weekly summary: %w", err)
	}
	logg.Infof("reports written: %s, %s", planePath, weekPath)

	leased, bought := 0, 0
	for _, w := range weekRows {
		leased += w.Leased
		bought += w.Purchased
	}
	if err := writer.AppendRunLog(corereport.RunLog{
		RunID:        runID,
		RunUUID:      uuid.NewString(),
		Timestamp:    time.Now(),
		Horizon:      params.Horizon,
		FleetSize:    params.NumAircraft(),
		ExtraEngines: len(params.ExtraIDs()),
		LeaseCost:    params.LeaseCost,
		BuyCost:      params.BuyCost,
		Status:       sol.Status.String(),
		TotalCost:    sol.Objective,
		Elapsed:      elapsed,
	}); err != nil {
		return fmt.Errorf("append run log: %w", err)
	}

	rec.Objective = sol.Objective
	rec.LeasedWeeks = leased
	rec.EnginesBought = bought
	if merr := sink.RecordSolve(rec); merr != nil {
		logg.Errorf("metrics: %v", merr)
	}
	return nil
}

func buildSink(cfg coremetrics.Config) coremetrics.Sink {
	logg := logger.New("metrics")
	var sinks []coremetrics.Sink
	if cfg.PrometheusEnabled {
		sink, err := inframetrics.NewPromSink(cfg)
		if err != nil {
			logg.Errorf("prom sink: %v", err)
		} else {
			sinks = append(sinks, sink)
		}
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, inframetrics.NewInfluxSinkWithFallback(cfg))
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}
	case 1:
		return sinks[0]
	default:
		return inframetrics.NewMultiSink(sinks...)
	}
}

// ensure the solver satisfies the adapter contract consumed here.
var _ mip.Solver = (*solver.BranchBound)(nil)
