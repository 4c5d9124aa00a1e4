package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/windmpc/internal/config"
	"github.com/san-kum/windmpc/internal/metrics"
	"github.com/san-kum/windmpc/internal/mpc"
	"github.com/san-kum/windmpc/internal/optim"
	"github.com/san-kum/windmpc/internal/storage"
	"github.com/san-kum/windmpc/internal/tui"
	"github.com/san-kum/windmpc/internal/viz"
	"github.com/san-kum/windmpc/internal/wake"
)

var (
	dataDir    string
	configFile string
	preset     string
	method     string
	maxIter    int
	horizon    float64
	cfl        float64
	turbines   int
	live       bool
	gradTol    float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "windmpc",
		Short: "adjoint-based MPC for wind-farm power tracking",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".windmpc", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset scenario")

	trackCmd := &cobra.Command{
		Use:   "track",
		Short: "optimize the control trajectory against the power reference",
		RunE:  runTrack,
	}
	trackCmd.Flags().StringVar(&method, "method", "", "optimizer method (lbfgs, bfgs, gradient, neldermead)")
	trackCmd.Flags().IntVar(&maxIter, "max-iter", 0, "major iteration cap")
	trackCmd.Flags().Float64Var(&horizon, "horizon", 0, "horizon length [s]")
	trackCmd.Flags().Float64Var(&cfl, "cfl", 0, "Courant number for the derived step")
	trackCmd.Flags().IntVar(&turbines, "turbines", 0, "turbine count")
	trackCmd.Flags().BoolVar(&live, "live", false, "live optimizer view")

	gradcheckCmd := &cobra.Command{
		Use:   "gradcheck",
		Short: "validate the adjoint gradient against finite differences",
		RunE:  runGradcheck,
	}
	gradcheckCmd.Flags().Float64Var(&gradTol, "tol", 1e-3, "relative tolerance")
	gradcheckCmd.Flags().Float64Var(&horizon, "horizon", 0, "horizon length [s]")
	gradcheckCmd.Flags().IntVar(&turbines, "turbines", 0, "turbine count")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(trackCmd, gradcheckCmd, listCmd, plotCmd, exportCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig layers preset, config file, and flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("method") {
		cfg.Optimizer.Method = method
	}
	if cmd.Flags().Changed("max-iter") {
		cfg.Optimizer.MaxIterations = maxIter
	}
	if cmd.Flags().Changed("horizon") {
		cfg.Horizon.Length = horizon
	}
	if cmd.Flags().Changed("cfl") {
		cfg.Horizon.CFL = cfl
	}
	if cmd.Flags().Changed("turbines") {
		cfg.Farm.Turbines = turbines
	}
	return cfg, nil
}

func buildSolver(cfg *config.Config) (*mpc.Solver, error) {
	farm, err := wake.NewFarm(cfg.Farm)
	if err != nil {
		return nil, err
	}
	grid, ref, err := mpc.BuildHorizon(farm,
		cfg.Horizon.Start, cfg.Horizon.Length, cfg.Horizon.CFL,
		cfg.Reference.Times, cfg.Reference.Powers)
	if err != nil {
		return nil, err
	}
	return mpc.NewSolver(farm, grid, ref)
}

func runTrack(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	solver, err := buildSolver(cfg)
	if err != nil {
		return err
	}

	if err := solver.Solve(); err != nil {
		return err
	}
	costBefore := solver.Cost()

	adapter := mpc.NewAdapter(solver)
	opts := optim.Options{
		Method:        cfg.Optimizer.Method,
		MaxIterations: cfg.Optimizer.MaxIterations,
		Tolerance:     cfg.Optimizer.Tolerance,
	}

	start := time.Now()
	var result *optim.Result
	if live {
		ch := make(chan tea.Msg, 64)
		go func() {
			r, optErr := optim.Minimize(adapter, opts, func(eval int, cost float64) {
				ch <- tui.CostMsg{Eval: eval, Cost: cost}
			})
			result = r
			ch <- tui.DoneMsg{Err: optErr}
		}()
		if err := tui.Run(ch); err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("optimizer did not finish")
		}
	} else {
		result, err = optim.Minimize(adapter, opts, nil)
		if err != nil {
			return err
		}
	}
	elapsed := time.Since(start)

	grid := solver.Grid()
	traj := solver.Trajectory()
	vals := metrics.Collect(grid.Times, solver.FarmPower(), solver.Reference(),
		traj.Pitch, traj.Torque, metrics.Defaults())

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	scenario := preset
	if scenario == "" {
		scenario = "track"
	}
	runID, err := st.Save(storage.RunMetadata{
		Scenario: scenario,
		Turbines: traj.N,
		Steps:    grid.Nt,
		Dt:       grid.Dt,
		Method:   cfg.Optimizer.Method,
		Cost:     result.Cost,
		Metrics:  vals,
	}, &storage.Series{
		Times:  grid.Times,
		Ref:    solver.Reference(),
		Power:  solver.FarmPower(),
		Pitch:  traj.Pitch,
		Torque: traj.Torque,
	})
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render("windmpc track"))
	fmt.Print(viz.Summary([][2]string{
		{"run id", runID},
		{"turbines", fmt.Sprintf("%d", traj.N)},
		{"steps", fmt.Sprintf("%d (dt=%.2fs)", grid.Nt, grid.Dt)},
		{"cost", fmt.Sprintf("%.6g -> %.6g", costBefore, result.Cost)},
		{"optimizer", fmt.Sprintf("%s, %d iterations, %d evals, %s", cfg.Optimizer.Method, result.Iterations, result.Evals, result.Status)},
		{"elapsed", elapsed.String()},
	}))
	fmt.Println("\nmetrics:")
	for name, val := range vals {
		fmt.Printf("  %s: %.6f\n", name, val)
	}
	fmt.Println()
	fmt.Println(viz.Tracking(solver.Reference(), solver.FarmPower()))
	return nil
}

func runGradcheck(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	solver, err := buildSolver(cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	maxAbs, maxRel, err := solver.GradientCheck()
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	traj := solver.Trajectory()
	fmt.Println(viz.Title.Render("windmpc gradcheck"))
	fmt.Print(viz.Summary([][2]string{
		{"variables", fmt.Sprintf("%d", traj.VectorLen())},
		{"max abs diff", fmt.Sprintf("%.3e", maxAbs)},
		{"max rel diff", fmt.Sprintf("%.3e", maxRel)},
		{"elapsed", elapsed.String()},
	}))
	fmt.Printf("\n  %s (tol %.1e)\n", viz.Verdict(maxRel <= gradTol), gradTol)
	if maxRel > gradTol {
		return fmt.Errorf("adjoint gradient disagrees with finite differences")
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tTURBINES\tSTEPS\tDT\tMETHOD\tCOST")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.2fs\t%s\t%.4g\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Turbines,
			run.Steps,
			run.Dt,
			run.Method,
			run.Cost,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(series.Times))

	fmt.Println(viz.Tracking(series.Ref, series.Power))
	fmt.Println()
	for i := range series.Torque {
		fmt.Println(viz.Controls(series.Torque[i], i))
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
