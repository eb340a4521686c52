package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/pkoval/fluidlab/internal/analysis"
	"github.com/pkoval/fluidlab/internal/config"
	"github.com/pkoval/fluidlab/internal/export"
	"github.com/pkoval/fluidlab/internal/fluid"
	"github.com/pkoval/fluidlab/internal/gui"
	"github.com/pkoval/fluidlab/internal/metrics"
	"github.com/pkoval/fluidlab/internal/optim"
	"github.com/pkoval/fluidlab/internal/sim"
	"github.com/pkoval/fluidlab/internal/storage"
	"github.com/pkoval/fluidlab/internal/viz"
)

var (
	dataDir    string
	configFile string
	logJSON    bool
	verbose    bool

	steps       int
	seed        int64
	sampleEvery int
	domainW     float64
	domainH     float64
	preset      string

	restDensity float64
	viscosity   float64
	stiffness   float64
	gravity     float64
	ambient     float64
	count       int

	themeName string
	frameRate int
	audioOn   bool

	metricName string
	outFile    string
	numRuns    int

	sweepMin    float64
	sweepMax    float64
	sweepPoints int
	gridAxes    []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fluidlab",
		Short: "interactive particle fluid lab",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Logs go to stderr so exports can stream to stdout.
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			opts := &slog.HandlerOptions{Level: level}
			var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
			if logJSON {
				handler = slog.NewJSONHandler(os.Stderr, opts)
			}
			slog.SetDefault(slog.New(handler))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to the GUI when no command given
			return runGUI(cmd, args)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "runs", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "structured JSON logs")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "headless run, saved to the data directory",
		RunE:  runSimulation,
	}
	addWorldFlags(runCmd)
	addTuningFlags(runCmd)
	runCmd.Flags().IntVar(&steps, "steps", 600, "number of ticks")
	runCmd.Flags().IntVar(&sampleEvery, "sample-every", 0, "save a particle frame every N ticks (0 = none)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal view",
		RunE:  runLive,
	}
	addWorldFlags(liveCmd)
	addTuningFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 60, "frame rate")
	liveCmd.Flags().StringVar(&themeName, "theme", "ocean", "color theme")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "raylib window with sliders and sound",
		RunE:  runGUI,
	}
	addWorldFlags(guiCmd)
	addTuningFlags(guiCmd)
	guiCmd.Flags().BoolVar(&audioOn, "audio", false, "start with the audio pad on")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list tuning presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata and metric summary",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored metric series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&metricName, "metric", "", "plot a single metric")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "summary statistics and oscillation detection",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&metricName, "metric", "energy", "metric for spectrum analysis")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write the metric series as CSV to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write the full run as JSON to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the final frame (or a series) as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&metricName, "metric", "", "render a metric series instead of the frame")
	exportSVGCmd.Flags().StringVar(&outFile, "out", "", "output path (default <run_id>.svg)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark tick rate across particle counts",
		RunE:  benchRun,
	}
	benchCmd.Flags().IntVar(&steps, "steps", 200, "ticks per measurement")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run many seeds and aggregate final metrics",
		RunE:  runEnsemble,
	}
	addWorldFlags(ensembleCmd)
	addTuningFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 8, "number of seeds")
	ensembleCmd.Flags().IntVar(&steps, "steps", 600, "ticks per run")

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "sweep one parameter across runs and tabulate final metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addWorldFlags(sweepCmd)
	addTuningFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "lower bound of the sweep")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0, "upper bound (both bounds 0 = the parameter's full range)")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 8, "number of sweep values")
	sweepCmd.Flags().IntVar(&steps, "steps", 300, "ticks per value")
	sweepCmd.Flags().StringVar(&metricName, "metric", "energy", "metric to plot against the swept value")
	sweepCmd.Flags().StringVar(&outFile, "out", "", "also write the table as CSV to this path")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search for the parameter set minimizing a metric",
		RunE:  runTune,
	}
	addWorldFlags(tuneCmd)
	addTuningFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&gridAxes, "param", nil, "grid axis as name=lo:hi:n (repeatable)")
	tuneCmd.Flags().IntVar(&steps, "steps", 300, "ticks per grid cell")
	tuneCmd.Flags().StringVar(&metricName, "metric", "density_spread", "objective to minimize")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "configuration helpers",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default config to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "fluidlab.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(runCmd, liveCmd, guiCmd, presetsCmd, listCmd, showCmd,
		plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd,
		benchCmd, ensembleCmd, sweepCmd, tuneCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addWorldFlags(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time-based)")
	cmd.Flags().Float64Var(&domainW, "width", fluid.DefaultWidth, "domain width")
	cmd.Flags().Float64Var(&domainH, "height", fluid.DefaultHeight, "domain height")
	cmd.Flags().StringVar(&preset, "preset", "", "start from a named preset")
}

func addTuningFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&restDensity, "rest-density", 1.5, "rest density")
	cmd.Flags().Float64Var(&viscosity, "viscosity", 0.02, "viscosity")
	cmd.Flags().Float64Var(&stiffness, "stiffness", 1.2, "pressure stiffness")
	cmd.Flags().Float64Var(&gravity, "gravity", 0.15, "gravity")
	cmd.Flags().Float64Var(&ambient, "temperature", 20, "ambient temperature")
	cmd.Flags().IntVar(&count, "count", 200, "particle count")
}

// loadConfig resolves the effective configuration: defaults, then the
// optional config file, then preset, then any explicitly set CLI flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return cfg, err
		}
	}

	if preset != "" {
		p, ok := config.GetPreset(preset)
		if !ok {
			return cfg, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Fluid = p
	}

	flags := cmd.Flags()
	if flags.Changed("steps") {
		cfg.Sim.Steps = steps
	}
	if flags.Changed("seed") {
		cfg.Sim.Seed = seed
	}
	if flags.Changed("sample-every") {
		cfg.Sim.SampleEvery = sampleEvery
	}
	if flags.Changed("width") {
		cfg.Sim.Width = domainW
	}
	if flags.Changed("height") {
		cfg.Sim.Height = domainH
	}
	if flags.Changed("data") {
		cfg.Sim.DataDir = dataDir
	}
	if flags.Changed("theme") {
		cfg.Render.Theme = themeName
	}
	if flags.Changed("fps") {
		cfg.Render.FPS = frameRate
	}
	if flags.Changed("audio") {
		cfg.Render.Audio = audioOn
	}
	if flags.Changed("rest-density") {
		cfg.Fluid.RestDensity = restDensity
	}
	if flags.Changed("viscosity") {
		cfg.Fluid.Viscosity = viscosity
	}
	if flags.Changed("stiffness") {
		cfg.Fluid.Stiffness = stiffness
	}
	if flags.Changed("gravity") {
		cfg.Fluid.Gravity = gravity
	}
	if flags.Changed("temperature") {
		cfg.Fluid.AmbientTemperature = ambient
	}
	if flags.Changed("count") {
		cfg.Fluid.ParticleCount = count
	}
	cfg.Fluid.Clamp()

	return cfg, nil
}

// newRunner builds a seeded world plus the standard metric set. The
// resolved seed is returned so it can be recorded with the run.
func newRunner(cfg config.Config) (*sim.Runner, int64) {
	runSeed := cfg.Sim.Seed
	if runSeed == 0 {
		runSeed = time.Now().UnixNano()
	}

	world := fluid.New(cfg.Fluid, cfg.Sim.Width, cfg.Sim.Height, runSeed)
	runner := sim.NewRunner(world)
	for _, m := range metrics.Default() {
		runner.AddMetric(m)
	}
	return runner, runSeed
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(cfg.Sim.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	runner, runSeed := newRunner(cfg)
	slog.Info("starting run",
		"particles", cfg.Fluid.ParticleCount,
		"steps", cfg.Sim.Steps,
		"seed", runSeed,
	)

	result, err := runner.Run(context.Background(), sim.RunConfig{
		Steps:       cfg.Sim.Steps,
		SampleEvery: cfg.Sim.SampleEvery,
		LogEvery:    cfg.Sim.Steps / 10,
	})
	if err != nil {
		return err
	}

	width, height := runner.Size()
	id, err := st.Save(storage.RunInfo{
		Preset: preset,
		Seed:   runSeed,
		Width:  width,
		Height: height,
		Params: runner.Params(),
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", id)
	fmt.Printf("steps: %d\n", result.Steps)
	if result.Anomalies > 0 {
		fmt.Printf("skipped updates: %d\n", result.Anomalies)
	}
	fmt.Println("\nfinal metrics:")
	for _, name := range sortedKeys(result.Values) {
		fmt.Printf("  %s: %.6f\n", name, result.Values[name])
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	runner, _ := newRunner(cfg)
	return viz.RunLive(runner, cfg.Render.Theme, cfg.Render.FPS)
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	runner, _ := newRunner(cfg)
	gui.Run(runner, cfg.Render.Audio)
	return nil
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		p, ok := config.GetPreset(args[0])
		if !ok {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
		vals := p.Map()
		for _, name := range sortedKeys(vals) {
			fmt.Printf("%s: %v\n", name, vals[name])
		}
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tREST\tVISC\tSTIFF\tGRAV\tTEMP\tCOUNT")
	for _, name := range config.ListPresets() {
		p, _ := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%.2f\t%.3f\t%.2f\t%.2f\t%.0f\t%d\n",
			name, p.RestDensity, p.Viscosity, p.Stiffness, p.Gravity,
			p.AmbientTemperature, p.ParticleCount)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(cfg.Sim.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSTEPS\tPARTICLES\tSEED\tPRESET")
	for _, run := range runs {
		presetName := run.Preset
		if presetName == "" {
			presetName = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Params.ParticleCount,
			run.Seed,
			presetName,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(cfg.Sim.DataDir)
	info, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(info); err != nil {
		return err
	}

	_, series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	rows := storage.SummarizeSeries(series)
	if len(rows) == 0 {
		return nil
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tFINAL\tMEAN\tSTDDEV\tMIN\tMAX")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
			r.Metric, r.Final, r.Mean, r.StdDev, r.Min, r.Max)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(cfg.Sim.DataDir)
	info, err := st.Load(args[0])
	if err != nil {
		return err
	}
	stepsCol, series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(stepsCol) == 0 {
		return fmt.Errorf("no data to plot")
	}

	names := sortedKeys(series)
	if target := metricFlag(cmd, ""); target != "" {
		if _, ok := series[target]; !ok {
			return fmt.Errorf("no series for metric %q (have %v)", target, names)
		}
		names = []string{target}
	}

	fmt.Printf("run: %s\n", info.ID)
	fmt.Printf("samples: %d\n\n", len(stepsCol))

	for _, name := range names {
		data := series[name]
		if len(data) < 2 {
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(cfg.Sim.DataDir)
	info, err := st.Load(args[0])
	if err != nil {
		return err
	}
	_, series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("analysis: %s\n\n", info.ID)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTDDEV\tMIN\tMAX\tMEDIAN")
	for _, name := range sortedKeys(series) {
		s := analysis.Summarize(series[name])
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
			name, s.Mean, s.StdDev, s.Min, s.Max, s.Median)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	target := metricFlag(cmd, "energy")
	data, ok := series[target]
	if !ok {
		return fmt.Errorf("no series for metric %q", target)
	}

	// PowerSpectrum is already one-sided
	ps := analysis.PowerSpectrum(data)
	if len(ps) >= 8 {
		graph := asciigraph.Plot(ps,
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum ("+target+")"),
		)
		fmt.Println()
		fmt.Println(graph)
	}

	if period := analysis.DominantPeriod(data); period > 0 {
		fmt.Printf("\ndominant period: %.1f steps\n", period)
	} else {
		fmt.Println("\nno dominant oscillation")
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(cfg.Sim.DataDir)
	stepsCol, series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(stepsCol) == 0 {
		return fmt.Errorf("no data to export")
	}
	names := sortedKeys(series)

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := append([]string{"step"}, names...)
	if err := w.Write(header); err != nil {
		return err
	}
	for i, step := range stepsCol {
		row := []string{strconv.Itoa(step)}
		for _, name := range names {
			v := 0.0
			if vals := series[name]; i < len(vals) {
				v = vals[i]
			}
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(cfg.Sim.DataDir)
	info, err := st.Load(args[0])
	if err != nil {
		return err
	}
	_, series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	particles, err := st.LoadParticles(args[0])
	if err != nil {
		return err
	}

	result := &sim.Result{
		Steps:     info.Steps,
		Series:    series,
		Values:    info.Values,
		Final:     particles,
		Anomalies: info.Anomalies,
	}
	return storage.WriteJSON(os.Stdout, *info, result)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(cfg.Sim.DataDir)
	info, err := st.Load(args[0])
	if err != nil {
		return err
	}

	var doc string
	if target := metricFlag(cmd, ""); target != "" {
		_, series, err := st.LoadSeries(args[0])
		if err != nil {
			return err
		}
		data, ok := series[target]
		if !ok {
			return fmt.Errorf("no series for metric %q", target)
		}
		stroke := string(viz.GetTheme(cfg.Render.Theme).Primary)
		doc = export.SeriesToSVG(target, data, 800, 300, stroke)
	} else {
		particles, err := st.LoadParticles(args[0])
		if err != nil {
			return err
		}
		doc = export.ParticlesToSVG(particles, info.Width, info.Height, info.Params.RestDensity)
	}

	path := outFile
	if path == "" {
		path = args[0] + ".svg"
	}
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func benchRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	benchSteps := 200
	if cmd.Flags().Changed("steps") {
		benchSteps = steps
	}

	counts := []int{100, 200, 300, 400, 500}

	fmt.Println("benchmarking tick rate")
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tSTEPS\tTIME\tSTEPS/SEC")

	for _, n := range counts {
		p := cfg.Fluid
		p.ParticleCount = n
		world := fluid.New(p, cfg.Sim.Width, cfg.Sim.Height, 42)
		runner := sim.NewRunner(world)

		result, err := runner.Run(context.Background(), sim.RunConfig{Steps: benchSteps})
		if err != nil {
			return err
		}

		stepsPerSec := float64(result.Steps) / result.Elapsed.Seconds()
		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\n",
			n, result.Steps, result.Elapsed.Round(time.Millisecond), stepsPerSec)
	}
	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	startSeed := cfg.Sim.Seed
	if startSeed == 0 {
		startSeed = time.Now().UnixNano()
	}

	ens := sim.Ensemble{
		Params:    cfg.Fluid,
		Width:     cfg.Sim.Width,
		Height:    cfg.Sim.Height,
		Runs:      numRuns,
		SeedStart: startSeed,
		Metrics:   metrics.Default,
	}

	slog.Info("starting ensemble",
		"runs", numRuns,
		"steps", cfg.Sim.Steps,
		"seed_start", startSeed,
	)
	start := time.Now()
	results, err := ens.Run(context.Background(), sim.RunConfig{Steps: cfg.Sim.Steps})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	// Spread of final metric values across seeds.
	finals := make(map[string][]float64)
	for _, res := range results {
		for name, v := range res.Values {
			finals[name] = append(finals[name], v)
		}
	}

	fmt.Printf("%d runs completed in %v\n\n", len(results), elapsed.Round(time.Millisecond))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTDDEV\tMIN\tMAX")
	for _, name := range sortedKeys(finals) {
		s := analysis.Summarize(finals[name])
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\n",
			name, s.Mean, s.StdDev, s.Min, s.Max)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	runSteps := 300
	if cmd.Flags().Changed("steps") {
		runSteps = steps
	}
	runSeed := cfg.Sim.Seed
	if runSeed == 0 {
		runSeed = time.Now().UnixNano()
	}

	sw := optim.Sweep{
		Param:   args[0],
		Min:     sweepMin,
		Max:     sweepMax,
		Points:  sweepPoints,
		Steps:   runSteps,
		Seed:    runSeed,
		Base:    cfg.Fluid,
		Width:   cfg.Sim.Width,
		Height:  cfg.Sim.Height,
		Metrics: metrics.Default,
	}

	slog.Info("starting sweep",
		"param", sw.Param,
		"points", sw.Points,
		"steps", runSteps,
		"seed", runSeed,
	)
	points, err := sw.Run(context.Background())
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return fmt.Errorf("sweep produced no points")
	}
	names := sortedKeys(points[0].Values)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := strings.ToUpper(sw.Param)
	for _, name := range names {
		header += "\t" + strings.ToUpper(name)
	}
	fmt.Fprintln(w, header+"\tSKIPPED")
	for _, pt := range points {
		fmt.Fprintf(w, "%g", pt.Value)
		for _, name := range names {
			fmt.Fprintf(w, "\t%.4f", pt.Values[name])
		}
		fmt.Fprintf(w, "\t%d\n", pt.Anomalies)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	target := metricFlag(cmd, "energy")
	if series := sweepSeries(points, target); len(series) >= 2 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(series,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(target+" across "+sw.Param),
		))
	}

	if outFile != "" {
		if err := writeSweepCSV(outFile, sw.Param, names, points); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outFile)
	}
	return nil
}

func sweepSeries(points []optim.Point, name string) []float64 {
	series := make([]float64, 0, len(points))
	for _, pt := range points {
		v, ok := pt.Values[name]
		if !ok {
			return nil
		}
		series = append(series, v)
	}
	return series
}

func writeSweepCSV(path, param string, names []string, points []optim.Point) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{param}, names...)
	if err := w.Write(append(header, "skipped")); err != nil {
		return err
	}
	for _, pt := range points {
		row := []string{strconv.FormatFloat(pt.Value, 'f', 6, 64)}
		for _, name := range names {
			row = append(row, strconv.FormatFloat(pt.Values[name], 'f', 6, 64))
		}
		row = append(row, strconv.Itoa(pt.Anomalies))
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(gridAxes) == 0 {
		return fmt.Errorf("no grid axes: pass --param name=lo:hi:n at least once")
	}
	runSteps := 300
	if cmd.Flags().Changed("steps") {
		runSteps = steps
	}
	runSeed := cfg.Sim.Seed
	if runSeed == 0 {
		runSeed = time.Now().UnixNano()
	}

	paramNames := make([]string, 0, len(gridAxes))
	ranges := make([][]float64, 0, len(gridAxes))
	cells := 1
	for _, axis := range gridAxes {
		name, values, err := parseGridAxis(axis)
		if err != nil {
			return err
		}
		paramNames = append(paramNames, name)
		ranges = append(ranges, values)
		cells *= len(values)
	}

	objective := metricFlag(cmd, "density_spread")
	slog.Info("starting grid search",
		"axes", len(paramNames),
		"cells", cells,
		"objective", objective,
		"steps", runSteps,
	)
	start := time.Now()
	gs := optim.NewGridSearch(paramNames, ranges)
	best, score, err := gs.Search(context.Background(), cfg.Fluid, optim.Options{
		Steps:   runSteps,
		Seed:    runSeed,
		Width:   cfg.Sim.Width,
		Height:  cfg.Sim.Height,
		Metrics: metrics.Default,
	}, objective)
	if err != nil {
		return err
	}

	fmt.Printf("%d cells searched in %v\n", cells, time.Since(start).Round(time.Millisecond))
	fmt.Printf("best %s: %.6f\n\n", objective, score)

	vals := best.Map()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAMETER\tVALUE")
	for _, name := range sortedKeys(vals) {
		fmt.Fprintf(w, "%s\t%g\n", name, vals[name])
	}
	return w.Flush()
}

// parseGridAxis parses one --param flag. "gravity=0:0.5:4" yields four
// evenly spaced values, "gravity=0.3" pins a single one.
func parseGridAxis(axis string) (string, []float64, error) {
	name, rangeStr, ok := strings.Cut(axis, "=")
	if !ok {
		return "", nil, fmt.Errorf("bad --param %q, want name=lo:hi:n", axis)
	}

	parts := strings.Split(rangeStr, ":")
	switch len(parts) {
	case 1:
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return "", nil, fmt.Errorf("bad --param %q: %w", axis, err)
		}
		return name, []float64{v}, nil
	case 3:
		lo, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return "", nil, fmt.Errorf("bad --param %q: %w", axis, err)
		}
		hi, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return "", nil, fmt.Errorf("bad --param %q: %w", axis, err)
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil || n < 1 {
			return "", nil, fmt.Errorf("bad --param %q: point count must be a positive integer", axis)
		}
		values := make([]float64, n)
		values[0] = lo
		if n > 1 {
			pitch := (hi - lo) / float64(n-1)
			for i := 1; i < n; i++ {
				values[i] = lo + float64(i)*pitch
			}
		}
		return name, values, nil
	default:
		return "", nil, fmt.Errorf("bad --param %q, want name=lo:hi:n", axis)
	}
}

// metricFlag resolves --metric for this invocation. The backing var is
// shared across commands with different defaults, so only an explicitly
// set flag counts.
func metricFlag(cmd *cobra.Command, fallback string) string {
	if cmd.Flags().Changed("metric") {
		return metricName
	}
	return fallback
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
