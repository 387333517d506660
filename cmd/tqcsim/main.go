package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/tqcsim/internal/automation"
	"github.com/san-kum/tqcsim/internal/config"
	"github.com/san-kum/tqcsim/internal/elastic"
	"github.com/san-kum/tqcsim/internal/experiment"
	"github.com/san-kum/tqcsim/internal/export"
	"github.com/san-kum/tqcsim/internal/report"
	"github.com/san-kum/tqcsim/internal/storage"
	"github.com/san-kum/tqcsim/internal/thermo"
	"github.com/san-kum/tqcsim/internal/tqc"
	"github.com/san-kum/tqcsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	verbose    bool

	ensemble        string
	material        string
	s11, s12, s44   float64
	elasticDir      string
	fitThreshold    float64
	workers         int
	strainThreshold float64
	thresholdColumn string
	averageColumns  []string
	specificHeat    float64
	outputFile      string
	noSave          bool

	rawOut      string
	asJSON      bool
	jsonColumns []string
	plotColumns []string
	xColumn     string
	plotTitle   string
	theme       string

	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "tqcsim",
		Short:        "thermomechanical post-processing of MD deformation runs",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [input]",
		Short: "compute strain, energy balance and TQC coefficients",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnalyze,
	}
	addAnalysisFlags(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write the result table to this file")
	analyzeCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	elasticCmd := &cobra.Command{
		Use:   "elastic [files...]",
		Short: "fit elastic constants from stress-strain sweeps",
		RunE:  runElastic,
	}
	elasticCmd.Flags().StringVar(&elasticDir, "dir", "", "directory holding c1144/c2255/c3366 sweeps")
	elasticCmd.Flags().Float64Var(&fitThreshold, "fit-threshold", elastic.DefaultThreshold, "max strain used in the fit")
	elasticCmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "files fitted concurrently")
	elasticCmd.Flags().StringVar(&rawOut, "raw", "", "write C and S values as key=value lines to this file (- for stdout)")

	detectCmd := &cobra.Command{
		Use:   "detect [input]",
		Short: "report the ensemble of a thermo file",
		Args:  cobra.ExactArgs(1),
		RunE:  runDetect,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run summary",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().BoolVar(&asJSON, "json", false, "emit metadata and columns as JSON")
	showCmd.Flags().StringSliceVar(&jsonColumns, "columns", nil, "columns to include in JSON output")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run columns in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&plotColumns, "columns", tqc.Names, "columns to plot")

	exportPlotCmd := &cobra.Command{
		Use:   "export-plot [run_id] [file]",
		Short: "render run columns to png, svg or pdf",
		Args:  cobra.ExactArgs(2),
		RunE:  exportPlot,
	}
	exportPlotCmd.Flags().StringSliceVar(&plotColumns, "columns", tqc.Names, "columns to plot")
	exportPlotCmd.Flags().StringVar(&xColumn, "x", "step", "x-axis column")
	exportPlotCmd.Flags().StringVar(&plotTitle, "title", "", "figure title")

	viewCmd := &cobra.Command{
		Use:   "view [run_id]",
		Short: "browse run columns interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  viewRun,
	}
	viewCmd.Flags().StringVar(&theme, "theme", viz.ThemeTerminal.Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run every step of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [input]",
		Short: "re-average TQC coefficients over a range of strain thresholds",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addAnalysisFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.001, "lowest threshold")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.01, "highest threshold")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of thresholds")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list material presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLATTICE\tS11\tS12\tS44\tCP")
			for _, name := range config.ListPresets() {
				m := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%.3e\t%.3e\t%.3e\t%g\n",
					m.Name, m.Lattice, m.Compliance.S11, m.Compliance.S12, m.Compliance.S44, m.SpecificHeat)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(analyzeCmd, elasticCmd, detectCmd, listCmd, showCmd, plotCmd, exportPlotCmd, viewCmd, batchCmd, sweepCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ensemble, "ensemble", config.DefaultEnsemble, "auto, nve or nvt")
	cmd.Flags().StringVar(&material, "material", "", "material preset for the compliance")
	cmd.Flags().Float64Var(&s11, "s11", 0, "compliance S11 (1/Pa)")
	cmd.Flags().Float64Var(&s12, "s12", 0, "compliance S12 (1/Pa)")
	cmd.Flags().Float64Var(&s44, "s44", 0, "compliance S44 (1/Pa)")
	cmd.Flags().StringVar(&elasticDir, "elastic-dir", "", "fit the compliance from sweeps in this directory")
	cmd.Flags().Float64Var(&fitThreshold, "fit-threshold", elastic.DefaultThreshold, "max strain used in the elastic fit")
	cmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "elastic files fitted concurrently")
	cmd.Flags().Float64Var(&strainThreshold, "threshold", config.DefaultStrainThreshold, "strain threshold for averaging")
	cmd.Flags().StringVar(&thresholdColumn, "column", config.DefaultThresholdColumn, "column compared against the threshold")
	cmd.Flags().StringSliceVar(&averageColumns, "average", nil, "columns averaged past the threshold")
	cmd.Flags().Float64Var(&specificHeat, "cp", 0, "specific heat in J/(kg K)")
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// loadConfig reads --config when given; flags set on the command line win.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("data") || configFile == "" {
		cfg.DataDir = dataDir
	}
	if len(args) > 0 {
		cfg.Input = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("ensemble") {
		cfg.Ensemble = ensemble
	}
	if flags.Changed("material") {
		cfg.Material = material
	}
	if flags.Changed("s11") || flags.Changed("s12") || flags.Changed("s44") {
		if !(flags.Changed("s11") && flags.Changed("s12") && flags.Changed("s44")) {
			return nil, &thermo.ConfigError{Reason: "--s11, --s12 and --s44 must be given together"}
		}
		cfg.Compliance = &thermo.Compliance{S11: s11, S12: s12, S44: s44}
	}
	if flags.Changed("elastic-dir") {
		cfg.ElasticDir = elasticDir
	}
	if flags.Changed("fit-threshold") {
		cfg.FitThreshold = fitThreshold
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("threshold") {
		cfg.StrainThreshold = strainThreshold
	}
	if flags.Changed("column") {
		cfg.ThresholdColumn = thresholdColumn
	}
	if flags.Changed("average") {
		cfg.AverageColumns = averageColumns
	}
	if flags.Changed("cp") {
		cfg.SpecificHeat = specificHeat
	}
	if flags.Changed("output") {
		cfg.Output = outputFile
	}
	return cfg, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	run, err := automation.Analyze(ctx, cfg, newLogger())
	if err != nil {
		return err
	}

	if run.Elastic != nil {
		report.Elastic(os.Stdout, run.Elastic, verbose)
		fmt.Println()
	}

	meta := run.Meta
	if !noSave {
		st := storage.New(cfg.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(meta, run.Result.Table)
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		meta.ID = id
	}
	report.Run(os.Stdout, meta)
	return nil
}

func runElastic(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("dir") {
		cfg.ElasticDir = elasticDir
	}
	cfg.ElasticFiles = args
	if cfg.ElasticDir == "" && len(cfg.ElasticFiles) == 0 {
		cfg.ElasticDir = "."
	}
	paths, err := cfg.ElasticPaths()
	if err != nil {
		return err
	}

	eng := elastic.New(
		elastic.WithThreshold(cfg.FitThreshold),
		elastic.WithWorkers(cfg.Workers),
		elastic.WithLogger(newLogger()),
	)
	res, err := eng.Analyze(paths)
	if err != nil {
		return err
	}

	switch rawOut {
	case "":
		report.Elastic(os.Stdout, res, verbose)
	case "-":
		return elastic.WriteRaw(os.Stdout, res)
	default:
		f, err := os.Create(rawOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := elastic.WriteRaw(f, res); err != nil {
			return err
		}
		report.Elastic(os.Stdout, res, verbose)
		return f.Close()
	}
	return nil
}

func runDetect(cmd *cobra.Command, args []string) error {
	_, t, err := experiment.LoadSeries(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s (%d steps)\n", args[0], thermo.DetectEnsemble(t.Names()), t.Len())
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
	fmt.Fprintln(w, "ID\tINPUT\tTIME\tENSEMBLE\tSTEPS\tCOMPLIANCE\tABOVE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%d\n",
			run.ID,
			run.Input,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ensemble,
			run.Steps,
			run.ComplianceSource,
			run.RowsAbove,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	if !asJSON {
		report.Run(os.Stdout, *meta)
		return nil
	}
	t, err := st.LoadTable(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, t, jsonColumns)
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	t, err := st.LoadTable(args[0])
	if err != nil {
		return err
	}
	if t.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("input: %s\n", meta.Input)
	fmt.Printf("samples: %d\n\n", t.Len())

	out, err := report.Curves(t, plotColumns, 10, 80)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func exportPlot(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	t, err := st.LoadTable(args[0])
	if err != nil {
		return err
	}
	cfg := export.DefaultPlotConfig()
	cfg.Title = plotTitle
	cfg.X = xColumn
	cfg.Y = plotColumns
	if err := export.Save(t, cfg, args[1]); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[1])
	return nil
}

func viewRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	t, err := st.LoadTable(args[0])
	if err != nil {
		return err
	}
	return viz.Run(t, viz.Options{
		Title:           meta.ID,
		Theme:           theme,
		ThresholdColumn: meta.ThresholdColumn,
		Threshold:       meta.Threshold,
	})
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("data") {
		scenario.Defaults.DataDir = dataDir
	}
	st := storage.New(scenario.Defaults.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunScenario(ctx, scenario, st, newLogger())
	printBatch(os.Stdout, results)
	if err != nil {
		return err
	}
	if n := automation.Failed(results); n > 0 {
		return fmt.Errorf("%d of %d steps failed", n, len(results))
	}
	return nil
}

func printBatch(out io.Writer, results []automation.StepResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN\tENSEMBLE\tABOVE\tSTATUS")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\t%v\n", r.Name, r.Err)
			continue
		}
		id := r.RunID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\tok\n", r.Name, id, r.Run.Meta.Ensemble, r.Run.Meta.RowsAbove)
	}
	w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	run, err := automation.Analyze(ctx, cfg, newLogger())
	if err != nil {
		return err
	}
	results, err := automation.RunSweep(run, automation.ThresholdSweep{
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepSteps,
	})
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return nil
	}

	order := results[0].Order
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "THRESHOLD\tROWS\t%s\n", strings.Join(order, "\t"))
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%d", r.Threshold, r.RowsAbove)
		for _, name := range order {
			if v, ok := r.Averages[name]; ok {
				fmt.Fprintf(w, "\t%.6g", v)
			} else {
				fmt.Fprint(w, "\t-")
			}
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
