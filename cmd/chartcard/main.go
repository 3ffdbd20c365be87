// Package main provides the CLI entrypoint for chartcard.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/chartcard/internal/canvas"
	"github.com/verte-zerg/chartcard/internal/cardui"
	"github.com/verte-zerg/chartcard/internal/cardview"
	"github.com/verte-zerg/chartcard/internal/chart"
	"github.com/verte-zerg/chartcard/internal/config"
	"github.com/verte-zerg/chartcard/internal/dataset"
	"github.com/verte-zerg/chartcard/internal/generator"
	"github.com/verte-zerg/chartcard/internal/logging"
	"github.com/verte-zerg/chartcard/internal/model"
	"github.com/verte-zerg/chartcard/internal/store"
	"github.com/verte-zerg/chartcard/internal/termsize"
	"github.com/verte-zerg/chartcard/internal/usage"
)

const (
	defaultTitle    = "API Requests"
	defaultType     = "line"
	defaultPeriod   = "day"
	defaultLogLevel = "warn"
	minChartHeight  = 60
	fetchTimeout    = 5 * time.Second
)

var (
	cardTitle       string
	cardDescription string
	cardType        string
	cardColor       string
	cardHeight      int
	cardPeriod      string

	dataOrg   string
	dataDB    string
	useSample bool

	logLevel string
	logFile  string

	renderFormat string
	renderWidth  int
	renderHover  int
	renderOutput string
	renderWatch  bool
	renderColor  bool

	seedValue int64
)

var logger = zap.NewNop()

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "chartcard",
		Short:         "Usage chart card for the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "config" {
				return nil
			}
			if err := applyFileConfig(cmd); err != nil {
				return err
			}
			path := logFile
			if path == "" && cmd.Parent() == nil {
				// The interactive card owns the terminal.
				path = config.DefaultLogPath()
			}
			l, err := logging.New(logLevel, path)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = logger.Sync()
		},
		RunE: runCardCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cardTitle, "title", defaultTitle, "card title")
	flags.StringVar(&cardDescription, "description", "", "card description")
	flags.StringVar(&cardType, "type", defaultType, "chart type (line or bar)")
	flags.StringVar(&cardColor, "color", chart.DefaultColor, "series color")
	flags.IntVar(&cardHeight, "chart-height", model.DefaultChartHeight, "total chart height in pixels")
	flags.StringVar(&cardPeriod, "period", defaultPeriod, "initial period (day, week or month)")
	flags.StringVar(&dataOrg, "org", usage.SampleOrgID, "organization id")
	flags.StringVar(&dataDB, "db", "", "SQLite database path (default: XDG data dir)")
	flags.BoolVar(&useSample, "sample", true, "serve built-in sample data when the org has no stored metrics")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&logFile, "log-file", "", "log file path (default: stderr, or XDG data dir for the interactive card)")

	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newMetricsCmd())
	rootCmd.AddCommand(newOrgsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func applyFileConfig(cmd *cobra.Command) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "title", &cardTitle, fileCfg.Card.Title)
	applyStringConfig(cmd, "description", &cardDescription, fileCfg.Card.Description)
	applyStringConfig(cmd, "type", &cardType, fileCfg.Card.Type)
	applyStringConfig(cmd, "color", &cardColor, fileCfg.Card.Color)
	applyIntConfig(cmd, "chart-height", &cardHeight, fileCfg.Card.ChartHeight)
	applyStringConfig(cmd, "period", &cardPeriod, fileCfg.Card.Period)
	applyStringConfig(cmd, "org", &dataOrg, fileCfg.Data.Org)
	applyStringConfig(cmd, "db", &dataDB, fileCfg.Data.DB)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)
	return nil
}

func runCardCmd(_ *cobra.Command, _ []string) error {
	cfg, _, err := cardConfigFromFlags()
	if err != nil {
		return err
	}
	src, closeSource, err := openSource()
	if err != nil {
		return err
	}
	defer closeSource()

	logger.Info("starting card", zap.String("org", cfg.OrgID), zap.String("period", cfg.Period.String()))
	m := cardui.NewModel(src, cfg, logger)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run card TUI: %w", err)
	}
	return nil
}

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the card once as SVG or text",
		Args:  cobra.NoArgs,
		RunE:  runRenderCmd,
	}
	cmd.Flags().StringVar(&renderFormat, "format", "text", "output format (svg or text)")
	cmd.Flags().IntVar(&renderWidth, "width", 0, "container width: pixels for svg, columns for text (default: fallback or terminal width)")
	cmd.Flags().IntVar(&renderHover, "hover", -1, "index of the element to show a tooltip for")
	cmd.Flags().StringVarP(&renderOutput, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&renderWatch, "watch", false, "re-render text output on terminal resize until interrupted")
	cmd.Flags().BoolVar(&renderColor, "color-output", false, "force ANSI colors in text output")
	return cmd
}

type renderOptions struct {
	format string
	width  int
	hover  int
	color  bool
}

func runRenderCmd(cmd *cobra.Command, _ []string) error {
	cfg, kind, err := cardConfigFromFlags()
	if err != nil {
		return err
	}
	opts := renderOptions{format: strings.ToLower(strings.TrimSpace(renderFormat)), width: renderWidth, hover: renderHover}
	if err := validateRenderOptions(opts, renderWatch, renderOutput); err != nil {
		return err
	}

	src, closeSource, err := openSource()
	if err != nil {
		return err
	}
	defer closeSource()
	metrics, err := fetchMetrics(cmd.Context(), src, cfg.OrgID)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if renderOutput != "" {
		file, err := os.Create(renderOutput)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil {
				logErrf("failed to close output: %v\n", cerr)
			}
		}()
		out = file
	}
	opts.color = canvas.ShouldUseColor(out, renderColor)

	if renderWatch {
		ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watchRender(ctx, out, int(os.Stdout.Fd()), func(cols int) error {
			o := opts
			o.width = cols
			return renderCard(out, metrics, cfg, kind, o)
		})
	}
	if err := renderCard(out, metrics, cfg, kind, opts); err != nil {
		return err
	}
	logger.Debug("rendered card", zap.String("format", opts.format), zap.String("org", cfg.OrgID))
	return nil
}

func validateRenderOptions(opts renderOptions, watch bool, output string) error {
	switch opts.format {
	case "svg", "text":
	default:
		return fmt.Errorf("--format must be svg or text")
	}
	if opts.width < 0 {
		return fmt.Errorf("--width must be >= 0")
	}
	if watch && (opts.format != "text" || output != "") {
		return fmt.Errorf("--watch only works for text output to the terminal")
	}
	return nil
}

func renderCard(w io.Writer, metrics model.UsageMetrics, cfg model.CardConfig, kind chart.Kind, opts renderOptions) error {
	ds := chart.NewDatasets(metrics.Series)
	switch opts.format {
	case "svg":
		card := chart.NewCard(chart.Options{
			Title:       cfg.Title,
			Description: cfg.Description,
			Kind:        kind,
			Color:       cfg.Color,
			Layout:      chart.PixelLayout(float64(cfg.ChartHeight)),
			Period:      cfg.Period,
		}, ds)
		if opts.width > 0 {
			card.Resize(float64(opts.width))
		}
		card.PointerEnter(opts.hover)
		if err := chart.RenderSVG(w, card.Scene()); err != nil {
			return fmt.Errorf("failed to render svg: %w", err)
		}
		return nil
	default:
		card := chart.NewCard(cardview.Options(cfg, kind), ds)
		cols := opts.width
		if cols <= 0 {
			cols = canvas.TerminalWidth()
		}
		card.Resize(cardview.ContainerWidth(cols))
		card.PointerEnter(opts.hover)
		if _, err := fmt.Fprintln(w, cardview.Render(card.Scene(), cardview.NewStyles(cfg.Color), opts.color)); err != nil {
			return fmt.Errorf("failed to write card: %w", err)
		}
		return nil
	}
}

// watchRender draws once at the current size and again on every resize until ctx is done.
func watchRender(ctx context.Context, w io.Writer, fd int, render func(cols int) error) error {
	var mu sync.Mutex
	draw := func(cols int) {
		mu.Lock()
		defer mu.Unlock()
		if _, err := fmt.Fprint(w, "\x1b[H\x1b[2J"); err != nil {
			logger.Warn("failed to clear screen", zap.Error(err))
			return
		}
		if err := render(cols); err != nil {
			logger.Warn("failed to render card", zap.Error(err))
		}
	}
	cols, _ := termsize.Size(fd, 80, 24)
	draw(cols)
	stop := termsize.Watch(fd, func(cols, _ int) {
		logger.Debug("terminal resized", zap.Int("cols", cols))
		draw(cols)
	})
	defer stop()
	<-ctx.Done()
	return nil
}

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Store generated mock usage for an org",
		Args:  cobra.NoArgs,
		RunE:  runSeedCmd,
	}
	cmd.Flags().Int64Var(&seedValue, "seed", 0, "random seed (default: current time)")
	return cmd
}

func runSeedCmd(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(dataOrg) == "" {
		return fmt.Errorf("--org must not be empty")
	}
	st, err := store.Open(dbPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	metrics := generator.New(seedValue).Usage(dataOrg)
	if err := st.PutMetrics(contextOrBackground(cmd), metrics); err != nil {
		return fmt.Errorf("failed to store metrics: %w", err)
	}
	logger.Info("seeded org", zap.String("org", dataOrg), zap.Int64("requests", metrics.TotalRequests))
	logErrf("Seeded %s with %d requests\n", dataOrg, metrics.TotalRequests)
	return nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load a label,value file into one period's series",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(dataOrg) == "" {
		return fmt.Errorf("--org must not be empty")
	}
	period, err := model.ParsePeriod(cardPeriod)
	if err != nil {
		return fmt.Errorf("invalid --period: %w", err)
	}
	points, err := dataset.LoadPoints(args[0])
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	st, err := store.Open(dbPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if err := st.ReplaceSeries(contextOrBackground(cmd), dataOrg, period, points); err != nil {
		return fmt.Errorf("failed to store series: %w", err)
	}
	logger.Info("imported series", zap.String("org", dataOrg), zap.String("period", period.String()), zap.Int("points", len(points)))
	logErrf("Imported %d %s points for %s\n", len(points), period, dataOrg)
	return nil
}

func newMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Print the usage summary for an org",
		Args:  cobra.NoArgs,
		RunE:  runMetricsCmd,
	}
}

func runMetricsCmd(cmd *cobra.Command, _ []string) error {
	src, closeSource, err := openSource()
	if err != nil {
		return err
	}
	defer closeSource()
	metrics, err := fetchMetrics(cmd.Context(), src, dataOrg)
	if err != nil {
		return err
	}
	return usage.WriteReport(cmd.OutOrStdout(), metrics)
}

func newOrgsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orgs",
		Short: "List orgs with stored metrics",
		Args:  cobra.NoArgs,
		RunE:  runOrgsCmd,
	}
}

func runOrgsCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(dbPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	orgs, err := st.ListOrgs(contextOrBackground(cmd))
	if err != nil {
		return err
	}
	if len(orgs) == 0 {
		logErrln("No orgs stored. Seed one with: chartcard seed --org <id>")
		return nil
	}
	for _, o := range orgs {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", o.OrgID, o.OrgName, o.Plan); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := writeConfigTemplate(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// writeConfigTemplate creates path from the template unless it already exists.
func writeConfigTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func cardConfigFromFlags() (model.CardConfig, chart.Kind, error) {
	kind, err := chart.ParseKind(cardType)
	if err != nil {
		return model.CardConfig{}, "", fmt.Errorf("invalid --type: %w", err)
	}
	period, err := model.ParsePeriod(cardPeriod)
	if err != nil {
		return model.CardConfig{}, "", fmt.Errorf("invalid --period: %w", err)
	}
	cfg := model.CardConfig{
		Title:       cardTitle,
		Description: cardDescription,
		Type:        string(kind),
		Color:       strings.TrimSpace(cardColor),
		ChartHeight: cardHeight,
		Period:      period,
		OrgID:       strings.TrimSpace(dataOrg),
	}
	if err := validateCardConfig(cfg); err != nil {
		return model.CardConfig{}, "", err
	}
	return cfg, kind, nil
}

func validateCardConfig(cfg model.CardConfig) error {
	if cfg.ChartHeight < minChartHeight {
		return fmt.Errorf("--chart-height must be >= %d", minChartHeight)
	}
	if cfg.Color == "" {
		return fmt.Errorf("--color must not be empty")
	}
	if cfg.OrgID == "" {
		return fmt.Errorf("--org must not be empty")
	}
	return nil
}

func dbPath() string {
	if dataDB != "" {
		return dataDB
	}
	return config.DefaultDBPath()
}

// openSource opens the store and, with --sample, falls back to the built-in data.
// Without --db and before any store file exists only the sample is served, so read
// commands do not create an empty database.
func openSource() (usage.Source, func(), error) {
	sample := usage.Sample(strings.TrimSpace(dataOrg))
	path := dbPath()
	if useSample && dataDB == "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			logger.Debug("no store yet, serving sample data", zap.String("path", path))
			return sample, func() {}, nil
		}
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	closeFn := func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}
	if !useSample {
		return st, closeFn, nil
	}
	return usage.Fallback{Primary: st, Secondary: sample}, closeFn, nil
}

func fetchMetrics(ctx context.Context, src usage.Source, orgID string) (model.UsageMetrics, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	metrics, err := src.GetUsageMetrics(ctx, orgID)
	if err != nil {
		return model.UsageMetrics{}, fmt.Errorf("failed to load usage for %q: %w", orgID, err)
	}
	return metrics, nil
}

func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# chartcard configuration
# Uncomment a value to enable it. CLI flags override config values.

[card]
# title = %q         # Card title
# description = ""             # Card description
# type = %q                # Chart type: line or bar
# color = %q            # Series color
# chart-height = %d            # Total chart height in pixels
# period = %q               # Initial period: day, week or month

[data]
# org = %q                 # Organization id
# db = ""                      # SQLite path (default: XDG data dir)

[log]
# level = %q               # debug, info, warn or error
# file = ""                    # Log file (default: stderr)
`,
		defaultTitle,
		defaultType,
		chart.DefaultColor,
		model.DefaultChartHeight,
		defaultPeriod,
		usage.SampleOrgID,
		defaultLogLevel,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
