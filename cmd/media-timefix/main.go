package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quidome/media-timefix/pkg/audit"
	"github.com/quidome/media-timefix/pkg/config"
	"github.com/quidome/media-timefix/pkg/createdat"
	"github.com/quidome/media-timefix/pkg/namestamp"
	"github.com/quidome/media-timefix/pkg/reconcile"
	"github.com/quidome/media-timefix/pkg/source"
)

const version = "0.2.0"

type options struct {
	verbose    bool
	configPath string
	logLevel   string
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:     "media-timefix",
		Short:   "Check media creation timestamps against their filenames",
		Long:    "media-timefix checks the recorded creation time of every item in an album against the timestamp in its filename and the window the album was shot in, and suggests corrections.",
		Version: version,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("Media Timefix CLI")
			cmd.Printf("Version: %s\n", version)
			if opts.verbose {
				cmd.Println("Verbose mode: enabled")
			}
			cmd.Println("")
			cmd.Println("Use --help to see available commands and options")
		},
	}

	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newExtractCmd())
	rootCmd.AddCommand(newRangeCmd(opts))

	return rootCmd
}

// rangeFlags override the batch window from the config file.
type rangeFlags struct {
	timezone string
	begin    string
	end      string
	order    []string
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.timezone, "tz", "", "timezone of the batch (default "+config.DefaultTimezone+")")
	cmd.Flags().StringVar(&f.begin, "begin", "", "start of the valid range, inclusive ("+config.LocalLayout+" or RFC3339)")
	cmd.Flags().StringVar(&f.end, "end", "", "end of the valid range, exclusive ("+config.LocalLayout+" or RFC3339)")
	cmd.Flags().StringSliceVar(&f.order, "order", nil, "order in which filename timestamps are interpreted (utc, local)")
}

func (f *rangeFlags) apply(cfg *config.Config) {
	if f.timezone != "" {
		cfg.Timezone = f.timezone
	}
	if f.begin != "" {
		cfg.Begin = f.begin
	}
	if f.end != "" {
		cfg.End = f.end
	}
	if len(f.order) > 0 {
		cfg.Order = f.order
	}
}

func loadConfig(opts *options) (*config.Config, error) {
	if opts.configPath == "" {
		return config.Default(), nil
	}
	return config.Load(opts.configPath)
}

func newLogger(cmd *cobra.Command, opts *options, cfg *config.Config) *slog.Logger {
	level := cfg.Level()
	if opts.logLevel != "" {
		level = config.ParseLevel(opts.logLevel)
	}
	if opts.verbose && level > slog.LevelDebug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func newCheckCmd(opts *options) *cobra.Command {
	var (
		rf       rangeFlags
		manifest string
		maxDepth int
		pageSize int
		workers  int
		apply    bool
		asJSON   bool
	)

	checkCmd := &cobra.Command{
		Use:   "check [directory]",
		Short: "Check the creation timestamps of an album",
		Long:  "Check every media item of a directory, or of an exported album manifest (--manifest), against the valid range and print OK, a suggested correction, or " + reconcile.UnknownGlyph + ".",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 1) == (manifest != "") {
				return fmt.Errorf("check needs either a directory or --manifest")
			}

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			rf.apply(cfg)
			if pageSize > 0 {
				cfg.PageSize = pageSize
			}
			if workers > 0 {
				cfg.Workers = workers
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger(cmd, opts, cfg)

			rng, err := cfg.Range()
			if err != nil {
				return err
			}
			order, err := cfg.Interpretations()
			if err != nil {
				return err
			}

			var src source.Source
			if manifest != "" {
				m, err := source.LoadManifest(manifest)
				if err != nil {
					return err
				}
				src = m
			} else {
				dir := source.NewDirectory(os.DirFS(args[0]), ".")
				dir.Scan.MaxDepth = maxDepth
				dir.Created = createdat.Options{Location: rng.Location()}
				src = dir
			}

			if !asJSON {
				cmd.Printf("Valid range: %s\n", rng)
			}

			report, err := audit.Run(cmd.Context(), src, rng, audit.Options{
				Reconciler: reconcile.New(reconcile.Options{Order: order}),
				PageSize:   cfg.PageSize,
				Workers:    cfg.Workers,
				Apply:      apply,
				Logger:     logger,
			})
			if report != nil {
				if printErr := printReport(cmd, report, asJSON); printErr != nil {
					return printErr
				}
			}
			if err != nil {
				return err
			}

			if opts.verbose {
				cmd.PrintErrf("checked %d items: %d ok, %d to change, %d unknown, %d malformed\n",
					len(report.Items),
					report.Counts[reconcile.KindOK],
					report.Counts[reconcile.KindSuggest],
					report.Counts[reconcile.KindUnknown],
					report.Counts[reconcile.KindMalformed])
			}
			return nil
		},
	}

	rf.register(checkCmd)
	checkCmd.Flags().StringVarP(&manifest, "manifest", "m", "", "exported album manifest (YAML or JSON)")
	checkCmd.Flags().IntVar(&maxDepth, "max-depth", -1, "maximum recursion depth (0 = no recursion)")
	checkCmd.Flags().IntVar(&pageSize, "page-size", 0, "records fetched per page")
	checkCmd.Flags().IntVarP(&workers, "workers", "w", 0, "records classified concurrently")
	checkCmd.Flags().BoolVar(&apply, "apply", false, "hand suggested corrections to the sink (logged only)")
	checkCmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON object per item")

	return checkCmd
}

type jsonItem struct {
	Index        int    `json:"index"`
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	CreationTime string `json:"creation_time"`
	Outcome      string `json:"outcome"`
	Suggested    string `json:"suggested,omitempty"`
	Error        string `json:"error,omitempty"`
}

func printReport(cmd *cobra.Command, report *audit.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, item := range report.Items {
			ji := jsonItem{
				Index:        item.Index + 1,
				ID:           item.Record.ID,
				Filename:     item.Record.Filename,
				CreationTime: item.Record.CreatedAt.UTC().Format(time.RFC3339),
				Outcome:      string(item.Outcome.Kind),
			}
			if item.Outcome.Kind == reconcile.KindSuggest {
				ji.Suggested = item.Outcome.Suggested.Format(time.RFC3339)
			}
			if item.Outcome.Err != nil {
				ji.Error = item.Outcome.Err.Error()
			}
			if err := enc.Encode(ji); err != nil {
				return err
			}
		}
		return nil
	}

	for _, item := range report.Items {
		cmd.Printf("%3d %s %s %s\n", item.Index+1, item.Record.Filename, item.Record.CreatedAt.UTC(), item.Outcome)
	}
	return nil
}

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <filename>...",
		Short: "Print the timestamp found in each filename",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range args {
				c, ok := namestamp.Extract(name)
				if !ok {
					cmd.Printf("%s -\n", name)
					continue
				}
				cmd.Printf("%s %s\n", name, c)
			}
		},
	}
}

func newRangeCmd(opts *options) *cobra.Command {
	var rf rangeFlags

	rangeCmd := &cobra.Command{
		Use:   "range",
		Short: "Print the configured valid range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			rf.apply(cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			rng, err := cfg.Range()
			if err != nil {
				return err
			}
			cmd.Printf("Valid range: %s\n", rng)
			if opts.verbose {
				cmd.Printf("UTC: [%s - %s)\n", rng.Begin().UTC().Format(time.RFC3339), rng.End().UTC().Format(time.RFC3339))
				cmd.Printf("Order: %s\n", strings.Join(cfg.Order, ", "))
			}
			return nil
		},
	}

	rf.register(rangeCmd)
	return rangeCmd
}
