package verify

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"

	"github.com/thechriswalker/go-verifier/config"
	"github.com/thechriswalker/go-verifier/election"
	"github.com/thechriswalker/go-verifier/report"
	"github.com/thechriswalker/go-verifier/store"
	"github.com/thechriswalker/go-verifier/verifier"
)

// Exit codes of the verify command
const (
	ExitSuccessful = 0
	ExitFailed     = 1
	ExitErrored    = 2
)

// ExitCode maps the overall status of a report
func ExitCode(s verifier.Status) int {
	switch s {
	case verifier.StatusSuccessful, verifier.StatusSkipped:
		return ExitSuccessful
	case verifier.StatusFailed:
		return ExitFailed
	}
	return ExitErrored
}

type flags struct {
	dataDir    string
	configFile string
	period     string
	exclude    []string
	workers    int
	format     string
	output     string
	reportDB   string
	openReport bool
	progress   bool
}

// Register the verify command
func Register(rootCmd *cobra.Command) {
	f := &flags{}
	var cmd = &cobra.Command{
		Use:   "verify",
		Short: "Verify an election dataset",
		Long:  "Runs the verification catalog against the dataset in --data-dir and reports the outcome of every verification",
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(run(cmd, f))
		},
	}
	cmd.Flags().StringVar(&f.dataDir, "data-dir", ".", "The directory holding the dataset")
	cmd.Flags().StringVar(&f.configFile, "config", "", "Optional YAML or JSON configuration file")
	cmd.Flags().StringVar(&f.period, "period", "", "Which verifications to run: setup, tally or all")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "Verification ids to skip, e.g. 05.21,05.22")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Verifications run in parallel (0 means one per CPU)")
	cmd.Flags().StringVar(&f.format, "format", "", "Report format: text, markdown, json or html")
	cmd.Flags().StringVar(&f.output, "output", "", "Write the report to this file instead of stdout")
	cmd.Flags().StringVar(&f.reportDB, "report-db", "", "Record the run in this sqlite history")
	cmd.Flags().BoolVar(&f.openReport, "open", false, "Open the rendered report with the system browser")
	cmd.Flags().BoolVar(&f.progress, "progress", false, "Show a progress bar on stderr")
	rootCmd.AddCommand(cmd)
}

// settings merges the config file with the flags, flags win
func settings(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg := &config.Config{}
	if f.configFile != "" {
		var err error
		if cfg, err = config.LoadFile(f.configFile); err != nil {
			return nil, err
		}
	}
	changed := cmd.Flags().Changed
	if changed("period") {
		cfg.Period = config.Period(f.period)
	}
	if changed("exclude") {
		cfg.Exclude = f.exclude
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("format") {
		cfg.Format = config.Format(f.format)
	}
	if changed("report-db") {
		cfg.ReportDB = f.reportDB
	}
	if f.openReport && cfg.Format == "" {
		cfg.Format = config.FormatHTML
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg.WithDefaults(), nil
}

func run(cmd *cobra.Command, f *flags) int {
	cfg, err := settings(cmd, f)
	if err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return ExitErrored
	}
	log.Info().Str("dir", f.dataDir).Str("period", string(cfg.Period)).Msg("Loading election dataset")
	ec, err := election.Open(f.dataDir, election.WithPolicy(cfg.Policy()))
	if err != nil {
		log.Error().Err(err).Str("dir", f.dataDir).Msg("Failed to load dataset")
		return ExitErrored
	}

	catalog := cfg.Catalog(verifier.Default())
	opts, err := cfg.RunnerOptions()
	if err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return ExitErrored
	}
	bar := store.MaybeProgress(catalog.Len(), f.progress)
	opts = append(opts, verifier.WithObserver(bar.Observer()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	started := time.Now()
	bar.Start()
	rep, err := verifier.NewRunner(catalog, opts...).Run(ctx, ec)
	bar.Finish()
	if err != nil {
		log.Error().Err(err).Msg("Verification run aborted")
		return ExitErrored
	}

	if cfg.ReportDB != "" {
		if err := record(cfg.ReportDB, f.dataDir, started, rep); err != nil {
			log.Error().Err(err).Str("db", cfg.ReportDB).Msg("Failed to record run")
			return ExitErrored
		}
	}
	if err := output(f, cfg.Format, rep); err != nil {
		log.Error().Err(err).Msg("Failed to write report")
		return ExitErrored
	}
	return ExitCode(rep.Status)
}

func record(db, dataDir string, started time.Time, rep *verifier.Report) error {
	s, err := store.NewSQLiteStorage(db)
	if err != nil {
		return err
	}
	defer s.Close()
	id, err := s.Save(dataDir, started, rep)
	if err != nil {
		return err
	}
	log.Info().Int64("run", id).Str("db", db).Msg("Recorded run")
	return nil
}

func output(f *flags, format config.Format, rep *verifier.Report) error {
	path := f.output
	if path == "" && f.openReport {
		path = filepath.Join(os.TempDir(), fmt.Sprintf("verification-%s.%s", rep.Fingerprint[:min(16, len(rep.Fingerprint))], extension(format)))
	}
	var w io.Writer = os.Stdout
	if path != "" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}
	if err := report.Render(w, rep, format); err != nil {
		return err
	}
	if path != "" {
		log.Info().Str("file", path).Msg("Wrote report")
	}
	if f.openReport && path != "" {
		if err := open.Run(path); err != nil {
			log.Warn().Err(err).Msg("Failed to open system browser")
		}
	}
	return nil
}

func extension(f config.Format) string {
	switch f {
	case config.FormatMarkdown:
		return "md"
	case config.FormatJSON:
		return "json"
	case config.FormatHTML:
		return "html"
	}
	return "txt"
}
