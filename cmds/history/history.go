package history

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thechriswalker/go-verifier/config"
	"github.com/thechriswalker/go-verifier/report"
	"github.com/thechriswalker/go-verifier/store"
	"github.com/thechriswalker/go-verifier/verifier"
)

// Register the history command
func Register(rootCmd *cobra.Command) {
	var db, format string
	var limit int
	var show int64
	var cmd = &cobra.Command{
		Use:   "history",
		Short: "List past verification runs",
		Run: func(cmd *cobra.Command, args []string) {
			if _, err := os.Stat(db); err != nil {
				log.Fatal().Err(err).Str("db", db).Msg("No history database")
			}
			s, err := store.NewSQLiteStorage(db)
			if err != nil {
				log.Fatal().Err(err).Str("db", db).Msg("Failed to open history")
			}
			defer s.Close()

			if show > 0 {
				rep, err := s.Report(show)
				if err != nil {
					log.Fatal().Err(err).Int64("run", show).Msg("Failed to load run")
				}
				if err := report.Render(os.Stdout, rep, config.Format(format)); err != nil {
					log.Fatal().Err(err).Msg("Failed to render run")
				}
				return
			}
			runs, err := s.Runs(limit)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to list runs")
			}
			tw := table.NewWriter()
			tw.SetStyle(table.StyleLight)
			tw.AppendHeader(table.Row{"Run", "Started", "Data", "Fingerprint", "Status", "Successful", "Failed", "Errored", "Skipped"})
			for _, r := range runs {
				tw.AppendRow(table.Row{
					r.ID, r.Started.Format("2006-01-02 15:04:05"), r.DataDir, r.Fingerprint[:min(16, len(r.Fingerprint))], r.Status.String(),
					r.Counts[verifier.StatusSuccessful], r.Counts[verifier.StatusFailed], r.Counts[verifier.StatusErrored], r.Counts[verifier.StatusSkipped],
				})
			}
			fmt.Println(tw.Render())
		},
	}
	cmd.Flags().StringVar(&db, "report-db", "reports.sqlite", "The sqlite history written by verify --report-db")
	cmd.Flags().IntVar(&limit, "limit", 20, "Most recent runs to list (0 lists all)")
	cmd.Flags().Int64Var(&show, "show", 0, "Render the report of this run instead of listing")
	cmd.Flags().StringVar(&format, "format", "text", "Report format for --show")
	rootCmd.AddCommand(cmd)
}
