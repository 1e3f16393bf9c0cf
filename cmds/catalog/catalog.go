package catalog

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thechriswalker/go-verifier/config"
	"github.com/thechriswalker/go-verifier/report"
	"github.com/thechriswalker/go-verifier/verifier"
)

// Register the catalog command
func Register(rootCmd *cobra.Command) {
	var period, format string
	var cmd = &cobra.Command{
		Use:   "catalog",
		Short: "List the verifications",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := &config.Config{Period: config.Period(period), Format: config.Format(format)}
			if err := cfg.Validate(); err != nil {
				log.Fatal().Err(err).Msg("Invalid flags")
			}
			if cfg.Format != "" && cfg.Format != config.FormatText && cfg.Format != config.FormatMarkdown {
				log.Fatal().Str("format", format).Msg("The catalog is listed as text or markdown")
			}
			fmt.Print(report.Catalog(cfg.Catalog(verifier.Default()), cfg.Format == config.FormatMarkdown))
		},
	}
	cmd.Flags().StringVar(&period, "period", "all", "Which verifications to list: setup, tally or all")
	cmd.Flags().StringVar(&format, "format", "text", "text or markdown")
	rootCmd.AddCommand(cmd)
}
