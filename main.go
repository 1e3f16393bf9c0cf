package main

import (
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thechriswalker/go-verifier/cmds/catalog"
	"github.com/thechriswalker/go-verifier/cmds/history"
	"github.com/thechriswalker/go-verifier/cmds/simulate"
	"github.com/thechriswalker/go-verifier/cmds/verify"
	"github.com/thechriswalker/go-verifier/verifier"
)

func preamble(cmd *cobra.Command, args []string) {
	log.Info().
		Str("version", verifier.Version).
		Int("verifications", verifier.Default().Len()).
		Msg("Election Verifier")

	commit := verifier.Commit
	if len(commit) > 8 {
		commit = commit[0:8]
	}
	log.Debug().
		Str("commit", commit).
		Str("built", verifier.BuildDate).
		Str("arch", runtime.GOARCH).
		Str("os", runtime.GOOS).
		Int("cpus", runtime.NumCPU()).
		Msg("Build Info")
}

const timeFormatMs = "2006-01-02T15:04:05.000Z07:00"
const timeFormatLocal = "2006-01-02 15:04:05.000"

func main() {
	// pretty logs go to stderr, so reports on stdout stay clean
	zerolog.TimeFieldFormat = timeFormatMs
	log.Logger = log.Output(zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) {
		cw.Out = os.Stderr
		cw.TimeFormat = timeFormatLocal
		cw.NoColor = true
	}))

	var rootCmd = &cobra.Command{
		Use:              "verifier",
		Short:            "Election Dataset Verifier",
		Version:          verifier.Version,
		PersistentPreRun: preamble,
	}

	if os.Getenv("DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// commands:
	//
	// - verify: run the catalog against a dataset, exit 0/1/2 for successful/failed/errored
	// - catalog: list the verifications
	// - simulate: write a valid synthetic dataset to verify
	// - history: list runs recorded with verify --report-db

	verify.Register(rootCmd)
	catalog.Register(rootCmd)
	simulate.Register(rootCmd)
	history.Register(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Err(err).Msg("An Error Occured")
		os.Exit(verify.ExitErrored)
	}
}
