package simulate

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thechriswalker/go-verifier/election"
	"github.com/thechriswalker/go-verifier/simulate"
)

// Register the simulate command
func Register(rootCmd *cobra.Command) {
	opts := simulate.DefaultOptions()
	var out string
	var cmd = &cobra.Command{
		Use:   "simulate",
		Short: "Generate a simulated election dataset",
		Long:  "Simulates a complete election event, setup to tally, and writes the signed dataset and the public keystore to --out",
		Run: func(cmd *cobra.Command, args []string) {
			if out == "" {
				log.Fatal().Msg("--out is required")
			}
			if opts.Bits < election.DefaultPolicy.MinGroupBits {
				log.Warn().
					Int("bits", opts.Bits).
					Int("production", election.DefaultPolicy.MinGroupBits).
					Msg("Group smaller than production size, verify with --config minGroupBits to accept it")
			}
			e, err := simulate.Generate(opts)
			if err != nil {
				log.Fatal().Err(err).Msg("Simulation failed")
			}
			if err := e.Write(out); err != nil {
				log.Fatal().Err(err).Str("dir", out).Msg("Failed to write dataset")
			}
			ctx, err := e.Context(nil)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to fingerprint dataset")
			}
			log.Info().Str("dir", out).Str("fingerprint", ctx.Fingerprint()).Msg("Wrote simulated dataset")
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "The directory to write the dataset to")
	cmd.Flags().IntVar(&opts.Bits, "bits", opts.Bits, "Size of the encryption group modulus")
	cmd.Flags().IntVar(&opts.BallotBoxes, "ballot-boxes", opts.BallotBoxes, "Number of ballot boxes")
	cmd.Flags().IntVar(&opts.Voters, "voters", opts.Voters, "Voting cards per ballot box")
	cmd.Flags().IntVar(&opts.Candidates, "candidates", opts.Candidates, "Candidates of the elections")
	cmd.Flags().IntVar(&opts.Selections, "selections", opts.Selections, "Candidates chosen per election ballot")
	cmd.Flags().IntVar(&opts.ChunkSize, "chunk-size", opts.ChunkSize, "Voting cards per verification data chunk")
	rootCmd.AddCommand(cmd)
}
