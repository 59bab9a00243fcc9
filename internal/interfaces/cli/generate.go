package cli

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/MolGrammar-Learner/internal/evaluation"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/checkpoint"
	"github.com/turtacn/MolGrammar-Learner/internal/oracle"
)

// newGenerateCmd creates the generate command, which samples molecules from a
// previously checkpointed grammar without touching the policy or the oracle.
func newGenerateCmd() *cobra.Command {
	var (
		grammarPath string
		count       int
		outputDir   string
		seed        int64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate molecules from a checkpointed grammar",
		Long:  "Load a grammar checkpoint produced by a training run and derive the\nrequested number of unique molecules from its production rules.  No metrics\nare computed and no synthesizability oracle is consulted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config

			if outputDir == "" {
				outputDir = filepath.Join(cfg.Training.OutputDir,
					fmt.Sprintf("generate_%d_%s", count, time.Now().Format("20060102-150405")))
			}
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("generate: cannot create output directory %s: %w", outputDir, err)
			}

			corpus, err := checkpoint.LoadCorpus(grammarPath)
			if err != nil {
				return err
			}

			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			// A pure generation pass never scores molecules; the evaluator
			// still requires an oracle, so give it one that cannot block.
			orc, err := oracle.NewInProcessOracle(func(string) bool { return true })
			if err != nil {
				return err
			}

			evaluator, err := evaluation.NewEvaluator(orc, outputDir,
				count, cfg.Training.StallThreshold, cfg.Training.MaxRolloutIters,
				rand.New(rand.NewSource(seed)), cliCtx.Logger.Named("evaluation"))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := evaluator.Evaluate(ctx, corpus, nil, count)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "grammar:   %s\n", grammarPath)
			fmt.Fprintf(out, "generated: %d unique molecules\n", result.Generated)
			fmt.Fprintf(out, "output:    %s\n", filepath.Join(outputDir, evaluation.SampleLogFinal))
			return nil
		},
	}

	cmd.Flags().StringVar(&grammarPath, "grammar", "", "path to an epoch_grammar_*.json checkpoint [REQUIRED]")
	cmd.Flags().IntVar(&count, "count", 100, "number of unique molecules to generate")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for the sample log (default: under training.output_dir)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 seeds from wall clock)")
	cmd.MarkFlagRequired("grammar")

	return cmd
}

//Personal.AI order the ending
