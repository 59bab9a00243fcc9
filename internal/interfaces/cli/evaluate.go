package cli

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/MolGrammar-Learner/internal/evaluation"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/checkpoint"
	"github.com/turtacn/MolGrammar-Learner/internal/oracle"
)

// newEvaluateCmd creates the evaluate command, which scores a checkpointed
// grammar the same way a training epoch would, without updating anything.
func newEvaluateCmd() *cobra.Command {
	var (
		grammarPath string
		metricsFlag string
		seed        int64
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Compute metrics for a checkpointed grammar",
		Long:  "Load a grammar checkpoint, generate molecules from it, and report the\nrequested metrics.  Synthesizability uses the built-in heuristic scorer;\nattach a real worker and use train for planner-backed scoring.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config

			corpus, err := checkpoint.LoadCorpus(grammarPath)
			if err != nil {
				return err
			}

			metrics := strings.Split(metricsFlag, ",")
			for i := range metrics {
				metrics[i] = strings.TrimSpace(metrics[i])
			}

			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			orc, err := oracle.NewInProcessOracle(oracle.HeuristicScore)
			if err != nil {
				return err
			}

			outputDir, err := os.MkdirTemp("", "molgrammar-evaluate-*")
			if err != nil {
				return fmt.Errorf("evaluate: cannot create scratch directory: %w", err)
			}
			defer os.RemoveAll(outputDir)

			evaluator, err := evaluation.NewEvaluator(orc, outputDir,
				cfg.Training.NumGeneratedSamples, cfg.Training.StallThreshold, cfg.Training.MaxRolloutIters,
				rand.New(rand.NewSource(seed)), cliCtx.Logger.Named("evaluation"))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := evaluator.Evaluate(ctx, corpus, metrics, evaluation.FullRunTarget)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "grammar:   %s\n", grammarPath)
			fmt.Fprintf(out, "generated: %d unique molecules\n", result.Generated)
			names := make([]string, 0, len(result.Metrics))
			for name := range result.Metrics {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "%-11s %.4f\n", name+":", result.Metrics[name])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&grammarPath, "grammar", "", "path to an epoch_grammar_*.json checkpoint [REQUIRED]")
	cmd.Flags().StringVar(&metricsFlag, "metrics", "diversity,num_rules,num_samples,syn", "comma-separated metrics to compute")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 seeds from wall clock)")
	cmd.MarkFlagRequired("grammar")

	return cmd
}

//Personal.AI order the ending
