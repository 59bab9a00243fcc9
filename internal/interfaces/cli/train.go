package cli

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/turtacn/MolGrammar-Learner/internal/agent"
	"github.com/turtacn/MolGrammar-Learner/internal/config"
	"github.com/turtacn/MolGrammar-Learner/internal/evaluation"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/checkpoint"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/database/postgres"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/database/postgres/repositories"
	redisreg "github.com/turtacn/MolGrammar-Learner/internal/infrastructure/database/redis"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/storage/minio"
	statushttp "github.com/turtacn/MolGrammar-Learner/internal/interfaces/http"
	"github.com/turtacn/MolGrammar-Learner/internal/mcmc"
	"github.com/turtacn/MolGrammar-Learner/internal/oracle"
	"github.com/turtacn/MolGrammar-Learner/internal/training"
)

// newTrainCmd creates the train command.  Flags override the corresponding
// config file fields only when explicitly set.
func newTrainCmd() *cobra.Command {
	var (
		trainingData string
		outputDir    string
		epochs       int
		mcmcSize     int
		samples      int
		motif        bool
		seed         int64
		resumePath   string
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a molecular grammar on a SMILES dataset",
		Long:  "Run the full MCMC grammar-learning loop: decompose the training molecules\ninto subgraph building blocks, sample grammar constructions with the learned\npolicy, score them for diversity and synthesizability, and update the policy\nby policy gradient.  The best grammar of the run is checkpointed continuously.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config

			fl := cmd.Flags()
			if fl.Changed("training-data") {
				cfg.Training.TrainingData = trainingData
			}
			if fl.Changed("output-dir") {
				cfg.Training.OutputDir = outputDir
			}
			if fl.Changed("epochs") {
				cfg.Training.MaxEpochs = epochs
			}
			if fl.Changed("mcmc-size") {
				cfg.Training.MCMCSize = mcmcSize
			}
			if fl.Changed("samples") {
				cfg.Training.NumGeneratedSamples = samples
			}
			if fl.Changed("motif") {
				cfg.Training.Motif = motif
			}
			if fl.Changed("seed") {
				cfg.Training.Seed = seed
			}
			if fl.Changed("resume-from") {
				cfg.Training.Resume = true
				cfg.Training.ResumePath = resumePath
			}

			return runTrain(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&trainingData, "training-data", "", "path to SMILES dataset, one molecule per line")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "base directory for run outputs")
	cmd.Flags().IntVar(&epochs, "epochs", 0, "number of training epochs")
	cmd.Flags().IntVar(&mcmcSize, "mcmc-size", 0, "MCMC samples per epoch")
	cmd.Flags().IntVar(&samples, "samples", 0, "unique molecules to generate per evaluation")
	cmd.Flags().BoolVar(&motif, "motif", false, "use motif-level building blocks (polymer datasets)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 seeds from wall clock)")
	cmd.Flags().StringVar(&resumePath, "resume-from", "", "agent checkpoint to resume policy parameters from")

	return cmd
}

// runTrain wires the infrastructure behind a training run and executes it.
func runTrain(cmd *cobra.Command, cfg *config.Config) error {
	if cfg.Training.TrainingData == "" {
		return fmt.Errorf("train: --training-data or training.training_data is required")
	}

	runSeed := cfg.Training.Seed
	if runSeed == 0 {
		runSeed = time.Now().UnixNano()
	}
	runID := uuid.NewString()

	// The run directory carries the sample target and a timestamp so
	// concurrent and historical runs never collide.
	runDir := filepath.Join(cfg.Training.OutputDir,
		fmt.Sprintf("grammar_%d_%s", cfg.Training.NumGeneratedSamples, time.Now().Format("20060102-150405")))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return fmt.Errorf("train: cannot create run directory %s: %w", runDir, err)
	}

	log, err := logging.NewLogger(logging.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: []string{"stderr", filepath.Join(runDir, "training.log")},
	})
	if err != nil {
		return fmt.Errorf("train: cannot initialize run logger: %w", err)
	}
	log = log.With(logging.String("run_id", runID))

	smiles, err := training.LoadTrainingData(cfg.Training.TrainingData)
	if err != nil {
		return err
	}
	log.Info("training data loaded",
		logging.String("path", cfg.Training.TrainingData),
		logging.Int("molecules", len(smiles)),
		logging.Int64("seed", runSeed))

	// Stale oracle exchanges from a previous crash in the same directory
	// would be read as answers to the first request.
	if err := training.TruncateCommFiles(
		filepath.Join(runDir, cfg.Oracle.SenderFile),
		filepath.Join(runDir, cfg.Oracle.ReceiverFile),
	); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy, err := agent.New(cfg.Training.FeatDim, cfg.Training.HiddenSize, cfg.Training.LearningRate, runSeed)
	if err != nil {
		return err
	}

	hooks, metrics, cleanup, err := buildHooks(cfg, runID, log)
	if err != nil {
		return err
	}
	defer cleanup()

	var orc oracle.SynthesisOracle
	orc, err = oracle.NewFileOracle(runDir, cfg.Oracle.SenderFile, cfg.Oracle.ReceiverFile,
		cfg.Oracle.PollInterval, cfg.Oracle.Deadline, log.Named("oracle"))
	if err != nil {
		return err
	}
	if metrics != nil {
		orc, err = oracle.NewInstrumentedOracle(orc, metrics)
		if err != nil {
			return err
		}
	}

	evaluator, err := evaluation.NewEvaluator(orc, runDir,
		cfg.Training.NumGeneratedSamples, cfg.Training.StallThreshold, cfg.Training.MaxRolloutIters,
		rand.New(rand.NewSource(runSeed)), log.Named("evaluation"))
	if err != nil {
		return err
	}

	var archiver checkpoint.Archiver
	if cfg.MinIO.Enabled {
		archive, aerr := minio.NewArchive(cfg.MinIO, runID, log.Named("archive"))
		if aerr != nil {
			return aerr
		}
		archiver = archive
	}
	checkpoints, err := checkpoint.NewStore(filepath.Join(runDir, "checkpoints"), archiver, log.Named("checkpoint"))
	if err != nil {
		return err
	}

	loop, err := training.NewLoop(training.Options{
		Config:      cfg.Training,
		RunID:       runID,
		Agent:       policy,
		Sampler:     mcmc.NewSampler(cfg.Training.FeatDim, cfg.Training.MaxRolloutIters, log.Named("mcmc")),
		Evaluator:   evaluator,
		Checkpoints: checkpoints,
		Logger:      log,
		Hooks:       hooks,
	})
	if err != nil {
		return err
	}

	summary, err := loop.Learn(ctx, smiles)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run:             %s\n", summary.RunID)
	fmt.Fprintf(out, "epochs:          %d\n", summary.Epochs)
	fmt.Fprintf(out, "best epoch:      %d\n", summary.BestEpoch)
	fmt.Fprintf(out, "best return:     %.4f\n", summary.BestReturn)
	fmt.Fprintf(out, "total generated: %d\n", summary.TotalGenerated)
	fmt.Fprintf(out, "output:          %s\n", runDir)
	return nil
}

// buildHooks constructs the enabled optional integrations.  The registered
// training metrics are also returned directly so the oracle can be wrapped
// with round-trip instrumentation; nil when the status stack is disabled.
// The returned cleanup closes every component that was actually built and is
// safe to call exactly once.
func buildHooks(cfg *config.Config, runID string, log logging.Logger) (training.Hooks, *prometheus.TrainingMetrics, func(), error) {
	var hooks training.Hooks
	var metrics *prometheus.TrainingMetrics
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Status.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            "molgrammar",
			Subsystem:            "training",
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
			ConstLabels:          map[string]string{"run_id": runID},
		}, log.Named("metrics"))
		if err != nil {
			cleanup()
			return training.Hooks{}, nil, nil, err
		}
		metrics = prometheus.NewTrainingMetrics(collector)
		hooks.Metrics = training.NewMetricsHook(metrics)

		tracker := statushttp.NewTracker()
		hooks.Tracker = tracker

		server, err := statushttp.NewServer(cfg.Status, tracker, collector.Handler(), log.Named("status"))
		if err != nil {
			cleanup()
			return training.Hooks{}, nil, nil, err
		}
		go func() {
			if serveErr := server.Start(); serveErr != nil {
				log.Error("status server failed", logging.Err(serveErr))
			}
		}()
		closers = append(closers, func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Stop(stopCtx); err != nil {
				log.Warn("status server shutdown failed", logging.Err(err))
			}
		})
	}

	if cfg.Kafka.Enabled {
		publisher, err := kafka.NewPublisher(cfg.Kafka, runID, log.Named("events"))
		if err != nil {
			cleanup()
			return training.Hooks{}, nil, nil, err
		}
		hooks.Publisher = training.NewKafkaHook(publisher)
		closers = append(closers, func() {
			if err := publisher.Close(); err != nil {
				log.Warn("event publisher close failed", logging.Err(err))
			}
		})
	}

	if cfg.Database.Enabled {
		conn, err := postgres.NewConnection(cfg.Database, log.Named("postgres"))
		if err != nil {
			cleanup()
			return training.Hooks{}, nil, nil, err
		}
		closers = append(closers, func() {
			if err := conn.Close(); err != nil {
				log.Warn("database close failed", logging.Err(err))
			}
		})
		if err := conn.Migrate(); err != nil {
			cleanup()
			return training.Hooks{}, nil, nil, err
		}
		hooks.Runs = training.NewRunStoreHook(repositories.NewRunRepository(conn, log.Named("runs")))
	}

	if cfg.Redis.Enabled {
		registry, err := redisreg.NewRegistry(cfg.Redis, log.Named("registry"))
		if err != nil {
			cleanup()
			return training.Hooks{}, nil, nil, err
		}
		hooks.Registry = training.NewRegistryHook(registry)
		closers = append(closers, func() {
			if err := registry.Close(); err != nil {
				log.Warn("registry close failed", logging.Err(err))
			}
		})
	}

	return hooks, metrics, cleanup, nil
}

//Personal.AI order the ending
