package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/MolGrammar-Learner/internal/config"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolGrammar-Learner/internal/oracle"
)

// retroworker is the reference synthesizability worker.  It watches a training
// run's directory for oracle requests and answers them with the built-in
// heuristic scorer.  A production deployment replaces this binary with one
// that fronts a real retro-synthesis planner; the file protocol is identical.
func main() {
	configPath := flag.String("config", "", "path to configuration file (optional)")
	watchDir := flag.String("watch-dir", "", "run directory to watch for oracle requests")
	pollFallback := flag.Duration("poll-fallback", 0, "request poll interval when the filesystem watcher is unavailable")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	dir := cfg.Worker.WatchDir
	if *watchDir != "" {
		dir = *watchDir
	}
	if dir == "" {
		fmt.Fprintln(os.Stderr, "a watch directory is required (--watch-dir or worker.watch_dir)")
		os.Exit(1)
	}

	fallback := cfg.Worker.PollFallback
	if *pollFallback > 0 {
		fallback = *pollFallback
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	responder, err := oracle.NewResponder(dir, cfg.Oracle.SenderFile, cfg.Oracle.ReceiverFile,
		fallback, oracle.HeuristicScore, logger.Named("responder"))
	if err != nil {
		logger.Error("failed to construct responder", logging.Err(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("retro worker started",
		logging.String("watch_dir", dir),
		logging.String("request_file", cfg.Oracle.SenderFile),
		logging.String("response_file", cfg.Oracle.ReceiverFile),
		logging.Duration("poll_fallback", fallback))

	start := time.Now()
	if err := responder.Run(ctx); err != nil {
		logger.Error("worker terminated", logging.Err(err))
		os.Exit(1)
	}
	logger.Info("retro worker stopped", logging.Duration("uptime", time.Since(start)))
}

//Personal.AI order the ending
