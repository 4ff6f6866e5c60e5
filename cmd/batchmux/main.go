// batchmux converts a directory tree of videos toward a target profile
// (container, codec, max height), tracking its work in durable queue files
// so an interrupted batch can resume where it stopped.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/backmassage/batchmux/internal/check"
	"github.com/backmassage/batchmux/internal/config"
	"github.com/backmassage/batchmux/internal/display"
	"github.com/backmassage/batchmux/internal/logging"
	"github.com/backmassage/batchmux/internal/pipeline"
	"github.com/backmassage/batchmux/internal/queue"
)

const version = "1.0.0"

func main() {
	os.Exit(run())
}

// run returns the process exit code. Setup failures (flags, paths, missing
// tools) are non-zero; a completed batch exits 0 even when individual files
// failed, since those are recorded in the failed queue.
func run() int {
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, version); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 2
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: cannot open log file:", err)
		return 2
	}
	defer log.Close()

	display.PrintBanner()

	if cfg.CheckOnly {
		check.RunCheck(&cfg, log)
		return 0
	}

	rootAbs, err := filepath.Abs(cfg.ScanRoot)
	if err != nil {
		log.Error("cannot resolve scan directory: %v", err)
		return 2
	}
	queueAbs, err := filepath.Abs(cfg.QueueDir)
	if err != nil {
		log.Error("cannot resolve queue directory: %v", err)
		return 2
	}
	if err := cfg.ValidatePaths(rootAbs, queueAbs); err != nil {
		log.Error("%v", err)
		return 2
	}
	cfg.ScanRoot = rootAbs
	cfg.QueueDir = queueAbs

	if info, err := os.Stat(cfg.ScanRoot); err != nil || !info.IsDir() {
		log.Error("scan directory %s is not a directory", cfg.ScanRoot)
		return 2
	}
	if err := os.MkdirAll(cfg.QueueDir, 0o755); err != nil {
		log.Error("cannot create queue directory: %v", err)
		return 2
	}

	if err := check.CheckDeps(&cfg); err != nil {
		log.Error("%v", err)
		log.Info("run with --check for full diagnostics")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := queue.NewStore(cfg.QueueDir, cfg.QueuePrefix)
	runner := pipeline.NewRunner(&cfg, store, log)

	if _, err := runner.Run(ctx); err != nil {
		if ctx.Err() != nil {
			log.Warn("interrupted; pending work is preserved in the queue files")
			return 130
		}
		log.Error("batch aborted: %v", err)
		return 1
	}
	return 0
}
