package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/backmassage/batchmux/internal/config"
	"github.com/backmassage/batchmux/internal/display"
	"github.com/backmassage/batchmux/internal/ffmpeg"
	"github.com/backmassage/batchmux/internal/planner"
	"github.com/backmassage/batchmux/internal/queue"
	"github.com/backmassage/batchmux/internal/scan"
)

// ClassifyFunc decides what work a file needs. Production use is
// planner.Classify; tests substitute a canned function.
type ClassifyFunc func(ctx context.Context, cfg *config.Config, path string) planner.Decision

// Runner drives one batch: decide resume versus rescan, seed and drain the
// queues, convert entries one at a time, and summarize.
type Runner struct {
	Cfg   *config.Config
	Store *queue.Store
	Log   Logger

	// Exec, Classify and Stdin have production defaults filled in by
	// NewRunner; tests override them.
	Exec     ffmpeg.Runner
	Classify ClassifyFunc
	Stdin    io.Reader
}

// NewRunner wires a Runner with production dependencies.
func NewRunner(cfg *config.Config, store *queue.Store, log Logger) *Runner {
	return &Runner{
		Cfg:      cfg,
		Store:    store,
		Log:      log,
		Exec:     ffmpeg.ExecRunner{},
		Classify: planner.Classify,
		Stdin:    os.Stdin,
	}
}

// Run executes the whole batch. Per-entry failures are contained (logged
// and routed to the failed queue); the returned error is non-nil only for
// batch-level problems: queue I/O, scan errors, or cancellation.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	start := time.Now()
	var stats Stats

	runID := uuid.NewString()
	r.Log.Info("batch %s starting in %s", runID, r.Cfg.ScanRoot)
	if r.Cfg.DryRun {
		r.Log.Warn("dry run: no files will be modified")
	}

	resume, err := r.decideResume()
	if err != nil {
		return stats, err
	}

	if resume {
		n, _ := r.Store.Count(queue.InProgress)
		r.Log.Info("resuming: %d entries pending in the in_progress queue", n)
	} else {
		if err := r.Store.ResetAll(); err != nil {
			return stats, err
		}
		res, err := scan.Run(ctx, r.Cfg, r.Store, r.Log)
		if err != nil {
			return stats, err
		}
		stats.Candidates = res.Candidates
		stats.Stale = res.Stale
		r.Log.Info("scan found %d candidates, %d stale artifacts (%d deleted)",
			res.Candidates, res.Stale, res.StaleDeleted)
	}

	if r.Cfg.CleanOnly {
		r.Log.Success("clean-only pass finished")
		stats.Elapsed = time.Since(start)
		return stats, nil
	}

	requeued, err := r.drainFailedForRetry()
	if err != nil {
		return stats, err
	}

	// Classification runs only when this run put candidates into temp,
	// via a fresh scan or a retry requeue. A clean resume goes straight
	// to draining in_progress: never re-scan, never re-classify.
	if !resume || requeued > 0 {
		if err := r.classifyPhase(ctx, &stats); err != nil {
			return stats, err
		}
	}

	if r.Cfg.Interactive {
		if err := r.confirm(); err != nil {
			return stats, err
		}
	}

	if err := r.convertPhase(ctx, &stats); err != nil {
		return stats, err
	}

	stats.Elapsed = time.Since(start)
	r.summarize(runID, &stats)
	return stats, nil
}

// decideResume: a non-empty in_progress queue means a previous batch was
// interrupted; pick up where it left off unless a rescan is forced.
func (r *Runner) decideResume() (bool, error) {
	if r.Cfg.ForceRescan {
		return false, nil
	}
	n, err := r.Store.Count(queue.InProgress)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// drainFailedForRetry moves failed entries back to temp so they are
// reclassified, and returns how many it moved. After a fresh reset the
// failed queue is empty and this is a no-op; it matters when resuming.
func (r *Runner) drainFailedForRetry() (int, error) {
	if !r.Cfg.RetryFailed {
		return 0, nil
	}
	paths, err := r.Store.Lines(queue.Failed)
	if err != nil {
		return 0, err
	}
	if len(paths) == 0 {
		return 0, nil
	}
	if err := r.Store.Reset(queue.Failed); err != nil {
		return 0, err
	}
	for _, p := range paths {
		if err := r.Store.Append(queue.Temp, p); err != nil {
			return 0, err
		}
	}
	r.Log.Info("requeued %d failed entries for retry", len(paths))
	return len(paths), nil
}

// classifyPhase drains the temp queue: each candidate is probed and routed
// to skipped, failed, or in_progress with its actions.
func (r *Runner) classifyPhase(ctx context.Context, stats *Stats) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		path, ok, err := r.Store.PopFront(queue.Temp)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		d := r.Classify(ctx, r.Cfg, path)
		switch d.Outcome {
		case planner.OutcomeInvalid:
			r.Log.Warn("cannot classify %s: %s", path, d.Reason)
			stats.Failed++
			if err := r.Store.Append(queue.Failed, path); err != nil {
				return err
			}
		case planner.OutcomeSkip:
			r.Log.Debug(r.Cfg.Verbose, "already matches target: %s", path)
			stats.Skipped++
			if err := r.Store.Append(queue.Skipped, path); err != nil {
				return err
			}
		case planner.OutcomeConvert:
			r.Log.Info("needs %s: %s", d.Actions, path)
			e := queue.Entry{Path: path, Actions: d.Actions}
			if err := r.Store.Append(queue.InProgress, e.MarshalLine()); err != nil {
				return err
			}
		}
	}
}

// confirm prints the queue counts and blocks until the user presses RETURN.
func (r *Runner) confirm() error {
	for _, n := range queue.All {
		c, err := r.Store.Count(n)
		if err != nil {
			return err
		}
		r.Log.Info("  %-11s %d", n, c)
	}
	r.Log.Info("press RETURN to start converting, Ctrl-C to abort")
	if _, err := bufio.NewReader(r.Stdin).ReadString('\n'); err != nil {
		return fmt.Errorf("aborted: %w", err)
	}
	return nil
}

// convertPhase drains in_progress one entry at a time. Each pop removes the
// entry from disk before work starts, so an interrupted batch loses at most
// the entry being processed. On cancellation the current entry is pushed
// back so a resume retries it.
func (r *Runner) convertPhase(ctx context.Context, stats *Stats) error {
	total, err := r.Store.Count(queue.InProgress)
	if err != nil {
		return err
	}
	exec := &Executor{Cfg: r.Cfg, Run: r.Exec, Log: r.Log}

	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, ok, err := r.Store.PopFront(queue.InProgress)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		e, err := queue.ParseEntry(line)
		if err != nil {
			// The failed queue holds bare paths that a retry may feed back
			// through the classifier; a malformed record is not a usable
			// path, so it goes to leftovers for manual review instead.
			r.Log.Error("setting aside unreadable in_progress entry: %v", err)
			if err := r.Store.Append(queue.Leftovers, line); err != nil {
				return err
			}
			continue
		}

		r.Log.Info("[%d/%d] converting %s (%s)", n, total, e.Path, e.Actions)

		if r.Cfg.DryRun {
			r.Log.Info("[%d/%d] dry run: would apply %s to %s", n, total, e.Actions, e.Path)
			stats.Converted++
			if err := r.Store.Append(queue.Completed, e.Path); err != nil {
				return err
			}
			continue
		}

		res, err := exec.Convert(ctx, e)
		switch {
		case err == nil:
			saved := res.OriginalBytes - res.FinalBytes
			stats.Converted++
			stats.BytesSaved += saved
			r.Log.Success("[%d/%d] done: %s (%s)", n, total, res.FinalPath,
				display.FormatBytesWithSign(-saved))
			if err := r.Store.Append(queue.Completed, res.FinalPath); err != nil {
				return err
			}
		case ctx.Err() != nil:
			// Push the interrupted entry back so a resume retries it.
			if aerr := r.Store.Append(queue.InProgress, line); aerr != nil {
				return aerr
			}
			return ctx.Err()
		default:
			r.Log.Warn("[%d/%d] failed: %s: %v", n, total, e.Path, err)
			stats.Failed++
			if err := r.Store.Append(queue.Failed, e.Path); err != nil {
				return err
			}
		}
	}
}

func (r *Runner) summarize(runID string, stats *Stats) {
	r.Log.Info("batch %s finished in %s", runID, stats.Elapsed.Round(time.Second))
	r.Log.Info("converted %d, skipped %d, failed %d",
		stats.Converted, stats.Skipped, stats.Failed)
	if stats.BytesSaved != 0 && !r.Cfg.DryRun {
		r.Log.Success("disk space saved: %s", display.FormatBytes(stats.BytesSaved))
	}
	for _, n := range queue.All {
		if c, err := r.Store.Count(n); err == nil && c > 0 {
			r.Log.Info("queue %-11s %d", n, c)
		}
	}
}
