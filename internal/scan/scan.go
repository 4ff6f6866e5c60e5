// Package scan walks a directory tree and seeds the work queues: video
// files become conversion candidates, abandoned artifacts from interrupted
// runs are deleted or set aside for review.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/backmassage/batchmux/internal/config"
	"github.com/backmassage/batchmux/internal/naming"
	"github.com/backmassage/batchmux/internal/queue"
)

// Logger is the subset of the application logger the scanner needs.
type Logger interface {
	Info(format string, a ...any)
	Warn(format string, a ...any)
	Debug(verbose bool, format string, a ...any)
}

// Result summarizes one scan pass.
type Result struct {
	Candidates   int // video files appended to the temp queue
	Stale        int // stale artifacts found
	StaleDeleted int // stale artifacts removed from disk
	Unreadable   int // files mimetype could not open
}

// Run walks cfg.ScanRoot and fills the temp and leftovers queues.
// Candidates are identified by sniffing file content for a video/* MIME
// type, never by extension. Stale artifacts are removed when
// cfg.DeleteStale is set (and not in a dry run), otherwise recorded in the
// leftovers queue for manual review.
func Run(ctx context.Context, cfg *config.Config, store *queue.Store, log Logger) (Result, error) {
	var res Result

	err := filepath.WalkDir(cfg.ScanRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		name := d.Name()

		// The queue files (and their rewrite temps) may live inside the
		// scanned tree; they are bookkeeping, not candidates.
		if strings.Contains(name, "batchmux_queue.") {
			return nil
		}
		if cfg.LogFile != "" && path == cfg.LogFile {
			return nil
		}

		if naming.IsStaleArtifact(name, cfg.ContainerExt) {
			res.Stale++
			if cfg.DeleteStale && !cfg.DryRun {
				if err := os.Remove(path); err != nil {
					return fmt.Errorf("delete stale artifact %q: %w", path, err)
				}
				log.Info("deleted stale artifact %s", path)
				res.StaleDeleted++
				return nil
			}
			log.Warn("stale artifact kept for review: %s", path)
			return store.Append(queue.Leftovers, path)
		}

		// Clean-only passes exist to apply the stale policy; everything
		// else on disk is left alone.
		if cfg.CleanOnly {
			return nil
		}

		m, err := mimetype.DetectFile(path)
		if err != nil {
			log.Warn("cannot sniff %s: %v", path, err)
			res.Unreadable++
			return nil
		}
		if !strings.HasPrefix(m.String(), "video/") {
			log.Debug(cfg.Verbose, "not a video (%s): %s", m.String(), path)
			return nil
		}

		log.Debug(cfg.Verbose, "candidate (%s): %s", m.String(), path)
		res.Candidates++
		return store.Append(queue.Temp, path)
	})
	if err != nil {
		return res, fmt.Errorf("scan %q: %w", cfg.ScanRoot, err)
	}
	return res, nil
}
