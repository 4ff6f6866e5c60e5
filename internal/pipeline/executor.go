// Package pipeline converts queued entries and orchestrates the whole
// batch: the Executor runs one entry through its stages, the Runner drives
// scanning, classification and the conversion loop around it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/backmassage/batchmux/internal/config"
	"github.com/backmassage/batchmux/internal/ffmpeg"
	"github.com/backmassage/batchmux/internal/naming"
	"github.com/backmassage/batchmux/internal/queue"
)

// Logger is the subset of the application logger the pipeline needs.
type Logger interface {
	Info(format string, a ...any)
	Success(format string, a ...any)
	Warn(format string, a ...any)
	Error(format string, a ...any)
	Debug(verbose bool, format string, a ...any)
}

// ErrNoActions reports an entry that reached the executor with nothing to
// do. The classifier never emits such entries; seeing one means the
// in_progress queue was corrupted or written by something else.
var ErrNoActions = errors.New("queued entry has no actions")

// Result describes one successful conversion.
type Result struct {
	FinalPath     string
	OriginalBytes int64
	FinalBytes    int64
}

// Executor converts a single entry through copy, remux, transcode and
// finalize stages. Every stage writes to a distinct artifact name; the
// original file is only removed after the final artifact is in place.
type Executor struct {
	Cfg *config.Config
	Run ffmpeg.Runner
	Log Logger
}

// Convert processes one entry. On any stage failure every artifact created
// so far is removed and the original file is left untouched, so a failed
// entry costs nothing but time. On success the finished file carries the
// target extension and the original is deleted when its name differs.
func (x *Executor) Convert(ctx context.Context, e queue.Entry) (Result, error) {
	if !e.Actions.Any() {
		return Result{}, fmt.Errorf("%q: %w", e.Path, ErrNoActions)
	}

	info, err := os.Stat(e.Path)
	if err != nil {
		return Result{}, fmt.Errorf("source vanished: %w", err)
	}
	origSize := info.Size()
	ext := x.Cfg.ContainerExt

	// Artifacts created so far, removed on failure. Success empties the
	// slice before returning so the finished file survives.
	var artifacts []string
	defer func() {
		for _, p := range artifacts {
			os.Remove(p)
		}
	}()

	working := naming.WorkingPath(e.Path)
	x.Log.Debug(x.Cfg.Verbose, "copy %s -> %s", e.Path, working)
	if err := copyFile(e.Path, working); err != nil {
		artifacts = append(artifacts, working)
		return Result{}, fmt.Errorf("copy stage: %w", err)
	}
	artifacts = append(artifacts, working)
	current := working

	if e.Actions.ChangeContainer {
		out := naming.RemuxPath(e.Path, ext)
		x.Log.Debug(x.Cfg.Verbose, "remux %s -> %s", current, out)
		args := ffmpeg.BuildRemuxArgs(x.Cfg, current, out)
		artifacts = append(artifacts, out)
		if err := x.Run.Run(ctx, "ffmpeg", args...); err != nil {
			return Result{}, fmt.Errorf("remux stage: %w", err)
		}
		current = x.advance(&artifacts, current, out)
	}

	if e.Actions.Encode || e.Actions.Resize {
		out := naming.EncodePath(e.Path, ext)
		x.Log.Debug(x.Cfg.Verbose, "transcode %s -> %s", current, out)
		args := ffmpeg.BuildTranscodeArgs(x.Cfg, e.Actions.Resize, current, out)
		artifacts = append(artifacts, out)
		if err := x.Run.Run(ctx, "ffmpeg", args...); err != nil {
			return Result{}, fmt.Errorf("transcode stage: %w", err)
		}
		current = x.advance(&artifacts, current, out)
	}

	final := naming.FinalPath(e.Path, ext)
	if err := os.Rename(current, final); err != nil {
		return Result{}, fmt.Errorf("finalize stage: %w", err)
	}
	artifacts = nil

	if final != e.Path {
		if err := os.Remove(e.Path); err != nil {
			// The conversion itself succeeded; report the leftover rather
			// than failing the entry.
			x.Log.Warn("converted %s but could not remove the original: %v", e.Path, err)
		}
	}

	finalInfo, err := os.Stat(final)
	if err != nil {
		return Result{}, fmt.Errorf("finalize stage: %w", err)
	}
	return Result{FinalPath: final, OriginalBytes: origSize, FinalBytes: finalInfo.Size()}, nil
}

// advance removes the consumed input of a finished stage and returns the
// stage output as the next input. The list shrinks to just the output, so
// a later failure only has the live artifact to clean up.
func (x *Executor) advance(artifacts *[]string, consumed, produced string) string {
	if err := os.Remove(consumed); err != nil {
		x.Log.Warn("could not remove intermediate %s: %v", consumed, err)
	}
	*artifacts = []string{produced}
	return produced
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
