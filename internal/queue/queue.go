// Package queue implements durable, ordered, line-oriented work queues
// backed by plain text files. There is no in-memory authoritative state:
// every operation round-trips to disk, so a resumed process (or an external
// observer tailing the files) always sees consistent queue contents.
//
// Only one process may operate on a given queue directory and prefix at a
// time; concurrent stores over the same files are undefined behavior.
package queue

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Name identifies one of the six work queues.
type Name string

const (
	Temp       Name = "temp"        // Unclassified scan candidates.
	Skipped    Name = "skipped"     // Classified: no work needed (terminal).
	Failed     Name = "failed"      // Probe or conversion failure (terminal).
	InProgress Name = "in_progress" // Classified, pending conversion; survives restarts.
	Completed  Name = "completed"   // Successfully converted (terminal).
	Leftovers  Name = "leftovers"   // Stale work artifacts kept for manual review.
)

// All lists every queue, in reset order.
var All = []Name{Temp, Skipped, Failed, InProgress, Completed, Leftovers}

// Store persists the named queues as one file per queue inside dir.
// The prefix isolates independent batches sharing a directory.
type Store struct {
	dir    string
	prefix string
}

// NewStore returns a Store over dir. The directory must exist.
func NewStore(dir, prefix string) *Store {
	return &Store{dir: dir, prefix: prefix}
}

// FilePath returns the backing file for a queue, e.g.
// <dir>/<prefix>batchmux_queue.failed.
func (s *Store) FilePath(n Name) string {
	return filepath.Join(s.dir, s.prefix+"batchmux_queue."+string(n))
}

// Append adds one entry line to the end of the queue, durably flushed
// before returning.
func (s *Store) Append(n Name, line string) error {
	f, err := os.OpenFile(s.FilePath(n), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("append to %s queue: %w", n, err)
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("append to %s queue: %w", n, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync %s queue: %w", n, err)
	}
	return f.Close()
}

// PopFront removes and returns the first entry. The remaining lines are
// written to a sibling temporary file which then atomically replaces the
// queue file, so a crash between the two steps can never lose or duplicate
// an entry: either the old file (entry still queued) or the new file (entry
// gone) is observed, never a partial rewrite.
//
// The second return value is false when the queue is empty or absent.
func (s *Store) PopFront(n Name) (string, bool, error) {
	lines, err := s.Lines(n)
	if err != nil {
		return "", false, err
	}
	if len(lines) == 0 {
		return "", false, nil
	}

	path := s.FilePath(n)
	tmp := path + ".rewrite"
	rest := ""
	if len(lines) > 1 {
		rest = strings.Join(lines[1:], "\n") + "\n"
	}
	if err := writeFileSync(tmp, rest); err != nil {
		return "", false, fmt.Errorf("rewrite %s queue: %w", n, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", false, fmt.Errorf("rewrite %s queue: %w", n, err)
	}
	return lines[0], true, nil
}

// Count returns the number of entries without consuming any. A missing
// queue file counts as empty.
func (s *Store) Count(n Name) (int, error) {
	lines, err := s.Lines(n)
	if err != nil {
		return 0, err
	}
	return len(lines), nil
}

// Lines returns all entries in order. A missing queue file yields nil.
func (s *Store) Lines(n Name) ([]string, error) {
	data, err := os.ReadFile(s.FilePath(n))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s queue: %w", n, err)
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// Reset truncates the queue to empty, creating the file if needed.
func (s *Store) Reset(n Name) error {
	if err := writeFileSync(s.FilePath(n), ""); err != nil {
		return fmt.Errorf("reset %s queue: %w", n, err)
	}
	return nil
}

// ResetAll truncates every queue. Used only when a full rescan is decided.
func (s *Store) ResetAll() error {
	for _, n := range All {
		if err := s.Reset(n); err != nil {
			return err
		}
	}
	return nil
}

// writeFileSync writes content to path and fsyncs before closing, so the
// data is on disk before any rename that publishes it.
func writeFileSync(path, content string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
