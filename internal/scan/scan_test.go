package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/batchmux/internal/config"
	"github.com/backmassage/batchmux/internal/queue"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)        {}
func (nopLogger) Warn(string, ...any)        {}
func (nopLogger) Debug(bool, string, ...any) {}

// Minimal headers that sniff as video/mp4 and video/x-msvideo.
var (
	mp4Header = []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2avc1mp41")
	aviHeader = []byte("RIFF\x24\x00\x00\x00AVI LIST\x14\x00\x00\x00")
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func scanSetup(t *testing.T) (*config.Config, *queue.Store) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ScanRoot = t.TempDir()
	cfg.QueueDir = cfg.ScanRoot
	return &cfg, queue.NewStore(cfg.QueueDir, cfg.QueuePrefix)
}

func TestRun_EnqueuesVideosByContentNotExtension(t *testing.T) {
	cfg, store := scanSetup(t)

	writeFile(t, filepath.Join(cfg.ScanRoot, "movie.mp4"), mp4Header)
	writeFile(t, filepath.Join(cfg.ScanRoot, "sub", "episode.avi"), aviHeader)
	// A video hiding behind a wrong extension must still be found.
	writeFile(t, filepath.Join(cfg.ScanRoot, "renamed.txt"), mp4Header)
	// Non-video content is ignored regardless of extension.
	writeFile(t, filepath.Join(cfg.ScanRoot, "notes.mp4"), []byte("just some text\n"))
	writeFile(t, filepath.Join(cfg.ScanRoot, "readme.md"), []byte("# docs\n"))

	res, err := Run(context.Background(), cfg, store, nopLogger{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Candidates)

	lines, err := store.Lines(queue.Temp)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(cfg.ScanRoot, "movie.mp4"),
		filepath.Join(cfg.ScanRoot, "sub", "episode.avi"),
		filepath.Join(cfg.ScanRoot, "renamed.txt"),
	}, lines)
}

func TestRun_StaleArtifactsGoToLeftovers(t *testing.T) {
	cfg, store := scanSetup(t)

	stale := []string{
		filepath.Join(cfg.ScanRoot, "movie.working"),
		filepath.Join(cfg.ScanRoot, "movie.tmuxed.mkv"),
		filepath.Join(cfg.ScanRoot, "movie.encoded.mkv"),
	}
	for _, p := range stale {
		writeFile(t, p, mp4Header)
	}

	res, err := Run(context.Background(), cfg, store, nopLogger{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Stale)
	assert.Equal(t, 0, res.StaleDeleted)
	assert.Equal(t, 0, res.Candidates, "stale artifacts are never candidates")

	lines, err := store.Lines(queue.Leftovers)
	require.NoError(t, err)
	assert.ElementsMatch(t, stale, lines)

	for _, p := range stale {
		_, err := os.Stat(p)
		assert.NoError(t, err, "%s must survive without --delete-stale", p)
	}
}

func TestRun_DeleteStaleRemovesArtifacts(t *testing.T) {
	cfg, store := scanSetup(t)
	cfg.DeleteStale = true

	p := filepath.Join(cfg.ScanRoot, "old.working")
	writeFile(t, p, aviHeader)

	res, err := Run(context.Background(), cfg, store, nopLogger{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stale)
	assert.Equal(t, 1, res.StaleDeleted)

	_, err = os.Stat(p)
	assert.True(t, os.IsNotExist(err))

	n, err := store.Count(queue.Leftovers)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "deleted artifacts are not recorded as leftovers")
}

func TestRun_DryRunNeverDeletes(t *testing.T) {
	cfg, store := scanSetup(t)
	cfg.DeleteStale = true
	cfg.DryRun = true

	p := filepath.Join(cfg.ScanRoot, "old.working")
	writeFile(t, p, aviHeader)

	res, err := Run(context.Background(), cfg, store, nopLogger{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.StaleDeleted)

	_, err = os.Stat(p)
	assert.NoError(t, err, "dry run must not touch the filesystem")

	n, err := store.Count(queue.Leftovers)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRun_CleanOnlySkipsCandidates(t *testing.T) {
	cfg, store := scanSetup(t)
	cfg.CleanOnly = true

	writeFile(t, filepath.Join(cfg.ScanRoot, "movie.mp4"), mp4Header)
	writeFile(t, filepath.Join(cfg.ScanRoot, "old.working"), aviHeader)

	res, err := Run(context.Background(), cfg, store, nopLogger{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Candidates)
	assert.Equal(t, 1, res.Stale)

	n, err := store.Count(queue.Temp)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRun_SkipsQueueFiles(t *testing.T) {
	cfg, store := scanSetup(t)

	// Pre-existing queue files inside the scanned tree are bookkeeping.
	require.NoError(t, store.Append(queue.Completed, "/v/done.mkv"))
	writeFile(t, store.FilePath(queue.Temp)+".rewrite", []byte("partial\n"))

	res, err := Run(context.Background(), cfg, store, nopLogger{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Candidates)

	n, err := store.Count(queue.Temp)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRun_CancelledContextStopsWalk(t *testing.T) {
	cfg, store := scanSetup(t)
	writeFile(t, filepath.Join(cfg.ScanRoot, "movie.mp4"), mp4Header)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cfg, store, nopLogger{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
