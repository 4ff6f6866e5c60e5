package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/batchmux/internal/config"
	"github.com/backmassage/batchmux/internal/ffmpeg"
	"github.com/backmassage/batchmux/internal/planner"
	"github.com/backmassage/batchmux/internal/queue"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)        {}
func (nopLogger) Success(string, ...any)     {}
func (nopLogger) Warn(string, ...any)        {}
func (nopLogger) Error(string, ...any)       {}
func (nopLogger) Debug(bool, string, ...any) {}

// fakeRunner stands in for ffmpeg: it records every invocation and writes
// the output file (the last argument) like the real tool would. Outputs
// whose path contains failOn fail with an ExecError instead.
type fakeRunner struct {
	calls  [][]string
	failOn string
	output []byte
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	f.calls = append(f.calls, append([]string{name}, args...))
	out := args[len(args)-1]
	if f.failOn != "" && strings.Contains(out, f.failOn) {
		return &ffmpeg.ExecError{Cmd: name, ExitCode: 1, Stderr: "simulated failure"}
	}
	data := f.output
	if data == nil {
		data = []byte("converted")
	}
	return os.WriteFile(out, data, 0o644)
}

func newExecutor(t *testing.T, run ffmpeg.Runner) (*Executor, string) {
	t.Helper()
	cfg := config.DefaultConfig()
	dir := t.TempDir()
	cfg.ScanRoot = dir
	return &Executor{Cfg: &cfg, Run: run, Log: nopLogger{}}, dir
}

func writeSource(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

// listDir returns the names in dir, for asserting exactly which files survive.
func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestConvert_AllStages(t *testing.T) {
	run := &fakeRunner{}
	x, dir := newExecutor(t, run)

	src := filepath.Join(dir, "movie.avi")
	writeSource(t, src, 1000)

	res, err := x.Convert(context.Background(), queue.Entry{
		Path:    src,
		Actions: planner.ActionSet{ChangeContainer: true, Encode: true, Resize: true},
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "movie.mkv"), res.FinalPath)
	assert.Equal(t, int64(1000), res.OriginalBytes)
	assert.Equal(t, int64(len("converted")), res.FinalBytes)

	// Only the finished file remains: no original, no intermediates.
	assert.Equal(t, []string{"movie.mkv"}, listDir(t, dir))

	// Remux reads the working copy, transcode reads the remux output.
	require.Len(t, run.calls, 2)
	assert.Contains(t, run.calls[0], filepath.Join(dir, "movie.working"))
	assert.Contains(t, run.calls[0], filepath.Join(dir, "movie.tmuxed.mkv"))
	assert.Contains(t, run.calls[1], filepath.Join(dir, "movie.tmuxed.mkv"))
	assert.Contains(t, run.calls[1], filepath.Join(dir, "movie.encoded.mkv"))
}

func TestConvert_ResizeOnlyOverwritesInPlace(t *testing.T) {
	run := &fakeRunner{}
	x, dir := newExecutor(t, run)

	src := filepath.Join(dir, "movie.mkv")
	writeSource(t, src, 500)

	res, err := x.Convert(context.Background(), queue.Entry{
		Path:    src,
		Actions: planner.ActionSet{Resize: true},
	})
	require.NoError(t, err)

	// Final name equals the source name; the rename replaced the original.
	assert.Equal(t, src, res.FinalPath)
	assert.Equal(t, []string{"movie.mkv"}, listDir(t, dir))

	data, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "converted", string(data))

	// No remux stage for a resize-only entry.
	require.Len(t, run.calls, 1)
	assert.Contains(t, strings.Join(run.calls[0], " "), "scale=")
}

func TestConvert_ContainerOnlySkipsTranscode(t *testing.T) {
	run := &fakeRunner{}
	x, dir := newExecutor(t, run)

	src := filepath.Join(dir, "movie.avi")
	writeSource(t, src, 500)

	_, err := x.Convert(context.Background(), queue.Entry{
		Path:    src,
		Actions: planner.ActionSet{ChangeContainer: true},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"movie.mkv"}, listDir(t, dir))
	require.Len(t, run.calls, 1)
	assert.NotContains(t, strings.Join(run.calls[0], " "), "scale=")
}

func TestConvert_RemuxFailureLeavesOnlyOriginal(t *testing.T) {
	run := &fakeRunner{failOn: ".tmuxed."}
	x, dir := newExecutor(t, run)

	src := filepath.Join(dir, "movie.avi")
	writeSource(t, src, 500)

	_, err := x.Convert(context.Background(), queue.Entry{
		Path:    src,
		Actions: planner.ActionSet{ChangeContainer: true, Encode: true},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remux stage")

	var ee *ffmpeg.ExecError
	assert.True(t, errors.As(err, &ee))

	// Failure containment: the original is untouched and nothing else survives.
	assert.Equal(t, []string{"movie.avi"}, listDir(t, dir))
	info, err := os.Stat(src)
	require.NoError(t, err)
	assert.Equal(t, int64(500), info.Size())
}

func TestConvert_TranscodeFailureLeavesOnlyOriginal(t *testing.T) {
	run := &fakeRunner{failOn: ".encoded."}
	x, dir := newExecutor(t, run)

	src := filepath.Join(dir, "movie.avi")
	writeSource(t, src, 500)

	_, err := x.Convert(context.Background(), queue.Entry{
		Path:    src,
		Actions: planner.ActionSet{ChangeContainer: true, Encode: true},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcode stage")
	assert.Equal(t, []string{"movie.avi"}, listDir(t, dir))
}

func TestConvert_NoActionsIsALogicError(t *testing.T) {
	x, dir := newExecutor(t, &fakeRunner{})

	src := filepath.Join(dir, "movie.avi")
	writeSource(t, src, 100)

	_, err := x.Convert(context.Background(), queue.Entry{Path: src})
	assert.ErrorIs(t, err, ErrNoActions)
	assert.Equal(t, []string{"movie.avi"}, listDir(t, dir))
}

func TestConvert_MissingSource(t *testing.T) {
	x, dir := newExecutor(t, &fakeRunner{})

	_, err := x.Convert(context.Background(), queue.Entry{
		Path:    filepath.Join(dir, "gone.avi"),
		Actions: planner.ActionSet{Encode: true},
	})
	require.Error(t, err)
	assert.Empty(t, listDir(t, dir))
}
