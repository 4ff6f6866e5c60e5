// Package config holds runtime configuration: defaults, CLI flag parsing,
// YAML profile loading, and validation. Conversion defaults match the legacy
// media-fixer script for parity.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig] and
// then mutated by [LoadProfile] and [ParseFlags] before being passed (by
// pointer) to packages that need it. There is no other mutable process-wide
// state: every component receives the same Config value.
type Config struct {
	// Paths.
	ScanRoot    string // Directory tree to scan (positional arg).
	QueueDir    string // Queue file storage; defaults to ScanRoot.
	QueuePrefix string // Optional prefix for queue file names.

	// Target profile.
	TargetContainer string // Container format name as reported by the probe (default "Matroska").
	ContainerExt    string // File extension for the target container, without dot (default "mkv").
	TargetCodec     string // Video codec name as reported by the probe (default "AV1").
	TargetWidth     int    // Scale filter width (default 1280).
	TargetHeight    int    // Resize trigger and scale filter height (default 720).

	// Transcoder invocation.
	FFmpegGlobalOpts []string // Pre-input flags shared by every ffmpeg call.
	FFmpegEncodeOpts []string // Video codec arguments for the transcode stage.
	ScaleFlags       string   // Scale filter algorithm (default "lanczos").

	// Behavior flags.
	DryRun      bool // Classify and log only; never copy, convert, or delete.
	ForceRescan bool // Reset queues and rescan even if in_progress is non-empty.
	DeleteStale bool // Delete stale work artifacts instead of queueing to leftovers.
	RetryFailed bool // Requeue failed entries for reclassification on rescan.
	CleanOnly   bool // Scan and apply the stale-artifact policy, then exit.
	Interactive bool // Wait for confirmation before starting conversion.

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
	CheckOnly bool      // Run --check diagnostics and exit.

	// Profile file (YAML) applied before flag overrides.
	ProfileFile string
}

// DefaultConfig returns a Config with all defaults matching the legacy
// media-fixer behavior: Matroska/AV1/720p target with SVT-AV1 encoding.
// Used as the base before [ParseFlags] applies CLI overrides.
func DefaultConfig() Config {
	return Config{
		TargetContainer: "Matroska",
		ContainerExt:    "mkv",
		TargetCodec:     "AV1",
		TargetWidth:     1280,
		TargetHeight:    720,
		FFmpegGlobalOpts: []string{
			"-fflags", "+genpts", "-nostdin", "-find_stream_info",
		},
		FFmpegEncodeOpts: []string{
			"-c:v", "libsvtav1", "-crf", "38", "-preset", "8",
			"-g", "240", "-pix_fmt", "yuv420p",
		},
		ScaleFlags: "lanczos",
		ColorMode:  ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and target profile sanity. When not in
// CheckOnly mode it also requires a scan root and resolves the queue
// directory default.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.TargetContainer == "" || c.TargetCodec == "" {
		return errors.New("target container and codec must not be empty")
	}
	if c.ContainerExt == "" || strings.Contains(c.ContainerExt, ".") {
		return fmt.Errorf("invalid container extension %q (use e.g. 'mkv', without dot)", c.ContainerExt)
	}
	if c.TargetWidth <= 0 || c.TargetHeight <= 0 {
		return errors.New("target width and height must be positive")
	}

	if c.CheckOnly {
		return nil
	}
	if c.ScanRoot == "" {
		return errors.New("need a directory to scan")
	}
	if c.QueueDir == "" {
		c.QueueDir = c.ScanRoot
	}
	return nil
}

// ValidatePaths ensures the scan root and queue directory resolved to
// absolute paths. All file operations downstream use absolute paths only;
// nothing ever changes the process working directory.
func (c *Config) ValidatePaths(rootAbs, queueAbs string) error {
	if !filepath.IsAbs(rootAbs) || !filepath.IsAbs(queueAbs) {
		return errors.New("scan root and queue directory must resolve to absolute paths")
	}
	return nil
}
