package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into target, queue, behavior, display, and utility.
// Target overrides are captured separately and applied after the optional
// profile file, so explicit flags always win over the profile.

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// ParseFlags parses os.Args into cfg. On --help or --version it prints and
// exits. On error it returns non-nil (e.g. unknown flag, bad profile file,
// missing positional arg).
func ParseFlags(cfg *Config, version string) error {
	fs := flag.NewFlagSet("batchmux", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs, version) }

	var over overrides

	defineTargetFlags(fs, &over)
	defineQueueFlags(fs, cfg)
	defineBehaviorFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &over)
	defineUtilityFlags(fs, &over)

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	if over.showHelp {
		printUsage(fs, version)
		os.Exit(0)
	}
	if over.showVersion {
		fmt.Fprintln(os.Stdout, "batchmux v"+version)
		os.Exit(0)
	}

	if cfg.ProfileFile != "" {
		if err := LoadProfile(cfg, cfg.ProfileFile); err != nil {
			return err
		}
	}
	applyOverrides(cfg, &over)

	return parsePositionalArgs(fs, cfg)
}

// overrides holds flag values that are applied onto cfg after Parse, either
// because they must beat the profile file (target fields) or because they
// invert a default (color modes) or trigger exit (help, version).
type overrides struct {
	container  string
	ext        string
	codec      string
	width      int
	height     int
	forceColor bool
	noColor    bool

	showVersion bool
	showHelp    bool
}

// defineTargetFlags registers --container, --ext, --codec, --width, --height.
func defineTargetFlags(fs *flag.FlagSet, o *overrides) {
	fs.StringVar(&o.container, "container", "", "Target container format name (default: Matroska)")
	fs.StringVar(&o.ext, "ext", "", "Target container file extension (default: mkv)")
	fs.StringVar(&o.codec, "codec", "", "Target video codec name (default: AV1)")
	fs.IntVar(&o.width, "width", 0, "Target video width (default: 1280)")
	fs.IntVar(&o.height, "height", 0, "Target video height (default: 720)")
}

// defineQueueFlags registers --queue-dir, -r/--prefix, -p/--profile.
func defineQueueFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.QueueDir, "queue-dir", "", "Queue file storage directory (default: scan root)")
	fs.StringVar(&cfg.QueuePrefix, "prefix", "", "Queue file name prefix for independent batches")
	fs.StringVar(&cfg.QueuePrefix, "r", "", "Same as --prefix")
	fs.StringVar(&cfg.ProfileFile, "profile", "", "Load conversion target from YAML file")
	fs.StringVar(&cfg.ProfileFile, "p", "", "Same as --profile")
}

// defineBehaviorFlags registers dry-run, force, stale policy, retry, clean-only, interactive.
func defineBehaviorFlags(fs *flag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Classify and log only; never convert or delete")
	fs.BoolVar(&cfg.DryRun, "d", false, "Same as --dry-run")
	fs.BoolVar(&cfg.ForceRescan, "force", false, "Reset queues and rescan even when work is pending")
	fs.BoolVar(&cfg.ForceRescan, "f", false, "Same as --force")
	fs.BoolVar(&cfg.DeleteStale, "delete-stale", false, "Delete stale work artifacts instead of queueing them")
	fs.BoolVar(&cfg.RetryFailed, "retry-failed", false, "Requeue previously failed files on rescan")
	fs.BoolVar(&cfg.RetryFailed, "x", false, "Same as --retry-failed")
	fs.BoolVar(&cfg.CleanOnly, "clean-only", false, "Only clean stale artifacts, then exit")
	fs.BoolVar(&cfg.Interactive, "interactive", false, "Wait for RETURN before starting conversion")
	fs.BoolVar(&cfg.Interactive, "i", false, "Same as --interactive")
}

// defineDisplayFlags registers --color, --no-color, verbose, --check, --log.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, o *overrides) {
	fs.BoolVar(&o.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&o.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", false, "Same as --verbose")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.StringVar(&cfg.LogFile, "log", "", "Append logs to file")
	fs.StringVar(&cfg.LogFile, "l", "", "Same as --log")
}

// defineUtilityFlags registers --version and --help (exit after printing).
func defineUtilityFlags(fs *flag.FlagSet, o *overrides) {
	fs.BoolVar(&o.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&o.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&o.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&o.showHelp, "h", false, "Same as --help")
}

// applyOverrides copies explicit target and color flag values into cfg.
func applyOverrides(cfg *Config, o *overrides) {
	if o.container != "" {
		cfg.TargetContainer = o.container
	}
	if o.ext != "" {
		cfg.ContainerExt = strings.TrimPrefix(o.ext, ".")
	}
	if o.codec != "" {
		cfg.TargetCodec = o.codec
	}
	if o.width > 0 {
		cfg.TargetWidth = o.width
	}
	if o.height > 0 {
		cfg.TargetHeight = o.height
	}
	if o.noColor {
		cfg.ColorMode = ColorNever
	} else if o.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs sets ScanRoot from the single positional arg when not
// in CheckOnly mode.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()
	if cfg.CheckOnly {
		return nil
	}
	if len(args) != 1 {
		return fmt.Errorf("need exactly one scan directory")
	}
	cfg.ScanRoot = NormalizeDirArg(args[0])
	if cfg.QueueDir != "" {
		cfg.QueueDir = NormalizeDirArg(cfg.QueueDir)
	}
	return nil
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(fs *flag.FlagSet, version string) {
	const col1 = 28 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "batchmux v" + version + " - batch video converter with resumable queues"},
		{"", ""},
		{"  batchmux [OPTIONS] <scan_dir>", ""},
		{"", ""},
		{"Target profile", ""},
		{"  -p, --profile <file>", "Load conversion target from YAML file"},
		{"  --container <name>", "Target container format name (default: Matroska)"},
		{"  --ext <ext>", "Target container extension (default: mkv)"},
		{"  --codec <name>", "Target video codec name (default: AV1)"},
		{"  --width <n>", "Target video width (default: 1280)"},
		{"  --height <n>", "Target video height (default: 720)"},
		{"", ""},
		{"Queues", ""},
		{"  --queue-dir <dir>", "Queue file storage (default: scan dir)"},
		{"  -r, --prefix <name>", "Queue file prefix for independent batches"},
		{"", ""},
		{"Behavior", ""},
		{"  -d, --dry-run", "Classify and log only; never convert or delete"},
		{"  -f, --force", "Reset queues and rescan even when work is pending"},
		{"  --delete-stale", "Delete stale work artifacts instead of queueing them"},
		{"  -x, --retry-failed", "Requeue previously failed files on rescan"},
		{"  --clean-only", "Only clean stale artifacts, then exit"},
		{"  -i, --interactive", "Wait for RETURN before starting conversion"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  -l, --log <path>", "Append logs to file"},
		{"  -c, --check", "System diagnostics (mediainfo, ffmpeg, encoder)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(os.Stderr)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(os.Stderr, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(os.Stderr, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}
