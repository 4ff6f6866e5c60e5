// Package check provides system diagnostics (--check mode) and pre-run
// dependency validation (CheckDeps) for mediainfo, ffmpeg, and the
// configured target encoder.
package check

import (
	"errors"
	"os/exec"
	"strings"

	"github.com/backmassage/batchmux/internal/config"
)

// Sentinel errors returned by CheckDeps when a required tool is missing or
// unusable. These are setup errors: the caller aborts before any queue work.
var (
	ErrFfmpegNotFound    = errors.New("ffmpeg not found on PATH")
	ErrMediainfoNotFound = errors.New("mediainfo not found on PATH")
	ErrEncoderTestFailed = errors.New("target encoder test failed (check the encode options)")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// RunCheck runs the interactive --check flow: prints availability of
// mediainfo, ffmpeg, the AV1-capable encoders, and the configured encoder
// self-test. Informational only; it does not stop on failure.
func RunCheck(cfg *config.Config, log Logger) {
	log.Info("=== System Check ===")

	checkMediainfo(log)
	checkFfmpeg(log)
	checkTargetEncoders(cfg, log)
	checkEncoderTest(cfg, log)
}

// checkMediainfo verifies mediainfo is on PATH and logs its version string.
func checkMediainfo(log Logger) {
	if _, err := exec.LookPath("mediainfo"); err != nil {
		log.Error("mediainfo not found")
		return
	}
	out, err := exec.Command("mediainfo", "--Version").Output()
	if err != nil {
		log.Warn("mediainfo found but --Version failed: %v", err)
		return
	}
	log.Success("mediainfo: %s", firstLine(string(out)))
}

// checkFfmpeg verifies ffmpeg is on PATH and logs its version string.
func checkFfmpeg(log Logger) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		log.Error("ffmpeg not found")
		return
	}
	out, err := exec.Command("ffmpeg", "-version").Output()
	if err != nil {
		log.Warn("ffmpeg found but -version failed: %v", err)
		return
	}
	log.Success("ffmpeg: %s", firstLine(string(out)))
}

// checkTargetEncoders lists the encoders ffmpeg reports for the target codec.
func checkTargetEncoders(cfg *config.Config, log Logger) {
	log.Info("%s encoders:", cfg.TargetCodec)
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").Output()
	if err != nil {
		log.Warn("Could not list encoders: %v", err)
		return
	}
	needle := strings.ToLower(cfg.TargetCodec)
	for _, line := range strings.Split(string(out), "\n") {
		if strings.Contains(strings.ToLower(line), needle) {
			log.Info("  %s", strings.TrimSpace(line))
		}
	}
}

// checkEncoderTest runs a minimal encode with the configured options.
func checkEncoderTest(cfg *config.Config, log Logger) {
	log.Info("Testing target encoder...")
	if runSilent("ffmpeg", encoderTestArgs(cfg)...) {
		log.Success("Target encoder works")
	} else {
		log.Error("Target encoder test failed")
	}
}

// CheckDeps is the pre-run validation: it verifies that mediainfo and ffmpeg
// are on PATH and that the configured encode options produce a working
// encode. Returns a sentinel error on failure.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath("mediainfo"); err != nil {
		return ErrMediainfoNotFound
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return ErrFfmpegNotFound
	}
	if !runSilent("ffmpeg", encoderTestArgs(cfg)...) {
		return ErrEncoderTestFailed
	}
	return nil
}

// --- internal helpers ---

// encoderTestArgs returns ffmpeg arguments for a minimal test encode using
// the configured encode options. Shared by checkEncoderTest and CheckDeps.
func encoderTestArgs(cfg *config.Config) []string {
	args := []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=256x256:d=0.1",
	}
	args = append(args, cfg.FFmpegEncodeOpts...)
	return append(args, "-f", "null", "-")
}

// firstLine returns the first line of s, trimmed.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "\n"); idx > 0 {
		s = s[:idx]
	}
	return s
}

// runSilent runs a command and returns true if it exits with status 0.
// Both stdout and stderr are discarded.
func runSilent(name string, args ...string) bool {
	cmd := exec.Command(name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}
