// Package ffmpeg builds and executes ffmpeg command lines for the remux and
// transcode stages. Argument construction is kept separate from execution so
// the exact invocations can be tested (and logged in dry runs) without
// spawning anything.
package ffmpeg

import (
	"fmt"

	"github.com/backmassage/batchmux/internal/config"
)

// BuildRemuxArgs returns the arguments for the container-change stage:
// stream-copy every stream except data streams into the target container,
// converting subtitles to srt so they survive the container switch. -y
// overwrites a stale output left by an interrupted run, which would
// otherwise abort the retry since -nostdin suppresses the prompt.
func BuildRemuxArgs(cfg *config.Config, in, out string) []string {
	args := append([]string{}, cfg.FFmpegGlobalOpts...)
	args = append(args,
		"-y",
		"-i", in,
		"-map", "0",
		"-map", "-0:d",
		"-codec", "copy",
		"-codec:s", "srt",
		out,
	)
	return args
}

// BuildTranscodeArgs returns the arguments for the encode stage. All
// streams except data are mapped explicitly; without the maps ffmpeg's
// default selection would keep one video and one audio stream and drop the
// rest. The video stream is re-encoded with the configured codec options, a
// scale filter is added when resize is requested, and audio and subtitle
// streams are copied untouched.
func BuildTranscodeArgs(cfg *config.Config, resize bool, in, out string) []string {
	args := append([]string{}, cfg.FFmpegGlobalOpts...)
	args = append(args,
		"-y",
		"-i", in,
		"-map", "0",
		"-map", "-0:d",
	)
	args = append(args, cfg.FFmpegEncodeOpts...)
	if resize {
		args = append(args, "-vf", fmt.Sprintf("scale=%d:%d:flags=%s",
			cfg.TargetWidth, cfg.TargetHeight, cfg.ScaleFlags))
	}
	args = append(args,
		"-c:a", "copy",
		"-c:s", "copy",
		out,
	)
	return args
}
