// Package planner classifies probed media attributes against the target
// profile and decides which conversion actions a file needs.
package planner

import (
	"context"
	"strings"

	"github.com/backmassage/batchmux/internal/config"
	"github.com/backmassage/batchmux/internal/probe"
)

// ActionSet holds the three independent conversion actions for one file.
type ActionSet struct {
	ChangeContainer bool // Repackage into the target container (remux).
	Encode          bool // Re-encode video to the target codec.
	Resize          bool // Downscale to the target height.
}

// Any reports whether at least one action is required.
func (a ActionSet) Any() bool {
	return a.ChangeContainer || a.Encode || a.Resize
}

// String returns a short label like "container+encode" for log lines.
func (a ActionSet) String() string {
	var parts []string
	if a.ChangeContainer {
		parts = append(parts, "container")
	}
	if a.Encode {
		parts = append(parts, "encode")
	}
	if a.Resize {
		parts = append(parts, "resize")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// Outcome is the classification result for one file.
type Outcome int

const (
	OutcomeInvalid Outcome = iota // Probe failed; routed to the failed queue.
	OutcomeSkip                   // Already matches the target; routed to skipped.
	OutcomeConvert                // Needs work; routed to in_progress with actions.
)

// Decision pairs an Outcome with its ActionSet (Convert) or failure reason
// (Invalid).
type Decision struct {
	Outcome Outcome
	Actions ActionSet
	Reason  string
}

// Decide is the decision matrix: it compares a probe result against the
// target profile and returns the required actions. All three checks run
// independently (no short-circuit) because each contributes its own flag.
// Resize triggers only when the probed height strictly exceeds the target;
// smaller videos are never upscaled.
func Decide(cfg *config.Config, r *probe.Result) Decision {
	var a ActionSet
	a.ChangeContainer = r.Container != cfg.TargetContainer
	a.Encode = r.VideoCodec != cfg.TargetCodec
	a.Resize = r.Height > cfg.TargetHeight

	if !a.Any() {
		return Decision{Outcome: OutcomeSkip}
	}
	return Decision{Outcome: OutcomeConvert, Actions: a}
}

// Classify probes path and runs Decide on the result. A probe failure of
// any kind (subprocess error, missing attribute) yields OutcomeInvalid with
// the error text as reason.
func Classify(ctx context.Context, cfg *config.Config, path string) Decision {
	r, err := probe.Run(ctx, path)
	if err != nil {
		return Decision{Outcome: OutcomeInvalid, Reason: err.Error()}
	}
	return Decide(cfg, r)
}
