package probe

import "fmt"

// Result holds the probed attributes of one media file: the container
// format, the first video stream's codec, and its height. It is transient
// and recomputed on every classification, never cached across runs.
type Result struct {
	Container  string // General section, Format key.
	VideoCodec string // Video section, Format key.
	Height     int    // Video section, Height key, normalized.
}

// ParseError reports a required attribute missing or unparseable in the
// probe output. It is a per-file error: the file is routed to the failed
// queue and the batch continues.
type ParseError struct {
	Path    string
	Section string
	Key     string
	Detail  string
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("probe %s: missing %s/%s", e.Path, e.Section, e.Key)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}
