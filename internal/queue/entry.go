package queue

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/backmassage/batchmux/internal/planner"
)

// Entry pairs a source path with its pending ActionSet, as persisted in the
// in_progress queue. All other queues hold bare paths.
type Entry struct {
	Path    string
	Actions planner.ActionSet
}

// MarshalLine renders the entry as one queue line: the Go-quoted path
// followed by three 0/1 flags (container, encode, resize). Quoting makes
// any path round-trip, including paths containing spaces, quotes, or
// control characters; there is no delimiter to collide with.
func (e Entry) MarshalLine() string {
	return fmt.Sprintf("%s %s %s %s",
		strconv.Quote(e.Path),
		bit(e.Actions.ChangeContainer),
		bit(e.Actions.Encode),
		bit(e.Actions.Resize),
	)
}

// ParseEntry is the inverse of MarshalLine.
func ParseEntry(line string) (Entry, error) {
	quoted, err := strconv.QuotedPrefix(line)
	if err != nil {
		return Entry{}, fmt.Errorf("in_progress entry %q: bad path field: %w", line, err)
	}
	path, err := strconv.Unquote(quoted)
	if err != nil {
		return Entry{}, fmt.Errorf("in_progress entry %q: bad path field: %w", line, err)
	}

	flags := strings.Fields(line[len(quoted):])
	if len(flags) != 3 {
		return Entry{}, fmt.Errorf("in_progress entry %q: want 3 action flags, got %d", line, len(flags))
	}

	var vals [3]bool
	for i, f := range flags {
		switch f {
		case "0":
			vals[i] = false
		case "1":
			vals[i] = true
		default:
			return Entry{}, fmt.Errorf("in_progress entry %q: bad flag %q", line, f)
		}
	}

	return Entry{
		Path: path,
		Actions: planner.ActionSet{
			ChangeContainer: vals[0],
			Encode:          vals[1],
			Resize:          vals[2],
		},
	}, nil
}

func bit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
