// Package probe runs mediainfo against a file and extracts the attributes
// the classifier needs from its sectioned key:value text output.
package probe

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Run probes path with mediainfo and returns the parsed result. A missing
// required attribute yields a *ParseError; a subprocess failure is wrapped
// as-is.
func Run(ctx context.Context, path string) (*Result, error) {
	cmd := exec.CommandContext(ctx, "mediainfo", path)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("mediainfo %q: %w", path, err)
	}

	return Parse(path, out)
}

// Parse extracts the container, codec, and height attributes from raw
// mediainfo text output. Exported for testing without a mediainfo binary.
func Parse(path string, out []byte) (*Result, error) {
	container, ok := sectionValue(out, "General", "Format")
	if !ok {
		return nil, &ParseError{Path: path, Section: "General", Key: "Format"}
	}

	codec, ok := sectionValue(out, "Video", "Format")
	if !ok {
		return nil, &ParseError{Path: path, Section: "Video", Key: "Format"}
	}

	rawHeight, ok := sectionValue(out, "Video", "Height")
	if !ok {
		return nil, &ParseError{Path: path, Section: "Video", Key: "Height"}
	}
	height, err := normalizeHeight(rawHeight)
	if err != nil {
		return nil, &ParseError{Path: path, Section: "Video", Key: "Height", Detail: err.Error()}
	}

	return &Result{
		Container:  container,
		VideoCodec: codec,
		Height:     height,
	}, nil
}

// sectionValue scans mediainfo's sectioned output for the first line inside
// the named section whose key matches. A section starts at a line holding
// just the section name (stream sections may carry a " #n" suffix) and ends
// at the first blank line.
func sectionValue(out []byte, section, key string) (string, bool) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	inSection := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())

		if !inSection {
			if line == section || strings.HasPrefix(line, section+" #") {
				inSection = true
			}
			continue
		}

		if line == "" {
			// Blank-line boundary: the key was not present in this section.
			return "", false
		}
		k, v, found := strings.Cut(line, ":")
		if found && strings.TrimSpace(k) == key {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// normalizeHeight parses mediainfo height values such as "720 pixels" or
// "1 080 pixels". Digit grouping characters (spaces, NBSP, commas) are
// stripped; parsing stops at the unit suffix.
func normalizeHeight(raw string) (int, error) {
	var digits strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
			continue
		case r == ' ' || r == '\u00a0' || r == ',':
			continue
		}
		break
	}
	if digits.Len() == 0 {
		return 0, fmt.Errorf("no digits in height %q", raw)
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, fmt.Errorf("height %q: %w", raw, err)
	}
	return n, nil
}
