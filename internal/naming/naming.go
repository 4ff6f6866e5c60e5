// Package naming derives the on-disk names of conversion artifacts from a
// source path. Each stage writes to a distinct, recognizable name so an
// interrupted run leaves artifacts that a later scan can identify as stale.
package naming

import (
	"path/filepath"
	"strings"
)

// WorkingSuffix marks the scratch copy a conversion operates on. The
// original file is never touched until the conversion has succeeded.
const WorkingSuffix = ".working"

const (
	remuxTag  = ".tmuxed."
	encodeTag = ".encoded."
)

// stem strips the extension: "/v/movie.avi" -> "/v/movie".
func stem(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// WorkingPath names the scratch copy of src: "/v/movie.avi" -> "/v/movie.working".
func WorkingPath(src string) string {
	return stem(src) + WorkingSuffix
}

// RemuxPath names the remux stage output for src, in the target container
// extension: "/v/movie.avi" -> "/v/movie.tmuxed.mkv".
func RemuxPath(src, ext string) string {
	return stem(src) + remuxTag + ext
}

// EncodePath names the transcode stage output for src:
// "/v/movie.avi" -> "/v/movie.encoded.mkv".
func EncodePath(src, ext string) string {
	return stem(src) + encodeTag + ext
}

// FinalPath names the finished file: the source stem with the target
// extension. When src already carries the target extension the final path
// equals src and the original is overwritten in place by the rename.
func FinalPath(src, ext string) string {
	return stem(src) + "." + ext
}

// IsStaleArtifact reports whether name looks like an abandoned artifact of
// any stage for the given target extension. Stale artifacts are products of
// an interrupted run and are safe to delete or set aside.
func IsStaleArtifact(name, ext string) bool {
	return strings.HasSuffix(name, WorkingSuffix) ||
		strings.HasSuffix(name, remuxTag+ext) ||
		strings.HasSuffix(name, encodeTag+ext)
}
