// Package patch parses unified diffs into files, hunks and lines and builds
// the partial patches used to stage, unstage or discard a single hunk or a
// single changed line.
//
// Patches are always rendered with a git style header so they can be fed to
// "git apply". Whole-hunk patches copy the hunk verbatim. Line patches keep
// the hunk's context, rewrite the unselected changes so the patch matches the
// surface it is applied to, and recompute the hunk header.
package patch
