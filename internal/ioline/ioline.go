// Package ioline is the line-oriented input channel READ draws from:
// either an explicit --input file or the process's stdin, both read
// incrementally. Grounded on helpers.InputFile in the kept Python
// original, which buffers a file's lines up front but calls the blocking
// builtin input() per READ when no file is given; here both paths share
// one bufio.Scanner-backed Source so end-of-input behaves identically
// (NextLine reports ok=false) regardless of where it's coming from.
package ioline

import (
	"bufio"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"ippvm/internal/errors"
)

// Source hands out the input stream one line at a time. An ok=false
// return from NextLine signals exhaustion, which READ maps to a nil-typed
// result (false for a bool READ).
type Source struct {
	scanner    *bufio.Scanner
	interactive bool
}

// Open builds a Source over path's contents, or over os.Stdin when path
// is empty. For the stdin fallback it also records whether stdin is
// attached to a terminal, as reported by Interactive; reading is the
// same bufio.Scanner either way.
func Open(path string) (*Source, error) {
	if path == "" {
		return &Source{
			scanner:     bufio.NewScanner(os.Stdin),
			interactive: isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
		}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.InputFile, err, "failed to open input file %q", path)
	}
	return &Source{scanner: bufio.NewScanner(f)}, nil
}

// Interactive reports whether this Source falls back to an interactive
// terminal rather than a redirected file or pipe.
func (s *Source) Interactive() bool { return s.interactive }

// NextLine returns the next input line with its trailing newline
// stripped, or ("", false) once the stream is exhausted.
func (s *Source) NextLine() (string, bool) {
	if s.scanner.Scan() {
		return s.scanner.Text(), true
	}
	return "", false
}

// FromReader adapts an arbitrary reader (used by tests to feed canned
// input without touching stdin or the filesystem).
func FromReader(r io.Reader) *Source {
	return &Source{scanner: bufio.NewScanner(r)}
}
