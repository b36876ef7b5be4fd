// Package stats accumulates the runtime counters the --stats sink reports:
// total instructions executed, the order of the most frequently executed
// instruction, and the peak number of simultaneously initialized
// variables. Grounded on stats.py, with each Recorder tagged by a
// run-scoped correlation id (google/uuid) and its Summary rendered
// through dustin/go-humanize so a large instruction count reads as
// "1,048,576" in the BREAK diagnostic dump; the stats file itself gets
// the raw value.
package stats

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"ippvm/internal/errors"
	"ippvm/internal/program"
)

// Field is one --stats output line selector, recorded in the order the
// matching CLI flag appeared.
type Field int

const (
	FieldInsts Field = iota
	FieldHot
	FieldVars
)

// Recorder tracks the counters the --stats file can report. Build one
// with New; the zero value has no per-order call map for Observe to use.
type Recorder struct {
	RunID string

	totalCalls   int64
	callsByOrder map[int]int64
	maxVars      int

	fields []Field
}

// New returns a Recorder tagged with a fresh correlation id, for the
// diagnostic banner to cross-reference against DPRINT/BREAK output of
// the same run.
func New() *Recorder {
	return &Recorder{
		RunID:        uuid.NewString(),
		callsByOrder: make(map[int]int64),
	}
}

// AddField appends one --insts/--hot/--vars flag, in the order the CLI
// saw it, since Save must emit lines in that same order.
func (r *Recorder) AddField(f Field) {
	r.fields = append(r.fields, f)
}

// Observe records one executed instruction and the number of
// initialized variables live at that moment. LABEL, DPRINT, and BREAK
// are diagnostic/no-op instructions and are excluded from the
// instruction-count and hot-instruction tallies, matching aggregate_stats.
func (r *Recorder) Observe(in program.Instruction, initializedVars int) {
	if initializedVars > r.maxVars {
		r.maxVars = initializedVars
	}
	switch in.Op {
	case program.LABEL, program.DPRINT, program.BREAK:
		return
	}
	r.totalCalls++
	r.callsByOrder[in.Order]++
}

// TotalCalls is the running instruction-execution count folded into Summary.
func (r *Recorder) TotalCalls() int64 { return r.totalCalls }

// hottest returns the order of the most-executed instruction, breaking
// ties by the lowest order, matching save_stats's linear scan.
func (r *Recorder) hottest() (int, bool) {
	var best int
	var bestCalls int64 = -1
	found := false
	for order, calls := range r.callsByOrder {
		if calls > bestCalls || (calls == bestCalls && order < best) {
			best, bestCalls, found = order, calls, true
		}
	}
	return best, found
}

// Save writes the recorded fields, one per line and in AddField order,
// to path.
func (r *Recorder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.OutputFile, err, "failed to open stats file %q", path)
	}
	defer f.Close()

	var sb strings.Builder
	for _, field := range r.fields {
		switch field {
		case FieldInsts:
			fmt.Fprintf(&sb, "%d\n", r.totalCalls)
		case FieldHot:
			if order, ok := r.hottest(); ok {
				fmt.Fprintf(&sb, "%d\n", order)
			}
		case FieldVars:
			fmt.Fprintf(&sb, "%d\n", r.maxVars)
		}
	}
	if _, err := f.WriteString(sb.String()); err != nil {
		return errors.Wrap(errors.OutputFile, err, "failed to write stats file %q", path)
	}
	return nil
}

// Summary renders the one-line, humanized instruction-count banner BREAK
// prints, e.g. "run 3c9...: 12,345 instructions".
func (r *Recorder) Summary() string {
	return fmt.Sprintf("run %s: %s instructions", r.RunID, humanize.Comma(r.totalCalls))
}
