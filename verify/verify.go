// Package verify recomputes event identities across a journal, fully
// offline. It streams one frame at a time and aggregates counters only, so
// memory stays bounded by the largest single frame regardless of journal
// size.
package verify

import (
	"fmt"
	"io"

	"github.com/Northroot-Labs/northroot/event"
	"github.com/Northroot-Labs/northroot/journal"
	"github.com/Northroot-Labs/northroot/types"
)

// Report is the outcome of one verification run.
type Report struct {
	// TotalEvents is the number of EventJson frames read.
	TotalEvents int

	// OkCount is the number of events whose identity verified.
	OkCount int

	// InvalidCount is the number of events whose identity did not verify.
	InvalidCount int

	// FirstFailingOffset is the byte offset of the first invalid frame, or
	// -1 when every event verified.
	FirstFailingOffset int64

	// FirstFailure describes the first identity failure, or is nil.
	FirstFailure error

	// TruncationSeen reports whether a Permissive read forgave trailing
	// truncation.
	TruncationSeen bool
}

// Ok reports whether every event in the journal verified.
func (r Report) Ok() bool { return r.InvalidCount == 0 }

// Result describes the verification outcome of a single event, delivered
// to the observer as the scan proceeds.
type Result struct {
	// Offset is the byte offset of the event's frame.
	Offset int64

	// Value is the parsed event.
	Value *types.Value

	// Err is nil when the event's identity verified; otherwise it is the
	// identity failure (malformed event_id, hygiene failure, mismatch).
	Err error
}

// Journal verifies every event in the journal at path using the v1
// profile.
//
// Identity failures do not stop the scan — each event stands alone and
// later frames may still verify. Structural failures (invalid header,
// corrupt frame, unparsable payload, strict-mode truncation) abort the
// scan with an error, because nothing after them can be trusted to frame
// correctly.
func Journal(path string, mode journal.Mode) (Report, error) {
	return JournalFunc(path, mode, event.NewV1Identifier(), nil)
}

// JournalFunc verifies with an explicit identifier, invoking observe (when
// non-nil) once per event in journal order.
func JournalFunc(path string, mode journal.Mode, id *event.Identifier, observe func(Result)) (Report, error) {
	report := Report{FirstFailingOffset: -1}

	r, err := journal.OpenReader(path, mode)
	if err != nil {
		return report, err
	}
	defer r.Close()

	for {
		v, err := r.ReadNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return report, err
		}

		report.TotalEvents++
		offset := r.LastFrameOffset()

		// Every identity failure counts as Invalid, whether the cause is a
		// mismatching hash, a malformed event_id, or payload hygiene.
		verr := id.Verify(v)
		if verr == nil {
			report.OkCount++
		} else {
			report.InvalidCount++
			recordFailure(&report, offset, verr)
		}

		if observe != nil {
			observe(Result{Offset: offset, Value: v, Err: verr})
		}
	}

	report.TruncationSeen = r.TruncationSeen()
	return report, nil
}

func recordFailure(report *Report, offset int64, err error) {
	if report.FirstFailingOffset == -1 {
		report.FirstFailingOffset = offset
		report.FirstFailure = fmt.Errorf("frame at offset %d: %w", offset, err)
	}
}
