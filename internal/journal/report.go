package journal

import (
	"fmt"
	"sort"
)

// HealthReport is the structured output of one scan. It is created
// empty by the Scanner, mutated only during that scan, and owned by the
// caller thereafter; its Events are owned exclusively by the report
// (spec §9 design note — dropping the report drops the events).
type HealthReport struct {
	HeaderPresent bool
	HeaderValid   bool
	Header        *Header

	ObjectsMissing map[ObjectIndex]struct{}
	ObjectsPresent map[ObjectIndex]struct{}

	RangesInvalid []Range
	EventsValid   []StreamOffset
	Events        map[StreamOffset]Event

	// Cancelled is set when a caller-requested cancellation aborted the
	// scan before it reached the end of the object range.
	Cancelled bool
}

// NewHealthReport returns an empty report ready for a single scan.
func NewHealthReport() *HealthReport {
	return &HealthReport{
		ObjectsMissing: map[ObjectIndex]struct{}{},
		ObjectsPresent: map[ObjectIndex]struct{}{},
		Events:         map[StreamOffset]Event{},
	}
}

// IsHealthy implements is_healthy(): header present and valid, no
// invalid ranges, no missing objects.
func (r *HealthReport) IsHealthy() bool {
	return r.HeaderPresent && r.HeaderValid && len(r.RangesInvalid) == 0 && len(r.ObjectsMissing) == 0
}

func (r *HealthReport) recordEvent(offset StreamOffset, ev Event) {
	r.Events[offset] = ev
	r.EventsValid = append(r.EventsValid, offset)
}

func (r *HealthReport) recordRange(rng Range) {
	r.RangesInvalid = append(r.RangesInvalid, rng)
}

// SortedEventOffsets returns EventsValid sorted ascending; Events keys
// are already inserted in ascending order during a scan, but callers
// that mutate or merge reports should not rely on insertion order.
func (r *HealthReport) SortedEventOffsets() []StreamOffset {
	out := append([]StreamOffset(nil), r.EventsValid...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// GapBytes sums the length of every invalid range. A range left open at
// infinity is closed at header.WritePos when the header is present;
// otherwise it contributes zero (its true length is unknown).
func (r *HealthReport) GapBytes() uint64 {
	var total uint64
	for _, rng := range r.RangesInvalid {
		if rng.Hi != InfiniteOffset {
			total += rng.Hi - rng.Lo
			continue
		}
		if r.Header != nil && r.Header.WritePos >= rng.Lo {
			total += r.Header.WritePos - rng.Lo
		}
	}
	return total
}

// Summarize renders the one-line summary the embedding CLI prints
// ("healthy=false; N missing objects; M gap bytes"), per spec §7.
func Summarize(r *HealthReport) string {
	return fmt.Sprintf("healthy=%v; %d missing objects; %d gap bytes",
		r.IsHealthy(), len(r.ObjectsMissing), r.GapBytes())
}
