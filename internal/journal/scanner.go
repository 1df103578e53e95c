package journal

import (
	"context"
	"errors"

	"github.com/rzbill/cephjournaltool/internal/objectstore"
	"github.com/rzbill/cephjournaltool/pkg/log"
)

// ErrUnreadableObjectSize is an operational failure (spec §7): the
// header reports object_size=0 and no fallback default is configured.
var ErrUnreadableObjectSize = errors.New("journal: header object_size is 0 and no default is configured")

// ScanOptions configures a single Scan call (spec §6).
type ScanOptions struct {
	Rank         uint32
	PoolID       int64
	KeepPayloads bool
	Decoder      Decoder
	Filters      []Filter

	// ObjectSizeDefault is substituted when the header reports
	// object_size=0 (spec §9 open question: permitted, not required;
	// a log line is emitted whenever it is actually used).
	ObjectSizeDefault uint64
}

// Scanner orchestrates the namer, object store adapter, header codec and
// framer across an object range, accumulating a HealthReport (spec §4.E).
type Scanner struct {
	pool objectstore.Pool
	log  log.Logger
	opts ScanOptions
}

// NewScanner builds a Scanner reading through pool.
func NewScanner(pool objectstore.Pool, logger log.Logger, opts ScanOptions) *Scanner {
	if opts.Decoder == nil {
		opts.Decoder = DefaultDecoder{}
	}
	return &Scanner{pool: pool, log: logger, opts: opts}
}

// Scan runs the full header-read + framing pass described in spec §4.E.
// The only error it returns is an operational failure; every data
// condition (missing objects, corrupt header, bad frames) is recorded
// on the returned report instead.
func (s *Scanner) Scan(ctx context.Context) (*HealthReport, error) {
	report := NewHealthReport()

	headerBytes, err := s.pool.Read(ctx, ObjectName(s.opts.Rank, 0))
	if errors.Is(err, objectstore.ErrNotFound) {
		report.HeaderPresent = false
		return report, nil
	}
	if err != nil {
		return nil, err
	}
	report.HeaderPresent = true

	header, herr := DecodeHeader(headerBytes)
	if herr != nil {
		s.log.Warn("journal header corrupt", log.Str("reason", headerCorruptReason(herr)))
		report.HeaderValid = false
		return report, nil
	}
	report.HeaderValid = true
	report.Header = &header

	objSize := header.Layout.ObjectSize
	if objSize == 0 {
		if s.opts.ObjectSizeDefault == 0 {
			return nil, ErrUnreadableObjectSize
		}
		s.log.Warn("journal header object_size is 0, substituting configured default",
			log.Uint64("default", s.opts.ObjectSizeDefault))
		objSize = s.opts.ObjectSizeDefault
	}

	framer := NewFramer(header.ExpirePos)

	if header.WritePos <= header.ExpirePos {
		// Empty journal: no bytes to scan, so no object is touched.
		s.finalize(report, framer, header.WritePos)
		return report, nil
	}

	startIdx := ObjectIndex(header.ExpirePos / objSize)
	endIdx := ObjectIndex((header.WritePos - 1) / objSize)

	for idx := startIdx; idx <= endIdx; idx++ {
		if err := ctx.Err(); err != nil {
			report.Cancelled = true
			return report, nil
		}

		name := ObjectName(s.opts.Rank, idx)
		data, err := s.pool.Read(ctx, name)
		switch {
		case errors.Is(err, objectstore.ErrNotFound):
			report.ObjectsMissing[idx] = struct{}{}
			// The gap starts at the framer's actual cursor, not the
			// object's nominal boundary: a dangling partial frame left in
			// the rolling buffer by the previous present object straddles
			// this hole, and those residual bytes are real data loss that
			// ranges_invalid must account for.
			objBoundary := StreamOffset(idx) * objSize
			framer.EnterResync(framer.Cursor())
			framer.DiscardAndAdvance(objBoundary + objSize)
		case err != nil:
			return nil, err
		default:
			report.ObjectsPresent[idx] = struct{}{}
			framer.Feed(data)
			s.drain(report, framer)
		}
	}

	s.finalize(report, framer, header.WritePos)
	return report, nil
}

// drain steps the framer until it asks for more bytes, recording every
// frame, gap boundary and bad-frame signal it produces along the way.
func (s *Scanner) drain(report *HealthReport, framer *Framer) {
	for {
		step := framer.Step(s.opts.Decoder)
		switch step.Kind {
		case StepNeedMore:
			return
		case StepFrame:
			s.recordFrame(report, step)
		case StepGapEnd:
			report.recordRange(Range{Lo: step.GapStart, Hi: step.Offset})
		case StepGapStart, StepBadFrame:
			// Framer already transitioned internally; the range is
			// closed later, either on the matching StepGapEnd or at
			// finalize if the gap never resyncs.
		}
	}
}

func (s *Scanner) recordFrame(report *HealthReport, step Step) {
	ev := step.Event
	if !s.opts.KeepPayloads {
		ev.Raw = nil
	}

	if !s.passesFilters(step.Offset, ev) {
		report.EventsValid = append(report.EventsValid, step.Offset)
		return
	}
	report.recordEvent(step.Offset, ev)
}

func (s *Scanner) passesFilters(offset StreamOffset, ev Event) bool {
	for _, f := range s.opts.Filters {
		if !f.Match(offset, ev) {
			return false
		}
	}
	return true
}

// finalize closes any gap still open at the end of the object range
// (spec §4.E step 5).
func (s *Scanner) finalize(report *HealthReport, framer *Framer, writePos StreamOffset) {
	if framer.InResync() {
		gapStart, _ := framer.GapStart()
		report.recordRange(Range{Lo: gapStart, Hi: InfiniteOffset})
		return
	}
	if framer.Buffered() > 0 && framer.Buffered() < minFrameLen && framer.Cursor() < writePos {
		report.recordRange(Range{Lo: framer.Cursor(), Hi: InfiniteOffset})
	}
}

func headerCorruptReason(err error) string {
	var hce *HeaderCorruptError
	if errors.As(err, &hce) {
		return string(hce.Reason)
	}
	return "unknown"
}
