// Package selection maps a text selection expressed against a rendered
// segment back to character offsets in the segment's plain text.
//
// A rendered segment is a flat, in-order sequence of text runs (the inline
// nodes of the segment's container, flattened). A selection boundary names
// a run and a local character offset inside it; the absolute offset is the
// cumulative length of every preceding run plus the local offset. Offsets
// count runes.
package selection

import (
	"errors"
	"strings"
)

var (
	ErrCrossSegment   = errors.New("selection spans more than one segment")
	ErrEmptySelection = errors.New("selection is empty")
	ErrOutOfRange     = errors.New("selection boundary out of range")
)

// Run is one contiguous text node within a rendered segment.
type Run struct {
	Text string
}

// Boundary is one end of a selection: the segment whose container the
// boundary node belongs to, the index of the text run, and the rune offset
// within that run.
type Boundary struct {
	SegmentID string
	Run       int
	Offset    int
}

// Info is a resolved selection within a single segment. Offsets index into
// the segment's plain text.
type Info struct {
	SegmentID   string
	StartOffset int
	EndOffset   int
	Text        string
}

// Resolve converts a pair of boundaries into segment-relative offsets.
// Both boundaries must belong to the same segment. A collapsed range or a
// whitespace-only selection resolves to ErrEmptySelection.
func Resolve(runs []Run, start, end Boundary) (Info, error) {
	if start.SegmentID != end.SegmentID {
		return Info{}, ErrCrossSegment
	}
	startOffset, err := absoluteOffset(runs, start)
	if err != nil {
		return Info{}, err
	}
	endOffset, err := absoluteOffset(runs, end)
	if err != nil {
		return Info{}, err
	}
	if startOffset > endOffset {
		startOffset, endOffset = endOffset, startOffset
	}
	if startOffset == endOffset {
		return Info{}, ErrEmptySelection
	}
	text := string(joined(runs)[startOffset:endOffset])
	if strings.TrimSpace(text) == "" {
		return Info{}, ErrEmptySelection
	}
	return Info{
		SegmentID:   start.SegmentID,
		StartOffset: startOffset,
		EndOffset:   endOffset,
		Text:        text,
	}, nil
}

func absoluteOffset(runs []Run, b Boundary) (int, error) {
	if b.Run < 0 || b.Run >= len(runs) {
		return 0, ErrOutOfRange
	}
	length := len([]rune(runs[b.Run].Text))
	if b.Offset < 0 || b.Offset > length {
		return 0, ErrOutOfRange
	}
	total := 0
	for _, run := range runs[:b.Run] {
		total += len([]rune(run.Text))
	}
	return total + b.Offset, nil
}

func joined(runs []Run) []rune {
	var b strings.Builder
	for _, run := range runs {
		b.WriteString(run.Text)
	}
	return []rune(b.String())
}

// Span is a half-open [Start, End) rune range used to split rendered text.
type Span struct {
	Start int
	End   int
}

// Split breaks plain text into the runs it renders as when the given span
// is wrapped in its own inline node. An empty or out-of-range span yields
// a single run. This mirrors the markup the renderer produces, so resolved
// boundaries and rendered nodes stay in sync.
func Split(text string, spans ...Span) []Run {
	chars := []rune(text)
	if len(spans) == 0 {
		return []Run{{Text: text}}
	}
	span := spans[0]
	if span.Start < 0 || span.End > len(chars) || span.Start >= span.End {
		return []Run{{Text: text}}
	}
	runs := make([]Run, 0, 3)
	if span.Start > 0 {
		runs = append(runs, Run{Text: string(chars[:span.Start])})
	}
	runs = append(runs, Run{Text: string(chars[span.Start:span.End])})
	if span.End < len(chars) {
		runs = append(runs, Run{Text: string(chars[span.End:])})
	}
	return runs
}
