package document

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyBody    = errors.New("body must not be empty")
	ErrEmptyContent = errors.New("note content must not be empty")
	ErrNoteExists   = errors.New("segment already has a note")
	ErrNoNote       = errors.New("segment has no note")
	ErrNoSegment    = errors.New("no such segment")
)

// Segment is one line of study text. Identity is the id, not the text:
// replacing the body yields fresh ids even for identical lines.
type Segment struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Note is a free-text annotation anchored to a character range within one
// segment. Offsets are provenance from the originating selection and are
// never re-validated against the current text.
type Note struct {
	ID          string    `json:"id"`
	SegmentID   string    `json:"segmentId"`
	StartOffset int       `json:"startOffset"`
	EndOffset   int       `json:"endOffset"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Document is the persisted state: a titled sequence of segments and at
// most one note per segment, keyed by segment id.
type Document struct {
	Title    string          `json:"title"`
	Segments []Segment       `json:"segments"`
	Notes    map[string]Note `json:"notes"`
}

func New(title, body string) *Document {
	return &Document{
		Title:    title,
		Segments: SplitBody(body),
		Notes:    make(map[string]Note),
	}
}

const defaultBody = `The mitochondria is the powerhouse of the cell.
Photosynthesis converts light energy into chemical energy.
Newton's second law states that force equals mass times acceleration.
The French Revolution began in 1789.
Water is composed of two hydrogen atoms and one oxygen atom.`

// Default is the built-in document used when no saved state exists or the
// saved payload cannot be decoded.
func Default() *Document {
	return New("Study Notes", defaultBody)
}

// SplitBody turns body text into segments: one per line, trailing
// whitespace trimmed, blank lines dropped, fresh ids.
func SplitBody(body string) []Segment {
	lines := strings.Split(body, "\n")
	segments := make([]Segment, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		segments = append(segments, Segment{ID: uuid.NewString(), Text: line})
	}
	return segments
}

// ReplaceBody swaps the segment set wholesale and drops every note.
func (d *Document) ReplaceBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return ErrEmptyBody
	}
	d.Segments = SplitBody(body)
	d.Notes = make(map[string]Note)
	return nil
}

func (d *Document) SegmentByID(id string) (Segment, bool) {
	for _, seg := range d.Segments {
		if seg.ID == id {
			return seg, true
		}
	}
	return Segment{}, false
}

func (d *Document) NoteFor(segmentID string) (Note, bool) {
	note, ok := d.Notes[segmentID]
	return note, ok
}

// CreateNote inserts a note for a segment that has none. Both timestamps
// are stamped with now.
func (d *Document) CreateNote(segmentID, content string, startOffset, endOffset int, now time.Time) (Note, error) {
	if strings.TrimSpace(content) == "" {
		return Note{}, ErrEmptyContent
	}
	if _, ok := d.SegmentByID(segmentID); !ok {
		return Note{}, ErrNoSegment
	}
	if _, ok := d.Notes[segmentID]; ok {
		return Note{}, ErrNoteExists
	}
	note := Note{
		ID:          uuid.NewString(),
		SegmentID:   segmentID,
		StartOffset: startOffset,
		EndOffset:   endOffset,
		Content:     content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if d.Notes == nil {
		d.Notes = make(map[string]Note)
	}
	d.Notes[segmentID] = note
	return note, nil
}

// UpdateNote overwrites the content and updatedAt of an existing note.
func (d *Document) UpdateNote(segmentID, content string, now time.Time) (Note, error) {
	if strings.TrimSpace(content) == "" {
		return Note{}, ErrEmptyContent
	}
	note, ok := d.Notes[segmentID]
	if !ok {
		return Note{}, ErrNoNote
	}
	note.Content = content
	note.UpdatedAt = now
	d.Notes[segmentID] = note
	return note, nil
}

// DeleteNote removes the note for a segment. Reports whether a note was
// actually removed; deleting where none exists is a no-op.
func (d *Document) DeleteNote(segmentID string) bool {
	if _, ok := d.Notes[segmentID]; !ok {
		return false
	}
	delete(d.Notes, segmentID)
	return true
}

// Clone returns a deep copy, safe to hand to renderers while the original
// keeps mutating.
func (d *Document) Clone() *Document {
	out := &Document{
		Title:    d.Title,
		Segments: make([]Segment, len(d.Segments)),
		Notes:    make(map[string]Note, len(d.Notes)),
	}
	copy(out.Segments, d.Segments)
	for k, v := range d.Notes {
		out.Notes[k] = v
	}
	return out
}
