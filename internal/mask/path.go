package mask

import (
	"fmt"
	"slices"

	"mockupstudio/internal/domain"
)

// Point is a position in the coordinate space of the surface it was drawn on.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Path is an ordered, non-empty run of points drawn in one stroke.
type Path []Point

// PathLog is an append-only record of strokes. Every method returns a new
// log and never touches the receiver, so earlier values stay valid after
// further drawing.
type PathLog struct {
	paths []Path
	open  int
}

// NewPathLog returns an empty log with no open stroke.
func NewPathLog() PathLog {
	return PathLog{open: -1}
}

// Begin opens a new stroke at p. An already open stroke is closed first.
func (l PathLog) Begin(p Point) PathLog {
	return PathLog{
		paths: append(slices.Clip(l.paths), Path{p}),
		open:  len(l.paths),
	}
}

// Extend appends p to the open stroke. Without an open stroke it is a no-op.
func (l PathLog) Extend(p Point) PathLog {
	if l.open < 0 {
		return l
	}
	paths := slices.Clone(l.paths)
	paths[l.open] = append(slices.Clip(paths[l.open]), p)
	return PathLog{paths: paths, open: l.open}
}

// End closes the open stroke.
func (l PathLog) End() PathLog {
	return PathLog{paths: l.paths, open: -1}
}

// Drawing reports whether a stroke is open.
func (l PathLog) Drawing() bool { return l.open >= 0 }

// Len returns the number of strokes recorded.
func (l PathLog) Len() int { return len(l.paths) }

// Paths returns a copy of the recorded strokes.
func (l PathLog) Paths() []Path {
	out := make([]Path, len(l.paths))
	for i, p := range l.paths {
		out[i] = slices.Clone(p)
	}
	return out
}

// EventKind names a pointer event captured while drawing on the canvas.
type EventKind string

const (
	EventBegin EventKind = "begin"
	EventMove  EventKind = "move"
	EventEnd   EventKind = "end"
)

// Event is one pointer event in display coordinates.
type Event struct {
	Kind EventKind `json:"type"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
}

// Replay builds a log from raw pointer events in order. Moves outside a
// stroke are ignored, as they are while drawing.
func Replay(events []Event) (PathLog, error) {
	log := NewPathLog()
	for i, ev := range events {
		switch ev.Kind {
		case EventBegin:
			log = log.Begin(Point{X: ev.X, Y: ev.Y})
		case EventMove:
			log = log.Extend(Point{X: ev.X, Y: ev.Y})
		case EventEnd:
			log = log.End()
		default:
			return PathLog{}, fmt.Errorf("%w: mask event %d has unknown type %q", domain.ErrValidation, i, ev.Kind)
		}
	}
	return log.End(), nil
}
