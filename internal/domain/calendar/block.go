package calendar

import (
	"time"

	"rental-backend/internal/domain/stay"
)

const DefaultSummary = "Blocked"

// Block is a range held by an external calendar. Its bounds need not fall on midnight.
type Block struct {
	UID     string
	Summary string
	Start   time.Time
	End     time.Time
}

func NewBlock(uid, summary string, start, end time.Time) Block {
	if summary == "" {
		summary = DefaultSummary
	}
	return Block{UID: uid, Summary: summary, Start: start.UTC(), End: end.UTC()}
}

func (b Block) Overlaps(start, end time.Time) bool {
	return stay.Overlaps(b.Start, b.End, start, end)
}

// AnyOverlap applies the shared overlap predicate to every block.
func AnyOverlap(blocks []Block, start, end time.Time) bool {
	for _, b := range blocks {
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}
