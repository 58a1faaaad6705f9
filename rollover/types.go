package rollover

import (
	"time"

	"github.com/google/uuid"
)

// TaskMove reassigns one task to another occurrence. NewDueAt, when
// non-nil, is the task's reset due time.
type TaskMove struct {
	TaskID       uuid.UUID
	ToOccurrence uuid.UUID
	NewDueAt     *time.Time
}

// AgendaItemMove reassigns one agenda item to another occurrence.
type AgendaItemMove struct {
	AgendaItemID uuid.UUID
	ToOccurrence uuid.UUID
}

// Decision is the computed rollover transition for one completion event.
// The engine only decides; applying the moves and the completed flag, in
// that order and inside one transaction, is the caller's job.
type Decision struct {
	TaskMoves       []TaskMove
	AgendaItemMoves []AgendaItemMove
	// SourceCompleted is true when the source occurrence should flip to
	// its terminal state. False only on the idempotent no-op path.
	SourceCompleted bool
}

// Empty reports whether the decision changes nothing.
func (d Decision) Empty() bool {
	return !d.SourceCompleted && len(d.TaskMoves) == 0 && len(d.AgendaItemMoves) == 0
}
