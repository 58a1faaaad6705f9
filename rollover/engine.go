// Package rollover computes the occurrence-completion transition: which
// unfinished work items carry forward to the next occurrence of a series.
package rollover

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"meetseries/storage"
)

// NextOccurrenceLookup returns the earliest occurrence in the series
// strictly after the given instant, or None when the series has no later
// occurrence.
type NextOccurrenceLookup func(ctx context.Context, seriesID uuid.UUID, after time.Time) (mo.Option[*storage.Occurrence], error)

// Engine decides occurrence-completion rollovers. The zero value matches
// the historical behavior: a moved task's due time is always reset to the
// next occurrence's scheduled instant.
type Engine struct {
	// PreserveCustomDueAt keeps a moved task's own due time when it
	// differs from the completed occurrence's scheduled instant, instead
	// of unconditionally resetting it.
	PreserveCustomDueAt bool
}

// Complete computes the rollover decision for a just-completed occurrence.
//
// An occurrence transitions Open -> Completed exactly once. Calling
// Complete on an already-completed occurrence returns an empty decision
// with no error: retried requests and racing collaborators take this
// no-op path instead of double-moving items. The move set is computed
// before the completed flag so a recomputation observes Completed and
// short-circuits.
//
// When a next occurrence exists, every not-done task and agenda item
// moves to it; done items stay attached to the closed occurrence as
// history. When none exists, nothing moves and the occurrence still
// completes. No occurrence other than the source and the identified next
// one is ever touched.
func (e *Engine) Complete(
	ctx context.Context,
	occ *storage.Occurrence,
	lookup NextOccurrenceLookup,
	openTasks []*storage.Task,
	openAgendaItems []*storage.AgendaItem,
) (Decision, error) {
	if occ.Completed {
		return Decision{}, nil
	}

	nextOpt, err := lookup(ctx, occ.SeriesID, occ.ScheduledAt)
	if err != nil {
		return Decision{}, fmt.Errorf("look up next occurrence: %w", err)
	}

	var decision Decision
	if next, ok := nextOpt.Get(); ok {
		for _, task := range openTasks {
			if task.Done {
				continue
			}
			move := TaskMove{TaskID: task.ID, ToOccurrence: next.ID}
			if !e.keepDueAt(task, occ) {
				due := next.ScheduledAt
				move.NewDueAt = &due
			}
			decision.TaskMoves = append(decision.TaskMoves, move)
		}
		for _, item := range openAgendaItems {
			if item.Done {
				continue
			}
			decision.AgendaItemMoves = append(decision.AgendaItemMoves, AgendaItemMove{
				AgendaItemID: item.ID,
				ToOccurrence: next.ID,
			})
		}
	}

	decision.SourceCompleted = true
	return decision, nil
}

func (e *Engine) keepDueAt(task *storage.Task, occ *storage.Occurrence) bool {
	if !e.PreserveCustomDueAt {
		return false
	}
	return !task.DueAt.IsZero() && !task.DueAt.Equal(occ.ScheduledAt)
}
