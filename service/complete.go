package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"meetseries/rollover"
	"meetseries/storage"
)

// CompleteOccurrence runs the rollover transition for an occurrence: open
// tasks and agenda items move to the series' next occurrence and the
// occurrence flips to completed. The decision's moves are applied before
// the completed flag, mirroring the engine's ordering, so a concurrent or
// retried call observes the flag only once the move set is durable.
// Completing an already-completed occurrence is a no-op.
func (s *Service) CompleteOccurrence(ctx context.Context, occurrenceID uuid.UUID) (rollover.Decision, error) {
	occ, err := s.store.GetOccurrence(ctx, occurrenceID)
	if err != nil {
		return rollover.Decision{}, fmt.Errorf("load occurrence: %w", err)
	}

	openTasks, err := s.store.ListOpenTasks(ctx, occ.ID)
	if err != nil {
		return rollover.Decision{}, fmt.Errorf("load open tasks: %w", err)
	}
	openItems, err := s.store.ListOpenAgendaItems(ctx, occ.ID)
	if err != nil {
		return rollover.Decision{}, fmt.Errorf("load open agenda items: %w", err)
	}

	decision, err := s.engine.Complete(ctx, occ, s.nextOccurrenceLookup, openTasks, openItems)
	if err != nil {
		return rollover.Decision{}, err
	}

	for _, move := range decision.TaskMoves {
		if err := s.store.MoveTask(ctx, move.TaskID, move.ToOccurrence, move.NewDueAt); err != nil {
			return rollover.Decision{}, fmt.Errorf("move task %s: %w", move.TaskID, err)
		}
	}
	for _, move := range decision.AgendaItemMoves {
		if err := s.store.MoveAgendaItem(ctx, move.AgendaItemID, move.ToOccurrence); err != nil {
			return rollover.Decision{}, fmt.Errorf("move agenda item %s: %w", move.AgendaItemID, err)
		}
	}
	if decision.SourceCompleted {
		if err := s.store.MarkOccurrenceCompleted(ctx, occ.ID); err != nil {
			return rollover.Decision{}, fmt.Errorf("mark occurrence completed: %w", err)
		}
		s.logger.Info("completed occurrence",
			"occurrence_id", occ.ID,
			"tasks_moved", len(decision.TaskMoves),
			"agenda_items_moved", len(decision.AgendaItemMoves))
	}

	return decision, nil
}

func (s *Service) nextOccurrenceLookup(ctx context.Context, seriesID uuid.UUID, after time.Time) (mo.Option[*storage.Occurrence], error) {
	next, err := s.store.NextOccurrence(ctx, seriesID, after)
	if err != nil {
		if storage.IsNotFound(err) {
			return mo.None[*storage.Occurrence](), nil
		}
		return mo.None[*storage.Occurrence](), err
	}
	return mo.Some(next), nil
}
