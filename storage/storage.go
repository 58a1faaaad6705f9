package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Storage connects the scheduling engine with your backend store (e.g. a
// database). Implementations must return the error types provided by this
// package. The engine itself holds no locks; completing the same
// occurrence from two concurrent requests must be serialized by the
// implementation (a transaction or an optimistic version check) so that
// only one caller observes it as open.
type Storage interface {
	// CreateSeries persists a new meeting series.
	CreateSeries(ctx context.Context, series *Series) error
	// GetSeries retrieves a series by id.
	GetSeries(ctx context.Context, id uuid.UUID) (*Series, error)

	// CreateOccurrence persists a new occurrence.
	CreateOccurrence(ctx context.Context, occ *Occurrence) error
	// GetOccurrence retrieves an occurrence by id.
	GetOccurrence(ctx context.Context, id uuid.UUID) (*Occurrence, error)
	// ListOccurrences retrieves a series' occurrences ordered by scheduled time.
	ListOccurrences(ctx context.Context, seriesID uuid.UUID) ([]*Occurrence, error)
	// NextOccurrence retrieves the earliest occurrence in the series
	// strictly after the given instant, or ErrNotFound.
	NextOccurrence(ctx context.Context, seriesID uuid.UUID, after time.Time) (*Occurrence, error)
	// MarkOccurrenceCompleted flips an occurrence to its terminal state.
	MarkOccurrenceCompleted(ctx context.Context, id uuid.UUID) error

	// CreateTask persists a new task.
	CreateTask(ctx context.Context, task *Task) error
	// ListOpenTasks retrieves the not-done tasks attached to an occurrence.
	ListOpenTasks(ctx context.Context, occurrenceID uuid.UUID) ([]*Task, error)
	// MoveTask reattaches a task to another occurrence. A non-nil newDueAt
	// also resets the task's due time.
	MoveTask(ctx context.Context, taskID, toOccurrenceID uuid.UUID, newDueAt *time.Time) error

	// CreateAgendaItem persists a new agenda item.
	CreateAgendaItem(ctx context.Context, item *AgendaItem) error
	// ListOpenAgendaItems retrieves the not-done agenda items attached to an occurrence.
	ListOpenAgendaItems(ctx context.Context, occurrenceID uuid.UUID) ([]*AgendaItem, error)
	// MoveAgendaItem reattaches an agenda item to another occurrence.
	MoveAgendaItem(ctx context.Context, itemID, toOccurrenceID uuid.UUID) error

	// CreateReminder persists a new reminder.
	CreateReminder(ctx context.Context, rem *Reminder) error
	// DueReminders retrieves unsent reminders whose send time is at or
	// before asOf, ordered by send time.
	DueReminders(ctx context.Context, asOf time.Time) ([]*Reminder, error)
	// MarkReminderSent records the delivery time of a reminder.
	MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) error
}

// IsNotFound reports whether err is a storage not-found error.
func IsNotFound(err error) bool {
	var serr *Error
	return errors.As(err, &serr) && serr.Type == ErrNotFound
}
