// memory based implementation for testing purposes
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"meetseries/storage"
)

// Store implements the storage.Storage interface using in-memory maps.
type Store struct {
	mu          sync.RWMutex
	series      map[uuid.UUID]*storage.Series
	occurrences map[uuid.UUID]*storage.Occurrence
	tasks       map[uuid.UUID]*storage.Task
	agendaItems map[uuid.UUID]*storage.AgendaItem
	reminders   map[uuid.UUID]*storage.Reminder
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		series:      make(map[uuid.UUID]*storage.Series),
		occurrences: make(map[uuid.UUID]*storage.Occurrence),
		tasks:       make(map[uuid.UUID]*storage.Task),
		agendaItems: make(map[uuid.UUID]*storage.AgendaItem),
		reminders:   make(map[uuid.UUID]*storage.Reminder),
	}
}

func notFound(what string) error {
	return &storage.Error{Type: storage.ErrNotFound, Message: what + " not found"}
}

func alreadyExists(what string) error {
	return &storage.Error{Type: storage.ErrAlreadyExists, Message: what + " already exists"}
}

// Series operations

func (s *Store) CreateSeries(_ context.Context, series *storage.Series) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.series[series.ID]; ok {
		return alreadyExists("series")
	}
	copied := *series
	s.series[series.ID] = &copied
	return nil
}

func (s *Store) GetSeries(_ context.Context, id uuid.UUID) (*storage.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series, ok := s.series[id]
	if !ok {
		return nil, notFound("series")
	}
	copied := *series
	return &copied, nil
}

// Occurrence operations

func (s *Store) CreateOccurrence(_ context.Context, occ *storage.Occurrence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.occurrences[occ.ID]; ok {
		return alreadyExists("occurrence")
	}
	copied := *occ
	s.occurrences[occ.ID] = &copied
	return nil
}

func (s *Store) GetOccurrence(_ context.Context, id uuid.UUID) (*storage.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	occ, ok := s.occurrences[id]
	if !ok {
		return nil, notFound("occurrence")
	}
	copied := *occ
	return &copied, nil
}

func (s *Store) ListOccurrences(_ context.Context, seriesID uuid.UUID) ([]*storage.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*storage.Occurrence
	for _, occ := range s.occurrences {
		if occ.SeriesID == seriesID {
			copied := *occ
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out, nil
}

func (s *Store) NextOccurrence(_ context.Context, seriesID uuid.UUID, after time.Time) (*storage.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var next *storage.Occurrence
	for _, occ := range s.occurrences {
		if occ.SeriesID != seriesID || !occ.ScheduledAt.After(after) {
			continue
		}
		if next == nil || occ.ScheduledAt.Before(next.ScheduledAt) {
			next = occ
		}
	}
	if next == nil {
		return nil, notFound("next occurrence")
	}
	copied := *next
	return &copied, nil
}

func (s *Store) MarkOccurrenceCompleted(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	occ, ok := s.occurrences[id]
	if !ok {
		return notFound("occurrence")
	}
	occ.Completed = true
	return nil
}

// Task operations

func (s *Store) CreateTask(_ context.Context, task *storage.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; ok {
		return alreadyExists("task")
	}
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

func (s *Store) ListOpenTasks(_ context.Context, occurrenceID uuid.UUID) ([]*storage.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*storage.Task
	for _, task := range s.tasks {
		if task.OccurrenceID == occurrenceID && !task.Done {
			copied := *task
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) MoveTask(_ context.Context, taskID, toOccurrenceID uuid.UUID, newDueAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return notFound("task")
	}
	task.OccurrenceID = toOccurrenceID
	if newDueAt != nil {
		task.DueAt = *newDueAt
	}
	return nil
}

// Agenda item operations

func (s *Store) CreateAgendaItem(_ context.Context, item *storage.AgendaItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.agendaItems[item.ID]; ok {
		return alreadyExists("agenda item")
	}
	copied := *item
	s.agendaItems[item.ID] = &copied
	return nil
}

func (s *Store) ListOpenAgendaItems(_ context.Context, occurrenceID uuid.UUID) ([]*storage.AgendaItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*storage.AgendaItem
	for _, item := range s.agendaItems {
		if item.OccurrenceID == occurrenceID && !item.Done {
			copied := *item
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) MoveAgendaItem(_ context.Context, itemID, toOccurrenceID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.agendaItems[itemID]
	if !ok {
		return notFound("agenda item")
	}
	item.OccurrenceID = toOccurrenceID
	return nil
}

// Reminder operations

func (s *Store) CreateReminder(_ context.Context, rem *storage.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reminders[rem.ID]; ok {
		return alreadyExists("reminder")
	}
	copied := *rem
	s.reminders[rem.ID] = &copied
	return nil
}

func (s *Store) DueReminders(_ context.Context, asOf time.Time) ([]*storage.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*storage.Reminder
	for _, rem := range s.reminders {
		if rem.SentAt == nil && !rem.SendAt.After(asOf) {
			copied := *rem
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SendAt.Before(out[j].SendAt)
	})
	return out, nil
}

func (s *Store) MarkReminderSent(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rem, ok := s.reminders[id]
	if !ok {
		return notFound("reminder")
	}
	sentAt := at
	rem.SentAt = &sentAt
	return nil
}
