package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrorType classifies storage failures.
type ErrorType string

const (
	ErrNotFound      ErrorType = "not_found"
	ErrAlreadyExists ErrorType = "already_exists"
	ErrInvalidInput  ErrorType = "invalid_input"
)

// Error represents a storage-related error.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// ReminderChannel is the delivery channel of a reminder.
type ReminderChannel string

const (
	ChannelEmail ReminderChannel = "email"
	ChannelSlack ReminderChannel = "slack"
)

// Series is a recurring meeting series. RecurrenceRule holds the canonical
// serialized rule form; DTStart and Timezone are the generation anchor and
// the opaque display label for it.
type Series struct {
	ID                  uuid.UUID
	OwnerID             uuid.UUID
	OwnerEmail          string
	Title               string
	RecurrenceRule      string
	RecurrenceDTStart   time.Time
	RecurrenceTimezone  string
	ReminderLeadMinutes int
	CreatedAt           time.Time
}

// Occurrence is one concrete scheduled instance of a series. ScheduledAt
// is stored in UTC. Once Completed is set the occurrence is terminal;
// there is no reopen operation.
type Occurrence struct {
	ID          uuid.UUID
	SeriesID    uuid.UUID
	ScheduledAt time.Time
	Notes       string
	Completed   bool
	CreatedAt   time.Time
}

// Task is a work item attached to an occurrence. A zero DueAt means no due
// time was set.
type Task struct {
	ID           uuid.UUID
	SeriesID     uuid.UUID
	OccurrenceID uuid.UUID
	Title        string
	DueAt        time.Time
	Done         bool
	CreatedAt    time.Time
}

// AgendaItem is a discussion item attached to an occurrence.
type AgendaItem struct {
	ID           uuid.UUID
	OccurrenceID uuid.UUID
	Body         string
	Done         bool
	CreatedAt    time.Time
}

// Reminder is a scheduled notification for an occurrence. SendAt is stored
// in UTC; SentAt is nil until the reminder has been delivered.
type Reminder struct {
	ID           uuid.UUID
	OccurrenceID uuid.UUID
	Channel      ReminderChannel
	SendAt       time.Time
	SentAt       *time.Time
}
