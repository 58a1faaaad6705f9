// Package sqlite implements storage.Storage on SQLite for single-node
// deployments such as the reminder daemon.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"meetseries/storage"
)

// Store implements the storage.Storage interface backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed bootstraps) a SQLite database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Times are persisted as RFC 3339 UTC strings; uuids as text.

func encodeTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func decodeTime(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, raw)
}

func notFound(what string) error {
	return &storage.Error{Type: storage.ErrNotFound, Message: what + " not found"}
}

// Series operations

func (s *Store) CreateSeries(ctx context.Context, series *storage.Series) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meeting_series
			(id, owner_id, owner_email, title, recurrence_rrule,
			 recurrence_dtstart, recurrence_timezone, reminder_lead_minutes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		series.ID.String(), series.OwnerID.String(), series.OwnerEmail,
		series.Title, series.RecurrenceRule,
		encodeTime(series.RecurrenceDTStart), series.RecurrenceTimezone,
		series.ReminderLeadMinutes, encodeTime(series.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert series: %w", err)
	}
	return nil
}

func (s *Store) GetSeries(ctx context.Context, id uuid.UUID) (*storage.Series, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, owner_email, title, recurrence_rrule,
		       recurrence_dtstart, recurrence_timezone, reminder_lead_minutes, created_at
		FROM meeting_series WHERE id = ?`, id.String())

	var (
		series                 storage.Series
		rawID, rawOwner        string
		rawDTStart, rawCreated string
	)
	err := row.Scan(&rawID, &rawOwner, &series.OwnerEmail, &series.Title,
		&series.RecurrenceRule, &rawDTStart, &series.RecurrenceTimezone,
		&series.ReminderLeadMinutes, &rawCreated)
	if err == sql.ErrNoRows {
		return nil, notFound("series")
	}
	if err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}

	if series.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("parse series id: %w", err)
	}
	if series.OwnerID, err = uuid.Parse(rawOwner); err != nil {
		return nil, fmt.Errorf("parse owner id: %w", err)
	}
	if series.RecurrenceDTStart, err = decodeTime(rawDTStart); err != nil {
		return nil, fmt.Errorf("parse series dtstart: %w", err)
	}
	if series.CreatedAt, err = decodeTime(rawCreated); err != nil {
		return nil, fmt.Errorf("parse series created_at: %w", err)
	}
	return &series, nil
}

// Occurrence operations

func (s *Store) CreateOccurrence(ctx context.Context, occ *storage.Occurrence) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO occurrences (id, series_id, scheduled_at, notes, completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		occ.ID.String(), occ.SeriesID.String(), encodeTime(occ.ScheduledAt),
		occ.Notes, occ.Completed, encodeTime(occ.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert occurrence: %w", err)
	}
	return nil
}

func (s *Store) scanOccurrence(row interface{ Scan(...any) error }) (*storage.Occurrence, error) {
	var (
		occ                      storage.Occurrence
		rawID, rawSeries         string
		rawScheduled, rawCreated string
	)
	err := row.Scan(&rawID, &rawSeries, &rawScheduled, &occ.Notes, &occ.Completed, &rawCreated)
	if err != nil {
		return nil, err
	}
	if occ.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("parse occurrence id: %w", err)
	}
	if occ.SeriesID, err = uuid.Parse(rawSeries); err != nil {
		return nil, fmt.Errorf("parse occurrence series id: %w", err)
	}
	if occ.ScheduledAt, err = decodeTime(rawScheduled); err != nil {
		return nil, fmt.Errorf("parse occurrence scheduled_at: %w", err)
	}
	if occ.CreatedAt, err = decodeTime(rawCreated); err != nil {
		return nil, fmt.Errorf("parse occurrence created_at: %w", err)
	}
	return &occ, nil
}

const occurrenceColumns = "id, series_id, scheduled_at, notes, completed, created_at"

func (s *Store) GetOccurrence(ctx context.Context, id uuid.UUID) (*storage.Occurrence, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+occurrenceColumns+" FROM occurrences WHERE id = ?", id.String())
	occ, err := s.scanOccurrence(row)
	if err == sql.ErrNoRows {
		return nil, notFound("occurrence")
	}
	if err != nil {
		return nil, fmt.Errorf("query occurrence: %w", err)
	}
	return occ, nil
}

func (s *Store) ListOccurrences(ctx context.Context, seriesID uuid.UUID) ([]*storage.Occurrence, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+occurrenceColumns+" FROM occurrences WHERE series_id = ? ORDER BY scheduled_at",
		seriesID.String())
	if err != nil {
		return nil, fmt.Errorf("query occurrences: %w", err)
	}
	defer rows.Close()

	var out []*storage.Occurrence
	for rows.Next() {
		occ, err := s.scanOccurrence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan occurrence: %w", err)
		}
		out = append(out, occ)
	}
	return out, rows.Err()
}

func (s *Store) NextOccurrence(ctx context.Context, seriesID uuid.UUID, after time.Time) (*storage.Occurrence, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+occurrenceColumns+` FROM occurrences
		 WHERE series_id = ? AND scheduled_at > ?
		 ORDER BY scheduled_at LIMIT 1`,
		seriesID.String(), encodeTime(after))
	occ, err := s.scanOccurrence(row)
	if err == sql.ErrNoRows {
		return nil, notFound("next occurrence")
	}
	if err != nil {
		return nil, fmt.Errorf("query next occurrence: %w", err)
	}
	return occ, nil
}

func (s *Store) MarkOccurrenceCompleted(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE occurrences SET completed = 1 WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("mark occurrence completed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("occurrence")
	}
	return nil
}

// Task operations

func (s *Store) CreateTask(ctx context.Context, task *storage.Task) error {
	var dueAt any
	if !task.DueAt.IsZero() {
		dueAt = encodeTime(task.DueAt)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, series_id, occurrence_id, title, due_at, done, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		task.ID.String(), task.SeriesID.String(), task.OccurrenceID.String(),
		task.Title, dueAt, task.Done, encodeTime(task.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *Store) ListOpenTasks(ctx context.Context, occurrenceID uuid.UUID) ([]*storage.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, series_id, occurrence_id, title, due_at, done, created_at
		FROM tasks WHERE occurrence_id = ? AND done = 0 ORDER BY created_at`,
		occurrenceID.String())
	if err != nil {
		return nil, fmt.Errorf("query open tasks: %w", err)
	}
	defer rows.Close()

	var out []*storage.Task
	for rows.Next() {
		var (
			task                     storage.Task
			rawID, rawSeries, rawOcc string
			rawDue                   sql.NullString
			rawCreated               string
		)
		if err := rows.Scan(&rawID, &rawSeries, &rawOcc, &task.Title, &rawDue, &task.Done, &rawCreated); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if task.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("parse task id: %w", err)
		}
		if task.SeriesID, err = uuid.Parse(rawSeries); err != nil {
			return nil, fmt.Errorf("parse task series id: %w", err)
		}
		if task.OccurrenceID, err = uuid.Parse(rawOcc); err != nil {
			return nil, fmt.Errorf("parse task occurrence id: %w", err)
		}
		if rawDue.Valid {
			if task.DueAt, err = decodeTime(rawDue.String); err != nil {
				return nil, fmt.Errorf("parse task due_at: %w", err)
			}
		}
		if task.CreatedAt, err = decodeTime(rawCreated); err != nil {
			return nil, fmt.Errorf("parse task created_at: %w", err)
		}
		out = append(out, &task)
	}
	return out, rows.Err()
}

func (s *Store) MoveTask(ctx context.Context, taskID, toOccurrenceID uuid.UUID, newDueAt *time.Time) error {
	var res sql.Result
	var err error
	if newDueAt != nil {
		res, err = s.db.ExecContext(ctx,
			"UPDATE tasks SET occurrence_id = ?, due_at = ? WHERE id = ?",
			toOccurrenceID.String(), encodeTime(*newDueAt), taskID.String())
	} else {
		res, err = s.db.ExecContext(ctx,
			"UPDATE tasks SET occurrence_id = ? WHERE id = ?",
			toOccurrenceID.String(), taskID.String())
	}
	if err != nil {
		return fmt.Errorf("move task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("task")
	}
	return nil
}

// Agenda item operations

func (s *Store) CreateAgendaItem(ctx context.Context, item *storage.AgendaItem) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO agenda_items (id, occurrence_id, body, done, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		item.ID.String(), item.OccurrenceID.String(), item.Body, item.Done,
		encodeTime(item.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert agenda item: %w", err)
	}
	return nil
}

func (s *Store) ListOpenAgendaItems(ctx context.Context, occurrenceID uuid.UUID) ([]*storage.AgendaItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, occurrence_id, body, done, created_at
		FROM agenda_items WHERE occurrence_id = ? AND done = 0 ORDER BY created_at`,
		occurrenceID.String())
	if err != nil {
		return nil, fmt.Errorf("query open agenda items: %w", err)
	}
	defer rows.Close()

	var out []*storage.AgendaItem
	for rows.Next() {
		var (
			item          storage.AgendaItem
			rawID, rawOcc string
			rawCreated    string
		)
		if err := rows.Scan(&rawID, &rawOcc, &item.Body, &item.Done, &rawCreated); err != nil {
			return nil, fmt.Errorf("scan agenda item: %w", err)
		}
		if item.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("parse agenda item id: %w", err)
		}
		if item.OccurrenceID, err = uuid.Parse(rawOcc); err != nil {
			return nil, fmt.Errorf("parse agenda item occurrence id: %w", err)
		}
		if item.CreatedAt, err = decodeTime(rawCreated); err != nil {
			return nil, fmt.Errorf("parse agenda item created_at: %w", err)
		}
		out = append(out, &item)
	}
	return out, rows.Err()
}

func (s *Store) MoveAgendaItem(ctx context.Context, itemID, toOccurrenceID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE agenda_items SET occurrence_id = ? WHERE id = ?",
		toOccurrenceID.String(), itemID.String())
	if err != nil {
		return fmt.Errorf("move agenda item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("agenda item")
	}
	return nil
}

// Reminder operations

func (s *Store) CreateReminder(ctx context.Context, rem *storage.Reminder) error {
	var sentAt any
	if rem.SentAt != nil {
		sentAt = encodeTime(*rem.SentAt)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (id, occurrence_id, channel, send_at, sent_at)
		VALUES (?, ?, ?, ?, ?)`,
		rem.ID.String(), rem.OccurrenceID.String(), string(rem.Channel),
		encodeTime(rem.SendAt), sentAt,
	)
	if err != nil {
		return fmt.Errorf("insert reminder: %w", err)
	}
	return nil
}

func (s *Store) DueReminders(ctx context.Context, asOf time.Time) ([]*storage.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, occurrence_id, channel, send_at, sent_at
		FROM reminders WHERE sent_at IS NULL AND send_at <= ? ORDER BY send_at`,
		encodeTime(asOf))
	if err != nil {
		return nil, fmt.Errorf("query due reminders: %w", err)
	}
	defer rows.Close()

	var out []*storage.Reminder
	for rows.Next() {
		var (
			rem           storage.Reminder
			rawID, rawOcc string
			channel       string
			rawSend       string
			rawSent       sql.NullString
		)
		if err := rows.Scan(&rawID, &rawOcc, &channel, &rawSend, &rawSent); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		if rem.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("parse reminder id: %w", err)
		}
		if rem.OccurrenceID, err = uuid.Parse(rawOcc); err != nil {
			return nil, fmt.Errorf("parse reminder occurrence id: %w", err)
		}
		rem.Channel = storage.ReminderChannel(channel)
		if rem.SendAt, err = decodeTime(rawSend); err != nil {
			return nil, fmt.Errorf("parse reminder send_at: %w", err)
		}
		if rawSent.Valid {
			sentAt, err := decodeTime(rawSent.String)
			if err != nil {
				return nil, fmt.Errorf("parse reminder sent_at: %w", err)
			}
			rem.SentAt = &sentAt
		}
		out = append(out, &rem)
	}
	return out, rows.Err()
}

func (s *Store) MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE reminders SET sent_at = ? WHERE id = ?",
		encodeTime(at), id.String())
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("reminder")
	}
	return nil
}
