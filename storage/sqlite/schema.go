package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS meeting_series (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	owner_email TEXT NOT NULL,
	title TEXT NOT NULL,
	recurrence_rrule TEXT NOT NULL,
	recurrence_dtstart TEXT NOT NULL,
	recurrence_timezone TEXT NOT NULL DEFAULT 'UTC',
	reminder_lead_minutes INTEGER NOT NULL DEFAULT 60,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS occurrences (
	id TEXT PRIMARY KEY,
	series_id TEXT NOT NULL REFERENCES meeting_series(id),
	scheduled_at TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	completed INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_occurrences_series_scheduled
	ON occurrences(series_id, scheduled_at);

CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	series_id TEXT NOT NULL REFERENCES meeting_series(id),
	occurrence_id TEXT NOT NULL REFERENCES occurrences(id),
	title TEXT NOT NULL,
	due_at TEXT,
	done INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_occurrence ON tasks(occurrence_id, done);

CREATE TABLE IF NOT EXISTS agenda_items (
	id TEXT PRIMARY KEY,
	occurrence_id TEXT NOT NULL REFERENCES occurrences(id),
	body TEXT NOT NULL,
	done INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_agenda_items_occurrence ON agenda_items(occurrence_id, done);

CREATE TABLE IF NOT EXISTS reminders (
	id TEXT PRIMARY KEY,
	occurrence_id TEXT NOT NULL REFERENCES occurrences(id),
	channel TEXT NOT NULL,
	send_at TEXT NOT NULL,
	sent_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_reminders_send_at ON reminders(send_at) WHERE sent_at IS NULL;
`
