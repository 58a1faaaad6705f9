package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetseries/storage"
	"meetseries/storage/memory"
)

type recordingSender struct {
	sent []Email
	err  error
}

func (r *recordingSender) Send(_ context.Context, email Email) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, email)
	return nil
}

func seedOccurrence(t *testing.T, store *memory.Store, scheduledAt time.Time) *storage.Occurrence {
	t.Helper()
	ctx := context.Background()

	series := &storage.Series{
		ID:             uuid.New(),
		OwnerID:        uuid.New(),
		OwnerEmail:     "owner@example.com",
		Title:          "Weekly 1:1",
		RecurrenceRule: "FREQ=WEEKLY;INTERVAL=1;BYDAY=MO",
		CreatedAt:      scheduledAt.Add(-24 * time.Hour),
	}
	require.NoError(t, store.CreateSeries(ctx, series))

	occ := &storage.Occurrence{
		ID:          uuid.New(),
		SeriesID:    series.ID,
		ScheduledAt: scheduledAt,
		CreatedAt:   series.CreatedAt,
	}
	require.NoError(t, store.CreateOccurrence(ctx, occ))
	return occ
}

func TestDispatcher_RunOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC)

	store := memory.New()
	occ := seedOccurrence(t, store, now.Add(time.Hour))

	due := &storage.Reminder{
		ID:           uuid.New(),
		OccurrenceID: occ.ID,
		Channel:      storage.ChannelEmail,
		SendAt:       now.Add(-time.Minute),
	}
	future := &storage.Reminder{
		ID:           uuid.New(),
		OccurrenceID: occ.ID,
		Channel:      storage.ChannelEmail,
		SendAt:       now.Add(time.Hour),
	}
	require.NoError(t, store.CreateReminder(ctx, due))
	require.NoError(t, store.CreateReminder(ctx, future))

	sender := &recordingSender{}
	d := NewDispatcher(store, sender, nil)
	d.now = func() time.Time { return now }

	sent, err := d.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "owner@example.com", sender.sent[0].Recipient)
	assert.Equal(t, "Weekly 1:1", sender.sent[0].MeetingTitle)
	assert.True(t, occ.ScheduledAt.Equal(sender.sent[0].ScheduledAt))

	// The due reminder is marked sent; the future one stays pending.
	remaining, err := store.DueReminders(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, future.ID, remaining[0].ID)
}

func TestDispatcher_FailedDeliveryStaysUnsent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC)

	store := memory.New()
	occ := seedOccurrence(t, store, now.Add(time.Hour))
	require.NoError(t, store.CreateReminder(ctx, &storage.Reminder{
		ID:           uuid.New(),
		OccurrenceID: occ.ID,
		Channel:      storage.ChannelEmail,
		SendAt:       now.Add(-time.Minute),
	}))

	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(store, sender, nil)
	d.now = func() time.Time { return now }

	sent, err := d.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)

	// Still due on the next sweep.
	pending, err := store.DueReminders(ctx, now)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestDispatcher_UnsupportedChannelMarkedSent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC)

	store := memory.New()
	occ := seedOccurrence(t, store, now.Add(time.Hour))
	require.NoError(t, store.CreateReminder(ctx, &storage.Reminder{
		ID:           uuid.New(),
		OccurrenceID: occ.ID,
		Channel:      storage.ChannelSlack,
		SendAt:       now.Add(-time.Minute),
	}))

	sender := &recordingSender{}
	d := NewDispatcher(store, sender, nil)
	d.now = func() time.Time { return now }

	sent, err := d.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Empty(t, sender.sent)

	pending, err := store.DueReminders(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDispatcher_ThrottlesRecipient(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC)

	store := memory.New()
	occ := seedOccurrence(t, store, now.Add(time.Hour))

	// One more due reminder than the hourly per-recipient budget.
	for i := 0; i <= recipientRate.MaxAttempts; i++ {
		rem := &storage.Reminder{
			ID:           uuid.New(),
			OccurrenceID: occ.ID,
			Channel:      storage.ChannelEmail,
			SendAt:       now.Add(-time.Minute),
		}
		require.NoError(t, store.CreateReminder(ctx, rem))
	}

	sender := &recordingSender{}
	d := NewDispatcher(store, sender, nil)
	d.now = func() time.Time { return now }

	sent, err := d.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, recipientRate.MaxAttempts, sent)
	assert.Len(t, sender.sent, recipientRate.MaxAttempts)

	// The throttled reminder stays queued for a later sweep.
	remaining, err := store.DueReminders(ctx, now)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}
