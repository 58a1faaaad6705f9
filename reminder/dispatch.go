package reminder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"meetseries/ratelimit"
	"meetseries/storage"
)

// recipientRate bounds deliveries per recipient so a misconfigured series
// (say, a sub-minute sweep against a large backlog) cannot flood a mailbox.
// A throttled reminder stays unsent and is retried on a later sweep.
var recipientRate = ratelimit.Rule{
	Bucket:      "reminder-email",
	MaxAttempts: 30,
	Window:      time.Hour,
}

// Dispatcher scans the store for due reminders and delivers them. It is
// meant to run periodically (see cmd/remindd); a failed delivery leaves
// the reminder unsent so the next sweep retries it.
type Dispatcher struct {
	store   storage.Storage
	sender  Sender
	logger  *slog.Logger
	limiter *ratelimit.Limiter
	now     func() time.Time
}

// errThrottled signals that the recipient is over the delivery rate; the
// reminder remains unsent.
var errThrottled = errors.New("recipient over delivery rate")

// NewDispatcher creates a dispatcher. A nil sender discards deliveries and
// a nil logger discards logs.
func NewDispatcher(store storage.Storage, sender Sender, logger *slog.Logger) *Dispatcher {
	if sender == nil {
		sender = NoopSender{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{
		store:   store,
		sender:  sender,
		logger:  logger,
		limiter: ratelimit.New(),
		now:     time.Now,
	}
}

// RunOnce delivers every reminder due as of now and marks it sent.
// Returns the number of reminders delivered.
func (d *Dispatcher) RunOnce(ctx context.Context) (int, error) {
	now := d.now().UTC()

	due, err := d.store.DueReminders(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list due reminders: %w", err)
	}

	sent := 0
	for _, rem := range due {
		if err := d.deliver(ctx, rem, now); err != nil {
			if errors.Is(err, errThrottled) {
				d.logger.Warn("reminder throttled",
					"reminder_id", rem.ID,
					"occurrence_id", rem.OccurrenceID)
				continue
			}
			d.logger.Error("reminder delivery failed",
				"reminder_id", rem.ID,
				"occurrence_id", rem.OccurrenceID,
				"error", err)
			continue
		}
		sent++
	}
	return sent, nil
}

func (d *Dispatcher) deliver(ctx context.Context, rem *storage.Reminder, now time.Time) error {
	occ, err := d.store.GetOccurrence(ctx, rem.OccurrenceID)
	if err != nil {
		return fmt.Errorf("load occurrence: %w", err)
	}
	series, err := d.store.GetSeries(ctx, occ.SeriesID)
	if err != nil {
		return fmt.Errorf("load series: %w", err)
	}

	if rem.Channel != storage.ChannelEmail {
		// Only email delivery is wired; other channels are marked sent so
		// they do not refire on every sweep.
		d.logger.Warn("skipping reminder on unsupported channel",
			"reminder_id", rem.ID, "channel", rem.Channel)
		return d.store.MarkReminderSent(ctx, rem.ID, now)
	}

	email := Email{
		Recipient:    series.OwnerEmail,
		MeetingTitle: series.Title,
		ScheduledAt:  occ.ScheduledAt,
	}
	if !d.limiter.Allow(recipientRate, email.Recipient) {
		return errThrottled
	}
	if err := d.sender.Send(ctx, email); err != nil {
		return err
	}

	if err := d.store.MarkReminderSent(ctx, rem.ID, now); err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}

	d.logger.Info("reminder sent",
		"reminder_id", rem.ID,
		"occurrence_id", occ.ID,
		"recipient", email.Recipient)
	return nil
}
