// Package service orchestrates the engine's collaborator flows: series
// creation, manual occurrence addition, and occurrence completion.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"meetseries/occurrence"
	"meetseries/recurrence"
	"meetseries/reminder"
	"meetseries/rollover"
	"meetseries/storage"
)

// Service wires the pure scheduling components to an injected store.
type Service struct {
	store  storage.Storage
	engine *rollover.Engine
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Service. A nil engine gets the default rollover behavior
// and a nil logger discards logs.
func New(store storage.Storage, engine *rollover.Engine, logger *slog.Logger) *Service {
	if engine == nil {
		engine = &rollover.Engine{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		store:  store,
		engine: engine,
		logger: logger,
		now:    time.Now,
	}
}

// CreateSeriesInput holds the inputs for CreateSeries. Rule.DTStart is the
// generation anchor; Timezone is the opaque display label for it.
type CreateSeriesInput struct {
	OwnerID     uuid.UUID
	OwnerEmail  string
	Title       string
	Rule        recurrence.BuildInput
	Timezone    string
	LeadMinutes int
	Count       int
	// EmailReminders schedules a default email reminder per occurrence.
	EmailReminders bool
}

// CreateSeries builds the recurrence rule, materializes Count occurrences
// and persists the series, its occurrences, and (when enabled) one email
// reminder per occurrence. Occurrences are created once here and never
// regenerated; a later rule change does not touch them.
func (s *Service) CreateSeries(ctx context.Context, in CreateSeriesInput) (*storage.Series, []*storage.Occurrence, error) {
	rule, err := recurrence.Build(in.Rule)
	if err != nil {
		return nil, nil, fmt.Errorf("build recurrence rule: %w", err)
	}

	instants, err := occurrence.Generate(rule.Canonical(), in.Rule.DTStart, in.Count)
	if err != nil {
		return nil, nil, fmt.Errorf("generate occurrences: %w", err)
	}
	if len(instants) == 0 {
		return nil, nil, &storage.Error{
			Type:    storage.ErrInvalidInput,
			Message: "recurrence rule produced no occurrences",
		}
	}

	now := s.now().UTC()
	series := &storage.Series{
		ID:                  uuid.New(),
		OwnerID:             in.OwnerID,
		OwnerEmail:          in.OwnerEmail,
		Title:               in.Title,
		RecurrenceRule:      rule.Canonical(),
		RecurrenceDTStart:   in.Rule.DTStart,
		RecurrenceTimezone:  in.Timezone,
		ReminderLeadMinutes: in.LeadMinutes,
		CreatedAt:           now,
	}
	if err := s.store.CreateSeries(ctx, series); err != nil {
		return nil, nil, fmt.Errorf("persist series: %w", err)
	}

	occurrences := make([]*storage.Occurrence, 0, len(instants))
	for _, at := range instants {
		occ := &storage.Occurrence{
			ID:          uuid.New(),
			SeriesID:    series.ID,
			ScheduledAt: at.UTC(),
			CreatedAt:   now,
		}
		if err := s.store.CreateOccurrence(ctx, occ); err != nil {
			return nil, nil, fmt.Errorf("persist occurrence: %w", err)
		}
		occurrences = append(occurrences, occ)

		if in.EmailReminders {
			if err := s.scheduleReminder(ctx, occ, in.LeadMinutes); err != nil {
				return nil, nil, err
			}
		}
	}

	s.logger.Info("created series",
		"series_id", series.ID,
		"title", series.Title,
		"occurrences", len(occurrences))
	return series, occurrences, nil
}

// AddOccurrence persists a single caller-supplied instant, bypassing the
// generator, and schedules its reminder using the series' lead time.
func (s *Service) AddOccurrence(ctx context.Context, seriesID uuid.UUID, at time.Time, emailReminder bool) (*storage.Occurrence, error) {
	series, err := s.store.GetSeries(ctx, seriesID)
	if err != nil {
		return nil, fmt.Errorf("load series: %w", err)
	}

	occ := &storage.Occurrence{
		ID:          uuid.New(),
		SeriesID:    series.ID,
		ScheduledAt: at.UTC(),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.CreateOccurrence(ctx, occ); err != nil {
		return nil, fmt.Errorf("persist occurrence: %w", err)
	}

	if emailReminder {
		if err := s.scheduleReminder(ctx, occ, series.ReminderLeadMinutes); err != nil {
			return nil, err
		}
	}
	return occ, nil
}

// DescribeSeries renders the display label for a series.
func (s *Service) DescribeSeries(series *storage.Series) string {
	return recurrence.Describe(series.RecurrenceRule, recurrence.DescribeOptions{
		DTStart:  series.RecurrenceDTStart,
		Timezone: series.RecurrenceTimezone,
	})
}

func (s *Service) scheduleReminder(ctx context.Context, occ *storage.Occurrence, leadMinutes int) error {
	rem := &storage.Reminder{
		ID:           uuid.New(),
		OccurrenceID: occ.ID,
		Channel:      storage.ChannelEmail,
		SendAt:       reminder.ComputeSendAt(occ.ScheduledAt, leadMinutes),
	}
	if err := s.store.CreateReminder(ctx, rem); err != nil {
		return fmt.Errorf("persist reminder: %w", err)
	}
	return nil
}
