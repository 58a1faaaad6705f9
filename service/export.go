package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"meetseries/export"
)

// ExportSeriesICS renders a series and its materialized occurrences as an
// iCalendar document, for calendar-subscription links.
func (s *Service) ExportSeriesICS(ctx context.Context, seriesID uuid.UUID) (string, error) {
	series, err := s.store.GetSeries(ctx, seriesID)
	if err != nil {
		return "", fmt.Errorf("load series: %w", err)
	}
	occurrences, err := s.store.ListOccurrences(ctx, seriesID)
	if err != nil {
		return "", fmt.Errorf("list occurrences: %w", err)
	}

	cal, err := export.Calendar(series, occurrences)
	if err != nil {
		return "", err
	}
	return export.Encode(cal)
}
