// Package dividend projects the monthly dividend calendar from holdings
package dividend

import (
	"context"
	"fmt"
	"math"

	"github.com/bobmcallan/haito/internal/common"
	"github.com/bobmcallan/haito/internal/interfaces"
	"github.com/bobmcallan/haito/internal/models"
)

// Service implements interfaces.DividendService.
type Service struct {
	schedule interfaces.ScheduleStore
	holdings interfaces.HoldingStore
	logger   *common.Logger
}

// NewService creates a dividend schedule service
func NewService(schedule interfaces.ScheduleStore, holdings interfaces.HoldingStore, logger *common.Logger) *Service {
	return &Service{
		schedule: schedule,
		holdings: holdings,
		logger:   logger,
	}
}

// GetSchedule projects the stored template against current holdings.
func (s *Service) GetSchedule(ctx context.Context) (*models.DividendSchedule, error) {
	tmpl, err := s.schedule.LoadScheduleTemplate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dividend schedule: %w", err)
	}
	holdings, err := s.holdings.LoadHoldings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}
	return Project(tmpl, holdings), nil
}

// MonthLabel returns the display label of a month, e.g. "3月".
func MonthLabel(month int) string {
	return fmt.Sprintf("%d月", month)
}

// Project spreads each held ticker's annual dividend evenly across the
// months it appears in the template. Amounts are floored to whole units;
// template entries for tickers that are not held are dropped.
func Project(tmpl *models.ScheduleTemplate, holdings []models.Holding) *models.DividendSchedule {
	out := &models.DividendSchedule{Schedule: []models.MonthSchedule{}}
	if tmpl == nil {
		return out
	}

	held := make(map[string]models.Holding, len(holdings))
	for _, h := range holdings {
		held[h.Ticker] = h
	}

	occurrences := make(map[string]int)
	for _, m := range tmpl.Months {
		seen := make(map[string]bool)
		for _, e := range m.Entries {
			if !seen[e.Ticker] {
				seen[e.Ticker] = true
				occurrences[e.Ticker]++
			}
		}
	}

	for _, m := range tmpl.Months {
		month := models.MonthSchedule{
			Month:   m.Month,
			Label:   m.Label,
			Entries: []models.DividendPayment{},
		}
		if month.Label == "" {
			month.Label = MonthLabel(m.Month)
		}

		emitted := make(map[string]bool)
		for _, e := range m.Entries {
			h, ok := held[e.Ticker]
			if !ok || emitted[e.Ticker] {
				continue
			}
			emitted[e.Ticker] = true
			amount := int64(math.Floor(h.AnnualDividend() / float64(occurrences[e.Ticker])))
			month.Entries = append(month.Entries, models.DividendPayment{
				Ticker:      e.Ticker,
				Name:        h.Name,
				Amount:      amount,
				ExDate:      e.ExDate,
				PaymentDate: e.PaymentDate,
				Note:        e.Note,
			})
			out.AnnualTotal += amount
		}

		out.Schedule = append(out.Schedule, month)
	}

	return out
}
