// Package report assembles the dashboard aggregates and handles the
// export/import of account data.
package report

import (
	"context"
	"fmt"
	"time"

	"networth/internal/core"
	"networth/internal/log"
	"networth/internal/storage"
)

type Service struct {
	repo   *storage.Repository
	logger *log.Logger

	// now is swapped out in tests to pin the series window.
	now func() time.Time
}

func NewService(repo *storage.Repository, logger *log.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentReport),
		now:    time.Now,
	}
}

// Series builds one aggregated point per calendar month over the trailing
// window. months is normalized to a valid period first, so an out-of-range
// request silently becomes the 12-month default.
func (s *Service) Series(ctx context.Context, userID int64, months int) ([]core.MonthlyPoint, error) {
	months = core.NormalizePeriod(months)
	points, err := core.BuildSeries(s.now(), months, func(month, year int) ([]core.ClassifiedBalance, error) {
		entries, err := s.repo.EntriesForMonth(ctx, userID, month, year)
		if err != nil {
			return nil, err
		}
		items := make([]core.ClassifiedBalance, 0, len(entries))
		for _, e := range entries {
			items = append(items, core.ClassifiedBalance{Account: e.Account, Balance: e.Entry.Balance})
		}
		return items, nil
	})
	if err != nil {
		return nil, fmt.Errorf("build series: %w", err)
	}
	return points, nil
}

// Allocation aggregates each active account's latest balance into the
// current per-category split.
func (s *Service) Allocation(ctx context.Context, userID int64) ([]core.CategoryTotal, error) {
	accounts, err := s.repo.ListAccounts(ctx, userID, "name", "asc")
	if err != nil {
		return nil, err
	}
	items := make([]core.ClassifiedBalance, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, core.ClassifiedBalance{Account: a.Account, Balance: a.Balance})
	}
	return core.BuildAllocation(items), nil
}
