package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// validPeriods are the month windows the dashboard accepts.
var validPeriods = map[int]bool{3: true, 6: true, 12: true, 24: true, 36: true, 48: true, 60: true}

// Periods lists the selectable dashboard windows in display order.
var Periods = []int{3, 6, 12, 24, 36, 48, 60}

const defaultPeriod = 12

// NormalizePeriod returns n when it is a valid window, 12 otherwise.
// Invalid values fall back silently rather than erroring.
func NormalizePeriod(n int) int {
	if validPeriods[n] {
		return n
	}
	return defaultPeriod
}

// MonthRef identifies a calendar month.
type MonthRef struct {
	Month int // 1-12
	Year  int
}

// Label renders the month as e.g. "Mar 2025".
func (m MonthRef) Label() string {
	return fmt.Sprintf("%s %d", time.Month(m.Month).String()[:3], m.Year)
}

// MonthWindow returns the monthsBack calendar months ending at now's month,
// oldest first. Months are shifted by calendar arithmetic with an explicit
// year-rollover loop, never by fixed day deltas: 30-day subtraction drifts
// across month lengths and can emit the same month twice near boundaries.
func MonthWindow(now time.Time, monthsBack int) []MonthRef {
	refs := make([]MonthRef, 0, monthsBack)
	for i := monthsBack - 1; i >= 0; i-- {
		month := int(now.Month()) - i
		year := now.Year()
		for month <= 0 {
			month += 12
			year--
		}
		refs = append(refs, MonthRef{Month: month, Year: year})
	}
	return refs
}

// ClassifiedBalance pairs an account with one balance to aggregate.
type ClassifiedBalance struct {
	Account Account
	Balance decimal.Decimal
}

// Aggregate sums balances per category. Net worth is the plain sum of all
// category totals; debt balances are taken as stored, so negatively
// recorded debts contribute negatively.
func Aggregate(items []ClassifiedBalance) (totals map[Category]decimal.Decimal, netWorth decimal.Decimal) {
	totals = make(map[Category]decimal.Decimal, len(Categories))
	for _, c := range Categories {
		totals[c] = decimal.Zero
	}
	for _, it := range items {
		c := Classify(it.Account)
		totals[c] = totals[c].Add(it.Balance)
		netWorth = netWorth.Add(it.Balance)
	}
	return totals, netWorth
}

// MonthlyPoint is one month of aggregated chart data. Totals are
// float-precision because they feed presentation, not ledger truth.
type MonthlyPoint struct {
	Month    int                  `json:"month_num"`
	Year     int                  `json:"year"`
	Label    string               `json:"month"`
	Totals   map[Category]float64 `json:"totals"`
	NetWorth float64              `json:"net_worth"`
}

// EntryFetcher returns the classified balances recorded for one exact
// calendar month. Months with no entries return an empty slice.
type EntryFetcher func(month, year int) ([]ClassifiedBalance, error)

// BuildSeries produces one MonthlyPoint per month in the window ending at
// now, oldest first. Every month appears exactly once, including months
// with no entries.
func BuildSeries(now time.Time, monthsBack int, fetch EntryFetcher) ([]MonthlyPoint, error) {
	refs := MonthWindow(now, monthsBack)
	points := make([]MonthlyPoint, 0, len(refs))
	for _, ref := range refs {
		items, err := fetch(ref.Month, ref.Year)
		if err != nil {
			return nil, fmt.Errorf("fetch entries for %d/%d: %w", ref.Month, ref.Year, err)
		}
		totals, netWorth := Aggregate(items)
		p := MonthlyPoint{
			Month:  ref.Month,
			Year:   ref.Year,
			Label:  ref.Label(),
			Totals: make(map[Category]float64, len(totals)),
		}
		for c, v := range totals {
			p.Totals[c] = v.InexactFloat64()
		}
		p.NetWorth = netWorth.InexactFloat64()
		points = append(points, p)
	}
	return points, nil
}

// CategoryTotal is one slice of the current-allocation pie.
type CategoryTotal struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Total    float64  `json:"total"`
}

// BuildAllocation aggregates the latest balances into the "right now" view.
// Categories summing to zero are omitted.
func BuildAllocation(items []ClassifiedBalance) []CategoryTotal {
	totals, _ := Aggregate(items)
	out := make([]CategoryTotal, 0, len(Categories))
	for _, c := range Categories {
		if totals[c].IsZero() {
			continue
		}
		out = append(out, CategoryTotal{Category: c, Label: c.Label(), Total: totals[c].InexactFloat64()})
	}
	return out
}
