/*
Package report is the read-side of the sales ledger.

PURPOSE:
  Pure aggregation over committed sales: the dashboard overview totals, the
  monthly revenue/profit series behind the chart, and the AI trend summary.
  Nothing in this package ever writes to the store.
*/
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/profitpro/inventory-engine/ledger"
)

// =============================================================================
// OVERVIEW - Dashboard cards
// =============================================================================

// Overview holds the three dashboard card values.
type Overview struct {
	TotalRevenue decimal.Decimal
	TotalProfit  decimal.Decimal
	TotalSales   int
}

// Summarize computes overview totals across all sales.
func Summarize(sales []*ledger.Sale) Overview {
	o := Overview{
		TotalRevenue: decimal.Zero,
		TotalProfit:  decimal.Zero,
		TotalSales:   len(sales),
	}
	for _, s := range sales {
		o.TotalRevenue = o.TotalRevenue.Add(s.TotalRevenue)
		o.TotalProfit = o.TotalProfit.Add(s.Profit)
	}
	return o
}

// =============================================================================
// MONTHLY SERIES - Chart data
// =============================================================================

// MonthPoint is one bar pair in the sales & profit chart.
type MonthPoint struct {
	Month   time.Time // first day of the month, UTC
	Label   string    // e.g. "Mar 2026"
	Revenue decimal.Decimal
	Profit  decimal.Decimal
}

// MonthlySeries buckets sales by calendar month, oldest first.
func MonthlySeries(sales []*ledger.Sale) []MonthPoint {
	buckets := make(map[time.Time]*MonthPoint)
	for _, s := range sales {
		t := s.SoldAt.UTC()
		month := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		p, ok := buckets[month]
		if !ok {
			p = &MonthPoint{
				Month:   month,
				Label:   month.Format("Jan 2006"),
				Revenue: decimal.Zero,
				Profit:  decimal.Zero,
			}
			buckets[month] = p
		}
		p.Revenue = p.Revenue.Add(s.TotalRevenue)
		p.Profit = p.Profit.Add(s.Profit)
	}

	series := make([]MonthPoint, 0, len(buckets))
	for _, p := range buckets {
		series = append(series, *p)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Month.Before(series[j].Month) })
	return series
}
