package report_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/profitpro/inventory-engine/ledger"
	"github.com/profitpro/inventory-engine/report"
)

// =============================================================================
// TEST DATA
// =============================================================================

func sale(id string, soldAt time.Time, revenue, cost int64) *ledger.Sale {
	return &ledger.Sale{
		ID:           id,
		ProductID:    "prod-1",
		ProductName:  "Wireless Mouse",
		Quantity:     1,
		TotalRevenue: decimal.NewFromInt(revenue),
		TotalCost:    decimal.NewFromInt(cost),
		Profit:       decimal.NewFromInt(revenue - cost),
		AgentID:      "user-agent",
		SoldAt:       soldAt,
	}
}

// =============================================================================
// OVERVIEW
// =============================================================================

func TestSummarize_Totals(t *testing.T) {
	now := time.Now().UTC()
	sales := []*ledger.Sale{
		sale("s1", now, 30, 15),
		sale("s2", now, 100, 60),
		sale("s3", now, 75, 45),
	}

	o := report.Summarize(sales)
	assert.Equal(t, 3, o.TotalSales)
	assert.True(t, o.TotalRevenue.Equal(decimal.NewFromInt(205)))
	assert.True(t, o.TotalProfit.Equal(decimal.NewFromInt(85)))
}

func TestSummarize_Empty(t *testing.T) {
	o := report.Summarize(nil)
	assert.Equal(t, 0, o.TotalSales)
	assert.True(t, o.TotalRevenue.IsZero())
	assert.True(t, o.TotalProfit.IsZero())
}

// =============================================================================
// MONTHLY SERIES
// =============================================================================

func TestMonthlySeries_BucketsAndOrder(t *testing.T) {
	jan := time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)
	feb := time.Date(2026, time.February, 3, 10, 0, 0, 0, time.UTC)
	sales := []*ledger.Sale{
		sale("s1", feb, 100, 60),
		sale("s2", jan, 30, 15),
		sale("s3", jan, 75, 45),
	}

	series := report.MonthlySeries(sales)
	require.Len(t, series, 2)

	assert.Equal(t, "Jan 2026", series[0].Label)
	assert.True(t, series[0].Revenue.Equal(decimal.NewFromInt(105)))
	assert.True(t, series[0].Profit.Equal(decimal.NewFromInt(45)))

	assert.Equal(t, "Feb 2026", series[1].Label)
	assert.True(t, series[1].Revenue.Equal(decimal.NewFromInt(100)))
}

// =============================================================================
// TREND ANALYSIS
// =============================================================================

type failingAnalyzer struct{}

func (failingAnalyzer) Analyze(context.Context, []*ledger.Sale) (string, error) {
	return "", errors.New("model unavailable")
}

func TestTrendSummary_NoSales(t *testing.T) {
	got := report.TrendSummary(context.Background(), report.Static{}, zap.NewNop(), nil)
	assert.Equal(t, report.NoSalesMessage, got)
}

func TestTrendSummary_AnalyzerFailureFallsBack(t *testing.T) {
	sales := []*ledger.Sale{sale("s1", time.Now().UTC(), 30, 15)}
	got := report.TrendSummary(context.Background(), failingAnalyzer{}, zap.NewNop(), sales)
	assert.Contains(t, got, "An error occurred while analyzing profit trends")
}

func TestStatic_NamesTopPerformer(t *testing.T) {
	now := time.Now().UTC()
	mouse := sale("s1", now, 30, 15)
	monitor := sale("s2", now, 400, 250)
	monitor.ProductName = "4K Monitor"

	got, err := report.Static{}.Analyze(context.Background(), []*ledger.Sale{mouse, monitor})
	require.NoError(t, err)
	assert.Contains(t, got, "4K Monitor")
	assert.Contains(t, got, "2 sales")
}

func TestHTTPAnalyzer_PostsSalesAndReadsAnalysis(t *testing.T) {
	// GIVEN: a summarization endpoint that echoes a canned analysis
	// THEN:  the analyzer sends the serialized sales array and returns it

	var received struct {
		SalesData string `json:"salesData"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"analysis": "Profit is trending up."})
	}))
	t.Cleanup(srv.Close)

	analyzer := report.NewHTTPAnalyzer(srv.URL)
	t.Cleanup(func() { analyzer.Close() })

	sales := []*ledger.Sale{sale("s1", time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), 30, 15)}
	got, err := analyzer.Analyze(context.Background(), sales)
	require.NoError(t, err)
	assert.Equal(t, "Profit is trending up.", got)
	assert.Contains(t, received.SalesData, `"productName": "Wireless Mouse"`)
}

func TestHTTPAnalyzer_ServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	analyzer := report.NewHTTPAnalyzer(srv.URL)
	t.Cleanup(func() { analyzer.Close() })

	_, err := analyzer.Analyze(context.Background(), []*ledger.Sale{sale("s1", time.Now(), 30, 15)})
	assert.Error(t, err)
}
