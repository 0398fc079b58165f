/*
trend.go - AI trend summary over the sales ledger

PURPOSE:
  The dashboard shows a prose summary of profit trends generated by an
  external analysis service. That service is a collaborator, not part of
  this repo: it consumes the serialized sales array and returns text.
  This file defines the port (Analyzer), the HTTP client for a real
  service, and a deterministic local analyzer for dev and tests.

FALLBACK BEHAVIOR:
  - no sales       -> "No sales data available to analyze."
  - analyzer error -> canned apology, error logged; the dashboard never
    breaks because the summarizer is down
*/
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"resty.dev/v3"

	"github.com/profitpro/inventory-engine/ledger"
)

// NoSalesMessage is returned when there is nothing to analyze.
const NoSalesMessage = "No sales data available to analyze."

// analysisFailedMessage is shown when the external analyzer errors.
const analysisFailedMessage = "An error occurred while analyzing profit trends. Please check the server logs and try again."

// Analyzer produces a prose trend summary from the sales ledger.
type Analyzer interface {
	Analyze(ctx context.Context, sales []*ledger.Sale) (string, error)
}

// TrendSummary runs the analyzer with the documented fallbacks applied.
// The returned string is always displayable.
func TrendSummary(ctx context.Context, a Analyzer, log *zap.Logger, sales []*ledger.Sale) string {
	if len(sales) == 0 {
		return NoSalesMessage
	}
	summary, err := a.Analyze(ctx, sales)
	if err != nil {
		log.Error("profit trend analysis failed", zap.Error(err))
		return analysisFailedMessage
	}
	return summary
}

// =============================================================================
// HTTP ANALYZER - External summarization service
// =============================================================================

// saleRecord is the wire shape of one sale sent to the analyzer, matching
// how the sales array is exposed to the frontend.
type saleRecord struct {
	ID           string  `json:"id"`
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	Quantity     int     `json:"quantity"`
	TotalRevenue float64 `json:"totalRevenue"`
	TotalCost    float64 `json:"totalCost"`
	Profit       float64 `json:"profit"`
	Date         string  `json:"date"`
}

// HTTPAnalyzer posts the serialized sales array to a summarization endpoint
// and returns the prose it responds with.
type HTTPAnalyzer struct {
	client *resty.Client
	url    string
}

// NewHTTPAnalyzer creates an analyzer client for the given endpoint.
func NewHTTPAnalyzer(url string) *HTTPAnalyzer {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json")
	return &HTTPAnalyzer{client: client, url: url}
}

// Close releases the underlying HTTP client.
func (a *HTTPAnalyzer) Close() error {
	return a.client.Close()
}

func (a *HTTPAnalyzer) Analyze(ctx context.Context, sales []*ledger.Sale) (string, error) {
	records := make([]saleRecord, len(sales))
	for i, s := range sales {
		records[i] = saleRecord{
			ID:           s.ID,
			ProductID:    s.ProductID,
			ProductName:  s.ProductName,
			Quantity:     s.Quantity,
			TotalRevenue: s.TotalRevenue.InexactFloat64(),
			TotalCost:    s.TotalCost.InexactFloat64(),
			Profit:       s.Profit.InexactFloat64(),
			Date:         s.SoldAt.UTC().Format(time.RFC3339),
		}
	}
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize sales data: %w", err)
	}

	var out struct {
		Analysis string `json:"analysis"`
	}
	res, err := a.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"salesData": string(payload)}).
		SetResult(&out).
		Post(a.url)
	if err != nil {
		return "", fmt.Errorf("trend analysis request failed: %w", err)
	}
	if !res.IsSuccess() {
		return "", fmt.Errorf("trend analysis service returned %s", res.Status())
	}
	return out.Analysis, nil
}

// =============================================================================
// STATIC ANALYZER - Deterministic local summary (dev/tests)
// =============================================================================

// Static produces a plain computed summary without calling out. It keeps the
// dashboard useful when no analyzer endpoint is configured.
type Static struct{}

func (Static) Analyze(_ context.Context, sales []*ledger.Sale) (string, error) {
	o := Summarize(sales)

	// Top earner by accumulated profit.
	profits := make(map[string]decimal.Decimal)
	for _, s := range sales {
		profits[s.ProductName] = profits[s.ProductName].Add(s.Profit)
	}
	topName := ""
	topProfit := decimal.Zero
	for name, p := range profits {
		if topName == "" || p.GreaterThan(topProfit) {
			topName, topProfit = name, p
		}
	}

	return fmt.Sprintf(
		"Across %d sales, total revenue was %s with a total profit of %s. %q is the strongest performer, contributing %s in profit.",
		o.TotalSales, o.TotalRevenue.StringFixed(2), o.TotalProfit.StringFixed(2),
		topName, topProfit.StringFixed(2),
	), nil
}
