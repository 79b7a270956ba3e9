package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"BreakoutLab/internal/model"
)

// AlpacaFetcher implements Fetcher using the Alpaca market data API.
type AlpacaFetcher struct {
	Client   *marketdata.Client
	Adjusted bool
	Location *time.Location
}

// NewAlpacaFetcher creates a fetcher authenticated with the given key pair.
func NewAlpacaFetcher(apiKey, apiSecret, baseURL string, adjusted bool) *AlpacaFetcher {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return &AlpacaFetcher{
		Client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
		Adjusted: adjusted,
		Location: loc,
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

func (f *AlpacaFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.Bar, error) {
	adjustment := marketdata.Raw
	if f.Adjusted {
		adjustment = marketdata.All
	}

	type result struct {
		bars []marketdata.Bar
		err  error
	}
	// The SDK call is not context aware; run it aside so ctx still bounds the wait.
	done := make(chan result, 1)
	go func() {
		bars, err := f.Client.GetBars(symbol, marketdata.GetBarsRequest{
			TimeFrame:  marketdata.OneDay,
			Adjustment: adjustment,
			Start:      start,
			End:        end.Add(-time.Second), // Alpaca treats End as inclusive
		})
		done <- result{bars: bars, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("alpaca fetch: %w", ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return nil, fmt.Errorf("alpaca fetch: %w", res.err)
	}

	bars := make([]model.Bar, 0, len(res.bars))
	for _, b := range res.bars {
		bars = append(bars, model.Bar{
			Date:   model.TruncateDay(b.Timestamp.In(f.Location)),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		})
	}
	return bars, nil
}
