// Package data loads price series from disk into the ticker-to-bars map
// the engine consumes. Fetching and caching remote data is a separate
// collaborator; this package only reads already-resolved files.
package data

import (
	"fmt"
	"os"
	"sort"

	"github.com/gocarina/gocsv"

	apperrors "market-replay/internal/errors"
	"market-replay/internal/models"
)

// LoadSeries reads one ticker's daily bars from a CSV file with a
// date,open,high,low,close,volume header. Bars are returned in
// chronological order regardless of file order.
func LoadSeries(ticker, path string) (models.PriceSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewSeriesError(ticker, path, err)
	}
	defer f.Close()

	var rows []models.PricePoint
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, apperrors.NewSeriesError(ticker, path, err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewSeriesError(ticker, path, apperrors.ErrSeriesEmpty)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return rows, nil
}

// ClipToScenario restricts every series to the scenario's date window.
// A ticker with no bars inside the window is an error: the run could
// never trade it.
func ClipToScenario(priceData models.PriceDataMap, scn models.Scenario) (models.PriceDataMap, error) {
	out := make(models.PriceDataMap, len(priceData))
	for ticker, series := range priceData {
		clipped := make(models.PriceSeries, 0, len(series))
		for _, bar := range series {
			if bar.Date >= scn.StartDate && bar.Date <= scn.EndDate {
				clipped = append(clipped, bar)
			}
		}
		if len(clipped) == 0 {
			return nil, apperrors.NewSeriesError(ticker, "",
				fmt.Errorf("%w: no bars in %s..%s", apperrors.ErrSeriesEmpty, scn.StartDate, scn.EndDate))
		}
		out[ticker] = clipped
	}
	return out, nil
}
