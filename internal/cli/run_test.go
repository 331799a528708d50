package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"market-replay/internal/config"
	"market-replay/internal/models"
	"market-replay/internal/store"
)

const sampleCSV = `date,open,high,low,close,volume
2020-01-02,100,102,99,101,1000000
2020-01-03,101,104,100,103,1200000
`

func testApp(t *testing.T, dataDir string) *App {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	return &App{
		Config: &config.Config{
			Run: config.RunConfig{
				StartingCapital: 10000,
				Allocations:     []models.Allocation{{Ticker: "AAPL", Pct: 100}},
			},
			Data: config.DataConfig{Dir: dataDir},
		},
		Logger: zerolog.Nop(),
		Store:  st,
	}
}

func TestLoadPriceDataCachesCSVReads(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "aapl.csv"), []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	app := testApp(t, dir)
	scn := models.Scenario{StartDate: "2020-01-01", EndDate: "2020-12-31"}

	priceData, err := loadPriceData(app, scn)
	if err != nil {
		t.Fatal(err)
	}
	if len(priceData["AAPL"]) != 2 {
		t.Fatalf("got %d bars, want 2", len(priceData["AAPL"]))
	}

	// The CSV read must refresh the store cache.
	cached, err := app.Store.GetSeries(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("series not cached: %v", err)
	}
	if len(cached) != 2 || cached[0].Date != "2020-01-02" || cached[0].Close != 101 {
		t.Errorf("cached bars wrong: %+v", cached)
	}
}

func TestLoadPriceDataFallsBackToCache(t *testing.T) {
	// Empty data dir: the only source is the cache.
	app := testApp(t, t.TempDir())
	scn := models.Scenario{StartDate: "2020-01-01", EndDate: "2020-12-31"}

	series := models.PriceSeries{
		{Date: "2020-01-02", Open: 100, High: 102, Low: 99, Close: 101, Volume: 1000},
		{Date: "2020-01-03", Open: 101, High: 104, Low: 100, Close: 103, Volume: 1200},
	}
	if err := app.Store.SaveSeries(context.Background(), "AAPL", series); err != nil {
		t.Fatal(err)
	}

	priceData, err := loadPriceData(app, scn)
	if err != nil {
		t.Fatal(err)
	}
	if len(priceData["AAPL"]) != 2 || priceData["AAPL"][1].Close != 103 {
		t.Errorf("cache fallback failed: %+v", priceData["AAPL"])
	}
}

func TestLoadPriceDataMissingEverywhere(t *testing.T) {
	app := testApp(t, t.TempDir())
	scn := models.Scenario{StartDate: "2020-01-01", EndDate: "2020-12-31"}

	if _, err := loadPriceData(app, scn); err == nil {
		t.Error("no CSV and no cached bars should be an error")
	}
}
