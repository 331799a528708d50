package data

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "market-replay/internal/errors"
	"market-replay/internal/models"
)

const sampleCSV = `date,open,high,low,close,volume
2020-01-03,101,104,100,103,1200000
2020-01-02,100,102,99,101,1000000
2020-01-06,103,105,102,104,900000
`

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSeriesSortsByDate(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "aapl.csv", sampleCSV)

	series, err := LoadSeries("AAPL", path)
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != 3 {
		t.Fatalf("got %d bars, want 3", len(series))
	}
	want := []string{"2020-01-02", "2020-01-03", "2020-01-06"}
	for i, bar := range series {
		if bar.Date != want[i] {
			t.Errorf("bar %d date = %s, want %s", i, bar.Date, want[i])
		}
	}
	if series[0].Open != 100 || series[0].Close != 101 || series[0].Volume != 1000000 {
		t.Errorf("first bar fields wrong: %+v", series[0])
	}
}

func TestLoadSeriesMissingFile(t *testing.T) {
	_, err := LoadSeries("AAPL", filepath.Join(t.TempDir(), "absent.csv"))
	if err == nil {
		t.Fatal("expected an error")
	}
	var serr *apperrors.SeriesError
	if !errors.As(err, &serr) || serr.Ticker != "AAPL" {
		t.Errorf("error should carry the ticker: %v", err)
	}
}

func TestLoadSeriesEmptyFile(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "aapl.csv", "date,open,high,low,close,volume\n")
	_, err := LoadSeries("AAPL", path)
	if !errors.Is(err, apperrors.ErrSeriesEmpty) {
		t.Errorf("got %v, want ErrSeriesEmpty", err)
	}
}

func TestClipToScenario(t *testing.T) {
	data := models.PriceDataMap{"AAPL": {
		{Date: "2019-12-31", Close: 99},
		{Date: "2020-01-02", Close: 100},
		{Date: "2020-01-03", Close: 101},
		{Date: "2020-02-01", Close: 105},
	}}
	scn := models.Scenario{StartDate: "2020-01-01", EndDate: "2020-01-31"}

	got, err := ClipToScenario(data, scn)
	if err != nil {
		t.Fatal(err)
	}
	if len(got["AAPL"]) != 2 {
		t.Fatalf("got %d bars, want 2", len(got["AAPL"]))
	}
	if got["AAPL"][0].Date != "2020-01-02" || got["AAPL"][1].Date != "2020-01-03" {
		t.Errorf("wrong window: %+v", got["AAPL"])
	}
}

func TestClipToScenarioEmptyWindow(t *testing.T) {
	data := models.PriceDataMap{"AAPL": {{Date: "2020-06-01", Close: 100}}}
	scn := models.Scenario{StartDate: "1987-10-01", EndDate: "1987-10-31"}

	if _, err := ClipToScenario(data, scn); !errors.Is(err, apperrors.ErrSeriesEmpty) {
		t.Errorf("got %v, want ErrSeriesEmpty", err)
	}
}
