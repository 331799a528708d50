// Package scenario holds the static catalog of replayable market periods.
package scenario

import "market-replay/internal/models"

// Catalog lists the built-in scenarios in presentation order.
var Catalog = []models.Scenario{
	{
		Slug:         "2008-crisis",
		Name:         "2008 Financial Crisis",
		StartDate:    "2008-01-02",
		EndDate:      "2009-03-31",
		Description:  "The collapse of the US housing market triggered a global financial crisis.",
		Difficulty:   "Brutal",
		RiskFreeRate: 0.02,
		Events: []models.ScenarioEvent{
			{Date: "2008-03-14", Label: "Bear Stearns", Description: "Bear Stearns collapses, rescued by JP Morgan."},
			{Date: "2008-09-15", Label: "Lehman Bankrupt", Description: "Lehman Brothers files for bankruptcy."},
			{Date: "2008-09-29", Label: "TARP Rejected", Description: "House rejects $700B bailout package; Dow drops 778 points."},
			{Date: "2008-10-03", Label: "TARP Signed", Description: "Emergency Economic Stabilization Act signed into law."},
			{Date: "2009-03-09", Label: "Market Bottom", Description: "S&P 500 hits cycle low of 676."},
		},
	},
	{
		Slug:         "dotcom-bubble",
		Name:         "Dot-com Bubble",
		StartDate:    "2000-01-03",
		EndDate:      "2002-10-09",
		Description:  "The tech bubble burst as internet companies collapsed.",
		Difficulty:   "Hard",
		RiskFreeRate: 0.055,
		Events: []models.ScenarioEvent{
			{Date: "2000-03-10", Label: "NASDAQ Peak", Description: "NASDAQ hits all-time high of 5,048."},
			{Date: "2001-09-11", Label: "9/11 Attacks", Description: "Markets close for 4 days; reopen sharply lower."},
		},
	},
	{
		Slug:         "black-monday",
		Name:         "Black Monday (1987)",
		StartDate:    "1987-10-01",
		EndDate:      "1987-10-31",
		Description:  "The Dow fell 22.6% in a single day, the largest one-day crash in history.",
		Difficulty:   "Hard",
		RiskFreeRate: 0.06,
		Events: []models.ScenarioEvent{
			{Date: "1987-10-19", Label: "Black Monday", Description: "Dow Jones drops 22.6% in a single session."},
		},
	},
	{
		Slug:         "covid-crash",
		Name:         "COVID Crash + Recovery",
		StartDate:    "2020-01-02",
		EndDate:      "2020-12-31",
		Description:  "Markets crashed 34% in 33 days, then staged a historic recovery.",
		Difficulty:   "Hard",
		RiskFreeRate: 0.005,
		Events: []models.ScenarioEvent{
			{Date: "2020-02-19", Label: "Market Peak", Description: "S&P 500 hits pre-crash all-time high."},
			{Date: "2020-03-23", Label: "Market Bottom", Description: "S&P 500 bottoms at -34% from peak."},
			{Date: "2020-03-27", Label: "CARES Act", Description: "$2.2 trillion stimulus package signed."},
			{Date: "2020-11-09", Label: "Vaccine News", Description: "Pfizer announces 90%+ effective vaccine."},
		},
	},
	{
		Slug:         "2021-bull-run",
		Name:         "2020-2021 Bull Run",
		StartDate:    "2020-04-01",
		EndDate:      "2021-11-30",
		Description:  "The fastest bull market recovery in history, fueled by stimulus and meme stocks.",
		Difficulty:   "Easy",
		RiskFreeRate: 0.0025,
		Events: []models.ScenarioEvent{
			{Date: "2021-01-27", Label: "GME Squeeze", Description: "GameStop short squeeze peaks near $483."},
			{Date: "2021-11-08", Label: "Crypto Peak", Description: "Bitcoin tops out near $68,000."},
		},
	},
}

// BySlug looks up a scenario from the catalog.
func BySlug(slug string) (models.Scenario, bool) {
	for _, s := range Catalog {
		if s.Slug == slug {
			return s, true
		}
	}
	return models.Scenario{}, false
}

// Slugs returns the catalog slugs in order.
func Slugs() []string {
	out := make([]string, len(Catalog))
	for i, s := range Catalog {
		out[i] = s.Slug
	}
	return out
}
