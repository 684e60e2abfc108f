// Package dashboard serves precomputed partner statistics fetched from the
// reporting webhook, cached per signed-in user.
package dashboard

import "time"

// Partner is one row of the partner report. Field names on the wire are the
// report's own.
type Partner struct {
	Name                string  `json:"partner"`
	TotalQuotes         int     `json:"osszes_arajanlat"`
	SuccessfulQuotes    int     `json:"sikeres_arajanlatok"`
	FailedQuotes        int     `json:"sikertelen_arajanlatok"`
	SuccessRate         float64 `json:"sikeressegi_arany"`
	LastSuccessAt       *string `json:"legutobbi_sikeres_datum"`
	LastQuoteAt         *string `json:"legutobbi_arajanlat_datum"`
	DaysSinceLastQuote  int     `json:"napok_a_legutobbi_arajanlat_ota"`
	Sleeping            bool    `json:"alvo"`
	CreatedAt           string  `json:"letrehozva"`
	AdjustedSuccessRate float64 `json:"korrigalt_sikeressegi_arany"`
	ValueScore          float64 `json:"ertek_pontszam"`
	Category            string  `json:"kategoria"`
	FailureScore        float64 `json:"sikertelen_pontszam"`
}

// Snapshot is what the cache hands out. Stale is set when the upstream failed
// and an earlier result was served instead.
type Snapshot struct {
	Partners  []Partner
	FetchedAt time.Time
	Stale     bool
}
