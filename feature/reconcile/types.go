package reconcile

import "time"

// MatchOutcome summarizes how one ledger aggregate resolved.
type MatchOutcome struct {
	Name            string `json:"name"`
	SetCode         string `json:"setCode"`
	CollectorNumber string `json:"collectorNumber"`
	Quantity        int    `json:"quantity"`
	// CardID is empty when the aggregate resolved to nothing.
	CardID string `json:"cardId,omitempty"`
	Tier   string `json:"tier,omitempty"`
	Promo  bool   `json:"promo,omitempty"`
}

// Report is the outcome of one reconciliation run.
type Report struct {
	// Aggregates is how many distinct owned prints the ledger collapsed to.
	Aggregates int `json:"aggregates"`
	// Matched is how many of those resolved to a catalog record.
	Matched int `json:"matched"`
	// Unmatched lists the aggregates that resolved to nothing; their
	// quantities are simply not reflected in the catalog.
	Unmatched []MatchOutcome `json:"unmatched,omitempty"`
	// Updated is how many catalog rows changed. Zero when the catalog
	// already agreed with the ledger.
	Updated int `json:"updated"`
	// Cleared is how many previously-annotated rows dropped back to zero.
	Cleared  int           `json:"cleared"`
	Duration time.Duration `json:"duration"`
}
