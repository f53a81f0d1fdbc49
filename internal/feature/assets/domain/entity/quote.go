package entity

// RawQuote is the vendor payload for one symbol. Every numeric field is optional
// because the upstream populates them inconsistently across asset classes.
type RawQuote struct {
	Symbol             string
	ShortName          string
	LongName           string
	RegularMarketPrice *float64
	CurrentPrice       *float64
	Ask                *float64
	Bid                *float64
	Change             *float64
	ChangePercent      *float64
	Volume             *float64
	MarketCap          *float64
	DayHigh            *float64
	DayLow             *float64
	Open               *float64
	PreviousClose      *float64
	FiftyTwoWeekHigh   *float64
	FiftyTwoWeekLow    *float64
	AverageVolume      *float64
}

// ReconcileSummary describes the outcome of one Reconcile call.
type ReconcileSummary struct {
	Count    int
	Inserted int
	Updated  int
	// Skipped lists symbols whose zero price was not allowed to overwrite a stored price.
	Skipped []string
}

// DedupPlan is the result of the grouping pass. Nothing is deleted until the
// plan is applied.
type DedupPlan struct {
	Keep   []Asset
	Delete []string
	// Misclassified lists rows whose stored category differs from the classifier's answer.
	Misclassified []Asset
}

// RefreshReport is returned by one run of the refresh job.
type RefreshReport struct {
	Count         int
	FailedSymbols []FailedSymbol
	Skipped       []string
}

// CleanupResult is returned after a dedup plan has been applied.
type CleanupResult struct {
	Plan      DedupPlan
	Deleted   int64
	Corrected int
	// Remaining is the number of duplicates a fresh plan still finds.
	Remaining int
}
