package dto

// CleanupItem is a row kept or reclassified by the cleanup.
type CleanupItem struct {
	ID       string `json:"id"`
	Symbol   string `json:"symbol"`
	Category string `json:"category"`
}

// CleanupResponse reports a dry run or an applied cleanup.
type CleanupResponse struct {
	DryRun        bool          `json:"dryRun"`
	Keep          []CleanupItem `json:"keep"`
	Delete        []string      `json:"delete"`
	Misclassified []CleanupItem `json:"misclassified"`
	Deleted       int64         `json:"deleted"`
	Corrected     int           `json:"corrected"`
	Remaining     int           `json:"remaining"`
}
