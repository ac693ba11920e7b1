package dto

// ImportRowError records why a single spreadsheet row failed.
type ImportRowError struct {
	Row    int    `json:"row"` // 1-based sheet row number
	Reason string `json:"reason"`
}

// ImportResult summarizes a bulk client import. Imported equals the
// number of valid rows minus the rows lost to failed insert chunks.
type ImportResult struct {
	TotalRows int              `json:"totalRows"`
	Imported  int              `json:"imported"`
	Errors    []ImportRowError `json:"errors,omitempty"`
}
