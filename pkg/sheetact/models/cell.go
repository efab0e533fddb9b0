package models

// CellRow represents a single populated row of one table.
type CellRow struct {
	// R is the row index (0-based).
	R int `json:"r"`
	// C maps column index (string) to cell source.
	C map[string]string `json:"c"`
}
