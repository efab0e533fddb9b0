package models

// TableData represents the populated content of a single table.
type TableData struct {
	// Rows contains populated rows in ascending order.
	Rows []CellRow `json:"rows,omitempty"`
	// UsedRange is the A1 range enclosing all populated cells (empty if none).
	UsedRange string `json:"used_range,omitempty"`
}
