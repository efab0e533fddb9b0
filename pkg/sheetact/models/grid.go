package models

// GridData is a serialisable snapshot of a grid.
type GridData struct {
	// Name is the file name the grid was loaded from (no path).
	Name string `json:"name"`
	// Shape is the grid extent.
	Shape Shape `json:"shape"`
	// SafeMode reports whether the document is restricted.
	SafeMode bool `json:"safe_mode"`
	// Tables maps table index (string) to TableData.
	Tables map[string]TableData `json:"tables"`
}
