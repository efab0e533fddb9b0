// Package output serialises grid snapshots.
package output

import (
	"encoding/json"

	"github.com/ukaji3/sheetact-go/pkg/sheetact/models"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/paste"
)

// ToJSON serialises a grid snapshot.
func ToJSON(data *models.GridData, pretty bool) ([]byte, error) {
	return marshal(data, pretty)
}

// TableToJSON serialises a single table.
func TableToJSON(table *models.TableData, pretty bool) ([]byte, error) {
	return marshal(table, pretty)
}

// ResultToJSON serialises the outcome of a paste job.
func ResultToJSON(res *paste.Result, pretty bool) ([]byte, error) {
	return marshal(res, pretty)
}

func marshal(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// RowsToJSON serialises a copied block of cell sources.
func RowsToJSON(rows [][]string, pretty bool) ([]byte, error) {
	if rows == nil {
		rows = [][]string{}
	}
	return marshal(rows, pretty)
}
