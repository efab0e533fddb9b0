// Package sheetact implements the action layer of a three dimensional
// spreadsheet: opening and saving signed workbooks, pasting external data,
// inserting along an axis, selecting and undoing.
package sheetact

import (
	"log/slog"

	"github.com/ukaji3/sheetact-go/pkg/sheetact/grid"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/history"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/models"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/notify"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/paste"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/trust"
)

// Options configures the action layer.
type Options struct {
	// Shape is the shape of a new grid and the minimum shape of a loaded
	// foreign workbook. Zero uses grid.DefaultShape.
	Shape models.Shape
	// Checkpoint is the number of pasted rows between progress reports.
	Checkpoint int
	// HistoryLimit is the number of undo steps retained.
	HistoryLimit int
	// SignatureSuffix locates the signature sidecar of a file.
	SignatureSuffix string
	// Backend verifies and produces signatures. If nil, every file opens
	// in safe mode and nothing can be signed.
	Backend trust.Backend
	// Notifier receives status, progress and warning messages.
	Notifier notify.Notifier
	// Logger receives diagnostic output. If nil, logs are discarded.
	Logger *slog.Logger
}

// DefaultOptions returns default options without a signing backend.
func DefaultOptions() Options {
	return Options{
		Shape:           grid.DefaultShape,
		Checkpoint:      paste.DefaultCheckpoint,
		HistoryLimit:    history.DefaultLimit,
		SignatureSuffix: trust.DefaultSuffix,
	}
}

func (o Options) shape() models.Shape {
	if o.Shape == (models.Shape{}) {
		return grid.DefaultShape
	}
	return o.Shape
}

func (o Options) notifier() notify.Notifier {
	if o.Notifier == nil {
		return notify.Discard
	}
	return o.Notifier
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}
