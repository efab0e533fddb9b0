// Package paste streams rectangular external data into the grid as a
// cancelable, progress reporting job.
package paste

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ukaji3/sheetact-go/pkg/sheetact/models"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/notify"
)

// ErrBusy indicates that another paste job is running on the same grid.
var ErrBusy = errors.New("paste already running")

// ErrInvalidAnchor indicates an anchor outside the addressable grid.
var ErrInvalidAnchor = errors.New("invalid paste anchor")

// DefaultCheckpoint is the number of rows between progress checkpoints.
const DefaultCheckpoint = 1000

// State is the lifecycle state of a paste job.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateAborted
	StateRowOverflow
	StateColOverflow
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	case StateRowOverflow:
		return "row_overflow"
	case StateColOverflow:
		return "col_overflow"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Grid is the part of the cell store a paste writes to.
type Grid interface {
	Shape() models.Shape
	CurrentTable() int
	Write(key models.Key, value string) error
}

// Grouper groups the writes of one job into a single undo step.
type Grouper interface {
	Begin(label string)
	End()
}

// Anchor is the top-left target cell of a paste. Without an explicit
// table the grid's current table is used.
type Anchor struct {
	Row      int
	Col      int
	Table    int
	HasTable bool
}

// At anchors a paste in the current table.
func At(row, col int) Anchor {
	return Anchor{Row: row, Col: col}
}

// AtTable anchors a paste in the given table.
func AtTable(row, col, table int) Anchor {
	return Anchor{Row: row, Col: col, Table: table, HasTable: true}
}

// Result describes how a paste job ended.
type Result struct {
	JobID        string     `json:"job_id"`
	State        State      `json:"state"`
	Anchor       models.Key `json:"anchor"`
	RowsWritten  int        `json:"rows_written"`
	CellsWritten int        `json:"cells_written"`
	RowOverflow  bool       `json:"row_overflow"`
	ColOverflow  bool       `json:"col_overflow"`
	Message      string     `json:"message"`
}

// Options configures a Pipeline.
type Options struct {
	// Checkpoint is the number of input rows between progress reports and
	// cancellation checks. Zero uses DefaultCheckpoint.
	Checkpoint int
	// Notifier receives status and progress messages.
	Notifier notify.Notifier
	// History, if set, groups each job into one undo step.
	History Grouper
	// Logger receives debug output.
	Logger *slog.Logger
}

// Pipeline runs paste jobs against one grid, one job at a time.
type Pipeline struct {
	grid       Grid
	checkpoint int
	notifier   notify.Notifier
	history    Grouper
	log        *slog.Logger

	state  atomic.Int32
	cancel atomic.Bool
}

// New creates a Pipeline writing into g.
func New(g Grid, opts Options) *Pipeline {
	p := &Pipeline{
		grid:       g,
		checkpoint: opts.Checkpoint,
		notifier:   opts.Notifier,
		history:    opts.History,
		log:        opts.Logger,
	}
	if p.checkpoint <= 0 {
		p.checkpoint = DefaultCheckpoint
	}
	if p.notifier == nil {
		p.notifier = notify.Discard
	}
	if p.log == nil {
		p.log = slog.New(slog.DiscardHandler)
	}
	return p
}

// State returns the state of the pipeline. It is StateRunning while a job
// is in flight and StateIdle otherwise.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Cancel asks the running job to abort at its next checkpoint. It reports
// whether a job was running. Cancel is safe to call from any goroutine.
func (p *Pipeline) Cancel() bool {
	if p.State() != StateRunning {
		return false
	}
	p.cancel.Store(true)
	return true
}

// Paste writes rows into the grid starting at anchor. Each element of rows
// is one row of cell sources; rows is consumed exactly once.
//
// Overflow and cancellation are not errors: they end the job in a
// terminal state described by the Result, keeping every cell written so
// far. Errors are returned only for a busy pipeline, a bad anchor, or a
// failing grid write.
func (p *Pipeline) Paste(ctx context.Context, anchor Anchor, rows iter.Seq[[]string]) (Result, error) {
	if !p.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return Result{}, ErrBusy
	}
	p.cancel.Store(false)
	defer func() {
		p.cancel.Store(false)
		p.state.Store(int32(StateIdle))
	}()

	shape := p.grid.Shape()
	key := models.Key{Row: anchor.Row, Col: anchor.Col, Table: p.grid.CurrentTable()}
	if anchor.HasTable {
		key.Table = anchor.Table
	}
	if key.Row < 0 || key.Col < 0 || key.Table < 0 || key.Table >= shape.Tables {
		return Result{}, fmt.Errorf("%w: %s in %+v", ErrInvalidAnchor, key, shape)
	}

	res := Result{JobID: uuid.NewString(), Anchor: key}
	log := p.log.With("job", res.JobID)
	log.Debug("paste started", "anchor", key.String(), "shape", shape)

	if p.history != nil {
		p.history.Begin("paste")
		defer p.history.End()
	}

	for cols := range rows {
		i := res.RowsWritten

		if i%p.checkpoint == 0 {
			p.showProgress(i, true)
			runtime.Gosched()

			if p.cancelled(ctx) {
				res.State = StateAborted
				res.Message = abortMessage(i)
				p.notifier.Status(res.Message)
				log.Debug("paste aborted", "rows", i)
				return res, nil
			}
		}

		target := key.Row + i
		if target >= shape.Rows {
			res.RowOverflow = true
			break
		}

		for j, value := range cols {
			col := key.Col + j
			if col >= shape.Cols {
				res.ColOverflow = true
				break
			}
			cell := models.Key{Row: target, Col: col, Table: key.Table}
			if err := p.grid.Write(cell, value); err != nil {
				res.State = StateAborted
				res.Message = abortMessage(i)
				p.notifier.Status(res.Message)
				return res, fmt.Errorf("paste %s: %w", cell, err)
			}
			res.CellsWritten++
		}
		res.RowsWritten++
	}

	switch {
	case res.RowOverflow:
		res.State = StateRowOverflow
	case res.ColOverflow:
		res.State = StateColOverflow
	default:
		res.State = StateCompleted
	}

	if res.State == StateCompleted {
		res.Message = progressMessage(res.RowsWritten, false)
	} else {
		res.Message = overflowMessage(res.RowOverflow, res.ColOverflow)
	}
	p.notifier.Status(res.Message)
	log.Debug("paste finished", "state", res.State.String(), "rows", res.RowsWritten, "cells", res.CellsWritten)
	return res, nil
}

func (p *Pipeline) cancelled(ctx context.Context) bool {
	return p.cancel.Load() || ctx.Err() != nil
}

func (p *Pipeline) showProgress(rows int, abortAvailable bool) {
	p.notifier.Progress(notify.Progress{RowsImported: rows, AbortAvailable: abortAvailable})
	p.notifier.Status(progressMessage(rows, abortAvailable))
}

func progressMessage(rows int, abortAvailable bool) string {
	msg := fmt.Sprintf("%d rows imported.", rows)
	if abortAvailable {
		msg += " Cancel to abort."
	}
	return msg
}

func abortMessage(rows int) string {
	return fmt.Sprintf("Import aborted after importing %d rows.", rows)
}

// overflowMessage names the truncated dimensions. At least one of the
// flags must be set.
func overflowMessage(rowOverflow, colOverflow bool) string {
	var cause string
	switch {
	case rowOverflow && colOverflow:
		cause = "rows and columns"
	case rowOverflow:
		cause = "rows"
	case colOverflow:
		cause = "columns"
	default:
		panic("paste: overflow message without overflow")
	}
	return "The imported data did not fit into the grid " + cause +
		". It has been truncated. Use a larger grid for full import."
}
