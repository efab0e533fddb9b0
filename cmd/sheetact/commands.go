package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetact-go/pkg/sheetact"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/codec"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/models"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/output"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/paste"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/selection"
)

func newNewCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "new [output.xlsx]",
		Short: "Create an empty signed grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", args[0])
			}
			a, err := newActions()
			if err != nil {
				return err
			}
			a.Override()
			return a.Save(args[0])
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newPasteCmd() *cobra.Command {
	var (
		from  string
		sheet string
		at    string
		table int
		comma string
	)

	cmd := &cobra.Command{
		Use:   "paste [grid.xlsx]",
		Short: "Import CSV or xlsx data into a grid",
		Long: `Import rows from a CSV file (or stdin with --from -) or an xlsx worksheet,
starting at the --at cell. Interrupt to abort at the next checkpoint; rows
already imported are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			anchor, err := parseAnchor(at, table, cmd.Flags().Changed("table"))
			if err != nil {
				return err
			}

			src, closeSrc, err := openSource(from, sheet, comma)
			if err != nil {
				return err
			}
			defer closeSrc()

			a, err := openActions(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			res, err := a.Paste(ctx, anchor, src.Rows())
			if err != nil {
				return err
			}
			if err := src.Err(); err != nil {
				return fmt.Errorf("reading %s: %w", from, err)
			}

			if err := a.Save(args[0]); err != nil {
				return err
			}
			data, err := output.ResultToJSON(&res, pretty)
			if err != nil {
				return fmt.Errorf("serialization failed: %w", err)
			}
			return writeOutput(cmd.OutOrStdout(), data)
		},
	}

	cmd.Flags().StringVar(&from, "from", "-", "Input CSV or xlsx file, - for CSV on stdin")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet of an xlsx input (default: first sheet)")
	cmd.Flags().StringVar(&at, "at", "A1", "Top-left target cell")
	cmd.Flags().IntVar(&table, "table", 0, "Target table (default: current table)")
	cmd.Flags().StringVar(&comma, "comma", ",", "CSV field delimiter")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Result file path (default: stdout)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func parseAnchor(at string, table int, hasTable bool) (paste.Anchor, error) {
	c, err := selection.ParseCell(at)
	if err != nil {
		return paste.Anchor{}, fmt.Errorf("invalid --at: %w", err)
	}
	if hasTable {
		return paste.AtTable(c.Row, c.Col, table), nil
	}
	return paste.At(c.Row, c.Col), nil
}

func openSource(from, sheet, comma string) (*paste.Source, func(), error) {
	if strings.EqualFold(filepath.Ext(from), ".xlsx") {
		return paste.FromXLSX(from, sheet), func() {}, nil
	}

	sep, size := utf8.DecodeRuneInString(comma)
	if size == 0 || size != len(comma) {
		return nil, nil, fmt.Errorf("invalid --comma %q: must be a single character", comma)
	}
	if from == "-" {
		return paste.FromCSV(os.Stdin, sep), func() {}, nil
	}
	f, err := os.Open(from)
	if err != nil {
		return nil, nil, err
	}
	return paste.FromCSV(f, sep), func() { f.Close() }, nil
}

func newInsertCmd() *cobra.Command {
	var (
		axis  string
		at    int
		count int
	)

	cmd := &cobra.Command{
		Use:   "insert [grid.xlsx]",
		Short: "Insert empty rows, columns or tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ax, err := models.ParseAxis(axis)
			if err != nil {
				return err
			}
			a, err := openActions(args[0])
			if err != nil {
				return err
			}
			switch ax {
			case models.AxisRow:
				err = a.InsertRows(at, count)
			case models.AxisCol:
				err = a.InsertCols(at, count)
			default:
				err = a.InsertTables(at, count)
			}
			if err != nil {
				return err
			}
			return a.Save(target(args[0]))
		},
	}

	cmd.Flags().StringVar(&axis, "axis", "row", "Axis: row, col, or table")
	cmd.Flags().IntVar(&at, "at", 0, "Index to insert before (0-based, past the end appends)")
	cmd.Flags().IntVar(&count, "count", 1, "Number of rows, columns or tables")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output grid path (default: overwrite input)")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	var (
		axis  string
		at    int
		count int
	)

	cmd := &cobra.Command{
		Use:   "delete [grid.xlsx]",
		Short: "Delete rows, columns or tables (not supported)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ax, err := models.ParseAxis(axis)
			if err != nil {
				return err
			}
			a, err := openActions(args[0])
			if err != nil {
				return err
			}
			switch ax {
			case models.AxisRow:
				return a.DeleteRows(at, count)
			case models.AxisCol:
				return a.DeleteCols(at, count)
			default:
				return a.DeleteTables(at, count)
			}
		},
	}

	cmd.Flags().StringVar(&axis, "axis", "row", "Axis: row, col, or table")
	cmd.Flags().IntVar(&at, "at", 0, "First index to delete")
	cmd.Flags().IntVar(&count, "count", 1, "Number of rows, columns or tables")
	return cmd
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [grid.xlsx]",
		Short: "Check the signature of a grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newActions()
			if err != nil {
				return err
			}
			if !a.Approve(args[0]) {
				return fmt.Errorf("%s: not trusted", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: trusted\n", args[0])
			return nil
		},
	}
}

func newApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve [grid.xlsx]",
		Short: "Trust a grid explicitly and sign it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openActions(args[0])
			if err != nil {
				return err
			}
			a.Override()
			if !a.Sign(args[0]) {
				return fmt.Errorf("%s: could not be signed", args[0])
			}
			return nil
		},
	}
}

func newSignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign [grid.xlsx]",
		Short: "Re-sign a trusted grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openActions(args[0])
			if err != nil {
				return err
			}
			if !a.Sign(args[0]) {
				return fmt.Errorf("%s: could not be signed", args[0])
			}
			return nil
		},
	}
}

func newDumpCmd() *cobra.Command {
	var (
		sel       string
		table     int
		tablesDir string
	)

	cmd := &cobra.Command{
		Use:   "dump [grid.xlsx]",
		Short: "Print a grid or a selection as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openActions(args[0])
			if err != nil {
				return err
			}

			if sel != "" {
				if err := a.SwitchTable(table); err != nil {
					return err
				}
				if err := a.SelectA1(sel, false); err != nil {
					return err
				}
				data, err := output.RowsToJSON(a.Copy(a.Selection()), pretty)
				if err != nil {
					return fmt.Errorf("serialization failed: %w", err)
				}
				return writeOutput(cmd.OutOrStdout(), data)
			}

			snap := a.Snapshot()
			data, err := output.ToJSON(&snap, pretty)
			if err != nil {
				return fmt.Errorf("serialization failed: %w", err)
			}
			if tablesDir != "" {
				if err := writeTableFiles(a, tablesDir); err != nil {
					return fmt.Errorf("failed to write table files: %w", err)
				}
				if outputPath == "" {
					return nil
				}
			}
			return writeOutput(cmd.OutOrStdout(), data)
		},
	}

	cmd.Flags().StringVar(&sel, "select", "", "A1 selection to copy, e.g. A1:C5,E7")
	cmd.Flags().IntVar(&table, "table", 0, "Table the selection refers to")
	cmd.Flags().StringVar(&tablesDir, "tables-dir", "", "Directory for per-table output files")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func writeTableFiles(a *sheetact.Actions, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	snap := a.Snapshot()
	for key, table := range snap.Tables {
		jsonData, err := output.TableToJSON(&table, pretty)
		if err != nil {
			return err
		}

		n, _ := strconv.Atoi(key)
		filename := filepath.Join(dir, codec.TableSheet(n)+".json")
		if err := os.WriteFile(filename, jsonData, 0644); err != nil {
			return err
		}
	}
	return nil
}
