package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/arbiter"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/archive"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/grid"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/models"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/output"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/summary"
	"go.uber.org/zap"
)

func marshal(v any) ([]byte, error) {
	return output.ToJSON(v, pretty)
}

func inspectCmd() *cobra.Command {
	var sheetsDir string
	cmd := &cobra.Command{
		Use:   "inspect <file.xlsx>",
		Short: "Print the inferred ledger layout of every sheet as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := openBook(args[0])
			if err != nil {
				return err
			}
			defer book.Close()

			wb, err := newEngine().Inspect(book)
			if err != nil {
				return fmt.Errorf("inspection failed: %w", err)
			}
			jsonData, err := marshal(wb)
			if err != nil {
				return fmt.Errorf("serialization failed: %w", err)
			}

			if outputPath != "" {
				if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
			} else if sheetsDir == "" {
				fmt.Println(string(jsonData))
			}
			if sheetsDir != "" {
				if err := writeSheetFiles(wb, sheetsDir); err != nil {
					return fmt.Errorf("failed to write sheet files: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().StringVar(&sheetsDir, "sheets-dir", "", "Directory for per-sheet output files")
	return cmd
}

func writeSheetFiles(wb *models.WorkbookSchema, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for name, sheet := range wb.Sheets {
		jsonData, err := output.SheetToJSON(&sheet, pretty)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, name+".json"), jsonData, 0644); err != nil {
			return err
		}
	}
	return nil
}

// mutatingCmd declares the flags shared by commands that rewrite a
// workbook.
func mutatingCmd(cmd *cobra.Command, withSheet bool) *cobra.Command {
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the result here instead of in place")
	if withSheet {
		cmd.Flags().StringVar(&sheetName, "sheet", "", "Ledger sheet name")
		_ = cmd.MarkFlagRequired("sheet")
	}
	return cmd
}

func initCmd() *cobra.Command {
	return mutatingCmd(&cobra.Command{
		Use:   "init <file.xlsx>",
		Short: "Install the command menu and input validation on every ledger sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(args[0], func(book *grid.File) error {
				return newEngine().Open(book)
			})
		},
	}, false)
}

func appendCmd() *cobra.Command {
	var kind string
	cmd := mutatingCmd(&cobra.Command{
		Use:   "append <file.xlsx>",
		Short: "Append a day block (in, out or out to floor)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := models.ParseKind(kind)
			if err != nil {
				return err
			}
			return mutate(args[0], func(book *grid.File) error {
				return newEngine().AppendBlock(book, sheetName, k)
			})
		},
	}, true)
	cmd.Flags().StringVar(&kind, "kind", "", `Block kind: in, out or "out to floor"`)
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func repairCmd() *cobra.Command {
	cmd := mutatingCmd(&cobra.Command{
		Use:   "repair <file.xlsx>",
		Short: "Rewrite every running-total formula and the current balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(args[0], func(book *grid.File) error {
				report, err := newEngine().RepairAllBlocks(book, sheetName)
				if err != nil {
					return err
				}
				return printJSON(report)
			})
		},
	}, true)
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func updateCmd() *cobra.Command {
	return mutatingCmd(&cobra.Command{
		Use:   "update <file.xlsx>",
		Short: "Refresh the right-most block, then repair the whole sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(args[0], func(book *grid.File) error {
				return newEngine().UpdateCurrentBlock(book, sheetName)
			})
		},
	}, true)
}

// cliNotifier prints user-facing warnings to stderr.
type cliNotifier struct{}

func (cliNotifier) Notify(_ context.Context, title, message string) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
}

func editCmd() *cobra.Command {
	var cell, value, formula string
	cmd := mutatingCmd(&cobra.Command{
		Use:   "edit <file.xlsx>",
		Short: "Enter a value or command into a cell and apply the edit rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, col, err := grid.ParseCell(strings.ToUpper(cell))
			if err != nil {
				return fmt.Errorf("invalid cell %q: %w", cell, err)
			}
			return mutate(args[0], func(book *grid.File) error {
				a := cfg.Arbiter
				deb := arbiter.NewDebouncer(arbiter.NewWorkbookStore(book), a.DebounceWindow, a.DebounceTTL)
				arb, err := arbiter.New(newEngine(), book, cfg,
					arbiter.WithLogger(log),
					arbiter.WithNotifier(cliNotifier{}),
					arbiter.WithDebouncer(deb))
				if err != nil {
					return err
				}
				outcome, err := arb.Apply(cmd.Context(), arbiter.Edit{
					Sheet: sheetName, Row: row, Col: col, Value: value, Formula: formula,
				})
				if err != nil {
					return err
				}
				fmt.Println(outcome)
				return nil
			})
		},
	}, true)
	cmd.Flags().StringVar(&cell, "cell", "", "Cell reference, e.g. A1")
	cmd.Flags().StringVar(&value, "value", "", "Entered text")
	cmd.Flags().StringVar(&formula, "formula", "", "Entered formula")
	_ = cmd.MarkFlagRequired("cell")
	return cmd
}

// parseSource reads "label=path#sheet".
func parseSource(s string) (label, path, sheet string, err error) {
	label, rest, ok := strings.Cut(s, "=")
	if !ok || label == "" {
		return "", "", "", fmt.Errorf("invalid source %q (want label=path#sheet)", s)
	}
	path, sheet, ok = strings.Cut(rest, "#")
	if !ok || path == "" || sheet == "" {
		return "", "", "", fmt.Errorf("invalid source %q (want label=path#sheet)", s)
	}
	return label, path, sheet, nil
}

func summaryCmd() *cobra.Command {
	var sources []string
	var primary, sortOrder string
	cmd := mutatingCmd(&cobra.Command{
		Use:   "summary <target.xlsx>",
		Short: "Build the cross-workbook stock summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sortOrder != "" && sortOrder != "asc" && sortOrder != "desc" {
				return fmt.Errorf("invalid sort order: %s (must be asc or desc)", sortOrder)
			}
			opts := summary.Options{Summary: cfg.Summary, Alerts: cfg.Alerts, Logger: log}
			return mutate(args[0], func(target *grid.File) error {
				srcs, closeAll, err := openSources(sources, primary, args[0], target)
				defer closeAll()
				if err != nil {
					return err
				}
				if len(srcs) > 0 {
					res, err := summary.Build(target, srcs, opts)
					if err != nil {
						return err
					}
					if err := printJSON(res); err != nil {
						return err
					}
				}
				if sortOrder != "" {
					return summary.SortByTotal(target, opts, sortOrder == "asc")
				}
				return nil
			})
		},
	}, false)
	cmd.Flags().StringArrayVar(&sources, "source", nil, "Source as label=path#sheet (repeatable)")
	cmd.Flags().StringVar(&primary, "primary", "", "Label of the source supplying item names (default: first)")
	cmd.Flags().StringVar(&sortOrder, "sort", "", "Sort rows by total: asc or desc")
	return cmd
}

// openSources opens every source workbook. Sources in the target file
// share its handle. Ledger sheets get their balances evaluated so that
// files without cached formula results still sum correctly.
func openSources(flags []string, primary, targetPath string, target *grid.File) ([]summary.Source, func(), error) {
	var opened []*grid.File
	closeAll := func() {
		for _, b := range opened {
			b.Close()
		}
	}
	books := make(map[string]*grid.File)
	engine := newEngine()
	var srcs []summary.Source
	for _, flag := range flags {
		label, path, sheet, err := parseSource(flag)
		if err != nil {
			return nil, closeAll, err
		}
		book, ok := books[path]
		switch {
		case ok:
		case sameFile(path, targetPath):
			book = target
		default:
			if book, err = openBook(path); err != nil {
				return nil, closeAll, err
			}
			opened = append(opened, book)
		}
		books[path] = book

		src := summary.Source{Label: label, Book: book, Sheet: sheet, Primary: label == primary}
		if engine.Managed(sheet) {
			if s, err := book.Sheet(sheet); err == nil {
				if schema, err := engine.InspectSheet(s); err == nil {
					src.Balances = schema.Balances
				} else {
					log.Warn("balances unavailable", zap.String("source", label), zap.Error(err))
				}
			}
		}
		srcs = append(srcs, src)
	}
	return srcs, closeAll, nil
}

func sameFile(a, b string) bool {
	ia, errA := os.Stat(a)
	ib, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(ia, ib)
}

func archiveCmd() *cobra.Command {
	var date string
	var all bool
	cmd := mutatingCmd(&cobra.Command{
		Use:   "archive <file.xlsx>",
		Short: "Copy dated rows into per-month archive sheets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (date != "") {
				return fmt.Errorf("exactly one of --date or --all is required")
			}
			tr := archive.New(archive.Options{Archive: cfg.Archive, Logger: log})
			return mutate(args[0], func(book *grid.File) error {
				if all {
					blocks, err := tr.TransferAll(book)
					if err != nil {
						return err
					}
					return printJSON(blocks)
				}
				d, err := parseDate(date)
				if err != nil {
					return err
				}
				block, err := tr.TransferDate(book, d)
				if err != nil {
					return err
				}
				return printJSON(block)
			})
		},
	}, false)
	cmd.Flags().StringVar(&date, "date", "", "Date to transfer (dd/mm/yyyy)")
	cmd.Flags().BoolVar(&all, "all", false, "Transfer every date")
	return cmd
}

func parseDate(s string) (time.Time, error) {
	if d, err := time.Parse(cfg.Archive.DateLayout, strings.TrimSpace(s)); err == nil {
		return d, nil
	}
	if d, ok := archive.CoerceDate(s); ok {
		return d, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want %s)", s, cfg.Archive.DateLayout)
}
