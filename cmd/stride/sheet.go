// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/poiesic/stride/sheet"
	"github.com/urfave/cli/v2"
)

func sheetCommand() *cli.Command {
	dateFlag := &cli.StringFlag{
		Name:  "date",
		Usage: "Sheet date (YYYY-MM-DD), defaults to today",
	}
	return &cli.Command{
		Name:  "sheet",
		Usage: "Work with the daily parcel tracking sheet",
		Subcommands: []*cli.Command{
			{
				Name:      "eval",
				Usage:     "Evaluate an amount expression",
				ArgsUsage: "<expression>",
				Action:    sheetEvalAction,
			},
			{
				Name:   "show",
				Usage:  "Show the rows of one day's sheet",
				Flags:  []cli.Flag{dateFlag},
				Action: sheetShowAction,
			},
			{
				Name:  "row",
				Usage: "Add or remove rows",
				Subcommands: []*cli.Command{
					{
						Name:  "add",
						Usage: "Append a row",
						Flags: []cli.Flag{
							dateFlag,
							&cli.StringFlag{Name: "customer"},
							&cli.StringFlag{Name: "type"},
							&cli.StringFlag{Name: "location"},
							&cli.StringFlag{Name: "amount"},
							&cli.StringFlag{Name: "cost"},
							&cli.StringFlag{Name: "courier"},
							&cli.BoolFlag{Name: "packed"},
							&cli.BoolFlag{Name: "paid"},
							&cli.BoolFlag{Name: "delivered"},
						},
						Action: sheetRowAddAction,
					},
					{
						Name:      "rm",
						Usage:     "Remove a row",
						ArgsUsage: "<row-id>",
						Flags:     []cli.Flag{dateFlag},
						Action:    sheetRowRemoveAction,
					},
				},
			},
			{
				Name:   "totals",
				Usage:  "Show per-courier totals for one day",
				Flags:  []cli.Flag{dateFlag},
				Action: sheetTotalsAction,
			},
			{
				Name:  "snapshot",
				Usage: "Save, restore, and manage sheet snapshots",
				Subcommands: []*cli.Command{
					{
						Name:      "save",
						Usage:     "Save the current rows as a snapshot",
						ArgsUsage: "[name]",
						Flags:     []cli.Flag{dateFlag},
						Action:    snapshotSaveAction,
					},
					{
						Name:   "list",
						Usage:  "List snapshots",
						Action: snapshotListAction,
					},
					{
						Name:      "restore",
						Usage:     "Restore a snapshot",
						ArgsUsage: "<snapshot-id>",
						Action:    snapshotRestoreAction,
					},
					{
						Name:      "rename",
						Usage:     "Rename a snapshot",
						ArgsUsage: "<snapshot-id> <name>",
						Action:    snapshotRenameAction,
					},
					{
						Name:      "rm",
						Usage:     "Delete a snapshot",
						ArgsUsage: "<snapshot-id>",
						Action:    snapshotRemoveAction,
					},
				},
			},
			{
				Name:      "export",
				Usage:     "Export one day's sheet to a JSON file",
				ArgsUsage: "<file>",
				Flags:     []cli.Flag{dateFlag},
				Action:    sheetExportAction,
			},
			{
				Name:      "export-all",
				Usage:     "Export every snapshot and autosave to a JSON file",
				ArgsUsage: "<file>",
				Action:    sheetExportAllAction,
			},
			{
				Name:      "import",
				Usage:     "Import a sheet or full-data JSON file",
				ArgsUsage: "<file>",
				Action:    sheetImportAction,
			},
		},
	}
}

func sheetDate(c *cli.Context) (string, error) {
	date := c.String("date")
	if date == "" {
		return todayISO(), nil
	}
	if _, err := time.ParseInLocation("2006-01-02", date, time.Local); err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}
	return date, nil
}

func openEditor(c *cli.Context, s *session) (*sheet.Editor, error) {
	date, err := sheetDate(c)
	if err != nil {
		return nil, err
	}
	return s.app.Sheet(date), nil
}

func sheetEvalAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: sheet eval <expression>")
	}
	expr := c.Args().First()
	fmt.Printf("total:     %d\n", sheet.EvaluateAmount(expr))
	fmt.Printf("formatted: %s\n", sheet.FormatAmount(expr))
	fmt.Printf("collapsed: %s\n", sheet.CollapseAmount(expr))
	return nil
}

func sheetShowAction(c *cli.Context) error {
	return withSession(c, func(s *session) error {
		e, err := openEditor(c, s)
		if err != nil {
			return err
		}
		defer e.Close()
		rows := e.Rows()
		if len(rows) == 0 {
			fmt.Printf("%s: no rows\n", e.Date())
			return nil
		}
		fmt.Println(e.Date())
		for _, r := range rows {
			flags := ""
			if r.Packed {
				flags += "P"
			}
			if r.Paid {
				flags += "$"
			}
			if r.Delivered {
				flags += "D"
			}
			fmt.Printf("  %s  %-20s %-12s %-10s %-10s [%s]\n",
				r.ID, r.Customer, r.Location, sheet.FormatAmount(r.Amount), r.Courier, flags)
		}
		return nil
	})
}

func sheetRowAddAction(c *cli.Context) error {
	return withSession(c, func(s *session) error {
		e, err := openEditor(c, s)
		if err != nil {
			return err
		}
		defer e.Close()
		row := e.AddRow()
		row.Customer = c.String("customer")
		row.Type = c.String("type")
		row.Location = c.String("location")
		row.Amount = c.String("amount")
		row.Cost = c.String("cost")
		row.Courier = c.String("courier")
		row.Packed = c.Bool("packed")
		row.Paid = c.Bool("paid")
		row.Delivered = c.Bool("delivered")
		if err := e.UpdateRow(row); err != nil {
			return err
		}
		fmt.Printf("id: %s\n", row.ID)
		return nil
	})
}

func sheetRowRemoveAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: sheet row rm <row-id>")
	}
	return withSession(c, func(s *session) error {
		e, err := openEditor(c, s)
		if err != nil {
			return err
		}
		defer e.Close()
		return e.RemoveRow(c.Args().First())
	})
}

func sheetTotalsAction(c *cli.Context) error {
	return withSession(c, func(s *session) error {
		e, err := openEditor(c, s)
		if err != nil {
			return err
		}
		defer e.Close()
		for _, t := range e.CourierTotals() {
			name := t.Courier
			if name == "" {
				name = "(none)"
			}
			fmt.Printf("%-15s %3d row(s)  amount %10d  cost %10d\n", name, t.Count, t.Amount, t.Cost)
		}
		return nil
	})
}

func snapshotSaveAction(c *cli.Context) error {
	return withSession(c, func(s *session) error {
		e, err := openEditor(c, s)
		if err != nil {
			return err
		}
		defer e.Close()
		name := c.Args().First()
		if name == "" && e.CurrentSnapshotID() == nil {
			prompted, ok, err := s.ui.Prompt(c.Context, s.tr.Translate("sheet.snapshot_name_prompt", nil), e.Date())
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			name = prompted
		}
		snap, err := e.SaveSnapshot(name)
		if err != nil {
			return err
		}
		s.say("sheet.snapshot_saved", map[string]any{"name": snap.Name})
		fmt.Printf("id: %s\n", snap.ID)
		return nil
	})
}

func snapshotListAction(c *cli.Context) error {
	return withSession(c, func(s *session) error {
		e := s.app.Sheet(todayISO())
		defer e.Close()
		for _, snap := range e.Snapshots() {
			saved := time.UnixMilli(snap.SavedAt).Local().Format("2006-01-02 15:04")
			fmt.Printf("%s  %s  %-20s %d row(s)  saved %s\n", snap.ID, snap.DateISO, snap.Name, len(snap.Rows), saved)
		}
		return nil
	})
}

func snapshotRestoreAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: sheet snapshot restore <snapshot-id>")
	}
	return withSession(c, func(s *session) error {
		e := s.app.Sheet(todayISO())
		defer e.Close()
		if err := e.RestoreSnapshot(c.Args().First()); err != nil {
			return err
		}
		s.say("sheet.snapshot_restored", map[string]any{"date": e.Date()})
		return nil
	})
}

func snapshotRenameAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: sheet snapshot rename <snapshot-id> <name>")
	}
	return withSession(c, func(s *session) error {
		e := s.app.Sheet(todayISO())
		defer e.Close()
		return e.RenameSnapshot(c.Args().Get(0), c.Args().Get(1))
	})
}

func snapshotRemoveAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: sheet snapshot rm <snapshot-id>")
	}
	return withSession(c, func(s *session) error {
		e := s.app.Sheet(todayISO())
		defer e.Close()
		return e.DeleteSnapshot(c.Args().First())
	})
}

func sheetExportAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: sheet export <file>")
	}
	return withSession(c, func(s *session) error {
		e, err := openEditor(c, s)
		if err != nil {
			return err
		}
		defer e.Close()
		data, err := json.MarshalIndent(e.ExportSheet(), "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(c.Args().First(), data, 0o644)
	})
}

func sheetExportAllAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: sheet export-all <file>")
	}
	return withSession(c, func(s *session) error {
		e := s.app.Sheet(todayISO())
		defer e.Close()
		payload, err := e.ExportAll()
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(c.Args().First(), data, 0o644)
	})
}

func sheetImportAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: sheet import <file>")
	}
	return withSession(c, func(s *session) error {
		data, err := os.ReadFile(c.Args().First())
		if err != nil {
			return err
		}
		imported, err := sheet.ParseImport(data)
		if err != nil {
			return err
		}

		e := s.app.Sheet(todayISO())
		defer e.Close()
		if imported.Sheet != nil {
			if err := e.ApplySheetImport(imported.Sheet); err != nil {
				return err
			}
			s.say("sheet.imported", nil)
			return nil
		}

		ok, err := s.ui.Confirm(c.Context, s.tr.Translate("sheet.import_confirm", nil))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := e.ApplyFullImport(imported.Full); err != nil {
			return err
		}
		s.say("sheet.imported", nil)
		return nil
	})
}
