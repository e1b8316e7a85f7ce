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
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/stride/core"
	"github.com/poiesic/stride/photolog"
	"github.com/urfave/cli/v2"
)

func photoCommand() *cli.Command {
	return &cli.Command{
		Name:  "photo",
		Usage: "Manage the client photo logbook",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Log photos for a client",
				ArgsUsage: "<file>...",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "client", Aliases: []string{"c"}, Required: true},
					&cli.StringFlag{Name: "location"},
					&cli.StringFlag{Name: "note"},
				},
				Action: photoAddAction,
			},
			{
				Name:  "list",
				Usage: "List logged items grouped by day",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "date", Usage: "Only show one day (YYYY-MM-DD)"},
				},
				Action: photoListAction,
			},
			{
				Name:      "rm",
				Usage:     "Delete one item",
				ArgsUsage: "<item-id>",
				Action:    photoRemoveAction,
			},
			{
				Name:   "clear",
				Usage:  "Delete every stored item",
				Action: photoClearAction,
			},
			{
				Name:      "export",
				Usage:     "Export the photo log to a JSON file",
				ArgsUsage: "<file>",
				Action:    photoExportAction,
			},
			{
				Name:      "import",
				Usage:     "Import a photo log JSON file",
				ArgsUsage: "<file>",
				Action:    photoImportAction,
			},
			{
				Name:      "save-all",
				Usage:     "Copy every item into another backend",
				ArgsUsage: "<mode> [target]",
				Action:    photoSaveAllAction,
			},
		},
	}
}

func currentPhotoLog(s *session) (*photolog.Service, error) {
	backend, err := s.app.CurrentBackend()
	if err != nil {
		return nil, err
	}
	return s.app.PhotoLog(backend), nil
}

func sniffMime(name string, data []byte) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	}
	return http.DetectContentType(data)
}

func photoAddAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("usage: photo add --client <name> <file>...")
	}
	return withSession(c, func(s *session) error {
		log, err := currentPhotoLog(s)
		if err != nil {
			return err
		}
		var files []photolog.File
		for _, path := range c.Args().Slice() {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			name := filepath.Base(path)
			files = append(files, photolog.File{Name: name, Mime: sniffMime(name, data), Data: data})
		}
		item, err := log.Add(c.Context, c.String("client"), c.String("location"), c.String("note"), files)
		if err != nil {
			return err
		}
		s.say("photos.added", map[string]any{"count": len(item.Images), "client": item.Client})
		fmt.Printf("id: %s\n", item.ID)
		return nil
	})
}

func photoListAction(c *cli.Context) error {
	return withSession(c, func(s *session) error {
		log, err := currentPhotoLog(s)
		if err != nil {
			return err
		}
		items, err := log.List(c.Context)
		if err != nil {
			return err
		}
		groups := photolog.FilterGroups(photolog.Groups(items), c.String("date"))
		if len(groups) == 0 {
			s.say("photos.empty", nil)
			return nil
		}
		for _, g := range groups {
			fmt.Println(g.Date)
			for _, it := range g.Items {
				fmt.Printf("  %s  %-20s %-15s %d photo(s)\n", it.Meta.ID, it.Meta.Client, it.Meta.Location, len(it.Images))
				if it.Meta.Note != "" {
					fmt.Printf("      note: %s\n", it.Meta.Note)
				}
			}
		}
		return nil
	})
}

func photoRemoveAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: photo rm <item-id>")
	}
	return withSession(c, func(s *session) error {
		log, err := currentPhotoLog(s)
		if err != nil {
			return err
		}
		if err := log.Delete(c.Context, c.Args().First()); err != nil {
			return err
		}
		s.say("photos.deleted", nil)
		return nil
	})
}

func photoClearAction(c *cli.Context) error {
	return withSession(c, func(s *session) error {
		log, err := currentPhotoLog(s)
		if err != nil {
			return err
		}
		ok, err := s.ui.Confirm(c.Context, s.tr.Translate("photos.clear_confirm", nil))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := log.Clear(c.Context); err != nil {
			return err
		}
		s.say("photos.cleared", nil)
		return nil
	})
}

func photoExportAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: photo export <file>")
	}
	return withSession(c, func(s *session) error {
		log, err := currentPhotoLog(s)
		if err != nil {
			return err
		}
		payload, err := log.Export(c.Context)
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

func photoImportAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: photo import <file>")
	}
	return withSession(c, func(s *session) error {
		log, err := currentPhotoLog(s)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(c.Args().First())
		if err != nil {
			return err
		}
		payload, err := photolog.ParseExport(data)
		if err != nil {
			s.say("photos.import_failed", map[string]any{"message": err.Error()})
			return err
		}
		if err := log.ApplyImport(c.Context, payload); err != nil {
			s.say("photos.import_failed", map[string]any{"message": err.Error()})
			return err
		}
		s.say("photos.imported", nil)
		return nil
	})
}

func photoSaveAllAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: photo save-all <mode> [target]")
	}
	mode := core.BackendMode(c.Args().Get(0))
	if err := core.ValidateMode(mode); err != nil {
		return err
	}
	return withSession(c, func(s *session) error {
		source, err := s.app.CurrentBackend()
		if err != nil {
			return err
		}
		sourceRef := s.app.Selector().Current()

		// The selection slot is shared, so read everything out of the
		// source before pointing it at the target.
		raws, err := source.ListItems(c.Context)
		if err != nil {
			return err
		}

		target, err := s.app.Backend(mode)
		if err != nil {
			return err
		}
		ref, err := target.SelectRoot(c.Context, c.Args().Get(1))
		if err != nil {
			return err
		}
		if ref == nil {
			s.say("backend.denied", nil)
			return nil
		}

		var saveErr error
		n := 0
		for _, raw := range raws {
			if err := target.WriteItem(c.Context, raw.Meta, raw.Blobs); err != nil {
				saveErr = fmt.Errorf("save item %s: %w", raw.Meta.ID, err)
				break
			}
			n++
		}
		if err := s.app.Selector().Save(sourceRef); err != nil {
			return err
		}
		if saveErr != nil {
			return saveErr
		}
		s.say("photos.saved_all", map[string]any{"count": n})
		return nil
	})
}
