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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/stride"
	"github.com/poiesic/stride/dialog"
	"github.com/poiesic/stride/i18n"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "stride",
		Usage: "Parcel tracking sheet and client photo logbook",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "config-dir",
				Usage: "Override the config directory",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Answer yes to every confirmation",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			backendCommand(),
			photoCommand(),
			sheetCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// session bundles everything a command needs for one invocation.
type session struct {
	app *stride.App
	ui  *dialog.Service
	tr  *i18n.Catalog
}

// say resolves a message key and prints it for the user.
func (s *session) say(key string, params map[string]any) {
	fmt.Println(s.tr.Translate(key, params))
}

// withSession opens the application, the translation catalog, and a
// terminal dialog runner, runs fn, and tears everything down.
func withSession(c *cli.Context, fn func(s *session) error) error {
	var opts []stride.AppOption
	if dir := c.String("config-dir"); dir != "" {
		opts = append(opts, stride.WithConfigDir(dir))
	}
	app, err := stride.NewApp(opts...)
	if err != nil {
		return err
	}
	defer app.Close()

	tr, err := i18n.Load(app.Config().Language)
	if err != nil {
		return err
	}

	ui := dialog.NewService()
	defer ui.Close()
	if c.Bool("yes") {
		go autoConfirm(ui)
	} else {
		go dialog.RunTerminal(ui, os.Stdin, os.Stdout)
	}

	return fn(&session{app: app, ui: ui, tr: tr})
}

// autoConfirm resolves every request affirmatively, keeping prompts at
// their defaults.
func autoConfirm(ui *dialog.Service) {
	for {
		select {
		case <-ui.Done():
			return
		case req := <-ui.Requests():
			req.Resolve(dialog.Response{OK: true})
		}
	}
}

func todayISO() string {
	return time.Now().Local().Format("2006-01-02")
}
