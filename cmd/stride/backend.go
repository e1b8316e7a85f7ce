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

	"github.com/poiesic/stride/core"
	"github.com/poiesic/stride/store"
	"github.com/urfave/cli/v2"
)

func backendCommand() *cli.Command {
	return &cli.Command{
		Name:  "backend",
		Usage: "Select and inspect the storage backend",
		Subcommands: []*cli.Command{
			{
				Name:      "use",
				Usage:     "Select a backend mode and root (directory, private, keyvalue, remote)",
				ArgsUsage: "<mode> [target]",
				Action:    backendUseAction,
			},
			{
				Name:   "status",
				Usage:  "Show the persisted backend selection",
				Action: backendStatusAction,
			},
			{
				Name:   "verify",
				Usage:  "Re-verify that the selected root is still reachable",
				Action: backendVerifyAction,
			},
			{
				Name:   "forget",
				Usage:  "Forget the stored backend configuration",
				Action: backendForgetAction,
			},
		},
	}
}

func backendUseAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: backend use <mode> [target]")
	}
	mode := core.BackendMode(c.Args().Get(0))
	if err := core.ValidateMode(mode); err != nil {
		return err
	}
	target := c.Args().Get(1)

	return withSession(c, func(s *session) error {
		backend, err := s.app.Backend(mode)
		if err != nil {
			return err
		}
		ref, err := backend.SelectRoot(c.Context, target)
		if err != nil {
			return err
		}
		if ref == nil {
			s.say("backend.denied", nil)
			return nil
		}
		s.say("backend.selected", map[string]any{"name": ref.BaseName})
		return nil
	})
}

func backendStatusAction(c *cli.Context) error {
	return withSession(c, func(s *session) error {
		ref := s.app.Selector().Current()
		if ref == nil {
			s.say("backend.not_configured", nil)
			return nil
		}
		fmt.Printf("mode: %s\nroot: %s\nname: %s\n", ref.Mode, ref.Ref, ref.BaseName)
		return nil
	})
}

func backendVerifyAction(c *cli.Context) error {
	return withSession(c, func(s *session) error {
		backend, err := s.app.CurrentBackend()
		if err != nil {
			s.say("backend.not_configured", nil)
			return nil
		}
		ref := backend.VerifyRoot(c.Context)
		if ref == nil {
			s.say("backend.root_lost", nil)
			return nil
		}
		fmt.Printf("ok: %s (%s)\n", ref.BaseName, ref.Mode)
		return nil
	})
}

func backendForgetAction(c *cli.Context) error {
	return withSession(c, func(s *session) error {
		backend, err := s.app.CurrentBackend()
		if err != nil {
			return s.app.Selector().Clear()
		}
		if sb, ok := backend.(store.SessionBackend); ok {
			if err := sb.ForgetConfiguration(c.Context); err != nil {
				return err
			}
		} else if err := s.app.Selector().Clear(); err != nil {
			return err
		}
		s.say("backend.forgotten", nil)
		return nil
	})
}
