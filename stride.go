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

// Package stride wires the parcel sheet and photo logbook together: one
// preference store, one configuration, a hydration pool, and whichever
// storage backend the user last selected.
package stride

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/poiesic/stride/config"
	"github.com/poiesic/stride/core"
	"github.com/poiesic/stride/hydrate"
	"github.com/poiesic/stride/photolog"
	"github.com/poiesic/stride/prefs"
	"github.com/poiesic/stride/sheet"
	"github.com/poiesic/stride/store"
	"github.com/poiesic/stride/store/appfs"
	"github.com/poiesic/stride/store/badgerkv"
	"github.com/poiesic/stride/store/dirfs"
	"github.com/poiesic/stride/store/s3remote"
)

// App owns the shared state of one session.
type App struct {
	cfg      *config.Config
	prefs    *prefs.Store
	selector *store.Selector
	hydrator *hydrate.Service
	logger   *slog.Logger

	// lazily opened, closed with the app
	kvBackend *badgerkv.Backend
	s3Backend *s3remote.Backend
}

// AppOption configures an App.
type AppOption func(*appOptions)

type appOptions struct {
	configDir string
}

// WithConfigDir overrides the per-user config directory.
func WithConfigDir(dir string) AppOption {
	return func(o *appOptions) { o.configDir = dir }
}

func NewApp(opts ...AppOption) (*App, error) {
	options := &appOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.configDir == "" {
		dir, err := config.DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		options.configDir = dir
	}

	cfg, err := config.Load(options.configDir)
	if err != nil {
		return nil, err
	}
	p, err := prefs.Open(filepath.Join(cfg.DataDir, "state.json"))
	if err != nil {
		return nil, err
	}
	hydrator, err := hydrate.NewService()
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:      cfg,
		prefs:    p,
		selector: store.NewSelector(p),
		hydrator: hydrator,
		logger:   slog.Default(),
	}, nil
}

func (a *App) Close() error {
	if a.s3Backend != nil {
		if err := a.s3Backend.Close(); err != nil {
			a.logger.Error("error closing remote backend", "err", err)
		}
	}
	if a.kvBackend != nil {
		if err := a.kvBackend.Close(); err != nil {
			a.logger.Error("error closing key-value backend", "err", err)
			return err
		}
	}
	return a.hydrator.Close()
}

// Config returns the loaded configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Prefs returns the shared preference store.
func (a *App) Prefs() *prefs.Store {
	return a.prefs
}

// Selector returns the backend selector holding the persisted root.
func (a *App) Selector() *store.Selector {
	return a.selector
}

// Backend builds the storage backend for a mode. The key-value and remote
// backends are cached so their underlying handles are opened once.
func (a *App) Backend(mode core.BackendMode) (store.Backend, error) {
	switch mode {
	case core.ModeDirectory:
		return dirfs.New(a.selector), nil
	case core.ModePrivate:
		return appfs.New(a.selector, a.cfg.DataDir), nil
	case core.ModeKeyValue:
		if a.kvBackend == nil {
			a.kvBackend = badgerkv.New(a.selector)
		}
		return a.kvBackend, nil
	case core.ModeRemote:
		if a.s3Backend == nil {
			backend, err := a.openRemote()
			if err != nil {
				return nil, err
			}
			a.s3Backend = backend
		}
		return a.s3Backend, nil
	}
	return nil, fmt.Errorf("%w: %q", core.ErrInvalidMode, string(mode))
}

// CurrentBackend resolves the backend for the persisted mode, or
// store.ErrNotConfigured when no root was ever selected.
func (a *App) CurrentBackend() (store.Backend, error) {
	ref := a.selector.Current()
	if ref == nil {
		return nil, store.ErrNotConfigured
	}
	return a.Backend(ref.Mode)
}

func (a *App) openRemote() (*s3remote.Backend, error) {
	s3cfg := a.cfg.S3
	if !s3cfg.Configured() {
		return nil, fmt.Errorf("%w: remote backend needs s3.endpoint and s3.bucket", store.ErrNotConfigured)
	}
	client := s3remote.NewClient(s3cfg.Endpoint, s3cfg.Region, s3remote.Credentials{
		AccessKey: s3cfg.AccessKey,
		SecretKey: s3cfg.SecretKey,
	}, s3cfg.PathStyle)
	return s3remote.New(a.selector, client,
		s3remote.WithPreview(hydrate.Thumbnail),
		s3remote.WithListingCap(s3cfg.ListingCap),
	)
}

// PhotoLog builds the photo logbook service over the given backend.
func (a *App) PhotoLog(backend store.Backend) *photolog.Service {
	return photolog.NewService(backend, a.hydrator, a.prefs)
}

// Sheet opens the sheet editor for a date.
func (a *App) Sheet(dateISO string) *sheet.Editor {
	return sheet.NewEditor(a.prefs, dateISO)
}
