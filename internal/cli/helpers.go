// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/morganforge/pdftutor/internal/auth"
	"github.com/morganforge/pdftutor/internal/config"
	"github.com/morganforge/pdftutor/internal/controller"
	"github.com/morganforge/pdftutor/internal/model"
	"github.com/morganforge/pdftutor/internal/storage"
	"github.com/morganforge/pdftutor/internal/store"
	"github.com/morganforge/pdftutor/internal/tutor"
)

// GuestUID keys session storage for anonymous use. Signing in moves the
// user onto their own key space.
const GuestUID = "guest"

// =============================================================================
// APP WIRING
// =============================================================================

// App bundles the wired-up application for command handlers.
type App struct {
	Cfg      *config.Config
	Provider *auth.LocalProvider
	Backend  storage.Backend
	Store    *store.Store
	Client   *tutor.Client
	Ctrl     *controller.Controller
}

// NewApp loads configuration, resolves identity, opens the persistence
// backend, and wires the session store and tutor client together.
func NewApp(args Args) (*App, error) {
	setupLogging()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if args.Model != "" {
		cfg.Tutor.Model = args.Model
	}

	provider, err := auth.NewLocalProvider()
	if err != nil {
		return nil, fmt.Errorf("open identity store: %w", err)
	}
	provider.Resolve()

	backend, err := openBackend(cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage backend: %w", err)
	}

	st := store.New(currentUID(provider), backend)
	st.SetWarnFunc(func(err error) {
		fmt.Fprintf(os.Stderr, "Warning: failed to save sessions: %v\n", err)
	})
	if err := st.Load(); err != nil {
		backend.Close()
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	client := tutor.NewClient(cfg.Tutor.GeminiKey).
		WithModel(cfg.Tutor.Model).
		WithTimeout(tutorTimeout(cfg)).
		WithMaxRetries(cfg.Tutor.MaxRetries)

	return &App{
		Cfg:      cfg,
		Provider: provider,
		Backend:  backend,
		Store:    st,
		Client:   client,
		Ctrl:     controller.New(st, client),
	}, nil
}

// CreateSession starts a new chat for a document, honoring the configured
// ELIF default.
func (a *App) CreateSession(doc model.Document) *model.Session {
	sess := a.Store.Create(doc)
	if a.Cfg.UI.ELIFDefault {
		a.Store.SetELIFMode(sess.ID, true)
	}
	return sess
}

// Close flushes sessions and releases the backend.
func (a *App) Close() {
	a.Store.Flush()
	a.Backend.Close()
}

// User returns the signed-in user, or the zero User when signed out.
func (a *App) User() (auth.User, auth.State) {
	return a.Provider.Current()
}

func currentUID(provider auth.Provider) string {
	user, state := provider.Current()
	if state == auth.StateSignedIn {
		return user.UID
	}
	return GuestUID
}

func openBackend(cfg *config.Config) (storage.Backend, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		if cfg.Storage.SQLitePath != "" {
			return storage.NewSQLiteBackendWithPath(cfg.Storage.SQLitePath)
		}
		return storage.NewSQLiteBackend()
	default:
		if cfg.Storage.Dir != "" {
			return storage.NewFileBackendWithDir(cfg.Storage.Dir)
		}
		return storage.NewFileBackend()
	}
}

func tutorTimeout(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Tutor.TimeoutSecs) * time.Second
}

// setupLogging sends the standard logger to a file so API request logs
// never mix with command output.
func setupLogging() {
	dir, err := config.Dir()
	if err != nil {
		log.SetOutput(io.Discard)
		return
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		log.SetOutput(io.Discard)
		return
	}
	f, err := os.OpenFile(filepath.Join(dir, "pdftutor.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		log.SetOutput(io.Discard)
		return
	}
	log.SetOutput(f)
}

// ConfirmPrompt asks a yes/no question on stdin. Anything other than an
// explicit yes counts as no.
func ConfirmPrompt(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
