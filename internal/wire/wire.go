// Package wire provides dependency injection for the fieldforms application.
// It creates singleton services with lazy initialization and owns the link
// between the persisted configuration and the in-memory identity session.
package wire

import (
	"context"
	"log"
	"sync"

	"github.com/example/fieldforms/internal/adapters/connectivity"
	"github.com/example/fieldforms/internal/adapters/remote"
	"github.com/example/fieldforms/internal/adapters/sqlite"
	"github.com/example/fieldforms/internal/app"
	"github.com/example/fieldforms/internal/config"
	"github.com/example/fieldforms/internal/core/identity"
	"github.com/example/fieldforms/internal/db"
	"github.com/example/fieldforms/internal/ports/primary"
)

var (
	cfg             *config.Config
	cfgDir          string
	identitySession *identity.Session
	formService     *app.FormServiceImpl
	syncService     primary.SyncService
	once            sync.Once
)

// FormService returns the singleton FormService instance.
func FormService() primary.FormService {
	once.Do(initServices)
	return formService
}

// SyncService returns the singleton SyncService instance.
func SyncService() primary.SyncService {
	once.Do(initServices)
	return syncService
}

// Config returns the loaded configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// ResumeCapture rebuilds the in-memory capture state from the active local
// draft. It reports false when no draft exists; an edit session then needs an
// explicit edit load to continue.
func ResumeCapture(ctx context.Context) (bool, error) {
	once.Do(initServices)
	return formService.ResumeActive(ctx)
}

// SaveSession writes the resumable reference (active submission id, mode,
// locked creation timestamp) back to config.json. CLI commands call it after
// any operation that may have moved the identity, so the next invocation
// resumes the same record instead of creating a duplicate.
func SaveSession() error {
	once.Do(initServices)
	ident := identitySession.Current()
	cfg.ActiveSubmissionID = ident.SubmissionID
	cfg.Mode = string(ident.Mode)
	cfg.CreatedAtLocked = ident.CreatedAt
	return config.SaveConfig(cfgDir, cfg)
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	dir, err := config.Dir()
	if err != nil {
		log.Fatalf("failed to locate config directory: %v", err)
	}
	cfgDir = dir

	cfg, err = config.LoadConfig(cfgDir)
	if err != nil {
		// Not initialized yet; run with an empty config so read-only commands
		// still work. Anything touching the store will say what is missing.
		cfg = &config.Config{Version: "1.0"}
	}
	deviceID := config.EnsureDeviceID(cfg)

	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	repo := sqlite.NewSubmissionRepository(database)
	client := remote.NewClient(cfg.APIURL, cfg.AccessKey)
	checker := connectivity.NewProbe(cfg.APIURL)

	identitySession = identity.Restore(cfg.ActiveSubmissionID, identity.Mode(cfg.Mode), cfg.CreatedAtLocked)

	syncService = app.NewSyncService(repo, client, checker)
	formService = app.NewFormService(identitySession, repo, client, checker, syncService, deviceID)
}
