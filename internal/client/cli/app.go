package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/inclick-mx/inclick-cli/internal/client/auth"
	"github.com/inclick-mx/inclick-cli/internal/client/avatars"
	"github.com/inclick-mx/inclick-cli/internal/client/catalog"
	"github.com/inclick-mx/inclick-cli/internal/client/config"
	"github.com/inclick-mx/inclick-cli/internal/client/onboarding"
	"github.com/inclick-mx/inclick-cli/internal/client/profile"
	"github.com/inclick-mx/inclick-cli/internal/client/session"
	"github.com/inclick-mx/inclick-cli/internal/client/storage"
	"github.com/inclick-mx/inclick-cli/internal/client/ui"
	"github.com/inclick-mx/inclick-cli/internal/filex"
	"github.com/inclick-mx/inclick-cli/internal/logging"
)

const deviceKeySize = 32

// App wires the stores and services behind the interactive shell.
type App struct {
	config     *config.Config
	log        logging.Logger
	db         *sql.DB
	provider   *session.HTTPClient
	authStore  *auth.Store
	onboarding *onboarding.Store
	prefs      *ui.Store
	catalog    *catalog.Client
	avatars    *avatars.Service
	reader     *bufio.Reader
}

// NewApp builds the full dependency graph from cfg: local database, secure
// store, session provider, profile repository, and the three state stores.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	dataDir, err := filex.EnsureDir(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(ctx, filepath.Join(dataDir, "inclick.db"))
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	deviceSecret, err := filex.LoadOrCreateDeviceKey(filepath.Join(dataDir, "device.key"), deviceKeySize)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	kv := storage.NewSQLiteStore(db)
	secure := storage.NewSecureStore(kv, deviceSecret)

	provider := session.NewHTTPClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, secure, log)

	repo := profile.NewPostgRESTRepository(cfg.SupabaseURL, cfg.SupabaseAnonKey, func(ctx context.Context) (string, error) {
		s, err := provider.CurrentSession(ctx)
		if err != nil || s == nil {
			return "", err
		}
		return s.AccessToken, nil
	}, log)

	authStore := auth.New(provider, repo, log)
	onboardingStore := onboarding.New(ctx, kv, log)
	prefs := ui.New(ctx, kv, nil, log)
	catalogClient := catalog.New(cfg.NexusAPIURL, secure, log)

	avatarSvc, err := avatars.New(ctx, avatars.Config{
		Region:        cfg.S3Region,
		BaseEndpoint:  cfg.S3BaseEndpoint,
		Bucket:        cfg.S3Bucket,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.S3PublicBaseURL,
	}, log)
	if err != nil {
		log.Warn(ctx, "avatar uploads unavailable", "error", err)
		avatarSvc = nil
	}

	return &App{
		config:     cfg,
		log:        log,
		db:         db,
		provider:   provider,
		authStore:  authStore,
		onboarding: onboardingStore,
		prefs:      prefs,
		catalog:    catalogClient,
		avatars:    avatarSvc,
		reader:     bufio.NewReader(os.Stdin),
	}, nil
}

// Run resolves the persisted session, starts the background token refresher,
// and enters the interactive shell.
func (a *App) Run(ctx context.Context) error {
	defer func() { _ = a.db.Close() }()
	defer a.authStore.Close()

	if err := a.authStore.Initialize(ctx); err != nil {
		return err
	}

	refreshCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.provider.StartAutoRefresh(refreshCtx, a.config.SessionRefreshInterval)

	a.Root(ctx)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.authStore.State().Status == auth.StatusAuthenticated
}
