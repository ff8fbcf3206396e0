// Package server wires the litmgmt components together and runs them: it
// restores the snapshot, serves HTTP, saves periodically if configured and
// writes a final snapshot on shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/litmgmt/internal/logging"
	"github.com/dmitrijs2005/litmgmt/internal/server/auth"
	"github.com/dmitrijs2005/litmgmt/internal/server/collections"
	"github.com/dmitrijs2005/litmgmt/internal/server/config"
	"github.com/dmitrijs2005/litmgmt/internal/server/httpapi"
	"github.com/dmitrijs2005/litmgmt/internal/server/ids"
	"github.com/dmitrijs2005/litmgmt/internal/server/repositories/snapshots"
	"github.com/dmitrijs2005/litmgmt/internal/server/snapshot"
	"github.com/dmitrijs2005/litmgmt/internal/server/users"
)

// finalSaveTimeout bounds the shutdown save; the run context is already
// cancelled by then.
const finalSaveTimeout = 30 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	users  *users.Directory
	store  *collections.Store
	codec  *snapshot.Codec
	http   *httpapi.HTTPServer
	closer io.Closer
}

// seams for tests
var (
	openPostgres = snapshots.OpenPostgres
	newS3Client  = func(ctx context.Context, o snapshots.S3Options) (snapshots.ObjectAPI, error) {
		return snapshots.NewS3Client(ctx, o)
	}
)

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	repo, closer, err := newRepository(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("snapshot storage init error: %w", err)
	}

	alloc := ids.NewAllocator()
	issuer := auth.NewIssuer([]byte(c.SecretKey))
	dir := users.NewDirectory(alloc, issuer, logger)
	store := collections.NewStore(alloc, logger)

	return &App{
		config: c,
		logger: logger.With("module", "app"),
		users:  dir,
		store:  store,
		codec:  snapshot.NewCodec(alloc, dir, store, repo, logger),
		http:   httpapi.NewHTTPServer(c.HTTPAddr, c.ShutdownTimeout, logger, dir, store, issuer),
		closer: closer,
	}, nil
}

func newRepository(ctx context.Context, c *config.Config) (snapshots.Repository, io.Closer, error) {
	switch c.SnapshotBackend {
	case config.BackendFile, "":
		return snapshots.NewFileRepository(c.SnapshotPath), nil, nil

	case config.BackendPostgres:
		db, err := openPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		repo := snapshots.NewPostgresRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo, db, nil

	case config.BackendS3:
		client, err := newS3Client(ctx, snapshots.S3Options{
			Region:       c.S3Region,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			return nil, nil, err
		}
		return snapshots.NewS3Repository(client, c.S3Bucket, c.S3Key), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown snapshot backend %q", c.SnapshotBackend)
	}
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) autosave(ctx context.Context) {
	ticker := time.NewTicker(app.config.SaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := app.codec.Save(ctx); err != nil {
				app.logger.Error(ctx, "autosave failed", "error", err)
			}
		}
	}
}

// Run restores the state and serves until ctx is cancelled or a signal
// arrives. In-flight requests are drained before the final save.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(ctx, cancelFunc)

	app.codec.Load(ctx)

	var wg sync.WaitGroup
	if app.config.SaveInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.autosave(ctx)
		}()
	}

	serveErr := app.http.Run(ctx)
	if serveErr != nil {
		app.logger.Error(ctx, "HTTP server failed", "error", serveErr)
	}
	cancelFunc()
	wg.Wait()

	saveCtx, cancel := context.WithTimeout(context.Background(), finalSaveTimeout)
	defer cancel()
	saveErr := app.codec.Save(saveCtx)

	var closeErr error
	if app.closer != nil {
		closeErr = app.closer.Close()
	}

	app.logger.Info(saveCtx, "App stopped")
	return errors.Join(serveErr, saveErr, closeErr)
}
