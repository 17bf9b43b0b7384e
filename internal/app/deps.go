package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/unera/backend/internal/auth"
	"github.com/unera/backend/internal/config"
	"github.com/unera/backend/internal/countries"
	"github.com/unera/backend/internal/db"
	"github.com/unera/backend/internal/handlers"
	"github.com/unera/backend/internal/media"
	"github.com/unera/backend/internal/messaging"
	"github.com/unera/backend/internal/middleware"
	"github.com/unera/backend/internal/models"
	"github.com/unera/backend/internal/music"
	"github.com/unera/backend/internal/persist"
	"github.com/unera/backend/internal/social"
	"github.com/unera/backend/internal/store"
)

const (
	redisStatePrefix   = "unera:state:"
	redisSessionPrefix = "unera:session:"
)

// runtime holds the wired service graph of a serving process.
type runtime struct {
	handler  http.Handler
	service  *social.Service
	ingestor *media.Ingestor
	loader   *countries.Loader
	closers  []func(context.Context) error
}

// Close stops background work and releases connections in reverse order of acquisition.
func (r *runtime) Close(ctx context.Context) error {
	var errs []error
	if r.loader != nil {
		r.loader.Detach()
	}
	if r.ingestor != nil {
		if err := r.ingestor.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown ingestor: %w", err))
		}
	}
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// stateBackend is the persisted-state and refresh-token storage selected by configuration.
type stateBackend struct {
	kv       persist.KV
	sessions auth.SessionStore
	closers  []func(context.Context) error
}

func openStateBackend(ctx context.Context, cfg config.Config) (stateBackend, error) {
	switch cfg.StateBackend {
	case config.BackendRedis:
		client, err := persist.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return stateBackend{}, err
		}
		return stateBackend{
			kv:       persist.NewRedisKV(client, redisStatePrefix),
			sessions: persist.NewRedisSessionStore(client, redisSessionPrefix),
			closers:  []func(context.Context) error{func(context.Context) error { return client.Close() }},
		}, nil
	case config.BackendPostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return stateBackend{}, err
		}
		return stateBackend{
			kv:       persist.NewPostgresKV(pool),
			sessions: persist.NewPostgresSessionStore(pool),
			closers:  []func(context.Context) error{func(context.Context) error { pool.Close(); return nil }},
		}, nil
	default:
		return stateBackend{
			kv:       persist.NewMemoryKV(),
			sessions: auth.NewInMemorySessionStore(),
		}, nil
	}
}

func openMediaStorage(ctx context.Context, cfg config.Config) (media.Storage, error) {
	if cfg.ObjectStore.Bucket == "" {
		return media.NewMemoryStorage(""), nil
	}
	return media.NewS3Storage(ctx, cfg.ObjectStore)
}

func openPublisher(cfg config.Config) (messaging.Publisher, func(context.Context) error, error) {
	if cfg.NATSURL == "" {
		return messaging.Nop{}, nil, nil
	}
	conn, err := messaging.Connect(cfg.NATSURL, "unera-backend")
	if err != nil {
		return nil, nil, err
	}
	publisher := messaging.NewNATSPublisher(conn, cfg.NATSSubjectRoot)
	return publisher, func(context.Context) error { return publisher.Close() }, nil
}

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, cfg config.Config, logger *slog.Logger) (*runtime, error) {
	rt := &runtime{}
	fail := func(err error) (*runtime, error) {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = rt.Close(closeCtx)
		return nil, err
	}

	backend, err := openStateBackend(ctx, cfg)
	if err != nil {
		return fail(fmt.Errorf("open state backend: %w", err))
	}
	rt.closers = append(rt.closers, backend.closers...)
	localState := persist.NewLocalState(backend.kv)

	storage, err := openMediaStorage(ctx, cfg)
	if err != nil {
		return fail(fmt.Errorf("open media storage: %w", err))
	}

	publisher, closePublisher, err := openPublisher(cfg)
	if err != nil {
		return fail(fmt.Errorf("open event publisher: %w", err))
	}
	if closePublisher != nil {
		rt.closers = append(rt.closers, closePublisher)
	}

	users, err := loadRoster(ctx, localState, cfg.SeedFile, logger)
	if err != nil {
		return fail(err)
	}

	initial, err := loadContent(cfg.ContentSeedFile, users, time.Now())
	if err != nil {
		return fail(err)
	}
	initial.Users = users

	rt.service = social.New(social.Deps{
		Store:     store.New(initial),
		Roster:    localState,
		Media:     storage,
		Publisher: publisher,
		StoryTTL:  cfg.StoryTTL,
	})
	rt.ingestor = media.NewIngestor(storage, rt.service, media.IngestorConfig{
		QueueSize: cfg.IngestQueue,
		Workers:   cfg.IngestWorkers,
	}, logger)
	rt.service.UseIngestor(rt.ingestor)

	provider := countries.NewFallbackProvider(
		countries.NewCachingProvider(countries.NewHTTPProvider(cfg.CountriesURL, cfg.CountriesTimeout), cfg.CountriesTTL),
		countries.Fallback(),
	)
	rt.loader = countries.NewLoader(provider)

	manager := auth.NewManager([]byte(cfg.TokenSecret), cfg.AccessTTL, cfg.RefreshTTL, backend.sessions)

	rt.handler = handlers.NewRouter(handlers.Dependencies{
		Logger:         logger,
		Accounts:       rt.service,
		Posts:          rt.service,
		Reels:          rt.service,
		Groups:         rt.service,
		Events:         rt.service,
		Marketplace:    rt.service,
		Messages:       rt.service,
		Sessions:       manager,
		Tokens:         manager,
		Countries:      rt.loader,
		Music:          music.Default(),
		Limiter:        middleware.NewKeyedLimiter(cfg.SubmitRate, cfg.SubmitBurst, 10*time.Minute),
		AllowedOrigins: cfg.AllowedOrigins,
		HealthChecks:   map[string]handlers.HealthCheck{"state": stateCheck(backend.kv)},
	})
	return rt, nil
}

// loadRoster restores the persisted roster. A fresh or corrupt state falls back to the seed
// roster when the seed file exists.
func loadRoster(ctx context.Context, state *persist.LocalState, seedFile string, logger *slog.Logger) ([]models.User, error) {
	users, err := state.Users(ctx)
	switch {
	case err == nil:
		logger.Info("restored persisted roster", "users", len(users))
		return users, nil
	case errors.Is(err, persist.ErrNotFound), errors.Is(err, persist.ErrCorrupt):
		if errors.Is(err, persist.ErrCorrupt) {
			logger.Warn("discarding corrupt roster", "error", err)
		}
	default:
		return nil, fmt.Errorf("load roster: %w", err)
	}

	if seedFile == "" {
		return nil, nil
	}
	f, err := os.Open(seedFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	users, err = parseSeed(f, 0)
	if err != nil {
		return nil, err
	}
	if err := state.SaveUsers(ctx, users); err != nil {
		return nil, fmt.Errorf("persist seed roster: %w", err)
	}
	logger.Info("seeded roster", "users", len(users), "file", seedFile)
	return users, nil
}

// stateCheck reports whether the persisted-state backend answers reads. A missing roster key
// is healthy.
func stateCheck(kv persist.KV) handlers.HealthCheck {
	return func(ctx context.Context) error {
		_, err := kv.Get(ctx, persist.UsersKey)
		if err != nil && !errors.Is(err, persist.ErrNotFound) {
			return err
		}
		return nil
	}
}
