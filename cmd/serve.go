package cmd

import (
	"Trivium/config"
	"Trivium/middleware"
	"Trivium/routes"
	"Trivium/services/identity"
	"Trivium/services/match"
	"Trivium/services/redis"
	"Trivium/services/retention"
	"Trivium/services/social"
	"Trivium/services/socket_io"
	"Trivium/services/store"
	"Trivium/services/trivia"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "Trivium/config/swagger"

	"github.com/gin-gonic/gin"
)

type backends struct {
	rooms    store.RoomStore
	profiles store.ProfileStore
	friends  store.FriendStore
	close    func()
}

// openStores picks the persistence backend. With a cache, profile reads go
// through Redis first.
func openStores(cfg *config.Config, cache *redis.RedisClient) (*backends, error) {
	var b *backends
	switch cfg.Store {
	case config.StoreMemory:
		log.Println("Using in-memory store, data is lost on restart")
		mem := store.NewMemoryStore()
		b = &backends{rooms: mem, profiles: mem, friends: mem, close: func() {}}
	default:
		db, err := config.ConnectGORM(cfg)
		if err != nil {
			return nil, fmt.Errorf("error connecting to PostgreSQL: %w", err)
		}
		if cfg.MigratePostgres {
			log.Println("Migrating PostgreSQL database...")
			if err := config.MigrateDatabase(db); err != nil {
				log.Printf("Warning: Database migration failed: %v", err)
			}
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("error reading GORM PostgreSQL instance: %w", err)
		}
		b = &backends{
			rooms:    store.NewGormRoomStore(db),
			profiles: store.NewGormProfileStore(db),
			friends:  store.NewGormFriendStore(db),
			close:    func() { _ = sqlDB.Close() },
		}
	}

	if cache != nil {
		b.profiles = store.NewCachedProfileStore(b.profiles, cache)
	}
	return b, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	log.Println("Setting up server...")

	if cfg.Prod {
		gin.SetMode(gin.ReleaseMode)
	}

	verifier, err := identity.NewJWTVerifier(cfg.Key, cfg.TokenIssuer)
	if err != nil {
		return err
	}

	redisClient, err := config.ConnectRedis(ctx, cfg)
	if err != nil {
		return fmt.Errorf("error connecting to Redis: %w", err)
	}
	if redisClient != nil {
		defer redis.CloseRedis(redisClient)
	}

	stores, err := openStores(cfg, redisClient)
	if err != nil {
		return err
	}
	defer stores.close()

	sio := socket_io.NewServer()
	notifier := socket_io.NewNotifier(sio, stores.rooms)

	opts := match.Options{
		Rooms:     stores.rooms,
		Profiles:  stores.profiles,
		Questions: trivia.NewClient(cfg.TriviaURL, cfg.TriviaTimeout),
		Notifier:  notifier,
	}
	if redisClient != nil {
		opts.Snapshots = redisClient
	}
	manager := match.NewManager(opts)
	socialService := social.NewService(stores.profiles, stores.friends)

	sweeper, err := retention.NewScheduler(manager, cfg.RetentionPolicy(), cfg.SweepInterval, notifier)
	if err != nil {
		return err
	}
	sweeper.Start()
	defer func() {
		if err := sweeper.Stop(); err != nil {
			log.Printf("[SWEEP] stopping scheduler: %v", err)
		}
	}()

	r := gin.New()
	middleware.SetUpMiddleware(r, cfg.AllowedOrigins)
	sio.Start(r, verifier, notifier, cfg.AllowedOrigins)
	defer sio.Close()

	routes.SetupRoutes(r, routes.Dependencies{
		Matches:   manager,
		Social:    socialService,
		Questions: opts.Questions,
		Verifier:  verifier,
		Online:    sio,
		PublicURL: cfg.PublicURL,
	})

	// No WriteTimeout: it would also cut upgraded websocket connections.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Server started on %s", srv.Addr)
		var err error
		if cfg.UseHTTPS {
			err = srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	return nil
}
