package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"serverrewards/internal/audit"
	"serverrewards/internal/cache"
	"serverrewards/internal/config"
	"serverrewards/internal/handler"
	"serverrewards/internal/middleware"
	"serverrewards/internal/migrate"
	"serverrewards/internal/provider"
	"serverrewards/internal/repository"
	"serverrewards/internal/router"
	"serverrewards/internal/service"
	"serverrewards/internal/session"
	"serverrewards/internal/store"

	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting ServerRewards API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	opts, err := config.LoadStoreOptions(cfg.App.OptionsPath)
	if err != nil {
		log.Fatalf("Failed to load store options: %v", err)
	}

	// Initialize document repository based on config
	docRepo, err := openRepository(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize %s storage: %v", cfg.Storage.Type, err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.RedisAddress(),
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis connection failed: %v", err)
		redisClient.Close()
		redisClient = nil
	} else {
		log.Println("Redis client initialized")
	}
	cancel()

	// Lookup cache and write-behind buffer
	var lookupCache cache.Cache
	var redisBuffer *cache.RedisDocumentBuffer
	if redisClient != nil {
		lookupCache = cache.NewRedisCache(redisClient, "serverrewards:lookups")

		if cfg.Cache.BufferEnabled {
			redisBuffer, err = cache.NewRedisDocumentBuffer(redisClient, cache.RedisBufferConfig{
				FlushInterval: cfg.Cache.FlushInterval,
			}, service.CreateFlushFunc(docRepo))
			if err != nil {
				log.Printf("Warning: Redis buffer initialization failed: %v", err)
				redisBuffer = nil
			} else {
				log.Println("Redis document buffer initialized")
			}
		}
	} else {
		memCache := cache.NewMemoryCache()
		defer memCache.Close()
		lookupCache = memCache
	}

	// External capabilities
	var providers provider.Set
	if cfg.Bridge.URL != "" {
		bridge, err := provider.NewBridge(provider.BridgeConfig{
			BaseURL: cfg.Bridge.URL,
			APIKey:  cfg.Bridge.APIKey,
			Timeout: cfg.Bridge.Timeout,
		})
		if err != nil {
			log.Fatalf("Failed to initialize bridge: %v", err)
		}
		providers = provider.FromBridge(bridge)
		providers = provider.NewCachedLookups(providers.Items, providers.Kits, lookupCache, cfg.Cache.TTL).Wrap(providers)
		log.Printf("Bridge initialized: %s", cfg.Bridge.URL)
	} else {
		log.Println("Warning: BRIDGE_URL not set, running without game host capabilities")
	}

	// Audit trail
	auditLog, err := audit.Open(cfg.Storage.AuditLogPath, opts.Options.Logs)
	if err != nil {
		log.Fatalf("Failed to open audit log: %v", err)
	}
	defer auditLog.Close()

	// Store and persistence
	st := store.New(store.Deps{
		Providers: providers,
		Audit:     auditLog,
		Options: store.Options{
			Navigation:   opts.Navigation,
			ExchangeRate: opts.Options.Rate(),
			HideDlc:      opts.Options.HideDlc,
			OwnedSkins:   opts.Options.OwnedSkins,
			NpcOnly:      opts.Options.NpcOnly,
		},
	})

	var dataService *service.DataService
	if redisBuffer != nil {
		dataService = service.NewDataServiceWithBuffer(st, docRepo, redisBuffer)
	} else {
		dataService = service.NewDataService(st, docRepo)
	}

	ctx, cancel = context.WithTimeout(context.Background(), time.Minute)
	if err := dataService.Load(ctx); err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}

	migrator := migrate.New(dataService.Documents(), st, func(ctx context.Context) error {
		_, err := dataService.Save(ctx)
		return err
	})
	if _, err := migrator.MoveLegacy(ctx); err != nil {
		log.Fatalf("Failed to move legacy data: %v", err)
	}
	if _, err := migrator.Run(ctx, cfg.Storage.ForceMigrate); err != nil {
		log.Fatalf("Failed to migrate legacy data: %v", err)
	}
	if st.ReconcileSellPrices(ctx) {
		log.Println("Added missing sell prices")
	}
	cancel()

	// Sessions and scheduler
	sessions := session.NewManager(st)
	scheduler := service.NewSaveScheduler(dataService, st, service.SaveConfig{
		SaveInterval:  cfg.Storage.SaveInterval,
		PruneInterval: cfg.Storage.PruneInterval,
	})

	// Initialize handlers
	checks := map[string]handler.CheckFunc{
		"storage": func(ctx context.Context) error {
			_, err := docRepo.GetStats(ctx)
			return err
		},
	}
	if redisBuffer != nil {
		checks["redis"] = func(ctx context.Context) error {
			_, err := redisBuffer.Count(ctx)
			return err
		}
	}
	healthHandler := handler.New(cfg.App.Name, cfg.App.Version, checks)
	playerHandler := handler.NewPlayerHandler(sessions)
	pointsHandler := handler.NewPointsHandler(st)
	adminCfg := handler.AdminConfig{
		Store:    st,
		Saver:    scheduler,
		Migrator: migrator,
		Sessions: sessions,
		Repo:     docRepo,
		DBType:   cfg.Storage.Type,
	}
	if redisBuffer != nil {
		adminCfg.Buffer = redisBuffer
	}
	adminHandler := handler.NewAdminHandler(adminCfg)

	if len(cfg.Auth.APIKeys) == 0 {
		log.Println("Warning: API_KEYS is empty, authenticated routes will reject every request")
	}
	authMiddleware := middleware.NewAuthMiddleware(middleware.AuthConfig{
		APIKeys: cfg.Auth.APIKeys,
	})
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RPS:   cfg.RateLimit.RPS,
		Burst: cfg.RateLimit.Burst,
	})

	// Create router
	r := router.New(router.Config{
		Handler:        healthHandler,
		PlayerHandler:  playerHandler,
		PointsHandler:  pointsHandler,
		AdminHandler:   adminHandler,
		AuthMiddleware: authMiddleware,
		RateLimiter:    rateLimiter,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	scheduler.Start()

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	scheduler.Stop()

	if n, err := dataService.Save(ctx); err != nil {
		log.Printf("Final save failed: %v", err)
	} else {
		log.Printf("Final save wrote %d document(s)", n)
	}

	// Close Redis buffer (flushes pending documents)
	if redisBuffer != nil {
		log.Println("Closing Redis buffer...")
		if err := redisBuffer.Close(); err != nil {
			log.Printf("Redis buffer close error: %v", err)
		}
	} else if redisClient != nil {
		redisClient.Close()
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	if err := docRepo.Close(); err != nil {
		log.Printf("Repository close error: %v", err)
	}

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}

// openRepository opens the document store selected by cfg.Type.
func openRepository(cfg *config.StorageConfig) (repository.DocumentRepository, error) {
	switch cfg.Type {
	case "mongodb", "mongo":
		repo, err := repository.NewMongoDBDocumentRepository(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, err
		}
		log.Println("MongoDB document repository initialized")
		return repo, nil
	case "postgres", "postgresql":
		repo, err := repository.NewPostgresDocumentRepository(cfg.PostgresDSN())
		if err != nil {
			return nil, err
		}
		log.Println("PostgreSQL document repository initialized")
		return repo, nil
	case "mysql":
		repo, err := repository.NewMySQLDocumentRepository(cfg.MySQLDSN())
		if err != nil {
			return nil, err
		}
		log.Println("MySQL document repository initialized")
		return repo, nil
	case "sqlite":
		repo, err := repository.NewSQLiteDocumentRepository(cfg.Path)
		if err != nil {
			return nil, err
		}
		log.Println("SQLite document repository initialized")
		return repo, nil
	case "file", "":
		repo, err := repository.NewFileDocumentRepository(cfg.DocumentDir())
		if err != nil {
			return nil, err
		}
		log.Printf("File document repository initialized at %s", cfg.DocumentDir())
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
