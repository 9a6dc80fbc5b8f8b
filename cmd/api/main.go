package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/listly-app/shopping-list-api/internal/adapters/httpapi"
	memitemrepo "github.com/listly-app/shopping-list-api/internal/adapters/memory/itemrepo"
	memlistrepo "github.com/listly-app/shopping-list-api/internal/adapters/memory/listrepo"
	memrolerepo "github.com/listly-app/shopping-list-api/internal/adapters/memory/rolerepo"
	memuserrepo "github.com/listly-app/shopping-list-api/internal/adapters/memory/userrepo"
	mongoadapter "github.com/listly-app/shopping-list-api/internal/adapters/mongo"
	mgitemrepo "github.com/listly-app/shopping-list-api/internal/adapters/mongo/itemrepo"
	mglistrepo "github.com/listly-app/shopping-list-api/internal/adapters/mongo/listrepo"
	mgrolerepo "github.com/listly-app/shopping-list-api/internal/adapters/mongo/rolerepo"
	mguserrepo "github.com/listly-app/shopping-list-api/internal/adapters/mongo/userrepo"
	"github.com/listly-app/shopping-list-api/internal/adapters/postgres"
	pgitemrepo "github.com/listly-app/shopping-list-api/internal/adapters/postgres/itemrepo"
	pglistrepo "github.com/listly-app/shopping-list-api/internal/adapters/postgres/listrepo"
	pgrolerepo "github.com/listly-app/shopping-list-api/internal/adapters/postgres/rolerepo"
	pguserrepo "github.com/listly-app/shopping-list-api/internal/adapters/postgres/userrepo"
	redisrolecache "github.com/listly-app/shopping-list-api/internal/adapters/rediscache/rolecache"
	"github.com/listly-app/shopping-list-api/internal/app/accounts"
	"github.com/listly-app/shopping-list-api/internal/app/authz"
	"github.com/listly-app/shopping-list-api/internal/app/graph"
	"github.com/listly-app/shopping-list-api/internal/app/items"
	"github.com/listly-app/shopping-list-api/internal/app/lists"
	"github.com/listly-app/shopping-list-api/internal/app/roles"
	"github.com/listly-app/shopping-list-api/internal/app/seed"
	"github.com/listly-app/shopping-list-api/internal/metrics"
	"github.com/listly-app/shopping-list-api/internal/platform/auth/tokens"
	platformclock "github.com/listly-app/shopping-list-api/internal/platform/clock"
	"github.com/listly-app/shopping-list-api/internal/platform/config"
	itemrepoport "github.com/listly-app/shopping-list-api/internal/ports/out/itemrepo"
	listrepoport "github.com/listly-app/shopping-list-api/internal/ports/out/listrepo"
	rolecacheport "github.com/listly-app/shopping-list-api/internal/ports/out/rolecache"
	rolerepoport "github.com/listly-app/shopping-list-api/internal/ports/out/rolerepo"
	userrepoport "github.com/listly-app/shopping-list-api/internal/ports/out/userrepo"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		roleRepo rolerepoport.Repository
		userRepo userrepoport.Repository
		listRepo listrepoport.Repository
		itemRepo itemrepoport.Repository
		cleanup  func()
	)

	switch cfg.StorageBackend {
	case "postgres":
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			logger.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		cleanup = pool.Close

		roleRepo = pgrolerepo.NewRepo(pool)
		userRepo = pguserrepo.NewRepo(pool)
		listRepo = pglistrepo.NewRepo(pool)
		itemRepo = pgitemrepo.NewRepo(pool)
	case "mongo":
		db, err := mongoadapter.Connect(ctx, cfg.MongoURL, cfg.MongoDatabase)
		if err != nil {
			logger.Error("mongo unavailable", "error", err)
			os.Exit(1)
		}
		if err := mongoadapter.EnsureIndexes(ctx, db); err != nil {
			logger.Error("mongo indexes failed", "error", err)
			os.Exit(1)
		}
		cleanup = func() { _ = db.Client().Disconnect(context.Background()) }

		roleRepo = mgrolerepo.NewRepo(db)
		userRepo = mguserrepo.NewRepo(db)
		listRepo = mglistrepo.NewRepo(db)
		itemRepo = mgitemrepo.NewRepo(db)
	default:
		roleRepo = memrolerepo.NewRepo()
		userRepo = memuserrepo.NewRepo()
		listRepo = memlistrepo.NewRepo()
		itemRepo = memitemrepo.NewRepo()
	}
	if cleanup != nil {
		defer cleanup()
	}

	// The memory backend starts empty on every boot, so it seeds itself.
	// Durable backends are seeded once via cmd/seed.
	if cfg.StorageBackend == "memory" {
		if err := seed.EnsureRoles(ctx, roleRepo); err != nil {
			logger.Error("role seeding failed", "error", err)
			os.Exit(1)
		}
	}

	var roleCache rolecacheport.Cache
	if cfg.RedisURL != "" {
		client, err := redisrolecache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("redis unavailable", "error", err)
			os.Exit(1)
		}
		defer func() { _ = client.Close() }()
		roleCache = redisrolecache.New(client, time.Hour, logger)
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	clk := platformclock.NewSystemClock()
	rolesResolver := roles.NewResolver(roleRepo, roleCache)
	accessResolver := authz.NewAccessResolver(listRepo)
	dispatcher := authz.NewDispatcher(rolesResolver, accessResolver, logger, collector)
	mutator := graph.NewMutator(userRepo, listRepo, itemRepo, clk, logger, collector)

	accountsSvc := accounts.NewService(userRepo, rolesResolver, mutator, clk)
	listsSvc := lists.NewService(listRepo, userRepo, mutator)
	itemsSvc := items.NewService(itemRepo, listRepo, mutator)

	secret := []byte(cfg.AuthSecret)
	verifier := tokens.NewVerifier(secret)
	issuer := tokens.NewIssuer(secret, cfg.TokenTTL)

	api := httpapi.NewServer(accountsSvc, listsSvc, itemsSvc, rolesResolver, dispatcher, issuer, logger)
	handler := httpapi.NewRouter(api, verifier, metrics.Handler(registry), collector)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("api listening", "port", cfg.Port, "backend", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
