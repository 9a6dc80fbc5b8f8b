// Command seed provisions reference data against a durable backend: the
// "admin" and "user" roles, plus an optional bootstrap administrator when
// ADMIN_EMAIL and ADMIN_PASSWORD are set.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	mongoadapter "github.com/listly-app/shopping-list-api/internal/adapters/mongo"
	mgrolerepo "github.com/listly-app/shopping-list-api/internal/adapters/mongo/rolerepo"
	mguserrepo "github.com/listly-app/shopping-list-api/internal/adapters/mongo/userrepo"
	"github.com/listly-app/shopping-list-api/internal/adapters/postgres"
	pgrolerepo "github.com/listly-app/shopping-list-api/internal/adapters/postgres/rolerepo"
	pguserrepo "github.com/listly-app/shopping-list-api/internal/adapters/postgres/userrepo"
	"github.com/listly-app/shopping-list-api/internal/app/accounts"
	"github.com/listly-app/shopping-list-api/internal/app/roles"
	"github.com/listly-app/shopping-list-api/internal/app/seed"
	platformclock "github.com/listly-app/shopping-list-api/internal/platform/clock"
	"github.com/listly-app/shopping-list-api/internal/platform/config"
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

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var (
		roleRepo rolerepoport.Repository
		userRepo userrepoport.Repository
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
	default:
		logger.Error("seeding requires a durable backend", "backend", cfg.StorageBackend)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	if err := seed.EnsureRoles(ctx, roleRepo); err != nil {
		logger.Error("role seeding failed", "error", err)
		os.Exit(1)
	}
	logger.Info("roles seeded")

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		logger.Info("no bootstrap admin requested, done")
		return
	}

	rolesResolver := roles.NewResolver(roleRepo, nil)
	accountsSvc := accounts.NewService(userRepo, rolesResolver, nil, platformclock.NewSystemClock())
	if err := seed.EnsureAdmin(ctx, accountsSvc, rolesResolver, adminEmail, adminPassword); err != nil {
		logger.Error("admin seeding failed", "error", err)
		os.Exit(1)
	}
	logger.Info("bootstrap admin present", "email", adminEmail)
}
