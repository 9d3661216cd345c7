package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"reviewd/internal/bootstrap/config"
	"reviewd/internal/bootstrap/database"
	"reviewd/internal/bootstrap/logging"
	agentinfra "reviewd/internal/infrastructure/agent"
	cacheinfra "reviewd/internal/infrastructure/cache"
	sqliterepo "reviewd/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "reviewd/internal/infrastructure/persistence/sqlite/uow"
	"reviewd/internal/ports"
	"reviewd/internal/usecase/auth"
	reviewuc "reviewd/internal/usecase/review"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewReviewRepository,
			fx.As(new(ports.ReviewRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewUserRepository,
			fx.As(new(ports.UserRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewTokenStore,
			fx.As(new(ports.TokenStore)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(provideAgent),
	fx.Provide(provideAuthenticator),
	fx.Provide(auth.NewService),
	fx.Provide(provideReviewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideAgent(cfg config.Config) ports.Agent {
	return agentinfra.NewOpenAIAgent(cfg.Agent)
}

func provideAuthenticator(cfg config.Config, users ports.UserRepository, tokens ports.TokenStore) *auth.Authenticator {
	return auth.NewAuthenticator(cfg.Auth, users, tokens)
}

func provideReviewService(cfg config.Config, repo ports.ReviewRepository, agent ports.Agent, cache ports.Cache) *reviewuc.Service {
	return reviewuc.NewService(cfg.Agent, repo, agent, cache)
}
