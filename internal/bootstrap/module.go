package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"evewatch/internal/bootstrap/config"
	"evewatch/internal/bootstrap/database"
	"evewatch/internal/bootstrap/logging"
	sqliterepo "evewatch/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "evewatch/internal/infrastructure/persistence/sqlite/uow"
	"evewatch/internal/infrastructure/watcher"
	"evewatch/internal/ports"
	"evewatch/internal/usecase/dashboard"
	"evewatch/internal/usecase/ingest"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewRosterRepository,
			fx.As(new(ports.RosterRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewCheckRepository,
			fx.As(new(ports.CheckRepository)),
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
			watcher.NewExecInvoker,
			fx.As(new(ports.WatcherInvoker)),
		),
	),
	fx.Provide(ingest.NewService),
	fx.Provide(provideDashboard),
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

func provideDashboard(cfg config.Config, roster ports.RosterRepository, checks ports.CheckRepository) *dashboard.Service {
	return dashboard.NewService(roster, checks, dashboard.CredentialStatus{
		HasDatabaseDSN: cfg.Database.DSN != "",
		HasServiceKey:  cfg.Database.ServiceKey != "",
	})
}
