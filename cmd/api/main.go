package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/reciclaja/reciclaja-backend/api/routes"
	"github.com/reciclaja/reciclaja-backend/internal/addresses"
	"github.com/reciclaja/reciclaja-backend/internal/articles"
	"github.com/reciclaja/reciclaja-backend/internal/auth"
	"github.com/reciclaja/reciclaja-backend/internal/campaigns"
	"github.com/reciclaja/reciclaja-backend/internal/collectionpoints"
	"github.com/reciclaja/reciclaja-backend/internal/companies"
	"github.com/reciclaja/reciclaja-backend/internal/dailycodes"
	"github.com/reciclaja/reciclaja-backend/internal/mailer"
	"github.com/reciclaja/reciclaja-backend/internal/pickups"
	"github.com/reciclaja/reciclaja-backend/internal/points"
	"github.com/reciclaja/reciclaja-backend/internal/users"
	"github.com/reciclaja/reciclaja-backend/internal/vouchers"
	"github.com/reciclaja/reciclaja-backend/internal/wastetypes"
	"github.com/reciclaja/reciclaja-backend/pkg/auth/session"
	"github.com/reciclaja/reciclaja-backend/pkg/config"
	"github.com/reciclaja/reciclaja-backend/pkg/db"
	"github.com/reciclaja/reciclaja-backend/pkg/logger"
	"github.com/reciclaja/reciclaja-backend/pkg/migrate"
	"github.com/reciclaja/reciclaja-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	mail, err := mailer.New(cfg.Mail)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	svcs, err := buildServices(cfg, logg, dbClient, sessionManager, mail)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, sessionManager *session.Manager, mail mailer.Mailer) (routes.Services, error) {
	gormDB := dbClient.DB()

	pointsRepo := points.NewRepository(gormDB)
	usersRepo := users.NewRepository(gormDB)
	companiesRepo := companies.NewRepository(gormDB)
	addressesRepo := addresses.NewRepository(gormDB)
	collectionPointsRepo := collectionpoints.NewRepository(gormDB)
	wasteTypesRepo := wastetypes.NewRepository(gormDB)
	campaignsRepo := campaigns.NewRepository(gormDB)
	vouchersRepo := vouchers.NewRepository(gormDB)
	dailyCodesRepo := dailycodes.NewRepository(gormDB)
	pickupsRepo := pickups.NewRepository(gormDB)
	articlesRepo := articles.NewRepository(gormDB)

	pointsSvc, err := points.NewService(pointsRepo)
	if err != nil {
		return routes.Services{}, err
	}
	usersSvc, err := users.NewService(usersRepo, companiesRepo, pointsSvc, dbClient, cfg.Password)
	if err != nil {
		return routes.Services{}, err
	}
	authSvc, err := auth.NewService(usersRepo, sessionManager, mail, logg, cfg.JWT, cfg.Password, cfg.Points.RecoveryCodeTTL())
	if err != nil {
		return routes.Services{}, err
	}
	companiesSvc, err := companies.NewService(companiesRepo)
	if err != nil {
		return routes.Services{}, err
	}
	addressesSvc, err := addresses.NewService(addressesRepo, dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	collectionPointsSvc, err := collectionpoints.NewService(collectionPointsRepo, addressesRepo, dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	wasteTypesSvc, err := wastetypes.NewService(wasteTypesRepo)
	if err != nil {
		return routes.Services{}, err
	}
	campaignsSvc, err := campaigns.NewService(campaignsRepo, usersRepo, companiesRepo, collectionPointsRepo, pointsSvc, dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	vouchersSvc, err := vouchers.NewService(vouchersRepo, usersRepo, pointsSvc, dbClient, mail, logg, cfg.App.Location())
	if err != nil {
		return routes.Services{}, err
	}
	dailyCodesSvc, err := dailycodes.NewService(dailyCodesRepo, collectionPointsRepo, pointsSvc, dbClient, cfg.Points.DailyCodeValue, cfg.App.Location())
	if err != nil {
		return routes.Services{}, err
	}
	pickupsSvc, err := pickups.NewService(pickupsRepo, usersRepo, pointsSvc, dbClient, mail, logg, cfg.Points.PickupCompletionAward)
	if err != nil {
		return routes.Services{}, err
	}
	articlesSvc, err := articles.NewService(articlesRepo)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:             authSvc,
		Users:            usersSvc,
		Points:           pointsSvc,
		Companies:        companiesSvc,
		CollectionPoints: collectionPointsSvc,
		WasteTypes:       wasteTypesSvc,
		Campaigns:        campaignsSvc,
		Vouchers:         vouchersSvc,
		DailyCodes:       dailyCodesSvc,
		Addresses:        addressesSvc,
		Pickups:          pickupsSvc,
		Articles:         articlesSvc,
	}, nil
}
