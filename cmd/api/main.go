package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/srgjo27/space_booking/internal/adapter/cache"
	"github.com/srgjo27/space_booking/internal/adapter/handler"
	"github.com/srgjo27/space_booking/internal/adapter/mq"
	"github.com/srgjo27/space_booking/internal/adapter/repository/memory"
	"github.com/srgjo27/space_booking/internal/adapter/repository/postgres"
	"github.com/srgjo27/space_booking/internal/core/services"
	"github.com/srgjo27/space_booking/internal/platform/config"
	"github.com/srgjo27/space_booking/internal/platform/database"
	"github.com/srgjo27/space_booking/internal/platform/logger"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.New(cfg.LogLevel, cfg.LogFormat, "space-booking")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()

	lg.Info("starting", cfg.Fields()...)

	systemActor, err := uuid.Parse(cfg.SystemActorID)
	if err != nil {
		lg.Fatal("invalid SYSTEM_ACTOR_ID", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := services.Deps{
		Locker:   services.NewAssetLocker(),
		Location: cfg.Location(),
		Logger:   lg,
	}

	switch cfg.Store {
	case "memory":
		store := memory.NewStore()
		for _, raw := range cfg.SeedAssetIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				lg.Fatal("invalid SEED_ASSET_IDS entry", zap.String("value", raw))
			}
			store.AddAsset(id)
		}
		deps.Assets, deps.Rules, deps.Exceptions, deps.Bookings = store, store, store, store
		lg.Warn("using in-memory store; data is lost on restart")
	default:
		db := mustPostgres(ctx, cfg, lg)
		defer db.Close()
		deps.Assets = postgres.NewAssetDirectory(db)
		deps.Rules = postgres.NewRecurrenceRepository(db)
		deps.Exceptions = postgres.NewExceptionRepository(db)
		deps.Bookings = postgres.NewBookingRepository(db)
	}

	if addr := cfg.RedisAddr(); addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			lg.Warn("redis unavailable, slot cache disabled", zap.String("addr", addr), zap.Error(err))
		} else {
			lg.Info("redis connected", zap.String("addr", addr))
			deps.Cache = cache.NewSlotCache(redisClient, cfg.SlotCacheTTL)
			defer redisClient.Close()
		}
	}

	if cfg.RabbitURL != "" {
		pub, err := mq.NewPublisher(cfg.RabbitURL, cfg.BookingExchange)
		if err != nil {
			lg.Fatal("rabbitmq publisher", zap.Error(err))
		}
		defer pub.Close()
		deps.Publisher = pub
	}

	resolver := services.NewSlotResolver(deps)
	coordinator := services.NewBookingCoordinator(deps, cfg.BookingHoldTTL, cfg.HoldSweepInterval,
		services.WithSyncConfirmation(cfg.BookingConfirmSync))
	editor := services.NewScheduleEditor(deps)

	if cfg.RabbitURL != "" {
		cons, err := mq.NewConsumer(cfg.RabbitURL, cfg.PaymentExchange, cfg.PaymentQueue, mq.PaymentKeys())
		if err != nil {
			lg.Fatal("rabbitmq consumer", zap.Error(err))
		}
		defer cons.Close()
		if err := mq.NewPaymentConsumer(coordinator, cons, systemActor, lg).Run(ctx); err != nil {
			lg.Fatal("payment consumer", zap.Error(err))
		}
		lg.Info("payment consumer started", zap.String("queue", cfg.PaymentQueue))
	}

	go coordinator.RunHoldExpiry(ctx, systemActor)

	router := handler.NewRouter(
		handler.NewBookingHandler(resolver, coordinator, lg),
		handler.NewScheduleHandler(editor, lg),
		lg,
	)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		lg.Info("server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server startup failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	lg.Info("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		lg.Error("server forced to shutdown", zap.Error(err))
	}

	lg.Info("server exiting")
}

func mustPostgres(ctx context.Context, cfg config.Config, lg *zap.Logger) *sql.DB {
	db, err := database.NewPostgresDB(cfg.Database(), lg)
	if err != nil {
		lg.Fatal("failed to connect to db after retries", zap.Error(err))
	}
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			lg.Fatal("migration failed", zap.Error(err))
		}
	}
	return db
}
