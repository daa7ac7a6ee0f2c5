package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/srgjo27/meeting_room/internal/adapter/cache"
	"github.com/srgjo27/meeting_room/internal/adapter/handler"
	"github.com/srgjo27/meeting_room/internal/adapter/notifier"
	"github.com/srgjo27/meeting_room/internal/adapter/repository/memory"
	"github.com/srgjo27/meeting_room/internal/adapter/repository/postgres"
	"github.com/srgjo27/meeting_room/internal/core/ports"
	"github.com/srgjo27/meeting_room/internal/core/services"
	"github.com/srgjo27/meeting_room/internal/platform/clock"
	"github.com/srgjo27/meeting_room/internal/platform/config"
	"github.com/srgjo27/meeting_room/internal/platform/database"
	"github.com/srgjo27/meeting_room/internal/platform/logger"
	"github.com/srgjo27/meeting_room/internal/platform/logger/sl"
	"github.com/srgjo27/meeting_room/internal/platform/redis"
)

type repositories struct {
	bookings ports.BookingRepository
	rooms    ports.RoomDirectory
	users    ports.UserDirectory
}

func main() {
	cfg := config.MustLoad()

	log := logger.New(cfg.Env, os.Stdout)

	log.Info("starting meeting room service", slog.String("env", cfg.Env))
	log.Debug("debug messages are enabled")

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				log.Error("failed to close resource", sl.Err(err))
			}
		}
	}()

	startCtx, cancelStart := context.WithTimeout(context.Background(), time.Minute)
	defer cancelStart()

	repos, closer, err := setupStorage(startCtx, cfg, log)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	bookingCache, closer, err := setupCache(startCtx, cfg, log)
	if err != nil {
		log.Error("failed to init cache", sl.Err(err))
		os.Exit(1)
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	escalations, closer, err := setupNotifier(cfg, log)
	if err != nil {
		log.Error("failed to init notifier", sl.Err(err))
		os.Exit(1)
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	bookingService := services.NewBookingService(
		repos.bookings,
		repos.rooms,
		repos.users,
		bookingCache,
		escalations,
		log,
		services.Config{
			OperationTimeout:   cfg.Booking.OperationTimeout,
			EscalationCooldown: cfg.Booking.EscalationCooldown,
			AdminContactTTL:    cfg.Booking.AdminContactTTL,
			EscalationSubject:  cfg.Booking.EscalationSubject,
		},
	)

	router := handler.NewRouter(log, handler.NewBookingHandler(bookingService, log))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", sl.Err(err))
			stop <- syscall.SIGTERM
		}
	}()

	sign := <-stop

	log.Info("application stopping", slog.String("signal", sign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", sl.Err(err))
	}

	log.Info("application stopped")
}

func setupStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (repositories, io.Closer, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn("using in-memory storage, data is lost on restart")
		store := memory.NewSeededStore(time.Now())
		return repositories{bookings: store, rooms: store, users: store}, nil, nil
	}

	db, err := database.NewPostgresDB(ctx, cfg.Storage.Database, log)
	if err != nil {
		return repositories{}, nil, err
	}

	if cfg.Storage.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, log); err != nil {
			db.Close()
			return repositories{}, nil, err
		}
	}

	return repositories{
		bookings: postgres.NewBookingRepository(db),
		rooms:    postgres.NewRoomRepository(db),
		users:    postgres.NewUserRepository(db),
	}, db, nil
}

func setupCache(ctx context.Context, cfg *config.Config, log *slog.Logger) (ports.Cache, io.Closer, error) {
	if cfg.Cache.Driver == config.CacheDriverMemory {
		log.Warn("using in-memory cache, escalation windows are per process")
		return cache.NewMemoryCache(clock.Real()), nil, nil
	}

	client, err := redis.NewClient(ctx, cfg.Cache.Redis, log)
	if err != nil {
		return nil, nil, err
	}

	return cache.NewRedisCache(client), client, nil
}

func setupNotifier(cfg *config.Config, log *slog.Logger) (ports.Notifier, io.Closer, error) {
	switch cfg.Notifier.Driver {
	case config.NotifierDriverSMTP:
		s, err := notifier.NewSMTPNotifier(cfg.Notifier.SMTP)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case config.NotifierDriverKafka:
		k, err := notifier.NewKafkaNotifier(cfg.Notifier.Kafka)
		if err != nil {
			return nil, nil, err
		}
		return k, k, nil
	default:
		return notifier.NewLogNotifier(log), nil, nil
	}
}
