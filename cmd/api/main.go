package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk/internal/api/http"
	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/internal/textgen"
	"github.com/spec-kit/helpdesk/internal/worker"
)

type stores struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
	pinger  handlers.Pinger
	close   func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer st.close()

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	mergePolicy, err := service.ParseMergePolicy(cfg.Ticket.MergePolicy)
	if err != nil {
		logger.Fatal("invalid ticket config", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notify)
	notifyWorker := worker.StartNotificationWorker(ctx, dispatcher, notifications, logger)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  st.tickets,
		Dispatcher:  dispatcher,
		Logger:      logger,
		MergePolicy: mergePolicy,
	})
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{UserRepo: st.users})
	textgenService := service.NewTextGenService(textgen.NewClient(cfg.TextGen), logger)
	metrics := observability.NewMetrics()

	deps := map[string]handlers.Pinger{"store": st.pinger}
	if redis != nil {
		deps["redis"] = redis
	}

	routes := httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps),
		Users:   handlers.NewUsersHandler(authService),
		Tickets: handlers.NewTicketsHandler(ticketService),
		AI:      handlers.NewAIHandler(textgenService),
		Metrics: handlers.NewMetricsHandler(metrics, ticketService),
	}
	if cfg.Auth.RequireToken {
		routes.AuthMiddleware = auth.NewAuthMiddleware(authService.TokenManager())
	}

	app := httptransport.NewApp(httptransport.AppConfig{
		Name:           cfg.App.Name,
		Logger:         logger,
		Metrics:        metrics,
		RequestTimeout: cfg.App.RequestTimeout(),
		Routes:         routes,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Store.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	notifyWorker.Stop()
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	if cfg.Store.Driver == config.StoreDriverPostgres {
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		return &stores{
			tickets: repository.NewPostgresTicketRepository(pg.Pool),
			users:   repository.NewPostgresUserRepository(pg.Pool),
			pinger:  pg,
			close:   pg.Close,
		}, nil
	}

	db, err := persistence.NewSQLite(ctx, cfg.Store.SQLitePath, logger)
	if err != nil {
		return nil, err
	}
	return &stores{
		tickets: repository.NewSQLiteTicketRepository(db.DB),
		users:   repository.NewSQLiteUserRepository(db.DB),
		pinger:  db,
		close:   db.Close,
	}, nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
