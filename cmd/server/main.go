package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/handler"
	"github.com/iliyamo/event-ticketing/internal/mailer"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/router"
	"github.com/iliyamo/event-ticketing/internal/service"
	"github.com/iliyamo/event-ticketing/internal/store"
	"github.com/iliyamo/event-ticketing/internal/ticket"
)

func main() {
	cfg := config.Load()
	logger := log.New("ticketing")
	logger.SetLevel(parseLevel(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if cfg.Store.Backend != config.BackendMemory {
		if rdb = config.NewRedisClient(cfg.Store.Redis); rdb == nil {
			logger.Warnf("redis at %s unreachable; rate limiting and QR cache disabled", cfg.Store.Redis.Addr)
		} else {
			defer rdb.Close()
		}
	}

	openCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	kv, closeStore, err := store.Open(openCtx, cfg.Store, rdb)
	cancel()
	if err != nil {
		logger.Fatalf("store: %v", err)
	}
	defer func() { _ = closeStore() }()
	if kv.Name() == "memory" {
		logger.Warnf("using in-memory store; data is lost on restart")
	}

	var sender mailer.Sender
	if cfg.SMTP.Enabled() {
		sender = mailer.NewSMTPSender(cfg.SMTP)
	} else {
		logger.Infof("SMTP credentials not set; email dispatch disabled")
	}
	notifier := mailer.NewNotifier(sender, cfg.Event.Name, cfg.SMTP.OperatorEmail)

	var publisher service.Publisher = service.NopPublisher{}
	if cfg.Events.Enabled {
		publisher = service.NewAMQPPublisher(cfg.Events.URL, logger)
	}

	repo := repository.NewRegistrationRepo(kv)
	codec := ticket.NewCodec(cfg.Event.QRPrefix)
	admin, err := service.NewAdminService(kv, cfg.Admin.Key, publisher, logger)
	if err != nil {
		logger.Fatalf("admin: %v", err)
	}
	if admin.Open() {
		logger.Warnf("ADMIN_KEY not set; admin routes are open")
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger = logger
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.RegisterRoutes(e, router.Handlers{
		Tickets: handler.NewTicketHandler(
			service.NewIssuanceService(repo, codec, notifier, publisher, logger, cfg.Event.Name),
			service.NewValidationService(repo, codec, cfg.Event.Name),
			codec,
		),
		Tables:  handler.NewTableHandler(service.NewTableService(repo, publisher, logger)),
		Flyers:  handler.NewFlyerHandler(service.NewFlyerService(notifier, logger)),
		Admin:   handler.NewAdminHandler(cfg.Admin, admin),
		Backend: kv.Name(),
	}, router.Options{
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		JWTSecret: cfg.Admin.JWTSecret,
		Gate:      admin,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		logger.Infof("listening on %s (env=%s, store=%s)", addr, cfg.Env, kv.Name())
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.Events.ConsumerEnabled {
		consumer := queue.NewConsumer(cfg.Events.URL, cfg.Events.LogDir, logger)
		g.Go(func() error {
			if err := consumer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("server: %v", err)
		os.Exit(1)
	}
}

func parseLevel(s string) log.Lvl {
	switch s {
	case "DEBUG":
		return log.DEBUG
	case "WARN":
		return log.WARN
	case "ERROR":
		return log.ERROR
	case "OFF":
		return log.OFF
	default:
		return log.INFO
	}
}
