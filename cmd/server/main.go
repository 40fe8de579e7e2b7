package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/mintgate/event-platform/internal/config"
	"github.com/mintgate/event-platform/internal/database"
	"github.com/mintgate/event-platform/internal/gate"
	"github.com/mintgate/event-platform/internal/handler"
	"github.com/mintgate/event-platform/internal/ledger"
	"github.com/mintgate/event-platform/internal/middleware"
	"github.com/mintgate/event-platform/internal/oracle"
	"github.com/mintgate/event-platform/internal/queue"
	"github.com/mintgate/event-platform/internal/repository"
	"github.com/mintgate/event-platform/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Redis is optional; nil disables the rate limiter, the response
	// cache and the gate balance cache.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	store := repository.NewStore(db)

	var balanceOracle gate.BalanceOracle
	if cfg.OracleURL != "" {
		balanceOracle = oracle.NewClient(cfg.OracleURL, time.Duration(cfg.OracleTimeout)*time.Millisecond)
	} else {
		log.Println("ORACLE_URL unset; gated events admit whitelisted buyers only")
	}
	accessGate := gate.New(store, balanceOracle, cfg.OracleRetries, rdb, 30*time.Second)

	lgr := ledger.New(store, accessGate, ledger.OverpaymentPolicy(cfg.Overpayment))

	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)

	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	eventHandler := handler.NewEventHandler(lgr)
	ticketHandler := handler.NewTicketHandler(lgr)
	whitelistHandler := handler.NewWhitelistHandler(lgr)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, eventHandler, ticketHandler, whitelistHandler,
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterProtected(e, eventHandler, ticketHandler, whitelistHandler, cfg.JWTSecret)

	// Consumes purchase and transfer notifications; reconnects on its own.
	go func() {
		if err := queue.StartTicketConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
