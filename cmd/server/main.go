package main // Entry point package

import (
    "context"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/bookmyseat/booking/internal/booking"
    "github.com/bookmyseat/booking/internal/config"
    "github.com/bookmyseat/booking/internal/database"
    "github.com/bookmyseat/booking/internal/handler"
    "github.com/bookmyseat/booking/internal/middleware"
    "github.com/bookmyseat/booking/internal/payment"
    "github.com/bookmyseat/booking/internal/queue"
    "github.com/bookmyseat/booking/internal/repository"
    "github.com/bookmyseat/booking/internal/router"
    "github.com/bookmyseat/booking/internal/service"
    "github.com/bookmyseat/booking/internal/worker"
)

func main() {
    // Load .env if present; real deployments set the environment directly.
    _ = godotenv.Load()
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBMaxConns)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer func() { _ = db.Close() }()

    rdb := config.NewRedisClient()
    defer func() { _ = rdb.Close() }()

    // Repositories and the transactional booking core.
    seatRepo := repository.NewSeatRepo(db)
    bookingRepo := repository.NewBookingRepo(db)
    paymentRepo := repository.NewPaymentRepo(db)
    movieRepo := repository.NewMovieRepo(db)
    theaterRepo := repository.NewTheaterRepo(db)
    txm := repository.NewSQLTxManager(db)

    gateway := payment.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
    notifier := &service.QueueNotifier{}
    coordinator := booking.NewCoordinator(
        txm, seatRepo, bookingRepo, paymentRepo, theaterRepo,
        gateway, notifier,
        time.Duration(cfg.HoldTTLMin)*time.Minute,
    )

    // Consume confirmation events and deliver notices.  The consumer
    // reconnects on its own; a fatal setup error only disables email.
    go func() {
        if err := queue.StartBookingConsumer(); err != nil {
            log.Printf("booking consumer stopped: %v", err)
        }
    }()

    // Sweep expired seat holds in the background.
    sweeper := worker.NewExpirySweeper(coordinator, time.Duration(cfg.SweepIntervalSec)*time.Second)
    sweeper.Start()
    defer sweeper.Stop()

    e := echo.New()
    e.HideBanner = true

    catalogHandler := handler.NewCatalogHandler(movieRepo, theaterRepo, seatRepo)
    bookingHandler := handler.NewBookingHandler(coordinator, bookingRepo, paymentRepo)
    paymentHandler := handler.NewPaymentHandler(coordinator, cfg.RazorpayKeyID)
    adminHandler := handler.NewAdminHandler(bookingRepo)

    cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
    rateMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

    router.RegisterRoutes(e)
    router.RegisterPublic(e, catalogHandler, cacheMW)
    router.RegisterCustomer(e, bookingHandler, paymentHandler, cfg.JWTSecret, rateMW)
    router.RegisterAdmin(e, bookingHandler, adminHandler, cfg.JWTSecret)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    go func() {
        if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
            log.Fatalf("server: %v", err)
        }
    }()

    // Block until interrupted, then drain in-flight requests.
    quit := make(chan os.Signal, 1)
    signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
    <-quit

    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := e.Shutdown(ctx); err != nil {
        log.Printf("shutdown: %v", err)
    }
}
