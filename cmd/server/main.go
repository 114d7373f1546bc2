package main

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/tpc-facilities/parking-lottery/internal/config"
    "github.com/tpc-facilities/parking-lottery/internal/database"
    "github.com/tpc-facilities/parking-lottery/internal/eligibility"
    "github.com/tpc-facilities/parking-lottery/internal/handler"
    "github.com/tpc-facilities/parking-lottery/internal/lock"
    "github.com/tpc-facilities/parking-lottery/internal/lottery"
    "github.com/tpc-facilities/parking-lottery/internal/middleware"
    "github.com/tpc-facilities/parking-lottery/internal/queue"
    "github.com/tpc-facilities/parking-lottery/internal/repository"
    "github.com/tpc-facilities/parking-lottery/internal/router"
    queue_publisher "github.com/tpc-facilities/parking-lottery/internal/service"
)

func main() {
    // .env is optional; real deployments set the environment directly
    _ = godotenv.Load()
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // redis backs the rate limiter, the response cache and the
    // cross-replica submission lock; all three degrade gracefully when
    // it is unreachable
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Println("redis unavailable; rate limiting and caching disabled, using in-process submission lock")
    }

    var locker lock.Locker
    if rdb != nil {
        locker = lock.NewRedisLock(rdb, "parking:submit")
    } else {
        locker = lock.NewLocalLock()
    }

    store := repository.NewStore(db)
    staff := repository.NewStaffRepo(db)
    tokens := repository.NewTokenRepo(db)

    notifier := &queue_publisher.Notifier{EmailDomain: cfg.EmailDomain}
    resolver := eligibility.NewResolver(store, notifier, locker, cfg.EvidenceInbox)
    allocator := lottery.NewAllocator(store)

    go func() {
        if err := queue.StartNotificationConsumer(); err != nil {
            log.Printf("notification consumer stopped: %v", err)
        }
    }()

    e := echo.New()
    router.RegisterRoutes(e)
    router.RegisterAuth(e, handler.NewAuthHandler(cfg, staff, tokens), cfg.JWTSecret)
    router.RegisterPublic(e,
        handler.NewApplicationHandler(resolver),
        handler.NewResultsHandler(store.Entries),
        middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
        middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
    )
    router.RegisterAdmin(e, cfg.JWTSecret,
        handler.NewReviewHandler(db, store.Apps, store.Entries, store.Plates, notifier),
        handler.NewAdminApplicationHandler(store),
        handler.NewAdminLotteryHandler(allocator),
        handler.NewAdminSpaceHandler(store.Spaces),
    )

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
