package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartclass/admin"
	"smartclass/analytics"
	"smartclass/auth"
	"smartclass/cart"
	"smartclass/classes"
	"smartclass/config"
	"smartclass/db"
	"smartclass/metrics"
	"smartclass/middleware"
	"smartclass/moderator"
	"smartclass/mq"
	"smartclass/pay"
	"smartclass/ratelim"
	"smartclass/rdx"
	"smartclass/routes"
	"smartclass/stripe"
	"smartclass/users"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func main() {
	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)
	log.Info("starting smart class hub", slog.String("env", cfg.Env), slog.String("addr", cfg.Addr()))

	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Connect(ctx, cfg.Mongo, log)
	if err != nil {
		log.Error("failed to connect to mongo", slog.Any("error", err))
		os.Exit(1)
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		log.Error("failed to create indexes", slog.Any("error", err))
		os.Exit(1)
	}

	hub := admin.NewHub()
	go hub.Run()
	publishers := []mq.Publisher{hub}

	var (
		redisConn *redis.Client
		locker    pay.Locker
	)
	if cfg.Redis.Addr != "" {
		redisConn, err = rdx.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			log.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		locker = rdx.NewLocker(redisConn, log)
		publishers = append(publishers, mq.NewRedisPublisher(redisConn, cfg.Redis.Channel))
	} else {
		log.Warn("REDIS_ADDR not set; settlements rely on the unique transaction index only")
	}
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := mq.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("failed to create kafka publisher", slog.Any("error", err))
			os.Exit(1)
		}
		publishers = append(publishers, kp)
	}
	events := mq.NewEmitter(log, publishers...)

	if cfg.Payment.Key == "" {
		log.Warn("PAYMENT_KEY not set; payment intents are disabled")
	}

	tokens := middleware.NewTokenService(cfg.Token.Secret, cfg.Token.TTL)
	receiptSecret := cfg.Payment.ReceiptSecret
	if receiptSecret == "" {
		receiptSecret = cfg.Token.Secret
	}
	userRepo := users.NewMongoRepository(store)
	timeout := cfg.HTTP.RequestTimeout

	rateLimiter := ratelim.NewRateLimiter(cfg.RateLim.Rate, cfg.RateLim.Burst)
	limiterStop := make(chan struct{})
	go rateLimiter.Run(limiterStop)

	router := httprouter.New()
	routes.RoutesWrapper(router, &routes.Deps{
		Gate:      middleware.NewGate(tokens, userRepo, log),
		Limiter:   rateLimiter,
		Ping:      store.Ping,
		Auth:      auth.NewHandler(tokens, log),
		Users:     users.NewHandler(userRepo, events, log, timeout),
		Classes:   classes.NewHandler(classes.NewMongoRepository(store), userRepo, events, log, timeout),
		Cart:      cart.NewHandler(cart.NewMongoRepository(store), userRepo, log, timeout),
		Moderator: moderator.NewHandler(moderator.NewMongoRepository(store), events, log, timeout),
		Pay: pay.NewPaymentService(pay.NewMongoLedger(store), stripe.New(cfg.Payment.Key), locker, userRepo, events, log,
			pay.Options{
				Currency:      cfg.Payment.Currency,
				LockTTL:       cfg.Settle.LockTTL,
				Timeout:       timeout,
				ReceiptSecret: receiptSecret,
			}),
		Analytics: analytics.NewHandler(analytics.NewMongoViews(store), log, timeout),
		Admin:     admin.NewHandler(admin.NewMongoStats(store), hub, log, timeout),
	})

	// apply middleware, outermost first: logging → security headers → CORS → recover → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.HTTP.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
	}).Handler(middleware.Recover(log)(router))

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           middleware.Logging(log)(middleware.SecurityHeaders(corsHandler)),
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		log.Info("server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", slog.Any("error", err))
	}
	close(limiterStop)
	events.Close()
	if redisConn != nil {
		if err := redisConn.Close(); err != nil {
			log.Warn("close redis", slog.Any("error", err))
		}
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Warn("close mongo", slog.Any("error", err))
	}
	log.Info("server stopped")
}
