package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"tripwise/config"
	"tripwise/db"
	"tripwise/llm"
	"tripwise/logging"
	"tripwise/middleware"
	"tripwise/mq"
	"tripwise/pipeline"
	"tripwise/profile"
	"tripwise/ratelim"
	"tripwise/rdx"
	"tripwise/routes"
	"tripwise/settings"
	"tripwise/strategies"
	"tripwise/trips"
	"tripwise/vault"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Referrer-Policy", "no-referrer")
		// responses can carry per-user data
		w.Header().Set("Cache-Control", "no-store, private")
		next.ServeHTTP(w, r)
	})
}

func providerConfig(p config.Provider, timeout time.Duration) llm.Config {
	return llm.Config{Model: p.Model, BaseURL: p.BaseURL, MaxTokens: p.MaxTokens, Timeout: timeout}
}

func main() {
	cfg, dotenv, err := config.Load(os.Getenv("TRIPWISE_CONFIG"))
	if err != nil {
		// logger is not configured yet
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()
	if !dotenv {
		log.Info("No .env file found; using system environment")
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := db.Connect(startCtx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal("mongo unavailable", zap.Error(err))
	}
	if err := store.EnsureIndexes(startCtx); err != nil {
		log.Warn("index setup failed", zap.Error(err))
	}

	// events are best-effort; run without them if redis is down
	var publisher mq.Publisher
	conn, err := rdx.Connect(startCtx, cfg.RedisAddr)
	if err != nil {
		log.Warn("redis unavailable; events disabled", zap.Error(err))
	} else {
		publisher = conn
	}
	cancelStart()
	events := mq.NewEmitter(publisher, log)

	keys, err := vault.New(cfg.EncryptionKey, cfg.DefaultKeys(), store, log)
	if err != nil {
		log.Fatal("credential vault", zap.Error(err))
	}
	if !keys.Enabled() {
		log.Warn("ENCRYPTION_KEY not set; provider keys are stored as plaintext")
	}

	adapters := llm.Chain(
		providerConfig(cfg.Gemini, cfg.LLMTimeout),
		providerConfig(cfg.OpenAI, cfg.LLMTimeout),
		providerConfig(cfg.Anthropic, cfg.LLMTimeout),
	)
	gen := pipeline.New(keys, log, adapters...).WithBudget(cfg.AnalyzeBudget)

	limiter := ratelim.NewRateLimiter(20, 5, 10*time.Minute)
	stopCleanup := make(chan struct{})
	go limiter.Cleanup(time.Minute, stopCleanup)

	router := httprouter.New()
	routes.RoutesWrapper(router, routes.Handlers{
		Auth:       middleware.NewAuth(cfg.JWTSecret),
		Limiter:    limiter,
		Strategies: strategies.NewHandler(gen, store, events, cfg.PublicURL, log),
		Trips:      trips.NewHandler(store, events, log),
		Profile:    profile.NewHandler(store, log),
		Settings:   settings.NewHandler(keys, store, adapters, events, log),
	})

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // lock down in production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := logging.Middleware(log, securityHeaders(corsHandler))

	// analyze is cut off at its budget; a single critique walks at most the
	// whole chain. Leave room to persist and respond.
	writeTimeout := max(cfg.AnalyzeBudget, 3*cfg.LLMTimeout) + 15*time.Second

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		close(stopCleanup)
	})

	go func() {
		log.Info("server listening", zap.String("addr", cfg.Port), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received; shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	if conn != nil {
		_ = conn.Close()
	}
	if err := store.Close(ctx); err != nil {
		log.Warn("mongo disconnect", zap.Error(err))
	}
	log.Info("server stopped cleanly")
}
