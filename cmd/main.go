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

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/line_gemini_bot/internal/ai"
	"github.com/Vovarama1992/line_gemini_bot/internal/calendar"
	"github.com/Vovarama1992/line_gemini_bot/internal/chat"
	"github.com/Vovarama1992/line_gemini_bot/internal/chatcontext"
	"github.com/Vovarama1992/line_gemini_bot/internal/commands"
	"github.com/Vovarama1992/line_gemini_bot/internal/config"
	"github.com/Vovarama1992/line_gemini_bot/internal/delivery"
	"github.com/Vovarama1992/line_gemini_bot/internal/error_notificator"
	"github.com/Vovarama1992/line_gemini_bot/internal/infra"
	"github.com/Vovarama1992/line_gemini_bot/internal/line"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const serviceName = "line_gemini_bot"

func main() {

	// =========================================================================
	// ENV / LOGGER
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	sugar := baseLogger.Sugar()
	zl := logger.NewZapLogger(sugar)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// =========================================================================
	// CONTEXT STORE
	// =========================================================================

	var (
		store    chatcontext.Store
		memStore *chatcontext.MemoryStore
	)

	switch cfg.ContextStore {
	case config.StorePostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(rootCtx, 5*time.Second)
		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("db ping failed: %v", err)
		}
		if err := chatcontext.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("context schema: %v", err)
		}
		cancel()

		store = chatcontext.NewPostgresStore(db, cfg.ContextWindow)
	default:
		memStore = chatcontext.NewMemoryStore(cfg.ContextWindow)
		store = memStore
	}

	// снапшот в S3 имеет смысл только для памяти
	var archiver *chatcontext.Archiver
	if memStore != nil && cfg.S3.Enabled() {
		blobs, err := infra.NewS3Client(rootCtx, infra.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Secure:    cfg.S3.Secure,
		})
		if err != nil {
			log.Fatalf("failed to init s3: %v", err)
		}
		archiver = chatcontext.NewArchiver(blobs, cfg.S3.SnapshotKey)

		n, err := archiver.Load(rootCtx, memStore)
		if err != nil {
			sugar.Warnw("[main] snapshot restore failed", "error", err)
		} else {
			sugar.Infow("[main] snapshot restored", "users", n)
		}
	}

	janitor := chatcontext.NewJanitor(store, cfg.ContextIdleTTL, cfg.ContextSweepInterval, sugar)
	if err := janitor.Start(); err != nil {
		log.Fatalf("janitor: %v", err)
	}

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	errService := error_notificator.NewService(nil)
	if cfg.Alerts.Enabled() {
		errInfra, err := error_notificator.NewTelegramInfra(cfg.Alerts.TelegramToken, cfg.Alerts.TelegramChatID)
		if err != nil {
			sugar.Warnw("[main] alert bot disabled", "error", err)
		} else {
			errService = error_notificator.NewService(errInfra)
		}
	}

	// =========================================================================
	// CLIENTS / DOMAIN SERVICES
	// =========================================================================

	openAIClient := ai.NewOpenAIClient(ai.OpenAIConfig{
		APIKey:          cfg.Gemini.APIKey,
		BaseURL:         cfg.Gemini.BaseURL,
		Model:           cfg.Gemini.Model,
		Temperature:     cfg.Gemini.Temperature,
		MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
	})

	aiService := ai.NewAiService(
		openAIClient,
		openAIClient.Model(),
		cfg.Gemini.Timeout,
		errService,
		sugar,
	)

	chatService := chat.NewService(store, aiService, cfg.Gemini.Persona, sugar)

	lookup, err := calendar.NewLookup(rootCtx, cfg.Calendar.CredentialsFile, cfg.Calendar.CalendarID, calendar.ServiceOptions{
		Timeout:  cfg.Calendar.Timeout,
		Location: cfg.Calendar.Location(),
		Log:      sugar,
	})
	if err != nil {
		// бот работает и без календаря, #行程 ответит диагностикой
		sugar.Warnw("[main] calendar unavailable", "error", err)
	}

	dispatcher := commands.NewDispatcher(chatService).
		Handle(commands.Schedule, commands.HandlerFunc(func(ctx context.Context, _, _ string) string {
			return lookup.ListUpcoming(ctx)
		})).
		Handle(commands.Summary, commands.Static(commands.SummaryStubReply)).
		Handle(commands.Translate, commands.Static(commands.TranslateStubReply))

	// =========================================================================
	// LINE
	// =========================================================================

	replier, err := line.NewReplier(cfg.LineChannelAccessToken)
	if err != nil {
		log.Fatalf("failed to init line api: %v", err)
	}
	lineHandler := line.NewHandler(cfg.LineChannelSecret, dispatcher, replier, zl)

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := delivery.NewRouter(
		delivery.NewHealthHandler(),
		lineHandler.Callback,
		delivery.RouterOptions{CallbackRateLimit: cfg.CallbackRateLimit},
	)

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Log(logger.LogEntry{
			Level:   "info",
			Message: "listening at " + addr,
			Service: serviceName,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-rootCtx.Done()

	// =========================================================================
	// SHUTDOWN
	// =========================================================================

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("[main] http shutdown", "error", err)
	}
	janitor.Stop()

	if archiver != nil {
		n, err := archiver.Save(shutdownCtx, memStore)
		if err != nil {
			sugar.Errorw("[main] snapshot save failed", "error", err)
		} else {
			sugar.Infow("[main] snapshot saved", "users", n)
		}
	}

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "stopped",
		Service: serviceName,
	})
}
