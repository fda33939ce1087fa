// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gourmet-dialog-bot/internal/application"
	"gourmet-dialog-bot/internal/config"
	"gourmet-dialog-bot/internal/domain/model"
	"gourmet-dialog-bot/internal/domain/ports/adapter"
	"gourmet-dialog-bot/internal/domain/ports/repository"
	"gourmet-dialog-bot/internal/infra/adapters/channel"
	"gourmet-dialog-bot/internal/infra/adapters/nlu"
	httpapi "gourmet-dialog-bot/internal/infra/api"
	pg "gourmet-dialog-bot/internal/infra/db/postgres"
	"gourmet-dialog-bot/internal/infra/i18n"
	"gourmet-dialog-bot/internal/infra/logging"
	"gourmet-dialog-bot/internal/infra/memory"
	"gourmet-dialog-bot/internal/infra/metrics"
	red "gourmet-dialog-bot/internal/infra/redis"
	"gourmet-dialog-bot/internal/infra/web"
	"gourmet-dialog-bot/internal/infra/worker"
	"gourmet-dialog-bot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, log sender)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	logging.Global = *logger
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()

	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Dialog.Locale)
	if err != nil {
		logger.Fatal().Err(err).Msg("translator")
	}

	// ---- NLU (openai -> keyword) ----
	var classifier adapter.IntentClassifier
	switch cfg.NLU.Provider {
	case "openai":
		classifier = nlu.NewOpenAIClassifier(cfg.NLU,
			[]string{cfg.Dialog.QueryIntent},
			[]string{model.SlotArea, model.SlotGourmetCategory},
			logger)
		logger.Info().Str("model", cfg.NLU.Model).Msg("NLU adapter: OpenAI")
	case "keyword":
		classifier = nlu.NewKeywordClassifier(cfg.NLU, cfg.Dialog.QueryIntent)
		logger.Info().Msg("NLU adapter: keyword (offline)")
	default:
		logger.Fatal().Str("provider", cfg.NLU.Provider).Msg("unknown nlu.provider")
	}

	// ---- Conversation store & lock ----
	var (
		convRepo repository.ConversationRepository
		locker   repository.Locker
	)
	switch cfg.Conversation.Store {
	case "redis":
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		convRepo = red.NewConversationRepo(redisClient, cfg.Conversation.TTL)
		locker = red.NewLocker(redisClient)
		logger.Info().Msg("conversation store: redis")
	default:
		memRepo := memory.NewConversationRepo(cfg.Conversation.TTL)
		go memRepo.StartJanitor(ctx, time.Minute, logger)
		convRepo = memRepo
		locker = memory.NewKeyedLocker()
		logger.Info().Msg("conversation store: memory")
	}

	// ---- Turn audit log (optional) ----
	var turnRepo repository.TurnLogRepository
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer pool.Close()
		turnRepo = pg.NewTurnLogRepo(pool)
		logger.Info().Msg("turn audit log: postgres")
	}

	// ---- Reply channel ----
	var sender adapter.MessageSender
	if cfg.Channel.Mode == "webhook" {
		sender = channel.NewWebhookSender(cfg.Channel)
	} else {
		sender = channel.NewLogSender(logger)
	}

	// ---- Engine & dispatcher ----
	engine := usecase.NewDialogEngine(classifier, tr, cfg.Dialog, usecase.RestaurantSlots(), logger)
	dispatcher, err := application.NewDispatcher(engine, convRepo, locker, sender, turnRepo, tr, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("dispatcher")
	}

	// ---- Worker pool ----
	pool := worker.NewPool(cfg.Conversation.Workers, cfg.Conversation.QueueSize, logger)
	pool.Start(ctx)

	// ---- HTTP ----
	apiServer := httpapi.NewServer(dispatcher, pool, logger)
	router := apiServer.Router()

	auth := web.NewAuthManager(cfg.Admin.JWTSecret, !cfg.Runtime.Dev, cfg.Admin.SessionTTL)
	adminServer := web.NewServer(dispatcher, turnRepo, auth, cfg.Admin.Password, logger)
	adminServer.RegisterRoutes(router)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
	pool.Stop()
}
