package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/seopilot/config"
	"github.com/yoockh/seopilot/internal/api/handlers"
	"github.com/yoockh/seopilot/internal/api/middleware"
	"github.com/yoockh/seopilot/internal/api/routes"
	"github.com/yoockh/seopilot/internal/cache"
	"github.com/yoockh/seopilot/internal/logger"
	"github.com/yoockh/seopilot/internal/providers/catalog"
	"github.com/yoockh/seopilot/internal/providers/llm"
	mongorepo "github.com/yoockh/seopilot/internal/repositories/mongo"
	pgrepo "github.com/yoockh/seopilot/internal/repositories/postgres"
	"github.com/yoockh/seopilot/internal/services"
	"github.com/yoockh/seopilot/internal/storage"
	"github.com/yoockh/seopilot/internal/utils"
	"github.com/yoockh/seopilot/internal/workers"
)

type callLogStore interface {
	llm.CallLogWriter
	services.CallLogReader
}

func main() {
	settings, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	l := logger.New(settings.LogLevel, settings.LogFile)
	if l.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init PostgreSQL
	if err := config.InitPostgres(settings); err != nil {
		l.WithError(err).Fatal("PostgreSQL init error")
	}
	db := config.PostgresDB
	if settings.AutoMigrate {
		if err := config.Migrate(db); err != nil {
			l.WithError(err).Fatal("migration failed")
		}
	}
	l.Info("PostgreSQL connected")

	// Init Redis
	if err := config.InitRedis(settings); err != nil {
		l.WithError(err).Fatal("Redis init error")
	}
	rdb := config.RedisClient
	l.Info("Redis connected")

	products := pgrepo.NewProductRepo(db)
	configRepo := pgrepo.NewLlmConfigRepo(db)
	jobRepo := pgrepo.NewJobRepo(db)
	storeRepo := pgrepo.NewStoreRepo(db)

	var callLogs callLogStore = pgrepo.NewCallLogRepo(db)
	if settings.CallLogStore == "mongo" {
		if err := config.InitMongo(settings); err != nil {
			l.WithError(err).Fatal("MongoDB init error")
		}
		if err := config.EnsureMongoIndexes(settings); err != nil {
			l.WithError(err).Warn("failed to ensure mongo indexes")
		}
		callLogs = mongorepo.NewCallLogRepo(config.MongoClient.Database(settings.MongoDB), config.CallLogCollection)
		l.Info("MongoDB connected; call logs stored in mongo")
	}

	providers, closeProviders := buildProviders(ctx, settings, l)
	defer closeProviders()
	gateway := llm.NewGateway(llm.GatewayOptions{
		DefaultProvider: llm.ProviderGemini,
		DefaultModel:    settings.GeminiModel,
		Timeout:         settings.LLMTimeout,
	}, callLogs, l, providers...)

	catalogLookup := cache.NewCatalogLookup(products, cache.NewRedisCache(rdb, "seopilot:"), settings.CatalogCacheTTL, l)

	configProvider := services.NewConfigProvider(configRepo, l)
	if settings.SeedDefaultConfigs {
		n, err := configProvider.SeedStock(ctx, llm.ProviderGemini, settings.GeminiModel)
		if err != nil {
			l.WithError(err).Fatal("seeding llm configurations failed")
		}
		l.WithField("created", n).Info("llm configurations seeded")
	}

	queue := workers.NewRedisQueue(rdb)
	writerAuditor := services.NewWriterAuditor(configProvider, gateway, catalogLookup, l)
	processor := services.NewProductProcessor(jobRepo, products, writerAuditor, workers.NewRedisProgress(rdb),
		services.RetryPolicy{MaxAttempts: settings.MaxAttempts, Backoff: settings.RetryBackoff}, l)
	jobSvc := services.NewJobService(jobRepo, configRepo, queue, l)

	var appKey *[32]byte
	if settings.AppKey != "" {
		appKey, err = utils.ParseSecretKey(settings.AppKey)
		if err != nil {
			l.WithError(err).Fatal("invalid APP_KEY")
		}
	} else {
		l.Warn("APP_KEY not set; store registration and catalog sync are disabled")
	}
	syncSvc := services.NewCatalogSyncService(services.CatalogSyncDeps{
		Stores:   storeRepo,
		Products: products,
		NewClient: func(baseURL, token string) catalog.Client {
			return catalog.NewMagentoClient(baseURL, token, nil)
		},
		Key:      appKey,
		Queue:    queue,
		Cache:    catalogLookup,
		PageSize: settings.CatalogPageSize,
		Log:      l,
	})

	var exportStore services.ExportStore
	if settings.ExportBucket != "" {
		gcsStore, err := storage.NewGCSStore(ctx, settings.ExportBucket, settings.GoogleCredentialsFile)
		if err != nil {
			l.WithError(err).Fatal("GCS init error")
		}
		defer gcsStore.Close()
		exportStore = gcsStore
	}
	exportSvc := services.NewExportService(jobSvc, exportStore, l)

	pools := []*workers.StreamPool{
		{
			Redis:          rdb,
			NumWorkers:     settings.WorkerConcurrency,
			Handler:        workers.ProductHandler(processor),
			Logger:         l,
			Stream:         workers.ProductStream,
			Group:          "seo-workers",
			ConsumerPrefix: hostname(),
		},
		{
			Redis:          rdb,
			NumWorkers:     1,
			Handler:        workers.SyncHandler(syncSvc),
			Logger:         l,
			Stream:         workers.SyncStream,
			Group:          "catalog-workers",
			ConsumerPrefix: hostname(),
		},
	}
	for _, p := range pools {
		if err := p.Start(ctx); err != nil {
			l.WithError(err).Fatal("worker pool start failed")
		}
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(l))
	routes.RegisterRoutes(r, routes.Deps{
		Jobs:     handlers.NewJobHandler(jobSvc, exportSvc),
		Products: handlers.NewProductHandler(services.NewPreviewService(products, writerAuditor)),
		Configs:  handlers.NewConfigHandler(configProvider),
		CallLogs: handlers.NewCallLogHandler(services.NewCallLogService(callLogs)),
		Stores:   handlers.NewStoreHandler(syncSvc),
		WS:       handlers.NewWSHandler(jobSvc, rdb),
	})

	srv := &http.Server{Addr: ":" + settings.Port, Handler: r}
	go func() {
		l.WithField("port", settings.Port).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	l.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.WithError(err).Warn("http shutdown")
	}
	for _, p := range pools {
		p.Wait()
	}
}

// buildProviders registers every LLM backend that has credentials. The
// Gemini REST provider is always present as the default.
func buildProviders(ctx context.Context, s *config.Settings, l logrus.FieldLogger) ([]llm.Provider, func()) {
	if s.GeminiAPIKey == "" {
		l.Warn("GEMINI_API_KEY not set; calls to the default provider will fail")
	}
	out := []llm.Provider{llm.NewGemini(s.GeminiBaseURL, s.GeminiAPIKey, &http.Client{Timeout: s.LLMTimeout})}
	closers := []func() error{}

	if s.VertexProject != "" {
		v, err := llm.NewVertexGemini(ctx, s.VertexProject, s.VertexLocation, s.GoogleCredentialsFile)
		if err != nil {
			l.WithError(err).Warn("vertex provider unavailable")
		} else {
			out = append(out, v)
			closers = append(closers, v.Close)
		}
	}
	if s.OpenAIAPIKey != "" {
		out = append(out, llm.NewOpenAI(s.OpenAIAPIKey, ""))
	}
	if s.AnthropicAPIKey != "" {
		out = append(out, llm.NewAnthropic(s.AnthropicAPIKey, ""))
	}

	names := make([]string, 0, len(out))
	for _, p := range out {
		names = append(names, p.Name())
	}
	l.WithField("providers", names).Info("llm providers ready")

	return out, func() {
		for _, c := range closers {
			_ = c()
		}
	}
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "c"
	}
	return h
}
