package internal

import (
	"context"
	"fmt"
	logger_adapter "listing-web/internal/adapters/logger"
	metrics_adapter "listing-web/internal/adapters/metrics"
	postgres_adapter "listing-web/internal/adapters/postgres"
	"listing-web/internal/adapters/property_api_client"
	rabbitmq_adapter "listing-web/internal/adapters/rabbitmq"
	redis_adapter "listing-web/internal/adapters/redis"
	"listing-web/internal/adapters/rest"
	"listing-web/internal/configs"
	"listing-web/internal/constants"
	"listing-web/internal/contextkeys"
	"listing-web/internal/core/port"
	"listing-web/internal/core/usecase"
	fluentlogger "listing-web/pkg/fluent_logger"
	"listing-web/pkg/postgres"
	"listing-web/pkg/rabbitmq/rabbitmq_common"
	"listing-web/pkg/rabbitmq/rabbitmq_consumer"
	"listing-web/pkg/rabbitmq/rabbitmq_producer"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type App struct {
	config    *configs.AppConfig
	apiServer *rest.Server
	sessions  *usecase.ListingSessions

	// необязательные компоненты, nil если выключены в конфигурации
	dbPool                  *pgxpool.Pool
	redisClient             *redis.Client
	connManager             *rabbitmq_common.ConnectionManager
	publisher               *rabbitmq_producer.Publisher
	propertyChangedListener port.EventListenerPort

	logger       port.LoggerPort
	baseLogger   port.LoggerPort
	fluentClient *fluent.Fluent
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ИНИЦИАЛИЗАЦИЯ ЛОГГЕРОВ ---
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   appConfig.StdoutLogger.JSON,
		UseColor: !appConfig.StdoutLogger.JSON,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	// --- 2. БАЗОВЫЙ ЛОГГЕР ПРИЛОЖЕНИЯ ---
	baseLogger := multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	app := &App{
		config:       appConfig,
		logger:       appLogger,
		baseLogger:   baseLogger,
		fluentClient: fluentClient,
	}

	if err := app.wire(); err != nil {
		app.closeResources()
		return nil, err
	}
	return app, nil
}

// wire собирает адаптеры и use cases. Postgres, Redis и RabbitMQ необязательны:
// без них отключаются подписка, кэш и события соответственно.
func (a *App) wire() error {
	cfg := a.config
	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	metrics := metrics_adapter.NewPrometheusMetrics()

	// --- ВНЕШНИЙ СЕРВИС ДАННЫХ ---
	var api port.PropertyAPIPort = property_api_client.NewPropertyAPIClient(cfg.PropertyAPI.URL, cfg.PropertyAPI.Timeout)
	a.logger.Info("Property API client initialized", port.Fields{"base_url": cfg.PropertyAPI.URL})

	// интерфейсные переменные, чтобы выключенный компонент был именно nil
	var cacheInvalidator port.ListingCacheInvalidatorPort
	if cfg.Redis.Addr != "" {
		client, err := redis_adapter.NewClient(initCtx, redis_adapter.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			a.logger.Error("Failed to connect to Redis", err, nil)
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		a.redisClient = client
		cached := redis_adapter.NewCachedPropertyAPI(api, client, cfg.Redis.CacheTTL, metrics)
		api = cached
		cacheInvalidator = cached
		a.logger.Info("Listing cache enabled", port.Fields{"ttl": cfg.Redis.CacheTTL.String()})
	} else {
		a.logger.Warn("REDIS_ADDR is not set, listing cache disabled", nil)
	}

	var subscriberRepo port.SubscriberRepositoryPort
	if cfg.Postgres.DATABASE_URL != "" {
		pool, err := postgres.NewClient(initCtx, postgres.Config{DatabaseURL: cfg.Postgres.DATABASE_URL})
		if err != nil {
			a.logger.Error("Failed to connect to PostgreSQL", err, nil)
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		a.dbPool = pool
		a.logger.Info("Successfully connected to PostgreSQL pool!", nil)

		repo, err := postgres_adapter.NewPostgresSubscriberRepository(pool)
		if err != nil {
			return fmt.Errorf("failed to create subscriber repository: %w", err)
		}
		if err := repo.EnsureSchema(initCtx); err != nil {
			a.logger.Error("Failed to prepare subscribers schema", err, nil)
			return err
		}
		subscriberRepo = repo
	} else {
		a.logger.Warn("DATABASE_URL is not set, newsletter subscription disabled", nil)
	}

	var (
		searchEvents     port.SearchEventsPort
		subscriberEvents port.SubscriberEventsPort
	)
	if cfg.RabbitMQ.URL != "" {
		connManagerLogger := a.baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"})
		connManager, err := rabbitmq_common.NewManager(rabbitmq_common.Config{URL: cfg.RabbitMQ.URL}, rabbitmq_adapter.NewPkgLoggerBridge(connManagerLogger))
		if err != nil {
			a.logger.Error("Failed to create connection manager", err, nil)
			return fmt.Errorf("failed to create connection manager: %w", err)
		}
		a.connManager = connManager
		a.logger.Info("RabbitMQ Connection Manager initialized.", nil)

		publisher, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:                   rabbitmq_common.Config{URL: cfg.RabbitMQ.URL},
			ExchangeName:             constants.ListingExchange,
			ExchangeType:             "topic",
			DurableExchange:          true,
			DeclareExchangeIfMissing: true,
			Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(a.baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
		}, connManager)
		if err != nil {
			a.logger.Error("Failed to create listing events publisher", err, nil)
			return fmt.Errorf("failed to create publisher: %w", err)
		}
		a.publisher = publisher

		eventsAdapter, err := rabbitmq_adapter.NewListingEventsPublisher(publisher)
		if err != nil {
			return err
		}
		searchEvents = eventsAdapter
		subscriberEvents = eventsAdapter
	} else {
		a.logger.Warn("RABBITMQ_URL is not set, listing events disabled", nil)
	}

	// --- USE CASES ---
	a.sessions = usecase.NewListingSessions(api, searchEvents, metrics, cfg.Listing.SessionTTL)
	searchPanelUC := usecase.NewSearchPanelUseCase()
	renderCardsUC := usecase.NewRenderCardsUseCase()
	subscribeUC := usecase.NewSubscribeUseCase(subscriberRepo, subscriberEvents, metrics)
	invalidateCacheUC := usecase.NewInvalidateListingCacheUseCase(cacheInvalidator)
	a.logger.Info("All use cases initialized.", nil)

	if a.connManager != nil && cacheInvalidator != nil {
		listener, err := rabbitmq_adapter.NewPropertyChangedConsumerAdapter(rabbitmq_consumer.ConsumerConfig{
			Config:                 rabbitmq_common.Config{URL: cfg.RabbitMQ.URL},
			QueueName:              constants.CacheInvalidationQueue,
			DeclareQueue:           true,
			DurableQueue:           true,
			ExchangeNameForBind:    constants.PropertyExchange,
			DeclareExchangeForBind: true,
			ExchangeTypeForBind:    "topic",
			DurableExchangeForBind: true,
			RoutingKeysForBind:     []string{constants.PropertyChangedRoutingKey},
			PrefetchCount:          1,
			ConsumerTag:            cfg.AppName + "_cache_invalidation",
		}, invalidateCacheUC, a.baseLogger, a.connManager)
		if err != nil {
			a.logger.Error("Failed to create property changed consumer", err, nil)
			return fmt.Errorf("failed to create property changed consumer: %w", err)
		}
		a.propertyChangedListener = listener
		a.logger.Info("Cache invalidation listener initialized.", nil)
	}

	// --- REST ---
	pages, err := rest.NewPagesHandler(a.sessions, searchPanelUC, renderCardsUC, subscribeUC)
	if err != nil {
		a.logger.Error("Failed to parse page templates", err, nil)
		return err
	}
	apiProxy, err := rest.CreateProxy(cfg.PropertyAPI.URL, "")
	if err != nil {
		a.logger.Error("Failed to create property API proxy", err, nil)
		return err
	}

	a.apiServer = rest.NewServer(rest.ServerConfig{
		Port:               cfg.Rest.PORT,
		CORSAllowedOrigins: cfg.Rest.CORSAllowedOrigins,
	}, rest.Routes{
		Pages:    pages,
		APIProxy: apiProxy,
		Metrics:  metrics.Handler(),
	}, a.baseLogger)
	a.logger.Info("API server initialized", nil)

	return nil
}

func (a *App) Run() error {
	// Единый контекст приложения для graceful shutdown
	appCtx, cancelApp := context.WithCancel(contextkeys.ContextWithLogger(context.Background(), a.baseLogger))
	defer cancelApp()

	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := a.apiServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("Error during API server shutdown", err, nil)
		}

		a.logger.Info("Waiting for background processes to finish...", nil)
		wg.Wait()
		a.logger.Info("All background processes finished.", nil)

		a.closeResources()
	}()

	a.logger.Info("Application is starting...", nil)

	errorsCh := make(chan error, 2)

	go func() {
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			errorsCh <- fmt.Errorf("HTTP server start error: %w", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.sessions.RunJanitor(appCtx, time.Minute)
	}()

	if a.propertyChangedListener != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			listenerLogger := a.logger.WithFields(port.Fields{"listener": "Property Changed Events Listener"})
			listenerLogger.Info("Starting listener...", nil)

			if err := a.propertyChangedListener.Start(appCtx); err != nil {
				listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
				errorsCh <- fmt.Errorf("property changed listener error: %w", err)
			} else {
				listenerLogger.Info("Listener stopped gracefully.", nil)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or component error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case err := <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", err, nil)
	}

	cancelApp()
	return nil
}

// closeResources закрывает все, что успело открыться; безопасно для частично собранного App
func (a *App) closeResources() {
	if a.propertyChangedListener != nil {
		if err := a.propertyChangedListener.Close(); err != nil {
			a.logger.Error("Error closing property changed listener", err, nil)
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("Error closing publisher", err, nil)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection", err, nil)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("Error closing Redis client", err, nil)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.logger.Info("PostgreSQL pool closed.", nil)
	}

	a.logger.Info("Application shut down gracefully.", nil)
	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
		}
	}
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
