package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/cache"
	"github.com/wyfcoding/pkg/config"
	"github.com/wyfcoding/pkg/database"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/messagequeue/kafka"
	"github.com/wyfcoding/pkg/messagequeue/outbox"
	"github.com/wyfcoding/pkg/metrics"
	"golang.org/x/sync/errgroup"

	invapp "github.com/wyfcoding/optionsmm/internal/inventory/application"
	"github.com/wyfcoding/optionsmm/internal/inventory/infrastructure/messaging"
	"github.com/wyfcoding/optionsmm/internal/inventory/infrastructure/persistence/mysql"
	redisrepo "github.com/wyfcoding/optionsmm/internal/inventory/infrastructure/persistence/redis"
	"github.com/wyfcoding/optionsmm/internal/marketmaking/application"
	mmconsumer "github.com/wyfcoding/optionsmm/internal/marketmaking/interfaces/consumer"
	httpserver "github.com/wyfcoding/optionsmm/internal/marketmaking/interfaces/http"
)

var configPath = flag.String("config", "configs/marketmaker/config.toml", "config file path")

func main() {
	flag.Parse()

	// 1. Config
	var cfg config.Config
	if err := config.Load(*configPath, &cfg); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. Logger
	logger := logging.NewFromConfig(&logging.Config{Service: cfg.Server.Name, Level: cfg.Log.Level})
	slog.SetDefault(logger.Logger)

	// 3. Metrics
	metricsImpl := metrics.NewMetrics(cfg.Server.Name)
	if cfg.Metrics.Enabled {
		stopMetrics := metricsImpl.ExposeHTTP(cfg.Metrics.Port)
		defer stopMetrics()
	}

	// 4. Database
	db, err := database.NewDB(cfg.Data.Database, cfg.CircuitBreaker, logger, metricsImpl)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}

	if cfg.Server.Environment == "dev" {
		if err := db.RawDB().AutoMigrate(&mysql.PositionModel{}, &outbox.Message{}); err != nil {
			slog.Error("failed to migrate database", "error", err)
		}
	}

	// 5. Kafka & Outbox
	// Producer 绑定单一主题，按主题惰性创建并复用。
	var producerMu sync.Mutex
	producers := make(map[string]*kafka.Producer)
	pusher := func(ctx context.Context, topic, key string, payload []byte) error {
		producerMu.Lock()
		producer, ok := producers[topic]
		if !ok {
			producerCfg := cfg.MessageQueue.Kafka
			producerCfg.Topic = topic
			producer = kafka.NewProducer(&producerCfg, logger, metricsImpl)
			producers[topic] = producer
		}
		producerMu.Unlock()
		return producer.Publish(ctx, []byte(key), payload)
	}

	outboxMgr := outbox.NewManager(db.RawDB(), logger.Logger)
	outboxProcessor := outbox.NewProcessor(outboxMgr, pusher, 100, 2*time.Second)

	// 6. Redis
	redisCache, err := cache.NewRedisCache(&cfg.Data.Redis, cfg.CircuitBreaker, logger, metricsImpl)
	if err != nil {
		slog.Error("failed to init redis", "error", err)
		os.Exit(1)
	}

	// 7. Repositories & application services
	repo := mysql.NewPositionRepository(db.RawDB())
	readRepo := redisrepo.NewPositionRedisRepository(redisCache.GetClient())
	publisher := messaging.NewOutboxEventPublisher(db.RawDB(), outboxMgr)

	inventorySvc := invapp.NewInventoryService(repo, readRepo, logger.Logger)
	deskSvc := application.NewDeskService(application.DefaultDeskConfig(), inventorySvc, publisher, logger.Logger, metricsImpl)

	// 8. Consumers
	fillHandler := mmconsumer.NewFillHandler(deskSvc, logger.Logger)
	consumerTopics := []string{
		mmconsumer.TradeFillTopic,
		mmconsumer.HedgeFillTopic,
		mmconsumer.MarkPriceTopic,
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumers := make([]*kafka.Consumer, 0, len(consumerTopics))
	for _, topic := range consumerTopics {
		consumerCfg := cfg.MessageQueue.Kafka
		consumerCfg.Topic = topic
		if consumerCfg.GroupID == "" {
			consumerCfg.GroupID = "optionsmm-desk-group"
		}
		consumer := kafka.NewConsumer(&consumerCfg, logger, metricsImpl)
		consumer.Start(rootCtx, 1, fillHandler.Handle)
		consumers = append(consumers, consumer)
	}

	// 9. HTTP
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	handler := httpserver.NewDeskHandler(deskSvc, inventorySvc)
	handler.RegisterRoutes(r)

	// 10. Start
	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		outboxProcessor.Start()
		<-ctx.Done()
		outboxProcessor.Stop()
		return nil
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTP.Port),
		Handler: r,
	}

	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown failed", "error", err)
		}
		for _, consumer := range consumers {
			if err := consumer.Close(); err != nil {
				slog.Error("consumer close failed", "error", err)
			}
		}
		// 退出前把内存仓位刷进数据库。
		if err := deskSvc.PersistAll(shutdownCtx); err != nil {
			slog.Error("failed to persist desk snapshots", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
	}
}
