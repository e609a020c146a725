package bootstrap

import (
	"context"

	"ai-tutor-be/internal/config"
	"ai-tutor-be/internal/controller"
	"ai-tutor-be/internal/handler"
	"ai-tutor-be/internal/pkg/logger"
	"ai-tutor-be/internal/repository/memory"
	"ai-tutor-be/internal/service"
	"ai-tutor-be/internal/websocket"
	"ai-tutor-be/pkg/course"
	"ai-tutor-be/pkg/embedding"
	pktNats "ai-tutor-be/pkg/nats"
	"ai-tutor-be/pkg/retriever"
	"ai-tutor-be/pkg/vectorstore"
	"ai-tutor-be/pkg/workflow"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	SessionController   controller.ISessionController
	ContentController   controller.IContentController
	RetrievalController controller.IRetrievalController
	ProgressController  *controller.ProgressController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	ProgressService *service.ProgressService

	// WebSockets
	StreamHandler *handler.StreamHandler
	WebSocketHub  *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermillLogger,
	)

	// 3. Domain components
	embeddingProvider, err := embedding.NewProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaModel,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		return nil, err
	}
	sysLogger.Info("Bootstrap", "Embedding provider selected", map[string]interface{}{"provider": cfg.Ai.EmbeddingProvider, "model": cfg.Ai.OllamaModel})

	c := &Container{Logger: sysLogger}

	var embedder vectorstore.Embedder = embedding.AsEmbedder(embeddingProvider)
	if cfg.Ai.EmbeddingCache > 0 {
		cached, err := embedding.NewCachingEmbedder(embedder, cfg.Ai.EmbeddingCache)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, cached.Close)
		embedder = cached
	}
	store := vectorstore.New(embedder, sysLogger.Named("VectorStore"))

	courseRetriever := retriever.New(course.SeedCourses(), sysLogger.Named("Retriever"))
	if _, err := courseRetriever.LoadDirectory(cfg.Content.CourseDir); err != nil {
		sysLogger.Warn("Bootstrap", "Failed to load course directory", map[string]interface{}{"dir": cfg.Content.CourseDir, "error": err.Error()})
	}

	workflowClient := workflow.NewClient(
		cfg.Workflow.BaseURL,
		cfg.Workflow.LessonPath,
		cfg.Workflow.HTTPTimeout,
		sysLogger.Named("Workflow"),
	)

	sessionRepo := memory.NewSessionRepository(cfg.Session.TTL, cfg.Session.CleanupInterval)

	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 4. Infrastructure (optional; the app runs without NATS and Redis)
	var natsPub *pktNats.Publisher
	var natsSub *pktNats.Subscriber
	if cfg.App.NatsEnabled {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL, sysLogger.Named("NATS"))
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		} else {
			c.closers = append(c.closers, natsPub.Close)
		}
		natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger.Named("NATS"))
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to NATS Subscriber", map[string]interface{}{"error": err.Error()})
		} else {
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	var rdb *redis.Client
	if cfg.App.RedisEnabled {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if err := rdb.Ping(ctx).Err(); err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to Redis, delivering locally", map[string]interface{}{"error": err.Error()})
			_ = rdb.Close()
			rdb = nil
		} else {
			c.closers = append(c.closers, func() { _ = rdb.Close() })
		}
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/stream.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run(ctx)

	// 5. Services
	progressService := service.NewProgressService(natsSub, sysLogger)

	// Progress listens on NATS when connected, otherwise receives events in-process
	var eventPublisher service.EventPublisher = progressService
	if natsPub != nil && natsSub != nil {
		eventPublisher = natsPub
	}

	publisherService := service.NewPublisherService(cfg.Content.IngestionTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Content.IngestionTopic,
		store,
		service.ChunkConfig{Size: cfg.Content.ChunkSize, Overlap: cfg.Content.ChunkOverlap},
		eventPublisher,
		sysLogger,
	)

	sessionService := service.NewSessionService(
		sessionRepo,
		workflowClient,
		wsHub, // Hub implements session.Listener
		wsHub, // and session.AudioCue
		eventPublisher,
		sysLogger.Named("Session"),
	)
	contentService := service.NewContentService(courseRetriever, publisherService, sysLogger)
	retrievalService := service.NewRetrievalService(courseRetriever, store, cfg.Content.SearchTopK, sysLogger)

	// 6. Controllers
	c.SessionController = controller.NewSessionController(sessionService)
	c.ContentController = controller.NewContentController(contentService, cfg.Content.MaxUploadBytes)
	c.RetrievalController = controller.NewRetrievalController(retrievalService)
	c.ProgressController = controller.NewProgressController(progressService, sessionService.Summary)
	c.StreamHandler = handler.NewStreamHandler(sessionService, wsHub, wsLogger)
	c.WebSocketHub = wsHub
	c.ConsumerService = consumerService
	c.ProgressService = progressService

	return c, nil
}

// Close releases broker connections in reverse order of creation
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
