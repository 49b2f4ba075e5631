package bootstrap

import (
	"context"
	"log"
	"time"

	"legal-qa-be/internal/config"
	"legal-qa-be/internal/controller"
	"legal-qa-be/internal/handler"
	"legal-qa-be/internal/pkg/logger"
	"legal-qa-be/internal/repository/memory"
	"legal-qa-be/internal/repository/unitofwork"
	"legal-qa-be/internal/service"
	"legal-qa-be/internal/websocket"
	"legal-qa-be/pkg/embedding"
	"legal-qa-be/pkg/embedding/jina"
	"legal-qa-be/pkg/idempotency"
	"legal-qa-be/pkg/llm/factory"
	"legal-qa-be/pkg/rag/generate"
	"legal-qa-be/pkg/rag/plan"
	"legal-qa-be/pkg/rag/rerank"
	"legal-qa-be/pkg/rag/retrieval"

	pktNats "legal-qa-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	QAController controller.IQAController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	QAAskHandler    *handler.QAAskHandler

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.HuggingFace,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	var reranker service.Reranker
	if cfg.Ai.RerankProvider == "jina" {
		reranker = rerank.NewJinaReranker(cfg.Keys.Jina, cfg.Ai.RerankModel)
		log.Printf("[INFO] Using Rerank Provider: JINA (%s)", cfg.Ai.RerankModel)
	} else {
		reranker = rerank.NewLocalReranker()
		log.Printf("[INFO] Using Rerank Provider: LOCAL")
	}

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	locker := idempotency.NewRedisLocker(rdb, "qa:run", 2*cfg.Pipeline.StageTimeout+time.Minute)

	// 5. Pipeline Stages
	passageRepo := unitofwork.NewUnitOfWork(db).PassageRepository()
	retriever := retrieval.NewEngine(passageRepo, embeddingProvider, retrieval.Config{
		TopK:       cfg.Pipeline.RetrieveTopK,
		FusionK:    cfg.Pipeline.FusionK,
		FusedFloor: cfg.Pipeline.FusedFloor,
	})
	planner := plan.NewPlanner(plan.Config{
		SupportThreshold:    cfg.Pipeline.SupportThreshold,
		MaxPassagesPerClaim: cfg.Pipeline.MaxPassagesPerClaim,
	})
	generator := generate.NewGenerator(llmProvider)

	caseCache := memory.NewCaseCache()

	// 6. Services
	var eventPublisher service.EventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}

	qaService := service.NewQAService(
		uowFactory,
		retriever,
		reranker,
		planner,
		generator,
		locker,
		eventPublisher,
		wsHub,
		caseCache,
		pubSub,
		cfg.Pipeline,
		sysLogger,
	)

	consumerService := service.NewConsumerService(pubSub, cfg.Pipeline.AskTopic, qaService, sysLogger)

	var askHandler *handler.QAAskHandler
	if natsSub != nil {
		askHandler = handler.NewQAAskHandler(natsSub, qaService, sysLogger)
	}

	// 7. Controllers
	qaController := controller.NewQAController(qaService)

	return &Container{
		QAController:    qaController,
		ConsumerService: consumerService,
		QAAskHandler:    askHandler,
		WebSocketHub:    wsHub,
	}
}
