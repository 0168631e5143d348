package bootstrap

import (
	"log"

	"aided-be/internal/config"
	"aided-be/internal/controller"
	"aided-be/internal/pkg/logger"
	"aided-be/internal/repository/memory"
	"aided-be/internal/service"
	"aided-be/pkg/answer"
	"aided-be/pkg/citation"
	"aided-be/pkg/flow"
	"aided-be/pkg/llm/factory"
	"aided-be/pkg/policy"
	"aided-be/pkg/render"

	pktNats "aided-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const turnEventsTopic = "chat.turns"

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	PolicyController   controller.IPolicyController
	GlossaryController controller.IGlossaryController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Held for shutdown
	NatsPublisher *pktNats.Publisher
	Logger        logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Policy Registry
	registry := policy.Default()
	if cfg.Chat.RegistryPath != "" {
		loaded, err := policy.LoadCSV(cfg.Chat.RegistryPath)
		if err != nil {
			log.Fatalf("[FATAL] Failed to load policy registry: %v", err)
		}
		registry = loaded
		log.Printf("[INFO] Loaded policy registry from %s", cfg.Chat.RegistryPath)
	}

	// 3. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS forwarding is optional, sessions work without it.
	var natsPub *pktNats.Publisher
	if cfg.App.NatsEnabled {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			natsPub = pub
		}
	}

	// 4. LLM Provider
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Keys.OpenAI,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 5. Domain Components
	validator := citation.NewValidator(registry)
	pipeline := answer.NewPipeline(llmProvider, validator)
	flowEngine := flow.NewEngine()
	renderer := render.NewRenderer()
	sessionRepo := memory.NewSessionRepository()

	// 6. Services
	publisherService := service.NewPublisherService(turnEventsTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, turnEventsTopic, natsPub, sysLogger)

	chatService := service.NewChatService(
		registry,
		sessionRepo,
		pipeline,
		flowEngine,
		renderer,
		publisherService,
		sysLogger,
		cfg.Chat.Cooldown,
	)
	policyService := service.NewPolicyService(registry)

	// 7. Controllers
	return &Container{
		ChatController:     controller.NewChatController(chatService),
		PolicyController:   controller.NewPolicyController(policyService),
		GlossaryController: controller.NewGlossaryController(),

		ConsumerService: consumerService,

		NatsPublisher: natsPub,
		Logger:        sysLogger,
	}
}
