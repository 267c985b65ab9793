package bootstrap

import (
	"context"
	"fmt"

	"phone-order-be/internal/config"
	"phone-order-be/internal/constant"
	"phone-order-be/internal/controller"
	"phone-order-be/internal/handler"
	"phone-order-be/internal/pkg/logger"
	"phone-order-be/internal/pkg/mailer"
	"phone-order-be/internal/pkg/serverutils"
	"phone-order-be/internal/repository/cache"
	"phone-order-be/internal/repository/contract"
	"phone-order-be/internal/repository/memory"
	"phone-order-be/internal/repository/unitofwork"
	"phone-order-be/internal/service"
	"phone-order-be/internal/websocket"
	"phone-order-be/pkg/events"
	"phone-order-be/pkg/llm/factory"
	"phone-order-be/pkg/menu"
	pktNats "phone-order-be/pkg/nats"
	"phone-order-be/pkg/nlu"
	"phone-order-be/pkg/ordering/policy"
	"phone-order-be/pkg/ordering/session"
	"phone-order-be/pkg/speech"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Logger logger.ILogger

	// Controllers
	VoiceController controller.IVoiceController
	AgentController controller.IAgentController
	OrderController controller.IOrderController

	// Kitchen display
	KitchenHandler *handler.KitchenHandler
	KitchenHub     *websocket.Hub

	// Background services, started by Start
	ConsumerService    service.IConsumerService
	KitchenMailService service.IKitchenMailService

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config, log logger.ILogger) (*Container, error) {
	c := &Container{Logger: log}

	// 1. Menu. A broken menu stops startup.
	catalog, err := menu.Load(cfg.Agent.CatalogPath)
	if err != nil {
		return nil, err
	}
	log.Info("Container", "Menu loaded", map[string]interface{}{"store": catalog.Store(), "items": len(catalog.Items())})

	uowFactory := unitofwork.NewRepositoryFactory(db)

	// 2. Infrastructure
	rdb := c.connectRedis(cfg)

	var natsPub *pktNats.Publisher
	var natsSub *pktNats.Subscriber
	if cfg.App.NatsURL != "" {
		if natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL); err != nil {
			log.Warn("Container", "Failed to connect NATS publisher", map[string]interface{}{"error": err.Error()})
		} else {
			c.closers = append(c.closers, natsPub.Close)
		}
		if natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL); err != nil {
			log.Warn("Container", "Failed to connect NATS subscriber", map[string]interface{}{"error": err.Error()})
		} else {
			c.closers = append(c.closers, natsSub.Close)
		}
	}
	var eventPub events.Publisher
	if natsPub != nil {
		eventPub = natsPub
	}

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Sessions
	var sessionRepo contract.CallSessionRepository
	if cfg.Agent.SessionBackend == "redis" && rdb != nil {
		sessionRepo = cache.NewRedisSessionRepository(rdb, cfg.Agent.SessionTTL, cfg.Agent.SessionLockTTL)
	} else {
		sessionRepo = memory.NewSessionRepository(cfg.Agent.SessionTTL)
	}
	log.Info("Container", "Session store ready", map[string]interface{}{"backend": cfg.Agent.SessionBackend})

	// 4. NLU
	baseURL := cfg.Ai.LLMBaseURL
	if cfg.Ai.LLMProvider == "ollama" {
		baseURL = cfg.Ai.OllamaBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(factory.Config{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  baseURL,
		APIKey:   cfg.Keys.OpenAI,
		Timeout:  cfg.Ai.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}
	log.Info("Container", "Using LLM provider", map[string]interface{}{"provider": cfg.Ai.LLMProvider, "model": cfg.Ai.LLMModel})

	// 5. Kitchen
	c.KitchenHub = websocket.NewHub(rdb, logger.NewIsolatedLogger(cfg.App.KitchenLogFilePath))

	if cfg.SMTP.Host != "" && cfg.SMTP.KitchenEmail != "" {
		emailService := mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.Email,
			cfg.SMTP.SenderName,
		)
		c.KitchenMailService = service.NewKitchenMailService(natsSub, uowFactory, emailService, cfg.SMTP.KitchenEmail, log)
	}

	c.ConsumerService = service.NewOrderConsumerService(pubSub, constant.OrderTopic, uowFactory, service.OrderConsumerDeps{
		Kitchen:   c.KitchenHub,
		Publisher: eventPub,
		Mail:      c.KitchenMailService,
	}, log)

	// 6. Dialogue
	agent := service.NewOrderAgentService(
		session.NewManager(sessionRepo),
		catalog,
		nlu.NewLLMExtractor(llmProvider, cfg.Agent.NLUHistory),
		policy.NewPolicy(catalog, policy.DefaultPhrases()),
		service.NewOrderPublisherService(constant.OrderTopic, pubSub),
		service.AgentOptions{ReplayWindow: cfg.Agent.ReplayWindow, HistoryLimit: cfg.Agent.HistoryLimit},
		log,
	)

	var synth speech.Synthesizer
	if cfg.Keys.GoogleTTS != "" {
		synth = speech.NewGoogleSynthesizer(cfg.Keys.GoogleTTS, cfg.Agent.Language, cfg.Agent.VoiceName, cfg.Agent.TTSTimeout)
	} else {
		log.Warn("Container", "No Google TTS key, replies use the telephony voice", nil)
	}
	speechService := service.NewSpeechService(synth, speech.NewAudioStore(cfg.Agent.AudioTTL), cfg.App.BaseURL, cfg.Agent.Language, log)

	// 7. Controllers
	var voiceGuard []fiber.Handler
	if cfg.Agent.ValidateTwilio {
		voiceGuard = append(voiceGuard, serverutils.TwilioSignatureMiddleware(cfg.Keys.TwilioSecret, cfg.App.BaseURL))
	}
	staffAuth := serverutils.JwtMiddleware(cfg.Keys.JwtSecret)

	c.VoiceController = controller.NewVoiceController(agent, speechService, cfg.App.BaseURL, log, voiceGuard...)
	c.AgentController = controller.NewAgentController(agent, log)
	c.OrderController = controller.NewOrderController(service.NewOrderService(uowFactory, c.KitchenHub, eventPub, log), staffAuth)
	c.KitchenHandler = handler.NewKitchenHandler(c.KitchenHub, staffAuth, log)

	return c, nil
}

func (c *Container) connectRedis(cfg *config.Config) *redis.Client {
	if cfg.App.RedisURL == "" {
		return nil
	}
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		c.Logger.Warn("Container", "Failed to parse Redis URL, using it as an address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		c.Logger.Warn("Container", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return rdb
}

// Start runs the background services until ctx ends.
func (c *Container) Start(ctx context.Context) error {
	c.KitchenHub.Start(ctx)
	if err := c.ConsumerService.Consume(ctx); err != nil {
		return fmt.Errorf("start order consumer: %w", err)
	}
	if c.KitchenMailService != nil {
		if err := c.KitchenMailService.Start(ctx); err != nil {
			c.Logger.Warn("Container", "Kitchen mail subscriber not started", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
