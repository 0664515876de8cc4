package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"chatbot/internal/config"
	"chatbot/internal/dataset"
	"chatbot/internal/handler"
	"chatbot/internal/model"
	"chatbot/internal/repository"
	"chatbot/internal/service"
	"chatbot/internal/transport"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Print version info
	log.Printf("Conversational Chatbot Server")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database connection
	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	log.Println("✅ Connected to PostgreSQL database")

	// Load the question/answer dataset. A broken dataset degrades the matcher
	// to always-miss instead of taking the whole service down.
	records, _, err := dataset.Load(cfg.Pipeline.DatasetPath)
	if err != nil {
		var loadErr *model.DatasetLoadError
		if errors.As(err, &loadErr) {
			log.Printf("⚠️  Dataset unavailable (%v), matcher will never match", err)
			records = nil
		} else {
			log.Fatalf("Failed to load dataset: %v", err)
		}
	} else {
		log.Printf("✅ Loaded %d dataset records from %s", len(records), cfg.Pipeline.DatasetPath)
	}

	// Initialize the resolution pipeline
	matcher := service.NewDomainMatcher(records, cfg.Pipeline.MatcherThreshold)
	ruleEngine := service.NewIntentRuleEngine()
	contexts := service.NewMemoryContextStore(cfg.Pipeline.ContextTimeout, cfg.Pipeline.MaxHistory)

	stages := []service.StageEntry{
		{Stage: matcher, AcceptAbove: cfg.Pipeline.MatcherAccept},
		{Stage: ruleEngine, AcceptAbove: cfg.Pipeline.IntentAccept},
	}

	if cfg.OpenAI.Enabled {
		openaiClient := service.NewOpenAIClient(&cfg.OpenAI)
		generative := service.NewGenerativeFallback(
			openaiClient,
			contexts,
			&cfg.Company,
			cfg.Pipeline.GenerativeHistory,
			cfg.Pipeline.GenerativeConfidence,
		)
		stages = append(stages, service.StageEntry{Stage: generative, AcceptAbove: 0})
		log.Printf("✅ OpenAI client initialized")
		log.Printf("   - API Base: %s", cfg.OpenAI.APIBase)
		log.Printf("   - Chat model: %s", cfg.OpenAI.ChatModel)
	} else {
		log.Println("⚠️  OpenAI is disabled - unmatched messages get a generic reply")
		log.Println("   Set OPENAI_API_KEY environment variable to enable the generative fallback")
	}

	resolver := service.NewResponseResolver(stages, contexts, repo, matcher.Vectorize)

	log.Println("✅ Services initialized")

	// Outbound channel senders
	whatsapp := transport.NewWhatsAppSender(&cfg.Meta)
	messenger := transport.NewMessengerSender(&cfg.Meta)
	dispatcher := transport.NewDispatcher(map[model.Channel]transport.Sender{
		model.ChannelWhatsApp:  whatsapp,
		model.ChannelMessenger: messenger,
	})

	// Initialize handlers
	chatHandler := handler.NewChatHandler(resolver)
	webhookHandler := handler.NewWebhookHandler(resolver, dispatcher, whatsapp, cfg.Meta.VerifyToken)
	dashboardHandler := handler.NewDashboardHandler(repo, matcher)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "chatbot",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Web chat endpoint
	router.POST("/chat", chatHandler.Chat)

	// Meta webhooks: GET for the verification handshake, POST for events
	router.GET("/webhook-whatsapp", webhookHandler.Verify)
	router.POST("/webhook-whatsapp", webhookHandler.ReceiveWhatsApp)
	router.GET("/webhook-messenger", webhookHandler.Verify)
	router.POST("/webhook-messenger", webhookHandler.ReceiveMessenger)

	// Dashboard API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/conversations", dashboardHandler.Conversations)
		apiV1.GET("/stats", dashboardHandler.Stats)
		apiV1.GET("/reports/:user_id", dashboardHandler.Report)
		apiV1.GET("/similar", dashboardHandler.Similar)
	}

	// Serve static files (frontend)
	// This function is implemented in embed.go (production) or static_dev.go (development)
	setupStaticFiles(router)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("🚀 Starting server on %s", addr)
	log.Printf("📝 Dashboard API: http://localhost:%d/api/v1", cfg.Server.Port)
	log.Printf("🌐 Web UI: http://localhost:%d", cfg.Server.Port)

	// Graceful shutdown
	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	log.Println("✅ Server stopped")
}
