package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/aroyle/depthroute/src/auth"
	"github.com/aroyle/depthroute/src/config"
	"github.com/aroyle/depthroute/src/handlers"
	"github.com/aroyle/depthroute/src/inference"
	"github.com/aroyle/depthroute/src/memory"
	"github.com/aroyle/depthroute/src/middleware"
	"github.com/aroyle/depthroute/src/orchestrator"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("✓ Config loaded")

	store, err := memory.NewStore(&cfg.Redis, &cfg.Memory)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer store.Close()
	log.Printf("✓ Redis connected, memory store ready")

	if cfg.Memory.SemanticEnabled {
		if cfg.Memory.APIKey == "" {
			log.Println("Semantic memory enabled but no API key set, search disabled")
		} else {
			store.SetEmbedder(memory.NewOpenAIEmbedder(cfg.Memory.APIKey))
			log.Printf("✓ Semantic memory search enabled (threshold: %.2f)", cfg.Memory.SimilarityThreshold)
		}
	}

	client, err := inference.NewClient(&cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize generation client: %v", err)
	}
	log.Printf("✓ Generation client ready: %s / %s", cfg.Router.HighModel, cfg.Router.FastModel)

	orch := orchestrator.New(client, store, &cfg.Router)
	log.Printf("✓ Orchestrator initialized (threshold: %d)", cfg.Router.ComplexityThreshold)

	if len(cfg.Context.Blocks) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := orch.InitializeContext(ctx, cfg.Context.Blocks); err != nil {
			log.Fatalf("Failed to initialize context tiers: %v", err)
		}
		cancel()
		log.Printf("✓ Loaded %d context tier(s), %d cached tokens",
			len(cfg.Context.Blocks), orch.Statistics().CachedTokens)
	} else {
		log.Println("No context tiers configured, call POST /api/v1/context before chatting")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	apiHandler := handlers.NewAPIHandler(orch, store, cfg.LLM.Timeout)

	v1 := r.Group("/api/v1")
	v1.GET("/health", apiHandler.HealthCheck)

	protected := v1.Group("")
	if clientID := os.Getenv("GOOGLE_CLIENT_ID"); clientID != "" {
		authConfig := &auth.Config{
			GoogleClientID:     clientID,
			GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
			FrontendURL:        os.Getenv("FRONTEND_URL"),
			SessionDuration:    7 * 24 * time.Hour,
			CookieDomain:       os.Getenv("COOKIE_DOMAIN"),
			CookieSecure:       os.Getenv("COOKIE_SECURE") == "true",
			CookieSameSite:     os.Getenv("COOKIE_SAME_SITE"),
		}

		authStore := auth.NewStore(store.Client(), authConfig.SessionDuration)
		authHandler := auth.NewHandler(
			auth.GoogleOAuthConfig(authConfig.GoogleClientID, authConfig.GoogleClientSecret, authConfig.GoogleRedirectURL),
			authStore,
			authConfig,
		)
		authMiddleware := middleware.NewAuthMiddleware(authStore)

		authRoutes := v1.Group("/auth")
		authRoutes.GET("/login", authHandler.Login)
		authRoutes.GET("/callback", authHandler.Callback)
		authRoutes.POST("/logout", authHandler.Logout)
		authRoutes.GET("/me", authMiddleware.RequireAuth(), authHandler.Me)

		protected.Use(authMiddleware.RequireAuth())
		log.Printf("✓ Authentication enabled")
	} else {
		log.Println("GOOGLE_CLIENT_ID not set, running without authentication")
	}

	protected.POST("/context", apiHandler.HandleInitContext)
	protected.DELETE("/context", apiHandler.HandleClearContext)
	protected.POST("/chat", apiHandler.HandleChat)
	protected.POST("/score", apiHandler.HandleScore)
	protected.GET("/stats", apiHandler.HandleStats)
	protected.GET("/memory", apiHandler.HandleMemory)
	protected.GET("/memory/search", apiHandler.HandleMemorySearch)
	protected.GET("/viz/:kind", apiHandler.HandleViz)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Printf("🚀 depthroute running on port %s", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

func corsMiddleware() gin.HandlerFunc {
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:3001",
	}
	if env := os.Getenv("ALLOWED_ORIGINS"); env != "" {
		allowedOrigins = strings.Split(env, ",")
		for i := range allowedOrigins {
			allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
		}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// No Origin header on health checks and curl; let those through
		if origin == "" {
			c.Next()
			return
		}

		allowed := false
		for _, candidate := range allowedOrigins {
			if origin == candidate {
				allowed = true
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}
		if !allowed {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
