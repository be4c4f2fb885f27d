package main

import (
	"net/http"

	"nuvio-server/internal/ai"
	"nuvio-server/internal/api"
	"nuvio-server/internal/auth"
	"nuvio-server/internal/cache"
	"nuvio-server/internal/channel"
	"nuvio-server/internal/chat"
	"nuvio-server/internal/config"
	"nuvio-server/internal/crawler"
	"nuvio-server/internal/meta"
	"nuvio-server/internal/metrics"
	"nuvio-server/internal/payment"
	"nuvio-server/internal/store"
	"nuvio-server/internal/webhook"
	"nuvio-server/internal/widget"
	"nuvio-server/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	st, err := store.Open(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		logrus.Fatalf("Failed to open store: %v", err)
	}

	metricRegistry := metrics.Registry("nuvio")
	redisClient := cache.New(cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	hub := ws.NewHub()
	go hub.Run()

	completer := ai.NewCaller(
		ai.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel),
		ai.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel),
		metricRegistry,
	)

	chatService := chat.NewService(st, completer, hub, metricRegistry)
	crawlerClient := crawler.New(cfg.CrawlProxyBase, completer)
	midtransClient := payment.NewMidtrans(cfg.MidtransServerKey, cfg.MidtransProduction)
	paymentService := payment.NewService(st, midtransClient, cfg.MidtransServerKey, hub, metricRegistry)
	graphClient := meta.NewGraphClient(cfg.GraphAPIBase)
	channelClient := channel.NewClient(cfg.GraphAPIBase)
	authManager := auth.NewManager(cfg.JWTSecret)

	webhookHandler := webhook.NewHandler(cfg, st, chatService, channelClient, hub, metricRegistry)
	authHandler := api.NewAuthHandler(st, authManager)
	chatHandler := api.NewChatHandler(chatService, metricRegistry)
	businessHandler := api.NewBusinessHandler(st, redisClient)
	crawlHandler := api.NewCrawlHandler(crawlerClient, st)
	paymentHandler := api.NewPaymentHandler(cfg, st, paymentService)
	facebookHandler := api.NewFacebookHandler(graphClient, st)
	catalogHandler := api.NewCatalogHandler(st)
	leadHandler := api.NewLeadHandler(st)
	auditHandler := api.NewAuditHandler(st)
	settingsHandler := api.NewSettingsHandler(st, redisClient)
	dashboardHandler := api.NewDashboardHandler(st)

	r := gin.Default()
	r.Use(api.CORS())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/widget.js", widget.Serve)

	// Channel webhook routes
	r.GET("/webhook", webhookHandler.Verify)
	r.POST("/webhook", webhookHandler.HandleMessage)

	apiGroup := r.Group("/api")
	{
		// Public: the widget and third-party sites call these directly.
		apiGroup.GET("/business-info", businessHandler.GetBusinessInfo)
		apiGroup.POST("/chat", chatHandler.HandleTurn)

		// Payment gateway callbacks authenticate by signature, not session.
		// Both Midtrans paths stay registered; older gateway configs still
		// point at the -webhook one.
		apiGroup.POST("/midtrans-callback", paymentHandler.MidtransCallback)
		apiGroup.POST("/midtrans-webhook", paymentHandler.MidtransCallback)
		apiGroup.POST("/xendit-callback", paymentHandler.XenditCallback)

		apiGroup.POST("/auth/register", authHandler.Register)
		apiGroup.POST("/auth/login", authHandler.Login)

		// Dashboard routes
		dash := apiGroup.Group("")
		dash.Use(authManager.RequireAuth())
		{
			dash.GET("/stats", dashboardHandler.GetStats)

			dash.POST("/crawl", crawlHandler.Extract)
			dash.POST("/crawl/import", crawlHandler.Import)

			dash.POST("/create-invoice", paymentHandler.CreateInvoice)
			dash.POST("/facebook-auth", facebookHandler.Link)

			dash.GET("/products", catalogHandler.ListProducts)
			dash.POST("/products", catalogHandler.CreateProduct)
			dash.PUT("/products/:id", catalogHandler.UpdateProduct)
			dash.DELETE("/products/:id", catalogHandler.DeleteProduct)

			dash.GET("/faqs", catalogHandler.ListFAQs)
			dash.POST("/faqs", catalogHandler.CreateFAQ)
			dash.PUT("/faqs/:id", catalogHandler.UpdateFAQ)
			dash.DELETE("/faqs/:id", catalogHandler.DeleteFAQ)

			dash.GET("/leads", leadHandler.ListLeads)
			dash.PUT("/leads/:id", leadHandler.UpdateLeadStatus)
			dash.DELETE("/leads/:id", leadHandler.DeleteLead)

			dash.GET("/activity", auditHandler.ListActivity)
			dash.GET("/whitelist", auditHandler.ListWhitelist)
			dash.POST("/whitelist", auditHandler.CreateWhitelistEntry)
			dash.DELETE("/whitelist/:id", auditHandler.DeleteWhitelistEntry)

			dash.GET("/settings", settingsHandler.GetSettings)
			dash.PUT("/settings", settingsHandler.UpdateSettings)

			dash.GET("/ws", func(c *gin.Context) {
				hub.ServeWs(auth.TenantID(c), c.Writer, c.Request)
			})
		}
	}

	logrus.Infof("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logrus.Fatalf("Failed to run server: %v", err)
	}
}
