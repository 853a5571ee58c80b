package main

import (
	"os"

	_ "auditdesk/api/swagger" // swagger docs
	"auditdesk/internal/approval"
	"auditdesk/internal/database"
	"auditdesk/internal/handler"
	"auditdesk/internal/middleware"
	"auditdesk/internal/repository"
	"auditdesk/internal/service"
	"auditdesk/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           AuditDesk API
// @version         1.0
// @description     Practice-management backend for audit and tax engagements with multi-stage approval workflows.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		logrus.Info("no configs/.env file found")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	logrus.Info("connected to PostgreSQL")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Engine -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrgRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)
	taskRepo := repository.NewApprovalTaskRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	engine := approval.NewEngine(taskRepo, activityRepo, wsHub)

	txManager := repository.NewTransactionManager(db)

	userService := service.NewUserService(userRepo)
	orgService := service.NewOrgService(orgRepo, userRepo, txManager)
	engagementService := service.NewEngagementService(engagementRepo, activityRepo)
	approvalService := service.NewApprovalService(taskRepo)
	activityService := service.NewActivityService(activityRepo)

	// Variant services register their workflow config on the engine.
	acceptanceService := service.NewAcceptanceService(db, engine, engagementRepo)
	kamService := service.NewKamService(db, engine, engagementRepo, activityRepo)
	tcwgService := service.NewTcwgService(db, engine, engagementRepo, activityRepo)
	planService := service.NewPlanService(db, engine, engagementRepo, activityRepo)
	fraudService := service.NewFraudService(db, engine, engagementRepo, activityRepo)
	taxService := service.NewTaxService(db, engine, engagementRepo, activityRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	orgHandler := handler.NewOrgHandler(orgService)
	engagementHandler := handler.NewEngagementHandler(engagementService)
	approvalHandler := handler.NewApprovalHandler(approvalService)
	activityHandler := handler.NewActivityHandler(activityService)
	acceptanceHandler := handler.NewAcceptanceHandler(acceptanceService)
	kamHandler := handler.NewKamHandler(kamService)
	tcwgHandler := handler.NewTcwgHandler(tcwgService)
	planHandler := handler.NewPlanHandler(planService)
	fraudHandler := handler.NewFraudHandler(fraudService)
	taxHandler := handler.NewTaxHandler(taxService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	api := router.Group("/api")
	userHandler.RegisterRoutes(api)
	orgHandler.RegisterRoutes(api)

	// Org-scoped routes: bearer auth, then slug -> membership resolution
	org := api.Group("/orgs/:orgSlug", middleware.RequireAuth(), middleware.OrgContext(orgService))
	orgHandler.RegisterOrgRoutes(org)
	engagementHandler.RegisterRoutes(org)
	approvalHandler.RegisterRoutes(org)
	activityHandler.RegisterRoutes(org)
	acceptanceHandler.RegisterRoutes(org)
	kamHandler.RegisterRoutes(org)
	tcwgHandler.RegisterRoutes(org)
	planHandler.RegisterRoutes(org)
	fraudHandler.RegisterRoutes(org)
	taxHandler.RegisterRoutes(org)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logrus.WithField("port", port).Info("server listening")
	if err := router.Run(":" + port); err != nil {
		logrus.WithError(err).Fatal("server failed")
	}
}
