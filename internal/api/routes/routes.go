package routes

import (
	"lab-inventory-api-server/config"
	"lab-inventory-api-server/internal/ai"
	"lab-inventory-api-server/internal/api/handlers"
	"lab-inventory-api-server/internal/api/middleware"
	"lab-inventory-api-server/internal/inventory"
	"lab-inventory-api-server/internal/models"
	"lab-inventory-api-server/internal/s3"
	"lab-inventory-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter wires every handler onto the API surface.
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	svc *inventory.Service,
	gemini *ai.Client,
	s3Uploader *s3.Uploader,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Server.AllowOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	authHandler := &handlers.AuthHandler{DB: db, Cfg: cfg}
	componentHandler := &handlers.ComponentHandler{Service: svc, Gemini: gemini}
	borrowHandler := &handlers.BorrowHandler{Service: svc}
	procurementHandler := &handlers.ProcurementHandler{Service: svc}
	dashboardHandler := &handlers.DashboardHandler{Service: svc}
	aiHandler := &handlers.AIHandler{Service: svc, Gemini: gemini, Uploader: s3Uploader}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub, Cfg: cfg}

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		// === ROUTES WITHOUT AUTHENTICATION ===

		auth := apiV1.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.GET("/verify", authHandler.Verify)
			auth.POST("/logout", authHandler.Logout)
		}

		// Public read-only catalog surface
		public := apiV1.Group("/components")
		{
			public.GET("/", componentHandler.ListComponents)
			public.GET("/tags", componentHandler.ListTags)
			public.GET("/categories", componentHandler.ListCategories)
		}

		// === PROTECTED ROUTES ===

		// Student workflow, any authenticated role
		student := apiV1.Group("/student")
		student.Use(middleware.Authenticate(cfg.JWT.Secret))
		{
			student.GET("/components", componentHandler.ListComponents)
			student.POST("/borrow", borrowHandler.Borrow)
			student.POST("/records/:recordId/return", borrowHandler.Return)
			student.GET("/records", borrowHandler.MyRecords)
			student.GET("/recommendations", borrowHandler.Recommendations)
			student.POST("/components/identify", aiHandler.Identify)
		}

		chatbot := apiV1.Group("/chatbot")
		chatbot.Use(middleware.Authenticate(cfg.JWT.Secret))
		{
			chatbot.POST("/query", aiHandler.Chat)
		}

		// Admin console, requires the admin role
		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate(cfg.JWT.Secret))
		admin.Use(middleware.Authorize(models.RoleAdmin))
		{
			components := admin.Group("/components")
			{
				components.POST("/", componentHandler.CreateComponent)
				components.GET("/", componentHandler.ListComponents)
				components.GET("/:componentId", componentHandler.GetComponent)
				components.PUT("/:componentId", componentHandler.UpdateComponent)
				components.DELETE("/:componentId", componentHandler.DeleteComponent)
				components.POST("/upload", componentHandler.UploadComponents)
			}

			records := admin.Group("/borrowing-records")
			{
				records.GET("/", borrowHandler.ListRecords)
				records.GET("/overdue", borrowHandler.OverdueRecords)
				records.POST("/:recordId/approve", borrowHandler.Approve)
				records.POST("/:recordId/reject", borrowHandler.Reject)
			}

			admin.GET("/dashboard", dashboardHandler.Stats)
			admin.GET("/dashboard/urgent-actions", dashboardHandler.UrgentActions)

			admin.GET("/procurement", procurementHandler.ListSuggestions)
			admin.POST("/procurement", procurementHandler.CreateRequest)
		}
	}

	return router
}
