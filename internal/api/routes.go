package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rolinkstone/new-talawang-sub001/internal/auth"
	"github.com/rolinkstone/new-talawang-sub001/internal/config"
	"github.com/rolinkstone/new-talawang-sub001/internal/keycloak"
	"github.com/rolinkstone/new-talawang-sub001/internal/service"
	"github.com/rolinkstone/new-talawang-sub001/internal/websocket"
	"gorm.io/gorm"
)

// RouterDeps everything the router needs wired in
type RouterDeps struct {
	Config          *config.Config
	DB              *gorm.DB
	Hub             *websocket.Hub
	Validator       *auth.KeycloakTokenValidator
	KegiatanService service.KegiatanService
	SearchService   service.SearchService
	PinStore        auth.PinStore
	KeycloakClient  *keycloak.Client
	UserCache       *keycloak.UserCache
}

// SetupRoutes builds the gin engine with all middleware and routes
func SetupRoutes(deps *RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	production := config.IsProduction(deps.Config)
	SetExposeErrorDetails(!production)

	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware())
	router.Use(SecurityHeadersMiddleware())
	router.Use(VersionMiddleware())
	router.Use(I18nMiddleware())
	if deps.Config != nil {
		router.Use(CORSMiddleware(deps.Config.CORS.AllowedOrigins))
		if deps.Config.Tracing.Enabled {
			router.Use(TracingMiddleware())
		}
	}
	router.Use(HTTPSRedirectMiddlewareWithConfig(production))
	router.Use(RateLimitMiddleware(100, 200))
	router.Use(ErrorHandlerMiddleware())

	healthController := NewHealthController(deps.DB, deps.KeycloakClient)
	router.GET("/health", healthController.Check)

	router.GET("/metrics", MetricsHandler)

	if deps.Hub != nil && deps.Validator != nil {
		router.GET("/ws", websocket.Handler(deps.Hub, deps.Validator))
		router.GET("/sse/kegiatan", SSEHandler(deps.Hub, deps.Validator))
	}

	v1 := router.Group("/api/v1")
	if deps.Validator != nil {
		v1.Use(auth.KeycloakAuthMiddleware(deps.Validator))
	}
	{
		kegiatanController := NewKegiatanController(deps.KegiatanService)
		requirePin := auth.RequirePinMiddleware(deps.PinStore)

		kegiatan := v1.Group("/kegiatan")
		{
			kegiatan.POST("", kegiatanController.Create)
			kegiatan.GET("", kegiatanController.List)
			kegiatan.GET("/:id", kegiatanController.Get)
			kegiatan.PUT("/:id/cancel", kegiatanController.Cancel)

			// money-moving transitions sit behind the transaction PIN
			kegiatan.POST("/:id/approve", requirePin, kegiatanController.Approve)
			kegiatan.POST("/:id/reject", requirePin, kegiatanController.Reject)
			kegiatan.POST("/:id/transfer", requirePin, kegiatanController.Transfer)
			kegiatan.POST("/:id/complete", requirePin, kegiatanController.Complete)

			kegiatan.POST("/:id/pegawai", kegiatanController.AddPegawai)
			kegiatan.GET("/:id/pegawai", kegiatanController.ListPegawai)
			kegiatan.DELETE("/:id/pegawai/:pegawaiId", kegiatanController.DeletePegawai)
		}

		searchController := NewSearchController(deps.SearchService)
		v1.GET("/search", searchController.Search)
		v1.GET("/search/stats", searchController.Stats)

		pinController := NewPinController(deps.PinStore)
		v1.POST("/pin", pinController.Set)
		v1.POST("/pin/verify", pinController.Verify)

		userController := NewUserController(deps.KeycloakClient, deps.UserCache)
		users := v1.Group("/users")
		users.Use(auth.RequireRole(auth.RoleAdmin))
		{
			users.GET("", userController.List)
			users.GET("/:id", userController.Get)
			users.POST("/refresh", userController.RefreshCache)
		}
	}

	return router
}
