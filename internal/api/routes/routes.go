package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifelink-api-server/internal/api/handlers"
	"lifelink-api-server/internal/api/middleware"
	"lifelink-api-server/internal/models"
	"lifelink-api-server/internal/service"
	"lifelink-api-server/internal/socket"
)

// Services bundles everything the router needs.
type Services struct {
	Users         service.UserStore
	Inventory     *service.InventoryService
	Requests      *service.HospitalRequestService
	DonorRequests *service.DonorRequestService
	Emergencies   *service.EmergencyService
	Camps         *service.CampService
	Admin         *service.AdminService
	Hub           *socket.Hub
	Log           *zap.SugaredLogger
}

// SetupRouter wires every endpoint under /api/v1 with role-scoped groups.
func SetupRouter(s Services) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	userHandler := &handlers.UserHandler{Users: s.Users, Log: s.Log}
	inventoryHandler := &handlers.InventoryHandler{Svc: s.Inventory}
	requestHandler := &handlers.RequestHandler{Svc: s.Requests}
	donorRequestHandler := &handlers.DonorRequestHandler{Svc: s.DonorRequests}
	emergencyHandler := &handlers.EmergencyHandler{Svc: s.Emergencies}
	campHandler := &handlers.CampHandler{Svc: s.Camps}
	adminHandler := &handlers.AdminHandler{Svc: s.Admin}
	webSocketHandler := &handlers.WebSocketHandler{Hub: s.Hub, Log: s.Log}

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", userHandler.Register)
			auth.POST("/login", userHandler.Login)
		}

		authed := apiV1.Group("/")
		authed.Use(middleware.Authenticate())
		{
			authed.GET("/me", userHandler.Me)
			authed.GET("/inventory", inventoryHandler.Ledger)
			authed.GET("/analytics/blood-groups", inventoryHandler.Analytics)
			authed.GET("/organisations", inventoryHandler.Directory)
		}

		donor := apiV1.Group("/donor")
		donor.Use(middleware.Authenticate(), middleware.Authorize(models.RoleDonor))
		{
			donor.POST("/donate", inventoryHandler.Donate)
			donor.POST("/requests", donorRequestHandler.Create)
			donor.GET("/requests", donorRequestHandler.ListMine)
			donor.PATCH("/requests/:id/cancel", donorRequestHandler.Cancel)
			donor.GET("/emergencies", emergencyHandler.ListForDonor)
			donor.PATCH("/emergencies/:id/respond", emergencyHandler.Respond)
			donor.GET("/camps", campHandler.ListPublished)
		}

		org := apiV1.Group("/organisation")
		org.Use(middleware.Authenticate(), middleware.Authorize(models.RoleOrganisation))
		{
			org.POST("/inventory/in", inventoryHandler.RecordIn)
			org.POST("/inventory/out", inventoryHandler.RecordIssue)
			org.GET("/stock", inventoryHandler.StockSummary)
			org.GET("/thresholds", inventoryHandler.Thresholds)
			org.PUT("/thresholds", inventoryHandler.UpdateThresholds)
			org.GET("/donors", inventoryHandler.DonorStats)
			org.GET("/hospitals", inventoryHandler.HospitalStats)
			org.GET("/hospitals/:id/issues", inventoryHandler.HospitalIssueHistory)
			org.POST("/hospitals/:id/connect", inventoryHandler.ConnectHospital)

			org.GET("/requests", requestHandler.ListIncoming)
			org.PATCH("/requests/:id/approve", requestHandler.Approve)
			org.PATCH("/requests/:id/reject", requestHandler.Reject)

			org.GET("/donor-requests", donorRequestHandler.ListIncoming)
			org.PATCH("/donor-requests/:id/approve", donorRequestHandler.Approve)
			org.PATCH("/donor-requests/:id/reject", donorRequestHandler.Reject)
			org.PATCH("/donor-requests/:id/complete", donorRequestHandler.Complete)
			org.PATCH("/donor-requests/:id/cancel", donorRequestHandler.Cancel)

			org.POST("/emergencies", emergencyHandler.Create)
			org.GET("/emergencies", emergencyHandler.ListMine)
			org.PATCH("/emergencies/:id/fulfil", emergencyHandler.Fulfil)
			org.DELETE("/emergencies/:id", emergencyHandler.Delete)

			org.POST("/camps", campHandler.Create)
			org.GET("/camps", campHandler.ListMine)
			org.PUT("/camps/:id", campHandler.Update)
			org.DELETE("/camps/:id", campHandler.Delete)
		}

		hospital := apiV1.Group("/hospital")
		hospital.Use(middleware.Authenticate(), middleware.Authorize(models.RoleHospital))
		{
			hospital.POST("/requests", requestHandler.Create)
			hospital.GET("/requests", requestHandler.ListMine)
			hospital.PATCH("/requests/:id/complete", requestHandler.Complete)
			hospital.PATCH("/requests/:id/cancel", requestHandler.Cancel)
		}

		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate(), middleware.Authorize(models.RoleAdmin))
		{
			admin.GET("/users/:role", adminHandler.ListUsers)
			admin.PATCH("/users/:id/block", adminHandler.BlockUser)
			admin.PATCH("/users/:id/unblock", adminHandler.UnblockUser)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)

			admin.GET("/emergencies", emergencyHandler.ListAll)
			admin.GET("/emergencies/stats", emergencyHandler.Stats)
			admin.PATCH("/emergencies/:id/status", emergencyHandler.SetStatus)

			admin.GET("/camps", campHandler.ListAll)
			admin.GET("/camps/stats", campHandler.Stats)
			admin.PATCH("/camps/:id/approve", campHandler.Approve)
			admin.PATCH("/camps/:id/reject", campHandler.Reject)
		}
	}

	return router
}
