package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/signworks/orderflow-api/config"
	"github.com/signworks/orderflow-api/controllers"
	"github.com/signworks/orderflow-api/middleware"
	"github.com/signworks/orderflow-api/realtime"
	"github.com/signworks/orderflow-api/workflow"
)

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// setupRouter wires every route. hub may be nil when realtime delivery is
// not needed, in which case /ws is not registered.
func setupRouter(cfg *config.Config, hub *realtime.Hub) *gin.Engine {
	router := gin.Default()
	router.Use(corsMiddleware(cfg.CORSAllowedOrigins))
	router.MaxMultipartMemory = cfg.MaxUploadBytes()

	var (
		admin    = middleware.RequireRole(workflow.Admin)
		staff    = middleware.RequireRole(workflow.Admin, workflow.Graphics, workflow.Cutout, workflow.Accounts)
		graphics = middleware.RequireRole(workflow.Admin, workflow.Graphics)
		cutout   = middleware.RequireRole(workflow.Admin, workflow.Cutout)
		accounts = middleware.RequireRole(workflow.Admin, workflow.Accounts)
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)
		v1.GET("/uploads/*filepath", controllers.GetUploadedFile)
		v1.POST("/auth/login", controllers.Login)

		protected := v1.Group("")
		protected.Use(middleware.EnsureValidToken(cfg))
		{
			auth := protected.Group("/auth")
			auth.GET("/getAllUsers", staff, controllers.GetAllUsers)
			auth.POST("/create-account", admin, controllers.CreateAccount)
			auth.PUT("/updateUser/:id", admin, controllers.UpdateUser)
			auth.DELETE("/deleteUser/:id", admin, controllers.DeleteUser)
			auth.POST("/change-password", controllers.ChangePassword)

			orders := protected.Group("/admin")
			orders.GET("/getOrders", controllers.ListOrders)
			orders.GET("/getOrder/:id", controllers.GetOrder)
			orders.POST("/createOrder", admin, controllers.CreateOrder)
			orders.PUT("/updateOrder/:id", admin, controllers.UpdateOrder)
			orders.DELETE("/deleteOrder/:id", admin, controllers.DeleteOrder)
			orders.POST("/updateWorkQueue", admin, controllers.UpdateWorkQueue)
			orders.GET("/orders/:id/logs", controllers.ListOrderLogs)
			orders.GET("/orders/:id/transitions", controllers.ListOrderTransitions)
			orders.GET("/orders/:id/messages", controllers.GetMessages)
			orders.POST("/orders/:id/messages", controllers.CreateMessage)

			orders.POST("/changeStatus", controllers.ChangeStatus)
			orders.POST("/cutout/changeStatus", cutout, controllers.CutoutChangeStatus)
			orders.POST("/orders/:id/approve", admin, controllers.ApproveOrder)
			orders.POST("/orders/:id/reject", admin, controllers.RejectOrder)
			orders.POST("/assignOrder/:id", graphics, controllers.AssignOrder)
			orders.POST("/cutout/assignOrder/:id", cutout, controllers.AssignOrderToCutout)
			orders.POST("/accounts/assignOrderToAccount/:id", accounts, controllers.AssignOrderToAccounts)

			orders.POST("/files/order/:id", staff, controllers.UploadOrderFiles)
			orders.GET("/files/order/:id", controllers.ListOrderFiles)
			orders.GET("/files/download/:id", controllers.DownloadFile)
			orders.GET("/files/download-all/:id", controllers.DownloadAllFiles)
			orders.GET("/files/download-all-type/:id", controllers.DownloadAllFilesOfType)

			orders.GET("/getAllLeads", admin, controllers.GetAllLeads)
			orders.GET("/getLead/:id", admin, controllers.GetLead)
			orders.POST("/createLead", admin, controllers.CreateLead)
			orders.PUT("/updateLead/:id", admin, controllers.UpdateLead)
			orders.DELETE("/deleteLead/:id", admin, controllers.DeleteLead)
			orders.POST("/convertToCustomer/:id", admin, controllers.ConvertToCustomer)

			orders.GET("/getAllCustomers", admin, controllers.GetAllCustomers)
			orders.GET("/getCustomer/:id", admin, controllers.GetCustomer)
			orders.POST("/createCustomer", admin, controllers.CreateCustomer)
			orders.PUT("/updateCustomer/:id", admin, controllers.UpdateCustomer)

			invoices := protected.Group("/invoices", accounts)
			invoices.GET("", controllers.ListInvoices)
			invoices.GET("/order/:orderId", controllers.ListOrderInvoices)
			invoices.GET("/:id", controllers.GetInvoice)
			invoices.GET("/:id/pdf", controllers.GetInvoicePDF)
			invoices.POST("", controllers.CreateInvoice)
			invoices.PUT("/:id", controllers.UpdateInvoice)
			invoices.DELETE("/:id", controllers.DeleteInvoice)

			challans := protected.Group("/challan", accounts)
			challans.GET("", controllers.ListChallans)
			challans.GET("/order/:orderId", controllers.ListOrderChallans)
			challans.GET("/:id", controllers.GetChallan)
			challans.GET("/:id/pdf", controllers.GetChallanPDF)
			challans.POST("", controllers.CreateChallan)
			challans.PUT("/:id", controllers.UpdateChallan)
			challans.DELETE("/:id", controllers.DeleteChallan)

			protected.GET("/notifications", controllers.ListNotifications)
			protected.PUT("/notifications/read-all", controllers.MarkAllNotificationsRead)
			protected.PUT("/notifications/:id/read", controllers.MarkNotificationRead)

			if hub != nil {
				protected.GET("/ws", controllers.ServeWebsocket(hub, realtime.NewUpgrader(cfg.CORSAllowedOrigins)))
			}
		}
	}

	return router
}
