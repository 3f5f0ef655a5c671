package api

import (
	"github.com/campushq/notification-engine/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(h *Handler) *gin.Engine {

	router := gin.Default()
	docs.SwaggerInfo.BasePath = "/api"

	apiRoutes := router.Group("/api")
	{
		apiRoutes.POST("/notifications", h.dispatchNotificationHandler)
		apiRoutes.POST("/notifications/bulk", h.bulkNotificationHandler)
		apiRoutes.GET("/notifications", h.queryNotificationsHandler)
		apiRoutes.POST("/webhooks/:provider", h.providerWebhookHandler)
		apiRoutes.GET("/inbox/:userID", h.listInboxHandler)
		apiRoutes.POST("/inbox/:userID/read", h.markInboxReadHandler)
		apiRoutes.PUT("/jobs/reconciler/toggle", h.toggleReconcilerJobHandler)
	}
	router.GET("/health", h.healthHandler)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router
}
