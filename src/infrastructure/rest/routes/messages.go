package routes

import (
	"pet-emergency-api/src/infrastructure/rest/controllers/messages"
	"pet-emergency-api/src/infrastructure/rest/middlewares"

	"github.com/gin-gonic/gin"
)

func MessageRoutes(router *gin.RouterGroup, controller messages.IMessagesController) {
	// provider callbacks authenticate by reference, not operator token
	router.POST("/callbacks/:channel", controller.ProviderCallback)

	messagesRoute := router.Group("/messages")
	messagesRoute.Use(middlewares.AuthJWTMiddleware())
	{
		messagesRoute.GET("", controller.List)
		messagesRoute.GET("/stats", controller.Stats)
		messagesRoute.POST("/:id/retry", controller.Retry)
	}
}
