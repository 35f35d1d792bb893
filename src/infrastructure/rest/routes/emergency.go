package routes

import (
	"pet-emergency-api/src/infrastructure/rest/controllers/emergency"

	"github.com/gin-gonic/gin"
)

func EmergencyRoutes(router *gin.RouterGroup, controller emergency.IEmergencyController) {
	emergencyRoute := router.Group("/emergency-requests")
	{
		emergencyRoute.POST("", controller.Create)
		emergencyRoute.GET("/:id/status", controller.GetStatus)
	}
}
