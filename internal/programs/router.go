package programs

import "github.com/gin-gonic/gin"

func SetupProgramRoutes(router *gin.RouterGroup, controller Controller) {
	// Public - the booking page loads details before login checks
	publicPrograms := router.Group("/programs")
	{
		publicPrograms.GET("/:id", controller.GetProgram) // GET /api/v1/programs/:id
	}
}
