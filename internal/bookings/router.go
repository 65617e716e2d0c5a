package bookings

import (
	"festbook/internal/shared/config"
	"festbook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures all booking session routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller Controller, cfg *config.Config) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireStudent())
	{
		// Session lifecycle
		bookings.POST("/sessions", controller.OpenSession)        // POST /api/v1/bookings/sessions
		bookings.GET("/sessions/:id", controller.GetSession)      // GET /api/v1/bookings/sessions/:id
		bookings.DELETE("/sessions/:id", controller.CloseSession) // DELETE /api/v1/bookings/sessions/:id
		bookings.POST("/sessions/:id/reset", controller.Reset)    // POST /api/v1/bookings/sessions/:id/reset
		bookings.GET("/sessions/:id/receipt", controller.Receipt) // GET /api/v1/bookings/sessions/:id/receipt

		// Team roster
		bookings.PUT("/sessions/:id/group-size", controller.SetGroupSize)        // PUT /api/v1/bookings/sessions/:id/group-size
		bookings.POST("/sessions/:id/members", controller.AddMember)             // POST /api/v1/bookings/sessions/:id/members
		bookings.DELETE("/sessions/:id/members/:index", controller.RemoveMember) // DELETE /api/v1/bookings/sessions/:id/members/:index
		bookings.PATCH("/sessions/:id/members/:index", controller.UpdateMember)  // PATCH /api/v1/bookings/sessions/:id/members/:index

		// Attempt and checkout callbacks
		bookings.POST("/sessions/:id/initiate", controller.Initiate)              // POST /api/v1/bookings/sessions/:id/initiate
		bookings.POST("/sessions/:id/payment", controller.ConfirmPayment)         // POST /api/v1/bookings/sessions/:id/payment
		bookings.POST("/sessions/:id/payment/abandon", controller.AbandonPayment) // POST /api/v1/bookings/sessions/:id/payment/abandon

		// History
		bookings.GET("/attempts", controller.ListAttempts) // GET /api/v1/bookings/attempts?page=1&limit=20
		bookings.GET("/mine", controller.MyBookings)       // GET /api/v1/bookings/mine
	}
}

// Typical paid flow:
// 1. POST /sessions {programId}           -> IDLE snapshot
// 2. PUT/POST/PATCH roster endpoints      -> group programs only
// 3. POST /sessions/:id/initiate          -> AWAITING_PAYMENT with checkout options
// 4. POST /sessions/:id/payment           -> SUCCESS with the booking record
// 5. GET  /sessions/:id/receipt           -> PDF
