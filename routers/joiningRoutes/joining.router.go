package joiningRoutes

import (
	joiningController "aims/controllers/joining"
	"aims/middleware"
	joiningValidator "aims/validators/joining"

	"github.com/gofiber/fiber/v2"
)

func SetupJoiningRoutes(app *fiber.App) {
	joiningGroup := app.Group("/joinings")

	joiningGroup.Post("/", joiningValidator.CreateJoining(), middleware.JWTMiddleware, joiningController.CreateJoining)
	joiningGroup.Get("/:id", middleware.JWTMiddleware, joiningController.GetJoining)
	joiningGroup.Put("/:id", joiningValidator.UpdateJoining(), middleware.JWTMiddleware, joiningController.UpdateJoining)
	joiningGroup.Post("/:id/submit", middleware.JWTMiddleware, joiningController.SubmitJoining)

	// Approval decisions are reviewer-only
	joiningGroup.Post("/:id/approve", middleware.JWTMiddleware, middleware.RequireRole("REVIEWER", "ADMIN"), joiningController.ApproveJoining)
	joiningGroup.Post("/:id/reject", joiningValidator.RejectJoining(), middleware.JWTMiddleware, middleware.RequireRole("REVIEWER", "ADMIN"), joiningController.RejectJoining)
}
