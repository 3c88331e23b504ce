package admissionRoutes

import (
	admissionController "aims/controllers/admission"
	"aims/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupAdmissionRoutes(app *fiber.App) {
	admissionGroup := app.Group("/admissions")

	admissionGroup.Get("/", middleware.JWTMiddleware, admissionController.ListAdmissions)
	admissionGroup.Get("/:id", middleware.JWTMiddleware, admissionController.GetAdmission)

	// Withdrawal is terminal, same guard as the approval decisions
	admissionGroup.Post("/:id/withdraw", middleware.JWTMiddleware, middleware.RequireRole("REVIEWER", "ADMIN"), admissionController.WithdrawAdmission)
}
