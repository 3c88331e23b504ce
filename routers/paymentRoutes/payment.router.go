package paymentRoutes

import (
	paymentController "aims/controllers/payment"
	"aims/middleware"
	paymentValidator "aims/validators/payment"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(app *fiber.App) {
	paymentGroup := app.Group("/payments")

	paymentGroup.Post("/", paymentValidator.RecordPayment(), middleware.JWTMiddleware, paymentController.RecordPayment)
	paymentGroup.Get("/", middleware.JWTMiddleware, paymentController.ListTransactions)
	paymentGroup.Get("/summary", middleware.JWTMiddleware, paymentController.GetSummary)
	paymentGroup.Get("/collections", middleware.JWTMiddleware, paymentController.GetCollections)
	paymentGroup.Post("/reconcile", middleware.JWTMiddleware, paymentController.ReconcileNow)
}
