package main

import (
	"aims/config"
	"aims/database"
	admissionRoutes "aims/routers/admissionRoutes"
	joiningRoutes "aims/routers/joiningRoutes"
	paymentRoutes "aims/routers/paymentRoutes"
	"aims/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"log"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	joiningRoutes.SetupJoiningRoutes(app)
	admissionRoutes.SetupAdmissionRoutes(app)
	paymentRoutes.SetupPaymentRoutes(app)

	// Background settlement of pending online payments
	utils.InitializeReconciliationScheduler()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
