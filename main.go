package main

import (
	"log"

	"certificados/config"
	adminController "certificados/controllers/admin"
	enrollmentController "certificados/controllers/enrollment"
	"certificados/database"
	"certificados/mailer"
	"certificados/routers/adminRoutes"
	"certificados/routers/enrollmentRoutes"
	"certificados/services"
	"certificados/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Database: %v", err)
	}

	// A missing template or mail credential set is a deployment problem;
	// fail before taking traffic rather than on the first enrollment.
	renderer, err := services.NewDocumentRenderer(cfg.TemplatePath)
	if err != nil {
		log.Fatalf("Certificate template: %v", err)
	}

	transport, err := mailer.New(cfg)
	if err != nil {
		log.Fatalf("Mail transport: %v", err)
	}

	links := services.NewLinkEncoder(cfg.SiteURL)
	workflow := services.NewIssuanceWorkflow(db, renderer, transport, cfg.MailTransport)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	enrollmentRoutes.SetupEnrollmentRoutes(app, enrollmentController.New(db, workflow))
	adminRoutes.SetupAdminRoutes(app, adminController.New(db, workflow, links))

	if cfg.DeliverySweep {
		utils.InitializeDeliveryScheduler(db, workflow)
	}

	log.Printf("Server is running on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
