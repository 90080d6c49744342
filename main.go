package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	amqp "github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"userdir/internal/facades"
	"userdir/internal/handlers"
	"userdir/internal/models"
	"userdir/internal/repositories"
	"userdir/internal/services"
	"userdir/pkg/rabbitmq"
	"userdir/pkg/randomuser"
)

// NewApp wires configuration, storage, the broker, and the HTTP
// surface into a ready-to-listen Fiber app. The returned cleanup
// closes whatever resources were opened.
func NewApp() (*fiber.App, func(), error) {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_DSN", "userdir.db")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("RANDOMUSER_API_URL", randomuser.DefaultBaseURL)
	viper.AutomaticEnv()

	// --- Database ---
	var dialector gorm.Dialector
	switch driver := viper.GetString("DATABASE_DRIVER"); driver {
	case "postgres":
		dialector = postgres.Open(viper.GetString("DATABASE_DSN"))
	case "sqlite":
		dialector = sqlite.Open(viper.GetString("DATABASE_DSN"))
	default:
		return nil, nil, fmt.Errorf("unsupported DATABASE_DRIVER: %s", driver)
	}
	// TranslateError turns unique-index violations into
	// gorm.ErrDuplicatedKey, which the repository relies on.
	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// --- RabbitMQ (optional) ---
	var publisher services.EventPublisher
	cleanup := func() {}
	if mqURL := viper.GetString("RABBITMQ_URL"); mqURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: mqURL})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		publisher = mqClient
		cleanup = func() {
			if err := mqClient.Close(); err != nil {
				log.Printf("Error closing RabbitMQ client: %v", err)
			}
		}

		// Consume the service's own lifecycle events. Downstream
		// systems would hang their processing off this handler.
		go func() {
			log.Println("Starting RabbitMQ consumer for user events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received user event %s (tag %d): %s", msg.Type, msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeUserEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	} else {
		log.Println("RABBITMQ_URL not set; user events will not be published")
	}

	// --- Repositories, services, facade, handlers ---
	userRepo := repositories.NewGORMUserRepository(db)
	userService := services.NewUserService(userRepo, publisher)
	generator := randomuser.NewClient(randomuser.Config{
		BaseURL: viper.GetString("RANDOMUSER_API_URL"),
	})
	userFacade := facades.NewUserFacade(userService, generator)
	userHandler := handlers.NewUserHandler(userFacade)

	// --- Fiber app ---
	app := fiber.New()
	app.Use(logger.New())

	api := app.Group("/api")
	userHandler.RegisterRoutes(api)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return app, cleanup, nil
}

func main() {
	app, cleanup, err := NewApp()
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}
	defer cleanup()

	appPort := viper.GetString("APP_PORT")
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
