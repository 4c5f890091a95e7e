package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mirabelledev/inkwell/internal/blogservice"
	"github.com/mirabelledev/inkwell/internal/common"
	"github.com/mirabelledev/inkwell/internal/mailservice"
	"github.com/mirabelledev/inkwell/internal/userservice"
)

// application is the explicit context object built once at startup and passed
// into every handler; there is no ambient global state.
type application struct {
	config      *Config
	logger      *slog.Logger
	userService *userservice.UserService
	blogService *blogservice.BlogService
	mailService *mailservice.MailService
	producer    common.MessageProducer
	templates   *templateCache
}

func main() {
	// Initialize the logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Load the configuration
	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize the database
	db, err := common.NewDB(cfg.DBDSN, 10, 5, 15*time.Minute)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	// Ensure all tables exist; safe to run on every startup
	if err := common.CreateSchema(context.Background(), db); err != nil {
		logger.Error("failed to create the database schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize the message broker for the contact form pipeline
	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.MQUser, cfg.MQPassword, cfg.MQHost, cfg.MQPort)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	err = common.SetupContactExchange(broker)
	if err != nil {
		logger.Error("failed to setup the contact exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	templates, err := newTemplateCache()
	if err != nil {
		logger.Error("failed to parse templates", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cache := common.NewCache(5*time.Minute, 10*time.Minute)

	// Initialize the services
	app := &application{
		config:      cfg,
		logger:      logger,
		userService: userservice.NewUserService(db, cache),
		blogService: blogservice.NewBlogService(db),
		mailService: mailservice.NewMailService(broker, cfg.MailHost, cfg.MailUser, cfg.MailPassword, cfg.MailSender, cfg.MailOwner, cfg.MailPort, logger),
		producer:    broker,
		templates:   templates,
	}

	// Initialize the consumer
	app.mailService.SendContactNotifications()
	defer app.mailService.Close()

	// Start the HTTP server
	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
