package app

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/cradoe/indigene/internal/cache"
	"github.com/cradoe/indigene/internal/config"
	"github.com/cradoe/indigene/internal/env"
	"github.com/cradoe/indigene/internal/errHandler"
	"github.com/cradoe/indigene/internal/file"
	"github.com/cradoe/indigene/internal/gateway"
	"github.com/cradoe/indigene/internal/helper"
	"github.com/cradoe/indigene/internal/repository"
	"github.com/cradoe/indigene/internal/seeder"
	"github.com/cradoe/indigene/internal/smtp"
	"github.com/cradoe/indigene/internal/stream"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Essential services and resources are exposed on the application so
// route construction and the entrypoint can reach them.
type Application struct {
	Config       config.Config
	DB           repository.Database
	Logger       *slog.Logger
	Mailer       *smtp.Mailer
	WG           sync.WaitGroup
	ErrHandler   *errHandler.ErrorHandler
	Helper       *helper.HelperRepository
	Kafka        *stream.KafkaStream
	FileUploader *file.FileUploader
	Gateway      gateway.Gateway
	Cache        cache.Store
}

func NewApplication(logger *slog.Logger) (*Application, error) {
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", "error", err)
	}

	var cfg config.Config

	// config values are loaded from the .env file
	// Default values are provided for these items and these should strictly be values for development mode only
	// make sure no production-level value is exposed as default value here
	cfg.BaseURL = env.GetString("BASE_URL", "http://localhost:4444")
	cfg.FrontendURL = env.GetString("FRONTEND_URL", "http://localhost:3000")
	cfg.HttpPort = env.GetInt("HTTP_PORT", 4444)
	cfg.HomeState = env.GetString("HOME_STATE", "Ogun")

	cfg.Db.Dsn = env.GetString("DB_DSN", "user:pass@localhost:5432/db")
	cfg.Db.Automigrate = env.GetBool("DB_AUTOMIGRATE", true)

	cfg.Jwt.SecretKey = env.GetString("JWT_SECRET_KEY", "ajf5nx3qmp6zquevllxocxqvyz42ypuo")

	// server errors won't be sent via email if NOTIFICATIONS_EMAIL wasn't set in the .env file
	cfg.Notifications.Email = env.GetString("NOTIFICATIONS_EMAIL", "")

	cfg.Smtp.Host = env.GetString("SMTP_HOST", "example.smtp.host")
	cfg.Smtp.Port = env.GetInt("SMTP_PORT", 25)
	cfg.Smtp.Username = env.GetString("SMTP_USERNAME", "example_username")
	cfg.Smtp.Password = env.GetString("SMTP_PASSWORD", "pa55word")
	cfg.Smtp.From = env.GetString("SMTP_FROM", "Certificate Portal <no_reply@example.org>")

	cfg.Payments.BaseURL = env.GetString("FLUTTERWAVE_BASE_URL", "https://api.flutterwave.com/v3")
	cfg.Payments.SecretKey = env.GetString("FLUTTERWAVE_SECRET_KEY", "")
	cfg.Payments.Currency = env.GetString("PAYMENT_CURRENCY", "NGN")

	applicationFee, err := decimal.NewFromString(env.GetString("APPLICATION_FEE", "10000"))
	if err != nil {
		return nil, fmt.Errorf("invalid APPLICATION_FEE: %w", err)
	}
	cfg.Payments.ApplicationFee = applicationFee

	verificationFee, err := decimal.NewFromString(env.GetString("VERIFICATION_FEE", "5000"))
	if err != nil {
		return nil, fmt.Errorf("invalid VERIFICATION_FEE: %w", err)
	}
	cfg.Payments.VerificationFee = verificationFee

	cfg.SuperAdmin.Name = env.GetString("ADMIN_NAME", "Super")
	cfg.SuperAdmin.Email = env.GetString("ADMIN_EMAIL", "")
	cfg.SuperAdmin.Password = env.GetString("ADMIN_PASSWORD", "")

	cfg.FileUploader.ApiKey = env.GetString("CLOUDINARY_API_KEY", "")
	cfg.FileUploader.CloudName = env.GetString("CLOUDINARY_CLOUD_NAME", "")
	cfg.FileUploader.ApiSecret = env.GetString("CLOUDINARY_API_SECRET", "")

	cfg.KafkaServers = env.GetString("KAFKA_SERVERS", "localhost:9092")
	cfg.RedisServer = env.GetString("REDIS_SERVER", "localhost:6379")

	db, err := repository.New(cfg.Db.Dsn, cfg.Db.Automigrate)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	mailer, err := smtp.NewMailer(cfg.Smtp.Host, cfg.Smtp.Port, cfg.Smtp.Username, cfg.Smtp.Password, cfg.Smtp.From)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	errorHandler := errHandler.New(cfg.Notifications.Email, mailer, logger)

	app := &Application{
		Config:       cfg,
		DB:           db,
		Logger:       logger,
		Mailer:       mailer,
		ErrHandler:   errorHandler,
		Kafka:        stream.New(cfg.KafkaServers),
		FileUploader: file.New(cfg.FileUploader.CloudName, cfg.FileUploader.ApiKey, cfg.FileUploader.ApiSecret),
		Gateway:      gateway.NewClient(cfg.Payments.BaseURL, cfg.Payments.SecretKey),
		Cache:        cache.New(cfg.RedisServer, 0),
	}

	app.Helper = helper.New(&cfg.BaseURL, &app.WG, errorHandler)

	seeder.New(db, &app.Config).Run()

	return app, nil
}
