package mocks

import (
	"github.com/cradoe/indigene/internal/config"
	"github.com/shopspring/decimal"
)

func NewMockConfig() *config.Config {
	cfg := &config.Config{
		BaseURL:     "http://localhost",
		FrontendURL: "http://frontend.local",
		HttpPort:    8080,
		HomeState:   "Ogun",
		Db: struct {
			Dsn         string
			Automigrate bool
		}{
			Dsn:         "mock_dsn",
			Automigrate: false,
		},
		Jwt: struct {
			SecretKey string
		}{
			SecretKey: "test_secret",
		},
		Notifications: struct {
			Email string
		}{
			Email: "",
		},
		Smtp: struct {
			Host     string
			Port     int
			Username string
			Password string
			From     string
		}{
			Host:     "smtp.example.com",
			Port:     587,
			Username: "user@example.com",
			Password: "password",
			From:     "no-reply@example.com",
		},
		KafkaServers: "localhost:9092",
		RedisServer:  "localhost:6379",
	}

	cfg.Payments.BaseURL = "https://provider.local/v3"
	cfg.Payments.SecretKey = "test_provider_key"
	cfg.Payments.Currency = "NGN"
	cfg.Payments.ApplicationFee = decimal.NewFromInt(10000)
	cfg.Payments.VerificationFee = decimal.NewFromInt(5000)

	return cfg
}
