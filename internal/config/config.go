package config

import "github.com/shopspring/decimal"

type Config struct {
	BaseURL     string
	FrontendURL string
	HttpPort    int

	// HomeState is the state this deployment issues certificates for.
	// Origin-specific application fields are required only for
	// applicants whose state of origin matches it.
	HomeState string

	Db struct {
		Dsn         string
		Automigrate bool
	}
	Jwt struct {
		SecretKey string
	}
	Notifications struct {
		Email string
	}
	Smtp struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	Payments struct {
		BaseURL         string
		SecretKey       string
		Currency        string
		ApplicationFee  decimal.Decimal
		VerificationFee decimal.Decimal
	}
	SuperAdmin struct {
		Name     string
		Email    string
		Password string
	}
	FileUploader struct {
		CloudName string
		ApiKey    string
		ApiSecret string
	}
	KafkaServers string
	RedisServer  string
}
