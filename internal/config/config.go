package config

import "github.com/caarlos0/env/v9"

// Config is the process-wide configuration, populated from the
// function's environment at cold start. The expected client company
// is a shared secret and lives in Parameter Store; only its path is
// configured here.
type Config struct {
	Bucket           string `env:"BUCKET"`
	CompanyParam     string `env:"COMPANY_PARAM"`
	DeliveryMode     string `env:"DELIVERY_MODE" envDefault:"inline"`
	FetchBaseURL     string `env:"FETCH_BASE_URL"`
	FallbackImageURL string `env:"FALLBACK_IMAGE_URL" envDefault:"https://promptpix.io/static/fallback.gif"`
	ModelID          string `env:"MODEL_ID" envDefault:"amazon.titan-image-generator-v1"`
}

func Load() (Config, error) {
	var cfg Config
	err := env.Parse(&cfg)
	return cfg, err
}
