// Package config loads application configuration from the environment.
// A .env file is loaded first when present so local runs do not need to
// export variables manually.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	PostgresDSN string `env:"POSTGRES_DSN,required"`
	HealthPort  int    `env:"HEALTH_PORT" envDefault:"8080"`

	// Database pool
	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"10"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"2"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"30s"`

	// YouTube Data API
	YouTubeAPIKey     string        `env:"YOUTUBE_API_KEY,required"`
	YouTubeBaseURL    string        `env:"YOUTUBE_BASE_URL" envDefault:"https://www.googleapis.com/youtube/v3"`
	YouTubeTimeout    time.Duration `env:"YOUTUBE_TIMEOUT" envDefault:"30s"`
	YouTubeRPS        float64       `env:"YOUTUBE_RPS" envDefault:"5"`
	MaxPages          int           `env:"MAX_PAGES" envDefault:"100"`
	MaxComments       int           `env:"MAX_COMMENTS" envDefault:"10000"`
	CommentsPageSize  int           `env:"COMMENTS_PAGE_SIZE" envDefault:"100"`
	ReplyFetchWorkers int           `env:"REPLY_FETCH_WORKERS" envDefault:"4"`

	// Sentiment classifier
	ClassifierProvider  string        `env:"CLASSIFIER_PROVIDER" envDefault:"inference"`
	InferenceURL        string        `env:"INFERENCE_URL" envDefault:"http://localhost:8090"`
	InferenceTimeout    time.Duration `env:"INFERENCE_TIMEOUT" envDefault:"60s"`
	ClassifierAPIKey    string        `env:"CLASSIFIER_API_KEY"`
	ClassifierModel     string        `env:"CLASSIFIER_MODEL" envDefault:"gpt-4o-mini"`
	ClassifierBatchSize int           `env:"CLASSIFIER_BATCH_SIZE" envDefault:"16"`
	ClassifierRPS       float64       `env:"CLASSIFIER_RPS" envDefault:"2"`
	SentimentSwapPosNeg bool          `env:"SENTIMENT_SWAP_POS_NEG" envDefault:"false"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
