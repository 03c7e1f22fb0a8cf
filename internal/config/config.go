package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App        App
	HTTP       HTTP
	Postgres   Postgres
	Redis      Redis
	Bot        Bot
	Market     Market
	Reconciler Reconciler
}

type App struct {
	Name     string `env:"APP_NAME" envDefault:"gem_market"`
	Version  string `env:"APP_VERSION" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// Debug включает логирование тел запросов и ответов.
	Debug bool `env:"DEBUG" envDefault:"false"`
}

type HTTP struct {
	ListenAddress        string        `env:"HTTP_LISTEN_ADDRESS" envDefault:":8080"`
	ProbeListenAddress   string        `env:"PROBE_LISTEN_ADDRESS" envDefault:":8081"`
	MetricsListenAddress string        `env:"METRICS_LISTEN_ADDRESS" envDefault:":9090"`
	ReadHeaderTimeout    time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout      time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogFieldMaxLen       int           `env:"HTTP_LOG_FIELD_MAX_LEN" envDefault:"4096"`
}

type Bot struct {
	Token   string `env:"BOT_TOKEN"`
	ChatID  int64  `env:"BOT_CHAT_ID"`
	AdminID int64  `env:"BOT_ADMIN_ID"`
	// OperatorID пользователь посредника, от имени которого бот читает панель.
	OperatorID string `env:"BOT_OPERATOR_ID"`
}

func (b Bot) Enabled() bool {
	return b.Token != ""
}

type Reconciler struct {
	Enabled         bool          `env:"RECONCILER_ENABLED" envDefault:"true"`
	Interval        time.Duration `env:"RECONCILER_INTERVAL" envDefault:"5m"`
	RequestInterval time.Duration `env:"RECONCILER_REQUEST_INTERVAL" envDefault:"50ms"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	return config, nil
}
