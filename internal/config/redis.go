package config

type Redis struct {
	Address  string `env:"REDIS_ADDRESS"`
	Username string `env:"REDIS_USERNAME"`
	Password string `env:"REDIS_PASSWORD" json:"-"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	// Queue очередь asynq для уведомлений.
	Queue string `env:"REDIS_NOTIFY_QUEUE" envDefault:"notifications"`
	// Concurrency число обработчиков уведомлений.
	Concurrency int `env:"REDIS_WORKER_CONCURRENCY" envDefault:"2"`
}

func (r Redis) Enabled() bool {
	return r.Address != ""
}
