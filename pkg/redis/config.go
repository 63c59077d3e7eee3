package redis

import "time"

type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`

	LockPrefix string        `env:"REDIS_LOCK_PREFIX" envDefault:"showroom:lock:"`
	LockTTL    time.Duration `env:"REDIS_LOCK_TTL" envDefault:"10s"`
	LockWait   time.Duration `env:"REDIS_LOCK_WAIT" envDefault:"3s"`
	LockRetry  time.Duration `env:"REDIS_LOCK_RETRY" envDefault:"50ms"`
}
