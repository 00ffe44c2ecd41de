package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr  string `env:"HTTP_ADDR" envDefault:":8080"`
	PublicURL string `env:"PUBLIC_URL"`

	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBDSN    string `env:"DB_DSN"`

	BlobBasePath string `env:"BLOB_BASE_PATH" envDefault:"./data"`

	RedisAddr     string        `env:"REDIS_ADDR"` // empty disables the result cache
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"24h"`

	AuthSecret    string `env:"AUTH_HMAC_SECRET" envDefault:"supersecret-dev-key"`
	AdminUser     string `env:"ADMIN_USER" envDefault:"admin"`
	AdminPassHash string `env:"ADMIN_PASS_HASH" envDefault:"$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"` // bcrypt

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// Archive safety limits.
	MaxArchiveBytes int64 `env:"MAX_ARCHIVE_BYTES" envDefault:"52428800"`
	MaxArchiveFiles int   `env:"MAX_ARCHIVE_FILES" envDefault:"512"`
	MaxNestingDepth int   `env:"MAX_NESTING_DEPTH" envDefault:"8"`

	BatchConcurrency int `env:"BATCH_CONCURRENCY" envDefault:"4"`

	// Requests per minute allowed per client on the grading endpoints.
	GradeRatePerMinute int `env:"GRADE_RATE_PER_MINUTE" envDefault:"30"`
}

// FromEnv parses configuration from the process environment.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
