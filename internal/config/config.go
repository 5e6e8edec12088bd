package config

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port         string        `env:"PORT,default=8080"`
	DBDSN        string        `env:"DB_DSN,default=equiptrack.db"`
	LogFile      string        `env:"LOG_FILE"`
	LogLevel     string        `env:"LOG_LEVEL,default=info"`
	TemplatesDir string        `env:"TEMPLATES_DIR,default=./web/templates"`
	StaticDir    string        `env:"STATIC_DIR,default=./web/static"`
	Seed         bool          `env:"DB_SEED,default=true"`
	CookieSecure bool          `env:"COOKIE_SECURE,default=false"`
	LowStock     int           `env:"LOW_STOCK_THRESHOLD,default=5"`
	PageSize     int           `env:"PAGE_SIZE,default=10"`
	RateLimit    int           `env:"RATE_LIMIT,default=120"`
	SessionTTL   time.Duration `env:"SESSION_TTL,default=12h"`
}

// Load reads an optional .env file, then the process environment.
func Load(ctx context.Context) (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Fields is the loggable view of the configuration.
func (c Config) Fields() map[string]any {
	return map[string]any{
		"port":          c.Port,
		"db_dsn":        c.DBDSN,
		"log_file":      c.LogFile,
		"log_level":     c.LogLevel,
		"templates_dir": c.TemplatesDir,
		"static_dir":    c.StaticDir,
		"seed":          c.Seed,
		"cookie_secure": c.CookieSecure,
		"low_stock":     c.LowStock,
		"page_size":     c.PageSize,
		"rate_limit":    c.RateLimit,
		"session_ttl":   c.SessionTTL.String(),
	}
}
