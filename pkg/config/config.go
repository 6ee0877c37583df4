package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Password     PasswordConfig
	Storage      StorageConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"REGISTRY_APP_ENV" required:"true"`
	Port         string   `envconfig:"REGISTRY_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"REGISTRY_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"REGISTRY_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"REGISTRY_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"REGISTRY_DB_DSN"`
	Driver string `envconfig:"REGISTRY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"REGISTRY_DB_HOST"`
	LegacyPort     int    `envconfig:"REGISTRY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"REGISTRY_DB_USER"`
	LegacyPassword string `envconfig:"REGISTRY_DB_PASSWORD"`
	LegacyName     string `envconfig:"REGISTRY_DB_NAME"`
	LegacySSLMode  string `envconfig:"REGISTRY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"REGISTRY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"REGISTRY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"REGISTRY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"REGISTRY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig backs the optional idempotency layer. When URL and Address are
// both empty the API boots without Redis and idempotency checks are skipped.
type RedisConfig struct {
	URL          string        `envconfig:"REGISTRY_REDIS_URL"`
	Address      string        `envconfig:"REGISTRY_REDIS_ADDR"`
	Password     string        `envconfig:"REGISTRY_REDIS_PASSWORD"`
	DB           int           `envconfig:"REGISTRY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REGISTRY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REGISTRY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REGISTRY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REGISTRY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"REGISTRY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"REGISTRY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"REGISTRY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"REGISTRY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"REGISTRY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"REGISTRY_ARGON_KEY_LEN" default:"32"`
}

type StorageConfig struct {
	PhotoDir string `envconfig:"REGISTRY_PHOTO_DIR" default:"storage/profile_photos"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"REGISTRY_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
