package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix only matters for fields without a tag.
const EnvPrefix = "REGISTRY"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "REGISTRY_APP_ENV"
	EnvPort     = "REGISTRY_APP_PORT"
	EnvDBDSN    = "REGISTRY_DB_DSN"
	EnvDBHost   = "REGISTRY_DB_HOST"
	EnvDBUser   = "REGISTRY_DB_USER"
	EnvDBName   = "REGISTRY_DB_NAME"
	EnvRedisURL = "REGISTRY_REDIS_URL"
	EnvPhotoDir = "REGISTRY_PHOTO_DIR"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
