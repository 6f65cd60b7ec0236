package config

const (
	// EnvPrefix namespaces every environment variable read by envconfig.
	EnvPrefix = "CONTAINERDEPOT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "CONTAINERDEPOT_DB_DSN"
	EnvDBHost = "CONTAINERDEPOT_DB_HOST"
	EnvDBUser = "CONTAINERDEPOT_DB_USER"
	EnvDBName = "CONTAINERDEPOT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
