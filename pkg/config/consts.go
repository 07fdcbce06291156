package config

// EnvPrefix is passed to envconfig; individual fields carry fully prefixed
// names so this stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN         = "SIAL_DB_DSN"
	EnvDBHost        = "SIAL_DB_HOST"
	EnvDBUser        = "SIAL_DB_USER"
	EnvDBName        = "SIAL_DB_NAME"
	EnvExportMaxRows = "SIAL_EXPORT_MAX_ROWS"
)

// ExportRowCeiling is the absolute cap on exported rows regardless of
// configuration.
const ExportRowCeiling = 10000

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
