package config

const (
	FlagConfigPath = "config-path"
	FlagConfigType = "config-type"
	FlagAwsRegion  = "aws-region"
	FlagAwsSecret  = "aws-secret-key"
	FlagDbPass     = "db-pass"

	AWSConfig   = "aws"
	LocalConfig = "local"

	DBDialectMysql   = "mysql"
	DBDialectSqlite3 = "sqlite3"

	EnvVarConfigType     = "CONFIG_TYPE"
	EnvVarConfigFilePath = "CONFIG_FILE_PATH"
	EnvVarDBPass         = "DB_PASSWORD"

	DefaultSignedURLExpiryInSeconds = 3600
)
