package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/amapara27/silicon-edge-ai-compiler/cache"
)

type Config struct {
	LogConfig         LogConfig         `json:"log_config"`
	DBConfig          DBConfig          `json:"db_config"`
	ObjectStoreConfig ObjectStoreConfig `json:"object_store_config"`
	ServerConfig      ServerConfig      `json:"server_config"`
	CacheConfig       CacheConfig       `json:"cache_config"`
	CompilerConfig    CompilerConfig    `json:"compiler_config"`
	MetricsConfig     MetricsConfig     `json:"metrics_config"`
}

type ObjectStoreConfig struct {
	Endpoint        string `json:"endpoint"` // Endpoint overrides the default S3 endpoint, used for S3-compatible stores
	Region          string `json:"region"`
	Bucket          string `json:"bucket"` // Bucket is the identifier of the bucket that stores model blobs
	AccessKey       string `json:"access_key"`
	SecretKey       string `json:"secret_key"`
	ForcePathStyle  bool   `json:"force_path_style"`
	SignedURLExpiry int64  `json:"signed_url_expiry_in_seconds"` // validity window of issued signed URLs
}

func (cfg *ObjectStoreConfig) Validate() {
	if cfg.Bucket == "" {
		panic("object store bucket should not be empty")
	}
	if cfg.Region == "" {
		panic("object store region should not be empty")
	}
}

func (cfg *ObjectStoreConfig) GetSignedURLExpiry() int64 {
	if cfg.SignedURLExpiry > 0 {
		return cfg.SignedURLExpiry
	}
	return DefaultSignedURLExpiryInSeconds
}

type ServerConfig struct {
	ListenAddr string `json:"listen_addr"`
}

func (cfg *ServerConfig) Validate() {
	if cfg.ListenAddr == "" {
		panic("server listen addr should not be empty")
	}
}

type CompilerConfig struct {
	Endpoint string `json:"endpoint"` // Endpoint is the address of the compilation/profiling service
}

func (cfg *CompilerConfig) Validate() {
	if cfg.Endpoint == "" {
		panic("compiler service endpoint should not be empty")
	}
}

type MetricsConfig struct {
	Enable     bool   `json:"enable"`
	ListenAddr string `json:"listen_addr"`
}

type CacheConfig struct {
	CacheSize uint64 `json:"cache_size"`
}

func (c *CacheConfig) GetCacheSize() uint64 {
	if c.CacheSize != 0 {
		return c.CacheSize
	}
	return cache.DefaultCacheSize
}

type DBConfig struct {
	Dialect       string `json:"dialect"`
	Username      string `json:"username"`
	Password      string `json:"password"`
	Url           string `json:"url"`
	MaxIdleConns  int    `json:"max_idle_conns"`
	MaxOpenConns  int    `json:"max_open_conns"`
	AWSSecretName string `json:"aws_secret_name"`
	AWSRegion     string `json:"aws_region"`
}

func (cfg *DBConfig) Validate() {
	if cfg.Dialect != DBDialectMysql && cfg.Dialect != DBDialectSqlite3 {
		panic(fmt.Sprintf("only %s and %s supported", DBDialectMysql, DBDialectSqlite3))
	}
	if cfg.Dialect == DBDialectMysql && (cfg.Username == "" || cfg.Url == "") {
		panic("db config is not correct, missing username and/or url")
	}
	if cfg.MaxIdleConns == 0 || cfg.MaxOpenConns == 0 {
		panic("db connections is not correct")
	}
}

type LogConfig struct {
	Level                        string `json:"level"`
	Filename                     string `json:"filename"`
	MaxFileSizeInMB              int    `json:"max_file_size_in_mb"`
	MaxBackupsOfLogFiles         int    `json:"max_backups_of_log_files"`
	MaxAgeToRetainLogFilesInDays int    `json:"max_age_to_retain_log_files_in_days"`
	UseConsoleLogger             bool   `json:"use_console_logger"`
	UseFileLogger                bool   `json:"use_file_logger"`
	Compress                     bool   `json:"compress"`
}

func (cfg *LogConfig) Validate() {
	if cfg.UseFileLogger {
		if cfg.Filename == "" {
			panic("filename should not be empty if use file logger")
		}
		if cfg.MaxFileSizeInMB <= 0 {
			panic("max_file_size_in_mb should be larger than 0 if use file logger")
		}
		if cfg.MaxBackupsOfLogFiles <= 0 {
			panic("max_backups_off_log_files should be larger than 0 if use file logger")
		}
	}
}

func (c *Config) Validate() {
	c.LogConfig.Validate()
	c.DBConfig.Validate()
	c.ObjectStoreConfig.Validate()
	c.ServerConfig.Validate()
	c.CompilerConfig.Validate()
}

func ParseConfigFromJson(content string) *Config {
	var config Config
	if err := json.Unmarshal([]byte(content), &config); err != nil {
		panic(err)
	}
	config.Validate()
	return &config
}

func ParseConfigFromFile(filePath string) *Config {
	bz, err := os.ReadFile(filePath)
	if err != nil {
		panic(err)
	}

	var config Config
	if err := json.Unmarshal(bz, &config); err != nil {
		panic(err)
	}
	config.Validate()
	return &config
}
