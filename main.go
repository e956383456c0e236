package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/amapara27/silicon-edge-ai-compiler/cache"
	"github.com/amapara27/silicon-edge-ai-compiler/client"
	"github.com/amapara27/silicon-edge-ai-compiler/config"
	modeldb "github.com/amapara27/silicon-edge-ai-compiler/db"
	"github.com/amapara27/silicon-edge-ai-compiler/external/compiler"
	"github.com/amapara27/silicon-edge-ai-compiler/external/s3"
	"github.com/amapara27/silicon-edge-ai-compiler/logging"
	"github.com/amapara27/silicon-edge-ai-compiler/metrics"
	"github.com/amapara27/silicon-edge-ai-compiler/server"
	"github.com/amapara27/silicon-edge-ai-compiler/service"
)

func initFlags() {
	flag.String(config.FlagConfigPath, "", "config file path")
	flag.String(config.FlagConfigType, "", "config type, local or aws")
	flag.String(config.FlagAwsRegion, "", "aws region")
	flag.String(config.FlagAwsSecret, "", "aws secret name holding the config")
	flag.String(config.FlagDbPass, "", "model hub db password")

	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	pflag.Parse()
	err := viper.BindPFlags(pflag.CommandLine)
	if err != nil {
		panic(err)
	}
}

func printUsage() {
	fmt.Print("usage: ./model-hub --config-type local --config-path configFile\n")
	fmt.Print("usage: ./model-hub --config-type aws --aws-region awsRegion --aws-secret-key awsSecretName\n")
}

func main() {
	var (
		cfg                        *config.Config
		configType, configFilePath string
	)
	initFlags()
	configType = viper.GetString(config.FlagConfigType)
	if configType == "" {
		configType = os.Getenv(config.EnvVarConfigType)
	}
	if configType != config.AWSConfig && configType != config.LocalConfig {
		printUsage()
		return
	}
	if configType == config.AWSConfig {
		awsSecretName := viper.GetString(config.FlagAwsSecret)
		if awsSecretName == "" {
			printUsage()
			return
		}
		awsRegion := viper.GetString(config.FlagAwsRegion)
		if awsRegion == "" {
			printUsage()
			return
		}
		configContent, err := config.GetSecret(awsSecretName, awsRegion)
		if err != nil {
			fmt.Printf("get aws config error, err=%s", err.Error())
			return
		}
		cfg = config.ParseConfigFromJson(configContent)
	} else {
		configFilePath = viper.GetString(config.FlagConfigPath)
		if configFilePath == "" {
			configFilePath = os.Getenv(config.EnvVarConfigFilePath)
			if configFilePath == "" {
				printUsage()
				return
			}
		}
		cfg = config.ParseConfigFromFile(configFilePath)
	}
	if cfg == nil {
		panic("failed to get configuration")
	}
	logging.InitLogger(&cfg.LogConfig)

	db := initDB(cfg)
	modeldb.InitTables(db)
	modelDao := modeldb.NewModelSvcDB(db)

	objectStore, err := s3.NewStore(&cfg.ObjectStoreConfig)
	if err != nil {
		panic(fmt.Sprintf("open object store error, err=%s", err.Error()))
	}
	cacheSvc, err := cache.NewLocalCache(cfg.CacheConfig.GetCacheSize())
	if err != nil {
		panic(err)
	}
	compilerClient, err := compiler.NewClient(cfg.CompilerConfig.Endpoint)
	if err != nil {
		panic(err)
	}

	if cfg.MetricsConfig.Enable {
		metrics.NewMetrics(cfg.MetricsConfig.ListenAddr).Start()
	}

	modelSvc := service.NewModelService(modelDao, objectStore, cacheSvc)
	srv := server.NewServer(cfg.ServerConfig.ListenAddr, modelSvc, client.NewRehydrator(), compilerClient)
	srv.Start()
}

func initDB(cfg *config.Config) *gorm.DB {
	username := cfg.DBConfig.Username
	password := viper.GetString(config.FlagDbPass)
	if password == "" {
		password = os.Getenv(config.EnvVarDBPass)
		if password == "" {
			password = getDBPass(&cfg.DBConfig)
		}
	}
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	var dialector gorm.Dialector
	if cfg.DBConfig.Dialect == config.DBDialectMysql {
		url := cfg.DBConfig.Url
		dbPath := fmt.Sprintf("%s:%s@%s", username, password, url)
		dialector = mysql.Open(dbPath)
	} else if cfg.DBConfig.Dialect == config.DBDialectSqlite3 {
		dialector = sqlite.Open(cfg.DBConfig.Url)
	} else {
		panic(fmt.Sprintf("unexpected DB dialect %s", cfg.DBConfig.Dialect))
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		panic(fmt.Sprintf("open db error, err=%s", err.Error()))
	}
	dbConfig, err := db.DB()
	if err != nil {
		panic(err)
	}
	dbConfig.SetMaxIdleConns(cfg.DBConfig.MaxIdleConns)
	dbConfig.SetMaxOpenConns(cfg.DBConfig.MaxOpenConns)
	return db
}

func getDBPass(cfg *config.DBConfig) string {
	if cfg.AWSSecretName != "" {
		result, err := config.GetSecret(cfg.AWSSecretName, cfg.AWSRegion)
		if err != nil {
			panic(err)
		}
		type DBPass struct {
			DbPass string `json:"db_pass"`
		}
		var dbPassword DBPass
		err = json.Unmarshal([]byte(result), &dbPassword)
		if err != nil {
			panic(err)
		}
		return dbPassword.DbPass
	}
	return cfg.Password
}
