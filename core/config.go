package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	DatabaseConfig struct {
		Engine     string // sqlite (default) | postgres
		Path       string // sqlite file; resolved by database.ResolvePath when empty
		Host       string
		Port       string
		Name       string
		User       string
		Password   string
		DisableTLS bool
	}

	ServerConfig struct {
		Address         string
		ShutdownTimeout time.Duration
	}

	BackupConfig struct {
		Dir      string // defaults to <database dir>/backups
		Schedule string // cron spec; empty disables scheduled backups
		Keep     int    // 0 keeps every backup
	}

	Config struct {
		AppName      string
		Env          string
		Build        string
		Debug        bool
		TestMode     bool
		RollbarToken string
		WorkDir      string
		Database     DatabaseConfig
		Server       ServerConfig
		Backup       BackupConfig
	}
)

// Address returns the host:port of a server database.
func (c DatabaseConfig) Address() string {
	if c.Port == "" {
		return c.Host
	}
	return c.Host + ":" + c.Port
}

// IsSQLite reports whether the configured engine is the embedded file database.
func (c DatabaseConfig) IsSQLite() bool {
	return c.Engine == "" || c.Engine == EngineSQLite
}

const (
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"
)

// NewConfig loads the configuration from defaults, an optional `config/.env.<env>` file and
// environment variables prefixed with the current ENV (eg. DEV_DATABASE_PATH).
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "Gradebook")
	conf.SetDefault("build", "dev")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("database.engine", EngineSQLite)
	conf.SetDefault("database.path", "")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.name", "gradebook")
	conf.SetDefault("database.user", "")
	conf.SetDefault("database.password", "")
	conf.SetDefault("database.disableTLS", true)
	conf.SetDefault("server.address", "127.0.0.1:8000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("backup.dir", "")
	conf.SetDefault("backup.schedule", "")
	conf.SetDefault("backup.keep", 0)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		AppName:      conf.GetString("appName"),
		Env:          env,
		Build:        conf.GetString("build"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		RollbarToken: conf.GetString("rollbarToken"),
		WorkDir:      wd,
		Database: DatabaseConfig{
			Engine:     strings.ToLower(conf.GetString("database.engine")),
			Path:       conf.GetString("database.path"),
			Host:       conf.GetString("database.host"),
			Port:       conf.GetString("database.port"),
			Name:       conf.GetString("database.name"),
			User:       conf.GetString("database.user"),
			Password:   conf.GetString("database.password"),
			DisableTLS: conf.GetBool("database.disableTLS"),
		},
		Server: ServerConfig{
			Address:         conf.GetString("server.address"),
			ShutdownTimeout: conf.GetDuration("server.shutdownTimeout"),
		},
		Backup: BackupConfig{
			Dir:      conf.GetString("backup.dir"),
			Schedule: conf.GetString("backup.schedule"),
			Keep:     conf.GetInt("backup.keep"),
		},
	}
}
