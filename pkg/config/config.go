package config

import (
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"

	"github.com/projectbureau/bureau-backend/pkg/logutils"
)

type Config struct {
	// Port Settings
	ServerAddr string `yaml:"serverAddr"` // The address the server endpoint binds to.

	Auth struct {
		TokenSecret     string `yaml:"tokenSecret"`
		TokenExpiryHour int    `yaml:"tokenExpiryHour"`
	} `yaml:"auth"`

	Postgres struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		DBName   string `yaml:"dbname"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		SSLMode  string `yaml:"sslmode"`
		TimeZone string `yaml:"timeZone"`
	} `yaml:"postgres"`

	Uploads struct {
		Dir string `yaml:"dir"` // Root directory for uploaded files.
	} `yaml:"uploads"`

	Frontend struct {
		Origin string `yaml:"origin"` // Allowed CORS origin in debug mode.
	} `yaml:"frontend"`
}

var (
	once   sync.Once
	config *Config
)

func GetConfig() *Config {
	once.Do(func() {
		config = initConfig()
	})
	return config
}

func IsDebugMode() bool {
	return gin.Mode() == gin.DebugMode
}

// initConfig reads the configuration file and applies environment overrides.
// In debug mode the path defaults to ./etc/debug-config.yaml, otherwise the
// file is expected to be mounted at /etc/config/config.yaml.
func initConfig() *Config {
	config := &Config{}
	var configPath string
	if IsDebugMode() {
		if os.Getenv("BUREAU_DEBUG_CONFIG_PATH") != "" {
			configPath = os.Getenv("BUREAU_DEBUG_CONFIG_PATH")
		} else {
			configPath = "./etc/debug-config.yaml"
		}
	} else {
		configPath = "/etc/config/config.yaml"
	}
	logutils.Log.Info("config path: ", configPath)

	if err := readConfig(configPath, config); err != nil {
		logutils.Log.Error("init config: ", err)
		panic(err)
	}
	applyEnvOverrides(config)
	applyDefaults(config)
	return config
}

func readConfig(filePath string, config *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, config)
}

// Secrets are kept out of the config file in production deployments.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("BUREAU_TOKEN_SECRET"); v != "" {
		config.Auth.TokenSecret = v
	}
	if v := os.Getenv("BUREAU_DB_PASSWORD"); v != "" {
		config.Postgres.Password = v
	}
	if v := os.Getenv("BUREAU_UPLOAD_DIR"); v != "" {
		config.Uploads.Dir = v
	}
}

func applyDefaults(config *Config) {
	if config.ServerAddr == "" {
		config.ServerAddr = ":8088"
	}
	if config.Auth.TokenExpiryHour == 0 {
		config.Auth.TokenExpiryHour = 168 // 7 days
	}
	if config.Uploads.Dir == "" {
		config.Uploads.Dir = "./uploads"
	}
}
