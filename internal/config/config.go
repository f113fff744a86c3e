package config

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common"
	editionsconfig "github.com/mintforge/edition-engine/modules/editions/config"
	"github.com/mintforge/edition-engine/pkg/logger"
	"github.com/mintforge/edition-engine/pkg/logger/slogx"
	"github.com/mintforge/edition-engine/pkg/middleware/requestcontext"
	"github.com/mintforge/edition-engine/pkg/middleware/requestlogger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	configOnce sync.Once
	config     = &Config{
		Logger: logger.Config{
			Output: "TEXT",
		},
		Network: common.NetworkMainnet,
		HTTPServer: HTTPServerConfig{
			Port: 8080,
		},
	}
)

type Config struct {
	Logger        logger.Config    `mapstructure:"logger"`
	Network       common.Network   `mapstructure:"network"`
	APIOnly       bool             `mapstructure:"api_only"`       // Run only API server, disable background workers
	EnableModules []string         `mapstructure:"enable_modules"` // Modules to enable. E.g. `editions`
	HTTPServer    HTTPServerConfig `mapstructure:"http_server"`
	Modules       Modules          `mapstructure:"modules"`
}

type HTTPServerConfig struct {
	Port      int                              `mapstructure:"port"`
	RequestIP requestcontext.WithClientIPConfig `mapstructure:"request_ip"`
	Logger    requestlogger.Config             `mapstructure:"logger"`
}

type Modules struct {
	Editions editionsconfig.Config `mapstructure:"editions"`
}

// BindPFlag binds a cobra/pflag flag to a configuration key. Bound flags
// override values from the config file and environment.
func BindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		logger.Panic("Failed to bind flag to configuration", slogx.Error(err), slog.String("key", key))
	}
}

// Parse loads the configuration from the given config file, environment
// variables and bound flags. Subsequent calls (and Load) return the same
// parsed configuration.
func Parse(configFile string) Config {
	ctx := logger.WithContext(context.Background(), slog.String("package", "config"))
	configOnce.Do(func() {
		if configFile != "" {
			viper.SetConfigFile(configFile)
		} else {
			viper.AddConfigPath("./")
			viper.SetConfigName("config")
		}

		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		if err := viper.ReadInConfig(); err != nil {
			var errNotfound viper.ConfigFileNotFoundError
			if errors.As(err, &errNotfound) {
				logger.WarnContext(ctx, "config file not found, use default value", slogx.Error(err))
			} else {
				logger.PanicContext(ctx, "invalid config file", slogx.Error(err))
			}
		}

		if err := viper.Unmarshal(&config); err != nil {
			logger.PanicContext(ctx, "failed to unmarshal config", slogx.Error(err))
		}
	})

	return *config
}

// Load returns the parsed configuration. Must be called after Parse.
func Load() Config {
	return Parse("")
}
