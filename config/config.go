package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultLogLevel      = "info"
	defaultLogOutput     = "stdout"
	defaultDatadir       = ".duel" // prefixed with the user's home directory
	defaultPollInterval  = 3500 * time.Millisecond
	defaultRelayRateHz   = 10
	defaultRelayMaxBytes = 1024
	defaultRelayMaxLog   = 100
)

// LogConfig holds logging configuration: level and output destination.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// RelayConfig holds the lobby/relay boundary's rate-limit and event-log
// bounds.
type RelayConfig struct {
	RateHz     int `mapstructure:"rateHz"`
	MaxBytes   int `mapstructure:"maxBytes"`
	MaxLogSize int `mapstructure:"maxLogSize"`
}

// Config holds the CLI/relay runtime settings: log level/output, the
// client's chain-state poll interval, relay rate limits, and the data
// directory the durable session store (db/pebbledb) opens.
type Config struct {
	Log          LogConfig     `mapstructure:"log"`
	PollInterval time.Duration `mapstructure:"pollInterval"`
	Relay        RelayConfig   `mapstructure:"relay"`
	Datadir      string        `mapstructure:"datadir"`
}

// Load reads configuration from flags already registered on flagSet,
// environment variables prefixed DUEL_, and the defaults above, in that
// precedence order (flags beat env beat defaults). Callers register their
// own flags on flagSet before calling Load so each CLI subcommand can offer
// only the settings it needs.
func Load(flagSet *flag.FlagSet) (*Config, error) {
	v := viper.New()

	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		userHomeDir = "."
	}
	defaultDatadirPath := filepath.Join(userHomeDir, defaultDatadir)

	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.output", defaultLogOutput)
	v.SetDefault("pollInterval", defaultPollInterval)
	v.SetDefault("relay.rateHz", defaultRelayRateHz)
	v.SetDefault("relay.maxBytes", defaultRelayMaxBytes)
	v.SetDefault("relay.maxLogSize", defaultRelayMaxLog)
	v.SetDefault("datadir", defaultDatadirPath)

	v.SetEnvPrefix("DUEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flagSet != nil {
		if err := v.BindPFlags(flagSet); err != nil {
			return nil, fmt.Errorf("config: binding flags: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}
	return cfg, nil
}
