package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DEBUGKIT_LOG_DRIVER.
const EnvPrefix = "DEBUGKIT"

// Loader resolves debugkit options from defaults, the config file, the
// environment and any flags bound to its viper instance.
type Loader struct {
	v    *viper.Viper
	file string
}

// NewLoader returns a loader backed by a private viper instance.
func NewLoader() *Loader {
	return NewLoaderWithViper(viper.New())
}

// NewLoaderWithViper returns a loader backed by v, typically the global
// instance the CLI binds its flags to.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// WithConfigFile pins the config file instead of searching for one.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.file = path
	return l
}

// Load returns the typed configuration. Later sources win:
// defaults, user file, project file (or --config), DEBUGKIT_* variables,
// bound flags.
func (l *Loader) Load() (*Config, error) {
	if err := l.read(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// LoadSettings is Load returned as a runtime store. Keys the file or the
// environment set that Config has no field for are carried over as-is.
func (l *Loader) LoadSettings() (*Settings, error) {
	cfg, err := l.Load()
	if err != nil {
		return nil, err
	}
	settings := cfg.Settings()
	for _, key := range l.v.AllKeys() {
		if !settings.IsSet(key) {
			settings.Set(key, l.v.Get(key))
		}
	}
	return settings, nil
}

// ConfigFile reports the file that was read, or "" when none was found.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) read() error {
	for key, value := range Default().Values() {
		l.v.SetDefault(key, value)
	}
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if l.file != "" {
		l.v.SetConfigFile(l.file)
	} else {
		l.v.SetConfigName(strings.TrimSuffix(ConfigFileName, ".yaml"))
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		if dir, err := UserConfigDir(); err == nil {
			l.v.AddConfigPath(dir)
		}
	}

	err := l.v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("reading %s: %w", l.describe(), err)
	}
	return nil
}

func (l *Loader) describe() string {
	if l.file != "" {
		return l.file
	}
	return ConfigFileName
}
