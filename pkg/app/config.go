package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kiosk404/loamy/pkg/logger"
)

const configFlagName = "config"

func addConfigFlag(basename string, fs *pflag.FlagSet, cfgFile *string) {
	fs.StringVarP(cfgFile, configFlagName, "c", *cfgFile, fmt.Sprintf(
		"Read configuration from the specified file, support JSON, TOML, YAML, HCL, or Java properties formats. "+
			"Environment variables prefixed with %s_ override file values.", envPrefix(basename)))
}

func envPrefix(basename string) string {
	return strings.ToUpper(strings.ReplaceAll(filepath.Base(basename), "-", "_"))
}

// loadConfig reads cfgFile into v, or looks for <basename>.yaml in the
// working directory and $HOME/.<basename>. A missing default file is not an
// error; a missing explicit one is.
func loadConfig(v *viper.Viper, basename, cfgFile string) error {
	v.SetEnvPrefix(envPrefix(basename))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join("$HOME", "."+basename))
		v.SetConfigName(basename)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read configuration file(%s): %w", cfgFile, err)
	}
	return nil
}

// watchConfig logs edits of the loaded configuration file. Values are read
// once at startup; a restart applies them.
func watchConfig(v *viper.Viper) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		logger.Warn("[App] configuration file %s changed (%s), restart to apply", e.Name, e.Op)
	})
	v.WatchConfig()
}
