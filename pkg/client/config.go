package client

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/beamtime/snapvault/pkg/backend/filestore"
	"github.com/beamtime/snapvault/pkg/control"
)

// FromConfig builds a file-backed Client from a snapvault config file.
// With an empty cfgFile the usual locations are searched: $SNAPVAULT_*
// environment variables, then snapvault.yaml under $XDG_CONFIG_HOME (or
// ~/.config) and the working directory.
//
// The config key "backend.path" names the database file; a relative path is
// resolved against the directory of the config file that set it.
func FromConfig(cfgFile string) (*Client, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(configDir())
		v.AddConfigPath(".")
		v.SetConfigName("snapvault")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix("SNAPVAULT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("client: read config: %w", err)
	}
	path := v.GetString("backend.path")
	if path == "" {
		return nil, fmt.Errorf("client: config %s sets no backend.path", v.ConfigFileUsed())
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(v.ConfigFileUsed()), path)
	}
	return New(filestore.New(path), control.NewLayer()), nil
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "snapvault")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "snapvault")
	}
	return ".snapvault"
}
