// Package config loads zotsync settings from a YAML file and
// ZOTSYNC_* environment variables. Environment variables win over the
// file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	keyAPIKey     = "api_key"
	keyUserID     = "user_id"
	keyUseGroup   = "use_group"
	keyVaultPath  = "vault_path"
	keyCollection = "collection"
	keyHistory    = "history"

	// DefaultCollection is the Zotero collection new books land in.
	DefaultCollection = "Books"
	// DefaultVaultPath is where highlight exports are expected.
	DefaultVaultPath = "~/Documents/kindle-highlights"
)

// Config holds everything the sync commands need.
type Config struct {
	// APIKey is the Zotero API key. Required.
	APIKey string
	// UserID is the Zotero user ID, or the group ID when UseGroup is
	// set. Required.
	UserID string
	// UseGroup selects the group library endpoints.
	UseGroup bool
	// VaultPath is the directory holding the highlight markdown files.
	VaultPath string
	// Collection is the name of the Zotero collection for new books.
	// Empty disables collection handling.
	Collection string
	// History enables recording runs in the local SQLite database.
	History bool
}

// Dir returns the configuration directory, honoring XDG_CONFIG_HOME.
func Dir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "zotsync")
}

// Load reads the configuration from configDir. A missing config file
// is not an error; missing credentials are.
func Load(configDir string) (*Config, error) {
	v := viper.New()
	v.SetDefault(keyCollection, DefaultCollection)
	v.SetDefault(keyVaultPath, DefaultVaultPath)
	v.SetDefault(keyHistory, true)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix("zotsync")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		APIKey:     v.GetString(keyAPIKey),
		UserID:     v.GetString(keyUserID),
		UseGroup:   v.GetBool(keyUseGroup),
		VaultPath:  expandHome(v.GetString(keyVaultPath)),
		Collection: v.GetString(keyCollection),
		History:    v.GetBool(keyHistory),
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api_key is not set (config file or ZOTSYNC_API_KEY)")
	}
	if cfg.UserID == "" {
		return nil, fmt.Errorf("user_id is not set (config file or ZOTSYNC_USER_ID)")
	}
	return cfg, nil
}

func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
