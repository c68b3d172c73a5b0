package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigFileName = ".evmwallet.json"
	EnvPrefix      = "EVMWALLET"
)

// Storage backends accepted by the storage key.
const (
	StorageBadger = "badger"
	StorageFile   = "file"
	StorageMemory = "memory"
)

// Config holds application-wide settings. Wallet data itself lives in the
// state store, not here.
type Config struct {
	DataDir                string  `mapstructure:"data_dir" json:"data_dir"`
	Storage                string  `mapstructure:"storage" json:"storage"`
	LogLevel               string  `mapstructure:"log_level" json:"log_level"`
	LogFile                string  `mapstructure:"log_file" json:"log_file"`
	RPCTimeoutSeconds      int     `mapstructure:"rpc_timeout_seconds" json:"rpc_timeout_seconds"`
	RPCRateLimit           float64 `mapstructure:"rpc_rate_limit" json:"rpc_rate_limit"`
	RefreshIntervalSeconds int     `mapstructure:"refresh_interval_seconds" json:"refresh_interval_seconds"`
	ReconcilePending       bool    `mapstructure:"reconcile_pending" json:"reconcile_pending"`
	ServerHost             string  `mapstructure:"server_host" json:"server_host"`
	ServerPort             int     `mapstructure:"server_port" json:"server_port"`
	DisplayDecimals        int     `mapstructure:"display_decimals" json:"display_decimals"`
}

// Defaults returns the value of every key when nothing overrides it.
func Defaults() map[string]any {
	return map[string]any{
		"data_dir":                 "~/.evmwallet",
		"storage":                  StorageBadger,
		"log_level":                "info",
		"log_file":                 "",
		"rpc_timeout_seconds":      30,
		"rpc_rate_limit":           0.0,
		"refresh_interval_seconds": 30,
		"reconcile_pending":        true,
		"server_host":              "127.0.0.1",
		"server_port":              8080,
		"display_decimals":         4,
	}
}

func GetConfigPath(customPath string) (string, error) {
	if customPath != "" {
		return customPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFileName), nil
}

// Load resolves the configuration from defaults, the JSON file at path, a
// .env file in the working directory, EVMWALLET_* variables and any changed
// flags, in increasing order of precedence. A missing file is not an error.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	var c Config

	// Variables already set in the environment win over .env.
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigFile(path)
	v.SetConfigType("json")
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return c, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return c, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if _, known := Defaults()[key]; known && bindErr == nil {
				bindErr = v.BindPFlag(key, f)
			}
		})
		if bindErr != nil {
			return c, bindErr
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	dir, err := expandHome(c.DataDir)
	if err != nil {
		return c, err
	}
	c.DataDir = dir
	return c, c.Validate()
}

// Validate rejects values no component can run with.
func (c Config) Validate() error {
	switch c.Storage {
	case StorageBadger, StorageFile, StorageMemory:
	default:
		return fmt.Errorf("validation failed: unknown storage %q (want badger, file or memory)", c.Storage)
	}
	if c.Storage != StorageMemory && strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("validation failed: data_dir is required for %s storage", c.Storage)
	}
	if c.RPCTimeoutSeconds <= 0 {
		return fmt.Errorf("validation failed: rpc_timeout_seconds must be positive")
	}
	if c.RPCRateLimit < 0 {
		return fmt.Errorf("validation failed: rpc_rate_limit must not be negative")
	}
	if c.RefreshIntervalSeconds <= 0 {
		return fmt.Errorf("validation failed: refresh_interval_seconds must be positive")
	}
	if strings.TrimSpace(c.ServerHost) == "" {
		return fmt.Errorf("validation failed: server_host is required")
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("validation failed: server_port %d out of range", c.ServerPort)
	}
	if c.DisplayDecimals < 0 || c.DisplayDecimals > 18 {
		return fmt.Errorf("validation failed: display_decimals must be between 0 and 18")
	}
	return nil
}

func (c Config) RPCTimeout() time.Duration {
	return time.Duration(c.RPCTimeoutSeconds) * time.Second
}

func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

// Save writes c to path as JSON, keeping a timestamped backup of the file it
// replaces.
func Save(c Config, path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		backupPath := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102-150405.000"))
		input, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read existing config for backup: %w", err)
		}
		if err := os.WriteFile(backupPath, input, 0600); err != nil {
			return fmt.Errorf("failed to write backup config: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func RestoreLastBackup(configPath string) error {
	matches, err := filepath.Glob(configPath + ".*.bak")
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no backup files found")
	}
	sort.Strings(matches)
	lastBackup := matches[len(matches)-1]

	data, err := os.ReadFile(lastBackup)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0600)
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
