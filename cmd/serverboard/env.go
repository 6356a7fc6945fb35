package main

import (
	"fmt"
	"strings"

	"github.com/jpalmerr/serverboard/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix namespaces environment overrides, e.g. SERVERBOARD_PORT.
const envPrefix = "SERVERBOARD"

// loadConfig reads the file named by --config and applies overrides from
// flags and the environment. Flags win over the environment, which wins over
// the file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := applyOverrides(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyOverrides layers SERVERBOARD_PORT, SERVERBOARD_POLL_INTERVAL and the
// matching --port / --poll-interval flags over cfg, then revalidates.
func applyOverrides(cmd *cobra.Command, cfg *config.Config) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for _, key := range []string{"port", "poll_interval"} {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	if f := cmd.Flags().Lookup("port"); f != nil {
		if err := v.BindPFlag("port", f); err != nil {
			return fmt.Errorf("failed to bind --port: %w", err)
		}
	}
	if f := cmd.Flags().Lookup("poll-interval"); f != nil {
		if err := v.BindPFlag("poll_interval", f); err != nil {
			return fmt.Errorf("failed to bind --poll-interval: %w", err)
		}
	}

	if v.IsSet("port") {
		port := v.GetInt("port")
		if port == 0 {
			return fmt.Errorf("invalid port override %q", v.GetString("port"))
		}
		cfg.Port = port
	}
	if v.IsSet("poll_interval") {
		d := v.GetDuration("poll_interval")
		if d == 0 {
			return fmt.Errorf("invalid poll_interval override %q", v.GetString("poll_interval"))
		}
		cfg.PollInterval = config.Duration(d)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid override: %w", err)
	}
	return nil
}

// addOverrideFlags registers --port and --poll-interval on cmd.
func addOverrideFlags(cmd *cobra.Command) {
	cmd.Flags().Int("port", 0, "override the HTTP port (env "+envPrefix+"_PORT)")
	cmd.Flags().Duration("poll-interval", 0, "override the poll interval (env "+envPrefix+"_POLL_INTERVAL)")
}
