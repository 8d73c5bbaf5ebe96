package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/passman-cli/passman/internal/config"
	internalcrypto "github.com/passman-cli/passman/internal/crypto"
	"github.com/passman-cli/passman/internal/util"
)

// configKey reads and writes one configuration value as text
type configKey struct {
	get func(c *config.Config) string
	set func(c *config.Config, value string) error
}

var configKeys = map[string]configKey{
	"vault_path": {
		get: func(c *config.Config) string { return c.VaultPath },
		set: func(c *config.Config, v string) error { c.VaultPath = v; return nil },
	},
	"audit_path": {
		get: func(c *config.Config) string { return c.AuditPath },
		set: func(c *config.Config, v string) error { c.AuditPath = v; return nil },
	},
	"audit_enabled": {
		get: func(c *config.Config) string { return strconv.FormatBool(c.AuditEnabled) },
		set: func(c *config.Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid boolean value: %w", err)
			}
			c.AuditEnabled = b
			return nil
		},
	},
	"log_file": {
		get: func(c *config.Config) string { return c.LogFile },
		set: func(c *config.Config, v string) error { c.LogFile = v; return nil },
	},
	"log_level": {
		get: func(c *config.Config) string { return c.LogLevel },
		set: func(c *config.Config, v string) error {
			switch v {
			case "debug", "info", "warn", "error":
			default:
				return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", v)
			}
			c.LogLevel = v
			return nil
		},
	},
	"lock_timeout": {
		get: func(c *config.Config) string { return c.LockTimeout.String() },
		set: func(c *config.Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			c.LockTimeout = d
			return nil
		},
	},
	"generator.length": {
		get: func(c *config.Config) string { return strconv.Itoa(c.Generator.Length) },
		set: func(c *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid length: must be a positive integer")
			}
			c.Generator.Length = n
			return nil
		},
	},
	"generator.charset": {
		get: func(c *config.Config) string { return c.Generator.Charset },
		set: func(c *config.Config, v string) error {
			charset, err := internalcrypto.ParseCharset(v)
			if err != nil {
				return err
			}
			c.Generator.Charset = string(charset)
			return nil
		},
	},
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "-", "_")
}

func newConfigCommand(conf *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage passman configuration",
		Long: `View or change configuration settings.

Configuration is stored in ~/.config/passman/config.yaml by default.

Example:
  passman config path                       # Show config file path
  passman config get lock_timeout           # Get one value
  passman config set generator.length 32    # Set one value
  passman config get                        # Show all configuration`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [key]",
		Short: "Get configuration value(s)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runConfigGetAll(cmd, resolve(conf))
			}
			return runConfigGet(cmd, resolve(conf), args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, resolve(conf), args[0], args[1])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOutput(cmd.OutOrStdout(), "%s\n", cfgFile)
		},
	})

	return cmd
}

// NewConfigCommand creates a new config command for testing
func NewConfigCommand(conf *config.Config) *cobra.Command {
	return newConfigCommand(conf)
}

func runConfigGetAll(cmd *cobra.Command, conf *config.Config) error {
	data, err := yaml.Marshal(conf)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return writeOutput(cmd.OutOrStdout(), "# %s\n%s", cfgFile, data)
}

func runConfigGet(cmd *cobra.Command, conf *config.Config, key string) error {
	k, ok := configKeys[normalizeKey(key)]
	if !ok {
		return unknownKey(key)
	}
	return writeOutput(cmd.OutOrStdout(), "%s\n", k.get(conf))
}

func runConfigSet(cmd *cobra.Command, conf *config.Config, key, value string) error {
	k, ok := configKeys[normalizeKey(key)]
	if !ok {
		return unknownKey(key)
	}
	if err := k.set(conf, value); err != nil {
		return fmt.Errorf("%w: %s: %w", util.ErrInvalidInput, normalizeKey(key), err)
	}

	if err := config.SaveConfig(conf, cfgFile); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	return printSuccess(cmd.OutOrStdout(), "Configuration updated: %s = %s", normalizeKey(key), k.get(conf))
}

func unknownKey(key string) error {
	names := make([]string, 0, len(configKeys))
	for name := range configKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Errorf("%w: unknown configuration key: %s (valid: %s)", util.ErrInvalidInput, key, strings.Join(names, ", "))
}
