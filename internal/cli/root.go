package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/passman-cli/passman/internal/config"
	"github.com/passman-cli/passman/internal/logging"
)

var (
	cfgFile   string
	vaultPath string
	verbose   bool
	cfg       *config.Config

	logger   = zap.NewNop()
	closeLog = func() {}
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = NewRootCommand()

// NewRootCommand builds the command tree. Without a subcommand it runs the
// interactive session.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passman",
		Short: "A local, password-gated vault of account credentials",
		Long: `passman keeps account credentials (label, username, email, password) in a
single encrypted file and lets you search, view, edit and copy them from an
interactive terminal session.

Every field is encrypted with AES-256-GCM under a key derived from your
password. Nothing leaves your machine.

Keys inside the session:
  j/k      move            enter  open
  e        edit field      y      copy field
  G        generate        D      delete account
  q/esc    back            ctrl+c save and quit`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(!cmd.HasParent())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, nil)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/passman/config.yaml)")
	cmd.PersistentFlags().StringVar(&vaultPath, "vault", "", "vault file path")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(newInitCommand(nil))
	cmd.AddCommand(newVerifyCommand(nil))
	cmd.AddCommand(newPassgenCommand(nil))
	cmd.AddCommand(newAuditCommand(nil))
	cmd.AddCommand(newConfigCommand(nil))

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	defer func() { closeLog() }()
	return rootCmd.Execute()
}

// setup loads the config and the logger. interactive is true when the command
// will run the TUI.
func setup(interactive bool) error {
	if cfgFile == "" {
		cfgFile = config.DefaultConfigPath()
	}

	var err error
	cfg, err = config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, closeLog, err = logging.New(logging.Options{
		File:        cfg.LogFile,
		Level:       cfg.LogLevel,
		Verbose:     verbose,
		Interactive: interactive,
	})
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	logger.Debug("configuration loaded", zap.String("config", cfgFile))
	return nil
}

// resolve returns conf, falling back to the loaded configuration
func resolve(conf *config.Config) *config.Config {
	if conf != nil {
		return conf
	}
	if cfg != nil {
		return cfg
	}
	return config.DefaultConfig()
}

// resolveVaultPath prefers the --vault flag over the configuration
func resolveVaultPath(conf *config.Config) string {
	if vaultPath != "" {
		return vaultPath
	}
	return conf.VaultPath
}
