package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/passman-cli/passman/internal/config"
	"github.com/passman-cli/passman/internal/domain"
	"github.com/passman-cli/passman/internal/store"
	"github.com/passman-cli/passman/internal/vault"
)

type initOptions struct {
	force      bool
	passphrase string
}

func newInitCommand(conf *config.Config) *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new, empty vault",
		Long: `Create a new, empty vault protected by a password.

The vault file is written with 0600 permissions. An existing vault is never
replaced unless --force is given.

Example:
  passman init
  passman init --vault /path/to/vault.txt --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, opts, conf)
		},
	}

	cmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite existing vault")
	cmd.Flags().StringVar(&opts.passphrase, "passphrase", "", "Vault password (for non-interactive use)")

	return cmd
}

// NewInitCommand creates a new init command for testing
func NewInitCommand(conf *config.Config) *cobra.Command {
	return newInitCommand(conf)
}

func runInit(cmd *cobra.Command, opts *initOptions, conf *config.Config) error {
	conf = resolve(conf)
	fs := store.NewFileStore(resolveVaultPath(conf), logger)

	if fs.Exists() && !opts.force {
		return fmt.Errorf("%w at %s (use --force to overwrite)", store.ErrVaultExists, fs.Path())
	}

	passphrase := opts.passphrase
	if passphrase == "" {
		var err error
		if passphrase, err = promptNewPassphrase(); err != nil {
			return err
		}
	}

	if err := fs.Acquire(conf.LockTimeout); err != nil {
		return err
	}
	defer func() { _ = fs.Release() }()

	data, err := vault.Seal(passphrase, nil)
	if err != nil {
		return fmt.Errorf("failed to encode vault: %w", err)
	}
	if err := fs.Create(data, opts.force); err != nil {
		return err
	}

	trail := openAudit(conf, logger)
	defer trail.Close()
	record(trail, logger, domain.EventVaultCreated, 0)

	return printSuccess(cmd.OutOrStdout(), "Vault created at %s", fs.Path())
}
