package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/passman-cli/passman/internal/config"
	"github.com/passman-cli/passman/internal/store"
	"github.com/passman-cli/passman/internal/vault"
)

func newVerifyCommand(conf *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the vault password and file structure",
		Long: `Unlock the vault without starting a session and report whether every
record decodes. Nothing is written.

Exit codes:
  4  the file is corrupted
  5  the password is wrong`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, conf)
		},
	}
}

// NewVerifyCommand creates a verify command for testing
func NewVerifyCommand(conf *config.Config) *cobra.Command {
	return newVerifyCommand(conf)
}

func runVerify(cmd *cobra.Command, conf *config.Config) error {
	conf = resolve(conf)
	fs := store.NewFileStore(resolveVaultPath(conf), logger)

	if !fs.Exists() {
		return fmt.Errorf("%w: %s (run 'passman init' to create one)", vault.ErrNoVaultFile, fs.Path())
	}

	passphrase, err := promptPassword("Enter Password: ")
	if err != nil {
		return err
	}

	res, err := vault.Authenticate(fs, passphrase)
	if err != nil {
		return err
	}
	vault.Zeroize(res.Key)

	accounts, err := store.NewAccounts(res.Accounts)
	if err != nil {
		return fmt.Errorf("%w: %w", vault.ErrMalformedVault, err)
	}

	var usernames, emails, emptyPasswords int
	for _, a := range accounts.All() {
		if a.HasUsername() {
			usernames++
		}
		if a.HasEmail() {
			emails++
		}
		if a.Password == "" {
			emptyPasswords++
		}
	}

	out := cmd.OutOrStdout()
	if err := printSuccess(out, "Vault OK: %d accounts", accounts.Len()); err != nil {
		return err
	}
	if err := writeOutput(out, "  with username: %d\n  with email:    %d\n", usernames, emails); err != nil {
		return err
	}
	if emptyPasswords > 0 {
		if err := writeOutput(out, "%s\n", warning(fmt.Sprintf("%d accounts have an empty password", emptyPasswords))); err != nil {
			return err
		}
	}

	if info, err := os.Stat(fs.Path()); err == nil && info.Mode().Perm()&0o077 != 0 {
		return writeOutput(out, "%s\n", warning(fmt.Sprintf("permissions %o are too open, run: chmod 600 %s", info.Mode().Perm(), fs.Path())))
	}
	return nil
}
