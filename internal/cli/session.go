package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/passman-cli/passman/internal/audit"
	"github.com/passman-cli/passman/internal/clipboard"
	"github.com/passman-cli/passman/internal/config"
	"github.com/passman-cli/passman/internal/crypto"
	"github.com/passman-cli/passman/internal/domain"
	"github.com/passman-cli/passman/internal/session"
	"github.com/passman-cli/passman/internal/store"
	"github.com/passman-cli/passman/internal/tui"
	"github.com/passman-cli/passman/internal/vault"
)

const auditOpenTimeout = time.Second

// Replaced in tests
var (
	runInteractive = func(ctrl *session.Controller) error {
		return tui.Run(ctrl)
	}
	openClipboard = func() (session.Clipboard, error) {
		c, err := clipboard.New()
		if err != nil {
			return nil, err
		}
		return c, nil
	}
)

// unlocked is the state handed to the interactive session
type unlocked struct {
	accounts   *store.Accounts
	passphrase string
	created    bool
}

// runSession unlocks the vault, runs the interactive session and persists the
// result. The vault is locked against other passman processes throughout.
func runSession(cmd *cobra.Command, conf *config.Config) error {
	conf = resolve(conf)
	log := logger

	fs := store.NewFileStore(resolveVaultPath(conf), log)
	if err := fs.Acquire(conf.LockTimeout); err != nil {
		return err
	}
	defer func() {
		if err := fs.Release(); err != nil {
			log.Warn("failed to release vault lock", zap.Error(err))
		}
	}()

	trail := openAudit(conf, log)
	defer trail.Close()

	u, err := unlock(fs, trail, log)
	if err != nil || u == nil {
		return err
	}

	ctrl := session.New(u.accounts, u.passphrase, session.Options{
		Clipboard: sessionClipboard(log),
		Generator: generatorFor(conf, log),
		Logger:    log,
	})

	if err := runInteractive(ctrl); err != nil {
		record(trail, log, domain.EventSessionAborted, u.accounts.Len())
		return fmt.Errorf("session aborted, vault left unchanged: %w", err)
	}

	res := ctrl.Result()
	data, err := vault.Seal(res.Passphrase, res.Accounts)
	if err != nil {
		record(trail, log, domain.EventSessionAborted, len(res.Accounts))
		return fmt.Errorf("failed to encode vault: %w", err)
	}
	if err := fs.Save(data); err != nil {
		record(trail, log, domain.EventSessionAborted, len(res.Accounts))
		return err
	}

	if u.created {
		record(trail, log, domain.EventVaultCreated, len(res.Accounts))
	}
	if res.PassphraseChanged {
		record(trail, log, domain.EventPassphraseChanged, len(res.Accounts))
	}
	record(trail, log, domain.EventSaved, len(res.Accounts))
	log.Info("vault saved",
		zap.Int("accounts", len(res.Accounts)),
		zap.Bool("modified", res.Modified),
		zap.Bool("passphrase_changed", res.PassphraseChanged))

	return printSuccess(cmd.ErrOrStderr(), "Vault saved (%d accounts)", len(res.Accounts))
}

// unlock authenticates against an existing vault or offers to create one. A
// nil result with a nil error means the user declined to create a vault.
func unlock(fs *store.FileStore, trail *audit.Log, log *zap.Logger) (*unlocked, error) {
	if !fs.Exists() {
		ok, err := promptConfirm(warning("Password file not found! create one?"), false)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}

		passphrase, err := promptNewPassphrase()
		if err != nil {
			return nil, err
		}
		accounts, _ := store.NewAccounts(nil)
		return &unlocked{accounts: accounts, passphrase: passphrase, created: true}, nil
	}

	passphrase, err := promptPassword("Enter Password: ")
	if err != nil {
		return nil, err
	}
	if passphrase == "" {
		return nil, vault.ErrWrongPassphrase
	}

	res, err := vault.Authenticate(fs, passphrase)
	switch {
	case errors.Is(err, vault.ErrWrongPassphrase):
		log.Debug("passphrase rejected", zap.String("vault", fs.Path()))
		record(trail, log, domain.EventUnlockFailed, 0)
		return nil, err
	case errors.Is(err, vault.ErrNoVaultFile):
		return nil, fmt.Errorf("%w: %s", err, fs.Path())
	case err != nil:
		return nil, err
	}
	vault.Zeroize(res.Key)

	accounts, err := store.NewAccounts(res.Accounts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", vault.ErrMalformedVault, err)
	}

	record(trail, log, domain.EventUnlock, accounts.Len())
	log.Debug("vault unlocked", zap.Int("accounts", accounts.Len()))
	return &unlocked{accounts: accounts, passphrase: passphrase}, nil
}

func sessionClipboard(log *zap.Logger) session.Clipboard {
	c, err := openClipboard()
	if err != nil {
		log.Warn("clipboard unavailable", zap.Error(err))
		return nil
	}
	return c
}

func generatorFor(conf *config.Config, log *zap.Logger) crypto.Generator {
	charset, err := crypto.ParseCharset(conf.Generator.Charset)
	if err != nil {
		log.Warn("invalid generator charset, using default", zap.Error(err))
		charset = crypto.CharsetAlnumSpecial
	}
	return crypto.NewGenerator(conf.Generator.Length, charset)
}

// openAudit returns nil when auditing is disabled or the log cannot be opened
func openAudit(conf *config.Config, log *zap.Logger) *audit.Log {
	if !conf.AuditEnabled || conf.AuditPath == "" {
		return nil
	}
	trail, err := audit.Open(conf.AuditPath, auditOpenTimeout, log)
	if err != nil {
		log.Warn("audit log unavailable", zap.Error(err))
		return nil
	}
	return trail
}

func record(trail *audit.Log, log *zap.Logger, t domain.EventType, accounts int) {
	if err := trail.Record(t, accounts); err != nil {
		log.Warn("failed to record audit event", zap.String("type", string(t)), zap.Error(err))
	}
}
