package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/passman-cli/passman/internal/audit"
	"github.com/passman-cli/passman/internal/config"
)

var errAuditDisabled = errors.New("audit log is disabled (set audit_enabled: true in the config file)")

func newAuditCommand(conf *config.Config) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the session audit trail",
		Long: `Show recent vault sessions: unlocks, failed unlocks, saves and password
changes. The trail never contains account labels or secrets.

Example:
  passman audit
  passman audit --limit 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, limit, conf)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of most recent events to show (0 for all)")

	return cmd
}

// NewAuditCommand creates an audit command for testing
func NewAuditCommand(conf *config.Config) *cobra.Command {
	return newAuditCommand(conf)
}

func runAudit(cmd *cobra.Command, limit int, conf *config.Config) error {
	conf = resolve(conf)
	if !conf.AuditEnabled {
		return errAuditDisabled
	}

	trail, err := audit.Open(conf.AuditPath, auditOpenTimeout, logger)
	if err != nil {
		return err
	}
	defer trail.Close()

	events, err := trail.List(limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(events) == 0 {
		return writeOutput(out, "No audit events recorded.\n")
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	write := func(format string, args ...interface{}) error {
		if _, err := fmt.Fprintf(w, format, args...); err != nil {
			return fmt.Errorf("failed to write to tabwriter: %w", err)
		}
		return nil
	}

	if err := write("TIME\tSESSION\tEVENT\tACCOUNTS\n"); err != nil {
		return err
	}
	for _, ev := range events {
		session := ev.Session
		if len(session) > 8 {
			session = session[:8]
		}
		if err := write("%s\t%s\t%s\t%d\n",
			ev.Time.Local().Format(time.DateTime), session, ev.Type, ev.Accounts); err != nil {
			return err
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}
