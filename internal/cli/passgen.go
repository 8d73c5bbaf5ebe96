package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/passman-cli/passman/internal/config"
	internalcrypto "github.com/passman-cli/passman/internal/crypto"
	"github.com/passman-cli/passman/internal/util"
)

type passgenOptions struct {
	length  int
	words   int
	charset string
}

func newPassgenCommand(conf *config.Config) *cobra.Command {
	opts := &passgenOptions{}

	cmd := &cobra.Command{
		Use:   "passgen",
		Short: "Generate secure passwords or passphrases",
		Long: `Generate a password with the same generator the session uses for the G key,
or a Diceware-style passphrase. Defaults come from the generator section of
the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPassgen(cmd, opts, conf)
		},
	}

	cmd.Flags().IntVar(&opts.length, "length", 0, "Length of generated password (default from config)")
	cmd.Flags().IntVar(&opts.words, "words", 0, "Number of words for Diceware passphrase")
	cmd.Flags().StringVar(&opts.charset, "charset", "", "Character set (alpha|alnum|alnum_special)")

	return cmd
}

// NewPassgenCommand creates a passgen command for testing.
func NewPassgenCommand(conf *config.Config) *cobra.Command {
	return newPassgenCommand(conf)
}

func runPassgen(cmd *cobra.Command, opts *passgenOptions, conf *config.Config) error {
	conf = resolve(conf)

	if cmd.Flags().Changed("words") {
		if cmd.Flags().Changed("length") {
			return fmt.Errorf("%w: --words cannot be used with --length", util.ErrInvalidInput)
		}
		if cmd.Flags().Changed("charset") {
			return fmt.Errorf("%w: --words cannot be used with --charset", util.ErrInvalidInput)
		}
		if opts.words <= 0 {
			return fmt.Errorf("%w: --words must be positive", util.ErrInvalidInput)
		}

		words, err := internalcrypto.GenerateDiceware(opts.words)
		if err != nil {
			return fmt.Errorf("failed to generate passphrase: %w", err)
		}
		return writeOutput(cmd.OutOrStdout(), "%s\n", strings.Join(words, " "))
	}

	length := conf.Generator.Length
	if cmd.Flags().Changed("length") {
		if opts.length <= 0 {
			return fmt.Errorf("%w: --length must be positive", util.ErrInvalidInput)
		}
		length = opts.length
	}

	name := conf.Generator.Charset
	if cmd.Flags().Changed("charset") {
		name = opts.charset
	}
	charset := internalcrypto.CharsetAlnumSpecial
	if name != "" {
		var err error
		if charset, err = internalcrypto.ParseCharset(name); err != nil {
			return fmt.Errorf("%w: %w", util.ErrInvalidInput, err)
		}
	}

	password, err := internalcrypto.NewGenerator(length, charset).Generate()
	if err != nil {
		return fmt.Errorf("failed to generate password: %w", err)
	}

	return writeOutput(cmd.OutOrStdout(), "%s\n", password)
}
