package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourorg/loancheck/internal/auth"
)

type generatedKey struct {
	Key    string `json:"key"`
	Prefix string `json:"prefix"`
	Hash   string `json:"hash"`
}

func newKeygenCmd(opts *options) *cobra.Command {
	var algorithm string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an operator API key",
		Long: `Generates an operator API key and the hash to append to AUTH_KEY_HASHES.
The raw key is printed once and is not stored anywhere.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := auth.LoadConfig()
			if algorithm != "" {
				cfg.APIKeyHashAlgorithm = algorithm
			}
			switch auth.HashAlgorithm(cfg.APIKeyHashAlgorithm) {
			case auth.AlgorithmBcrypt, auth.AlgorithmArgon2:
			default:
				return fmt.Errorf("unknown hash algorithm %q", cfg.APIKeyHashAlgorithm)
			}

			raw, prefix, err := auth.GenerateAPIKey()
			if err != nil {
				return err
			}
			hash, err := auth.HashKey(raw, cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return printJSON(out, generatedKey{Key: raw, Prefix: prefix, Hash: hash})
			}
			okColor.Fprintf(out, "API key:  %s\n", raw)
			fmt.Fprintf(out, "Prefix:   %s\n", prefix)
			fmt.Fprintf(out, "Hash:     %s\n", hash)
			dimColor.Fprintln(out, "Add the hash to AUTH_KEY_HASHES. The key cannot be recovered later.")
			return nil
		},
	}
	cmd.Flags().StringVar(&algorithm, "algorithm", "", "bcrypt or argon2 (default: AUTH_HASH_ALGORITHM)")
	return cmd
}
