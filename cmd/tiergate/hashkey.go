package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/crowelogic/tiergate/adapters/hasher"
	"github.com/spf13/cobra"
)

var hashKeyCmd = &cobra.Command{
	Use:   "hash-admin-key [key]",
	Short: "Hash an operator key for auth.admin_key_hash",
	Long: `Hash an operator key with bcrypt for auth.admin_key_hash.

The key is read from the argument, or from stdin when no argument is given.

Examples:
  tiergate hash-admin-key my-operator-secret
  echo -n "$ADMIN_KEY" | tiergate hash-admin-key`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHashKey,
}

var hashKeyCost int

func init() {
	rootCmd.AddCommand(hashKeyCmd)

	hashKeyCmd.Flags().IntVar(&hashKeyCost, "cost", 0, "bcrypt cost (default: bcrypt default)")
}

func runHashKey(cmd *cobra.Command, args []string) error {
	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read key from stdin: %w", err)
		}
		key = strings.TrimSpace(line)
	}
	if key == "" {
		return fmt.Errorf("key must not be empty")
	}

	hash, err := hasher.NewBcrypt(hashKeyCost).Hash(key)
	if err != nil {
		return fmt.Errorf("hash key: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(hash))
	return nil
}
