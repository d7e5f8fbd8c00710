package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"microblog/internal/password"
)

func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <password>",
		Short: "Print a bcrypt hash suitable for the admin file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := password.Hash(args[0])
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
