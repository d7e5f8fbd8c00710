package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"microblog/internal/config"
	"microblog/internal/model"
	"microblog/internal/password"
	"microblog/internal/repository/filesystem"
)

func newAdminCmd(cfg *config.AppConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage the admin credential file",
	}
	cmd.AddCommand(newAdminSetCmd(cfg))
	return cmd
}

func newAdminSetCmd(cfg *config.AppConfig) *cobra.Command {
	var (
		username string
		pw       string
		file     string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Write the admin username and a bcrypt hash of the password",
		Long: `Set replaces the admin credential file with the given username and a
bcrypt hash of the given password. The plaintext password is never stored.

Example:
  blogctl admin set --username admin --password 's3cret'
  blogctl admin set --username admin --password 's3cret' --file /srv/blog/admin.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return errors.New("--username is required")
			}
			if pw == "" {
				return errors.New("--password is required")
			}

			hash, err := password.Hash(pw)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			if err := filesystem.WriteAdmin(file, model.AdminCredential{Username: username, PasswordHash: hash}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Admin %q written to %s\n", username, file)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "admin username")
	cmd.Flags().StringVar(&pw, "password", "", "admin password (stored as a bcrypt hash)")
	cmd.Flags().StringVar(&file, "file", cfg.Storage.AdminFile, "path of the admin credential file")
	return cmd
}
