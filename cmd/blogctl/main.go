// Package main provides blogctl, the offline companion to the blog server:
// it provisions the admin credential file and inspects the article store.
package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"microblog/internal/config"
)

func main() {
	if err := newRootCmd(config.Load()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.AppConfig) *cobra.Command {
	root := &cobra.Command{
		Use:   "blogctl",
		Short: "Manage the blog's admin account and article store",
		Long: `blogctl works directly on the files the blog server reads.
Paths default to ADMIN_FILE and ARTICLES_DIR from the environment (.env is loaded if present).`,
		SilenceUsage: true,
	}

	root.AddCommand(newAdminCmd(cfg))
	root.AddCommand(newHashCmd())
	root.AddCommand(newArticlesCmd(cfg))
	return root
}
