package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"microblog/internal/config"
	"microblog/internal/logging"
	"microblog/internal/model"
	"microblog/internal/repository/filesystem"
	"microblog/internal/service"
)

func newArticlesCmd(cfg *config.AppConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "articles",
		Short: "Inspect the article store",
	}
	cmd.AddCommand(newArticlesListCmd(cfg))
	return cmd
}

func newArticlesListCmd(cfg *config.AppConfig) *cobra.Command {
	var (
		dir        string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored articles, newest id first",
		Long: `List reads every article file in the store. Unreadable files are skipped
and reported on stderr as JSON log lines.

Example:
  blogctl articles list
  blogctl articles list --dir ./articles --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := filesystem.NewArticleFS(dir, logging.New(cmd.ErrOrStderr(), time.Local))
			items, err := service.NewArticleService(repo, time.Now).List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list articles: %w", err)
			}

			if jsonOutput {
				out, err := json.MarshalIndent(items, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal articles: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}
			printArticleTable(cmd.OutOrStdout(), items)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", cfg.Storage.ArticlesDir, "article directory")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print JSON instead of a table")
	return cmd
}

func printArticleTable(out io.Writer, items []model.Article) {
	if len(items) == 0 {
		fmt.Fprintln(out, "No articles found.")
		return
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTITLE")
	for _, a := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\n", a.ID, a.Date, shorten(a.Title, 50))
	}
	w.Flush()

	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		fmt.Fprintln(out, strings.TrimRight(line, " "))
	}
	fmt.Fprintf(out, "Total: %d article(s)\n", len(items))
}

// shorten cuts s to at most max runes, marking the cut with "...".
func shorten(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
