package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"careerbot/internal/chunker"
	"careerbot/internal/recommend"
)

var searchK int

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the job search index from the corpus",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.search.Close(context.Background())
		if err := a.refresh(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d jobs into %s\n", len(a.search.Corpus()), cfg.Data.IndexDir)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Semantic search over the job listings",
	Long: `Semantic search over the job listings, falling back to keyword search
when no index is available.

Example:
  careerbot search "remote data analyst" --k 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.search.Close(context.Background())
		a.open(ctx)

		query := strings.Join(args, " ")
		jobs, err := a.search.SearchJobRecords(ctx, query, searchK)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			jobs = recommend.SearchJobs(query, a.search.Database(), searchK)
		}
		out := cmd.OutOrStdout()
		if len(jobs) == 0 {
			fmt.Fprintln(out, recommend.NoJobsMessage)
			return nil
		}
		for i, j := range jobs {
			fmt.Fprintf(out, "%d. [%s] %s\n", i+1, j.ID, chunker.Text(j))
		}
		return nil
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend <interests>",
	Short: "Recommend jobs for a description of your interests",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.search.Close(context.Background())
		a.open(ctx)

		jobs := recommend.RecommendedJobs([]string{strings.Join(args, " ")}, a.search.Database(), cfg.Search.RecommendCount)
		if len(jobs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), recommend.NoJobsMessage)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), recommend.FormatJobListings(jobs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd, searchCmd, recommendCmd)
	searchCmd.Flags().IntVar(&searchK, "k", 5, "Number of jobs to return")
}
