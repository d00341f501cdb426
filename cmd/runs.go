package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satriadi/qaforge/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open history database: %w", err)
		}
		defer st.Close()

		runs, err := st.RunRepo().List(context.Background(), limit)
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}

		if len(runs) == 0 {
			fmt.Println("No runs found.")
			return nil
		}

		fmt.Printf("%-19s  %-9s  %-3s  %-7s  %-40s  %s\n",
			"Started", "Status", "N", "Ms", "URL", "Artifact")
		fmt.Println(strings.Repeat("─", 110))

		for _, r := range runs {
			fmt.Printf("%-19s  %-9s  %-3d  %-7d  %-40s  %s\n",
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				r.Status,
				r.Questions,
				r.DurationMs,
				clip(r.URL, 40),
				r.Artifact,
			)
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().Int("limit", 20, "maximum number of runs to show")
}
