package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newCheckDataCommand(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check-data",
		Short: "Show per-user account, entry, and transaction counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository(*dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			summaries, err := repo.DataSummaries(cmd.Context())
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Println("No users found.")
				return nil
			}

			fmt.Printf("%-20s %9s %9s %13s  %s\n", "USER", "ACCOUNTS", "ENTRIES", "TRANSACTIONS", "LATEST ENTRY")
			for _, s := range summaries {
				latest := "-"
				if s.LatestYear != 0 {
					latest = fmt.Sprintf("%s %d", time.Month(s.LatestMonth), s.LatestYear)
				}
				fmt.Printf("%-20s %9d %9d %13d  %s\n",
					s.Username, s.Accounts, s.Entries, s.Transactions, latest)
			}
			return nil
		},
	}
}
