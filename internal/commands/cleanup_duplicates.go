package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCleanupDuplicatesCommand(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup-duplicate-entries",
		Short: "Remove all but the newest entry per account and month",
		Long: `Removes duplicate balance entries, keeping the newest row per
(account, month, year). The schema prevents new duplicates; this exists
for databases imported from systems that allowed them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository(*dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			n, err := repo.CleanupDuplicateEntries(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d duplicate entries.\n", n)
			return nil
		},
	}
}
