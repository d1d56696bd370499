package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"networth/internal/core"
)

func newCreateUserCommand(dbPath *string) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "create-user <username>",
		Short: "Create a user account, bypassing the signup toggle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]
			if len(password) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}

			repo, err := openRepository(*dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}

			user, err := repo.CreateUser(cmd.Context(), core.User{
				Username:     username,
				Email:        email,
				PasswordHash: string(hash),
			})
			if err != nil {
				return err
			}

			fmt.Printf("Created user %s (id %d)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (required, min 8 characters)")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
