package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alekspetrov/goaltrack/internal/config"
	"github.com/alekspetrov/goaltrack/internal/identity"
	"github.com/alekspetrov/goaltrack/internal/storage"
)

// newAdminCmd groups operator tooling: linking identities by verification
// code and seeding boards/categories. These are out-of-band operations the
// bot itself never performs.
func newAdminCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Operator tooling for identities, boards and categories",
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "path to config file")

	cmd.AddCommand(
		newAdminLinkCmd(&configPath),
		newAdminBoardCmd(&configPath),
		newAdminCategoryCmd(&configPath),
	)
	return cmd
}

func newAdminLinkCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "link <verification-code> <account-id>",
		Short: "Link a Telegram identity to a tracker account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid account id %q", args[1])
			}

			identities, err := openIdentityStore(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = identities.Close() }()

			ident, err := identities.LinkAccount(context.Background(), args[0], accountID)
			if err != nil {
				return err
			}

			fmt.Printf("Linked Telegram user %d to account %d\n", ident.UserID, ident.AccountID)
			return nil
		},
	}
}

func newAdminBoardCmd(configPath *string) *cobra.Command {
	var accountID int64
	var title string

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Create a board owned by an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openGoalStore(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			board, err := store.CreateBoard(context.Background(), accountID, title)
			if err != nil {
				return err
			}

			fmt.Printf("Created board %d: %s\n", board.ID, board.Title)
			return nil
		},
	}

	cmd.Flags().Int64Var(&accountID, "account", 0, "owning account id")
	cmd.Flags().StringVar(&title, "title", "", "board title")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newAdminCategoryCmd(configPath *string) *cobra.Command {
	var boardID int64
	var title string

	cmd := &cobra.Command{
		Use:   "category",
		Short: "Create a category on a board",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openGoalStore(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			category, err := store.CreateCategory(context.Background(), boardID, title)
			if err != nil {
				return err
			}

			fmt.Printf("Created category %d: %s\n", category.ID, category.Title)
			return nil
		},
	}

	cmd.Flags().Int64Var(&boardID, "board", 0, "board id")
	cmd.Flags().StringVar(&title, "title", "", "category title")
	_ = cmd.MarkFlagRequired("board")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func openGoalStore(configPath string) (*storage.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return storage.NewStore(cfg.Storage.Path)
}

func openIdentityStore(configPath string) (*identity.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return identity.NewStore(cfg.Storage.Path)
}
