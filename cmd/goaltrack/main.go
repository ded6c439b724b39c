package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "goaltrack",
		Short: "Telegram bot for the goal tracker",
		Long:  `Goaltrack links Telegram users to tracker accounts and drives goal creation through a guided chat dialogue.`,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newInitCmd(),
		newAdminCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the goaltrack version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("goaltrack %s\n", version)
		},
	}
}
