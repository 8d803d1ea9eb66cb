package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"careerbot/internal/secrets"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage API keys stored in the OS keychain",
}

var keySetCmd = &cobra.Command{
	Use:   "set <account>",
	Short: "Store an API key read from stdin (accounts: openai, gemini, qdrant)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.ErrOrStderr(), "Enter API key for %s: ", args[0])
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && strings.TrimSpace(line) == "" {
			return fmt.Errorf("read key: %w", err)
		}
		if err := secrets.SetAPIKey(args[0], strings.TrimSpace(line)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored key for %s\n", args[0])
		return nil
	},
}

var keyDeleteCmd = &cobra.Command{
	Use:   "delete <account>",
	Short: "Remove a stored API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return secrets.DeleteAPIKey(args[0])
	},
}

func init() {
	keyCmd.AddCommand(keySetCmd, keyDeleteCmd)
	rootCmd.AddCommand(keyCmd)
}
