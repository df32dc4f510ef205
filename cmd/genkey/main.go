// Command genkey prints operator secrets: a fresh ENCRYPTION_KEY, or a signed
// development token for calling the API.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tripwise/config"
	"tripwise/middleware"
	"tripwise/vault"
)

var (
	tokenUser string
	tokenName string
	tokenTTL  time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "genkey",
	Short: "Generate a credential encryption key",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := vault.GenerateKey()
		if err != nil {
			return fmt.Errorf("generate key: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "\nYour new ENCRYPTION_KEY is:\n\n%s\n\n", key)
		fmt.Fprintln(out, "Add it to your .env file like this:")
		fmt.Fprintf(out, "ENCRYPTION_KEY=%s\n", key)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign a bearer token with the configured JWT_SECRET",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenUser == "" {
			return fmt.Errorf("--user is required")
		}
		cfg, _, err := config.Load(os.Getenv("TRIPWISE_CONFIG"))
		if err != nil {
			return err
		}
		token, err := middleware.NewAuth(cfg.JWTSecret).IssueToken(tokenUser, tokenName, tokenTTL)
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenUser, "user", "u", "", "user ID to embed in the token")
	tokenCmd.Flags().StringVar(&tokenName, "name", "", "optional username claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
