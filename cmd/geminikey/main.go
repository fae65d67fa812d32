// Command geminikey stores or inspects the Gemini API key kept in the
// database, so the API can pick up a rotated key without a redeploy.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"posterstudio/internal/adapter/repo"
	"posterstudio/internal/infra"
	"posterstudio/internal/infra/credentials"
)

var keyFlag string

var rootCmd = &cobra.Command{
	Use:           "geminikey",
	Short:         "Manage the stored Gemini API key",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Store a key (defaults to GEMINI_API_KEY)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.TrimSpace(keyFlag)
		if key == "" {
			key = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
		}
		if key == "" {
			return fmt.Errorf("GEMINI API key is required via --key or environment")
		}
		return withStore(cmd.Context(), func(ctx context.Context, store *credentials.Store) error {
			if err := store.SetGeminiAPIKey(ctx, key); err != nil {
				return fmt.Errorf("persist gemini api key: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "GEMINI API key stored successfully")
			return nil
		})
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether a key is stored",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, store *credentials.Store) error {
			key, err := store.GeminiAPIKey(ctx)
			if err != nil {
				return err
			}
			if key == "" {
				return fmt.Errorf("no gemini api key stored")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored key ends in %s\n", tail(key, 4))
			return nil
		})
	},
}

func init() {
	setCmd.Flags().StringVar(&keyFlag, "key", "", "API key to store (falls back to GEMINI_API_KEY)")
	rootCmd.AddCommand(setCmd, checkCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func withStore(ctx context.Context, fn func(context.Context, *credentials.Store) error) error {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	logger := infra.NewCLILogger(false).With().Str("cmd", "geminikey").Logger()
	runner := infra.NewSQLRunner(pool, logger)
	if err := repo.NewGenerationRepository(runner).EnsureSchema(ctx); err != nil {
		return err
	}
	return fn(ctx, credentials.NewStore(runner))
}

func tail(s string, n int) string {
	if len(s) <= n {
		return strings.Repeat("*", len(s))
	}
	return s[len(s)-n:]
}
