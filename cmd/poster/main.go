// Command poster is a terminal front end for the poster service. Editor
// state lives in a local SQLite file so each invocation picks up where the
// last one stopped.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"posterstudio/internal/client"
	"posterstudio/internal/infra"
	"posterstudio/internal/studio"
	"posterstudio/internal/studio/kv"
)

var (
	serverURL string
	statePath string
	timeout   time.Duration
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:           "poster",
	Short:         "Design and generate celebration posters",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("POSTER_SERVER", client.DefaultBaseURL), "poster API base URL")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", envOr("POSTER_STATE", defaultStatePath()), "path of the local state database")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", client.DefaultTimeout, "request timeout for generation")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	rootCmd.AddCommand(formCmd, generateCmd, historyCmd, draftCmd, profileCmd, resetCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "poster-studio.db"
	}
	return filepath.Join(dir, "poster-studio", "state.db")
}

// session is an opened studio plus the store it must close.
type session struct {
	*studio.Studio
	store  *kv.SQLite
	logger *infra.Logger
}

func openSession(ctx context.Context) (*session, error) {
	logger := infra.NewCLILogger(verbose)
	if err := os.MkdirAll(filepath.Dir(statePath), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	store, err := kv.OpenSQLite(ctx, statePath, kv.SQLiteOptions{})
	if err != nil {
		return nil, err
	}
	st, err := studio.Open(ctx, store, studio.Options{Logger: &logger})
	if err != nil {
		store.Close()
		return nil, err
	}
	if st.UpdateAvailable() {
		fmt.Fprintln(os.Stderr, "A new version is available. Run `poster reset --update` to apply it.")
	}
	return &session{Studio: st, store: store, logger: &logger}, nil
}

// withSession runs fn against the stored studio and saves the session
// afterwards, even when fn fails.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.store.Close()

	runErr := fn(ctx, s)
	if err := s.SaveSession(ctx); err != nil && runErr == nil {
		runErr = fmt.Errorf("save session: %w", err)
	}
	if n := s.Notification(); n != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), n)
	}
	return runErr
}
