package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"posterstudio/internal/client"
	"posterstudio/internal/poster"
	"posterstudio/internal/storage"
)

var (
	generatePreset string
	generateOut    string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a poster from the current form",
	Long: `Sends the current form (or a YAML preset) to the poster API and writes
the result to the output directory. Successful posters are added to the
local history.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generatePreset, "preset", "p", "", "YAML preset to load before generating")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "posters", "directory to write the poster to")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		if generatePreset != "" {
			req, err := loadPreset(generatePreset)
			if err != nil {
				return err
			}
			if req.Image == nil {
				req.Image = s.Form().Image
			}
			s.Replace(req)
		}

		c := client.New(client.Options{
			BaseURL:    serverURL,
			HTTPClient: &http.Client{Timeout: timeout},
			Logger:     s.logger,
		})
		s.logger.Debug().Str("server", serverURL).Str("type", string(s.Form().Type())).Msg("generating poster")

		if err := s.Generate(ctx, c); err != nil {
			if msg := s.Error(); msg != "" {
				return errors.New(msg)
			}
			return err
		}

		img, err := poster.ParseDataURL(s.GeneratedImage())
		if err != nil {
			return fmt.Errorf("decode poster: %w", err)
		}
		files, err := storage.NewFileStore(generateOut)
		if err != nil {
			return err
		}
		path, err := files.SavePoster(ctx, s.Form().Type(), img, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	})
}
