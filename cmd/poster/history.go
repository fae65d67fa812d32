package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"posterstudio/internal/poster"
	"posterstudio/internal/studio"
	"posterstudio/pkg/zip"
)

var historyZip bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past generations",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved generations, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tTYPE\tRATIO\tIMAGE")
			for _, h := range s.History() {
				hasImage := "yes"
				if h.Image == "" {
					hasImage = "dropped"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", h.ID, h.CreatedAt.Local().Format(time.DateTime), h.Request.Type().Label(), h.Request.AspectRatio, hasImage)
			}
			return tw.Flush()
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the request behind a generation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			h, err := findHistory(s.History(), args[0])
			if err != nil {
				return err
			}
			return printForm(cmd.OutOrStdout(), h.Request)
		})
	},
}

var historyLoadCmd = &cobra.Command{
	Use:   "load <id>",
	Short: "Restore a generation into the form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			return s.LoadHistoryItem(args[0])
		})
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a generation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			return s.DeleteHistoryItem(ctx, args[0])
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all generations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			return s.ClearHistory(ctx)
		})
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the history as JSON, or as a zip of posters with --zip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			var (
				data []byte
				err  error
			)
			data, err = s.ExportHistory()
			if err == nil && historyZip {
				data, err = exportZip(s.History(), data)
			}
			if err != nil {
				return err
			}
			return os.WriteFile(args[0], data, 0o644)
		})
	},
}

func init() {
	historyExportCmd.Flags().BoolVar(&historyZip, "zip", false, "bundle posters and history.json into a zip archive")
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyLoadCmd, historyDeleteCmd, historyClearCmd, historyExportCmd)
}

func findHistory(items []studio.HistoryItem, id string) (studio.HistoryItem, error) {
	for _, h := range items {
		if h.ID == id {
			return h, nil
		}
	}
	return studio.HistoryItem{}, studio.ErrHistoryItemNotFound
}

// exportZip bundles every stored poster with the history JSON. Entries whose
// image was dropped are only present in the JSON.
func exportZip(items []studio.HistoryItem, manifest []byte) ([]byte, error) {
	assets := make([]zip.Asset, 0, len(items)+1)
	for _, h := range items {
		if h.Image == "" {
			continue
		}
		img, err := poster.ParseDataURL(h.Image)
		if err != nil {
			return nil, fmt.Errorf("history %s: %w", h.ID, err)
		}
		assets = append(assets, zip.Asset{
			Filename: fmt.Sprintf("%s-%s%s", h.Request.Type().Label(), h.ID, img.Extension()),
			Data:     img.Data,
			Modified: h.CreatedAt,
		})
	}
	assets = append(assets, zip.Asset{Filename: "history.json", Data: manifest, Modified: time.Now()})
	return zip.ArchiveAssets(assets)
}
