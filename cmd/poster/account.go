package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"posterstudio/internal/studio"
)

var (
	profileEmail string
	profilePhone string
	resetUpdate  bool
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Save or restore the form draft",
}

var draftSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the current form as the draft",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			return s.SaveDraft(ctx)
		})
	},
}

var draftLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Replace the form with the saved draft",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			ok, err := s.LoadDraft(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no draft saved")
			}
			return nil
		})
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the local profile and settings",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			p := s.Profile()
			if p == nil {
				return fmt.Errorf("no profile; run `poster profile create`")
			}
			return yaml.NewEncoder(cmd.OutOrStdout()).Encode(p)
		})
	},
}

var profileCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a profile; without a name a guest profile is created",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			p, err := s.CreateProfile(ctx, name, profileEmail, profilePhone)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s!\n", p.Name)
			return nil
		})
	},
}

var profileToggleCmd = &cobra.Command{
	Use:       "toggle <setting>",
	Short:     "Flip a setting",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(studio.SettingNotifications), string(studio.SettingHighQualityPreviews), string(studio.SettingSaveHistory), string(studio.SettingBiometric)},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			v, err := s.ToggleSetting(ctx, studio.Setting(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %t\n", args[0], v)
			return nil
		})
	},
}

var profileLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			return s.Logout(ctx)
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe all local state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			if resetUpdate {
				return s.ApplyUpdate(ctx)
			}
			return s.Reset(ctx)
		})
	},
}

func init() {
	profileCreateCmd.Flags().StringVar(&profileEmail, "email", "", "email address")
	profileCreateCmd.Flags().StringVar(&profilePhone, "phone", "", "phone number")
	resetCmd.Flags().BoolVar(&resetUpdate, "update", false, "only acknowledge the new version, keeping data")

	draftCmd.AddCommand(draftSaveCmd, draftLoadCmd)
	profileCmd.AddCommand(profileShowCmd, profileCreateCmd, profileToggleCmd, profileLogoutCmd)
}
