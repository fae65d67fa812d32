package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"posterstudio/internal/poster"
)

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Inspect and edit the poster form",
}

var formShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the form as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			return printForm(cmd.OutOrStdout(), s.Form())
		})
	},
}

var formSetCmd = &cobra.Command{
	Use:   "set key=value...",
	Short: "Set form fields, e.g. name=Asha age=30 type=Festival",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			fields := make(map[string]string, len(args))
			for _, a := range args {
				k, v, ok := strings.Cut(a, "=")
				if !ok {
					return fmt.Errorf("expected key=value, got %q", a)
				}
				fields[k] = v
			}
			if t, ok := fields["type"]; ok {
				pt, err := poster.ParseType(t)
				if err != nil {
					return err
				}
				if err := s.SetType(pt); err != nil {
					return err
				}
				delete(fields, "type")
			}
			if r, ok := fields["aspectRatio"]; ok {
				if err := s.SetAspectRatio(poster.AspectRatio(r)); err != nil {
					return err
				}
				delete(fields, "aspectRatio")
			}
			if len(fields) == 0 {
				return nil
			}
			next, err := applyFields(s.Form(), fields)
			if err != nil {
				return err
			}
			s.Replace(next)
			return nil
		})
	},
}

var formImageCmd = &cobra.Command{
	Use:   "image <path|->",
	Short: "Attach the subject photo; \"none\" removes it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			if args[0] == "none" {
				s.SetImage(nil)
				return nil
			}
			img, err := readImage(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			s.SetImage(img)
			return nil
		})
	},
}

var formLoadCmd = &cobra.Command{
	Use:   "load <preset.yaml>",
	Short: "Replace the form with a YAML preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			req, err := loadPreset(args[0])
			if err != nil {
				return err
			}
			if req.Image == nil {
				req.Image = s.Form().Image
			}
			s.Replace(req)
			return nil
		})
	},
}

var formUndoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Revert the last change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			if !s.Undo() {
				return fmt.Errorf("nothing to undo")
			}
			return printForm(cmd.OutOrStdout(), s.Form())
		})
	},
}

var formRedoCmd = &cobra.Command{
	Use:   "redo",
	Short: "Reapply the last undone change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			if !s.Redo() {
				return fmt.Errorf("nothing to redo")
			}
			return printForm(cmd.OutOrStdout(), s.Form())
		})
	},
}

func init() {
	formCmd.AddCommand(formShowCmd, formSetCmd, formImageCmd, formLoadCmd, formUndoCmd, formRedoCmd)
}

// printForm writes the form as YAML with the photo summarised.
func printForm(w io.Writer, f poster.Request) error {
	wire := f.Wire()
	if f.Image != nil {
		wire.UserImage = fmt.Sprintf("<%s, %d bytes>", f.Image.MIMEType, len(f.Image.Data))
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(wire)
}

// applyFields sets wire fields by their YAML names.
func applyFields(f poster.Request, fields map[string]string) (poster.Request, error) {
	raw, err := yaml.Marshal(f.Wire())
	if err != nil {
		return f, err
	}
	var m map[string]any
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return f, err
	}
	for k, v := range fields {
		if _, ok := m[k]; !ok || k == "userImage" {
			return f, fmt.Errorf("unknown field %q", k)
		}
		m[k] = v
	}
	raw, err = yaml.Marshal(m)
	if err != nil {
		return f, err
	}
	var w poster.Wire
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return f, err
	}
	next, err := poster.FromWire(w)
	if err != nil {
		return f, err
	}
	next.Image = f.Image
	return next, nil
}

// loadPreset reads a poster request from a YAML file. userImage may be a
// data URL or a path to an image file.
func loadPreset(path string) (poster.Request, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return poster.Request{}, err
	}
	var w poster.Wire
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return poster.Request{}, fmt.Errorf("parse preset %s: %w", path, err)
	}
	var img *poster.Image
	if w.UserImage != "" && !strings.HasPrefix(w.UserImage, "data:") {
		img, err = readImage(nil, w.UserImage)
		if err != nil {
			return poster.Request{}, err
		}
		w.UserImage = ""
	}
	req, err := poster.FromWire(w)
	if err != nil {
		return poster.Request{}, fmt.Errorf("preset %s: %w", path, err)
	}
	if img != nil {
		req.Image = img
	}
	return poster.Normalize(req), nil
}

func readImage(stdin io.Reader, path string) (*poster.Image, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" && stdin != nil {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, poster.ErrInvalidImage
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("%s: %w (%s)", path, poster.ErrInvalidImage, mime)
	}
	return &poster.Image{MIMEType: mime, Data: data}, nil
}
