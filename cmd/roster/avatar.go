package main

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"roster/internal/api"
	"roster/internal/config"
	"roster/internal/models"
)

func newAvatarCmd(cfg *config.Config, structured *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "avatar",
		Aliases: []string{"avatars"},
		Short:   "Upload, download and list student avatars",
	}

	cmd.AddCommand(
		newAvatarUploadCmd(cfg, structured),
		newAvatarGetCmd(cfg),
		newAvatarMetaCmd(cfg, structured),
		newAvatarListCmd(cfg, structured),
	)
	return cmd
}

func newAvatarUploadCmd(cfg *config.Config, structured *bool) *cobra.Command {
	var mediaType string
	cmd := &cobra.Command{
		Use:   "upload <student-id> <file>",
		Short: "Upload or replace a student's avatar",
		Args:  requireExactlyArgs(2, "student id and file are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("student", args[0])
			if err != nil {
				return err
			}
			path := args[1]
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if info.Size() > models.AvatarMaxBytes {
				return fmt.Errorf("%s is %s; avatars are limited to %s",
					path, humanize.IBytes(uint64(info.Size())), humanize.IBytes(models.AvatarMaxBytes))
			}
			if mediaType == "" {
				mediaType = mime.TypeByExtension(filepath.Ext(path))
			}

			return withClient(cfg, func(client *api.Client) error {
				if err := client.UploadAvatar(cmd.Context(), id, path, mediaType); err != nil {
					return err
				}
				meta, err := client.GetAvatarMeta(cmd.Context(), id)
				if err != nil {
					return err
				}
				if *structured {
					return writeJSON(meta)
				}
				return writeAvatarDetail(meta)
			})
		},
	}
	cmd.Flags().StringVar(&mediaType, "media-type", "", "content type to store (default: from file extension)")
	return cmd
}

func newAvatarGetCmd(cfg *config.Config) *cobra.Command {
	var (
		outPath string
		preview bool
	)
	cmd := &cobra.Command{
		Use:   "get <student-id>",
		Short: "Download a student's avatar",
		Args:  requireStudentID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("student", args[0])
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				var w io.Writer = os.Stdout
				if outPath != "" {
					f, err := os.Create(outPath)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				counter := &countingWriter{w: w}
				mediaType, err := client.DownloadAvatar(cmd.Context(), id, preview, counter)
				if err != nil {
					return err
				}
				if outPath != "" {
					fmt.Fprintf(os.Stderr, "wrote %s (%s, %s)\n", outPath, humanize.IBytes(uint64(counter.n)), mediaType)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&preview, "preview", false, "fetch the inline copy from the database")
	return cmd
}

func newAvatarMetaCmd(cfg *config.Config, structured *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "meta <student-id>",
		Short: "Show a student's avatar metadata",
		Args:  requireStudentID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("student", args[0])
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				meta, err := client.GetAvatarMeta(cmd.Context(), id)
				if err != nil {
					return err
				}
				if *structured {
					return writeJSON(meta)
				}
				return writeAvatarDetail(meta)
			})
		},
	}
}

func newAvatarListCmd(cfg *config.Config, structured *bool) *cobra.Command {
	var page, size int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List avatar metadata one page at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				avatars, err := client.ListAvatars(cmd.Context(), page, size)
				if err != nil {
					return err
				}
				if *structured {
					return writeJSON(avatars)
				}
				return writeAvatarList(avatars)
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", models.DefaultAvatarPage, "zero-based page number")
	cmd.Flags().IntVar(&size, "size", models.DefaultAvatarPageSize, "avatars per page")
	return cmd
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
