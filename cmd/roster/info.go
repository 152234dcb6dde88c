package main

import (
	"github.com/spf13/cobra"

	"roster/internal/api"
	"roster/internal/config"
)

func newInfoCmd(cfg *config.Config, structured *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show database, avatar storage and record counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.GetInfo(cmd.Context())
				if err != nil {
					return err
				}

				if *structured {
					return writeJSON(resp)
				}

				_ = writePlain("db_path: %s\n", resp.DBPath)
				_ = writePlain("avatars_dir: %s\n", resp.AvatarsDir)
				_ = writePlain("schema_version: %d\n", resp.SchemaVersion)
				_ = writePlain("students: %d\n", resp.Students)
				_ = writePlain("faculties: %d\n", resp.Faculties)
				return writePlain("avatars: %d\n", resp.Avatars)
			})
		},
	}
}
