package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"roster/internal/blobstore"
	"roster/internal/config"
	"roster/internal/server"
	"roster/internal/store"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the roster API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if cfg.DBPath == "" {
				return fmt.Errorf("db path is required")
			}
			if cfg.Avatars.Dir == "" {
				return fmt.Errorf("avatars dir is required")
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}

			logger.Info("opening database", "path", cfg.DBPath)
			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			files, err := blobstore.NewLocalFS(cfg.Avatars.Dir)
			if err != nil {
				return fmt.Errorf("open avatars dir: %w", err)
			}

			return server.New(addr, cfg.DBPath, st, files, logger).ListenAndServe()
		},
	}
}
