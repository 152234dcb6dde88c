package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"roster/internal/config"
	"roster/internal/format"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		structured bool
		jsonFlag   bool
		outputName string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "roster",
		Short:         "Roster manages students, faculties and student avatars",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}

			name := outputName
			if jsonFlag && name == "" {
				name = "json"
			}
			if name == "" {
				return nil
			}
			formatter, err := format.New(name)
			if err != nil {
				return err
			}
			outputFormatter = formatter
			structured = true
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "output JSON")
	cmd.PersistentFlags().StringVarP(&outputName, "output", "o", "", fmt.Sprintf("structured output format (%v)", format.Names()))
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newMigrateCmd(cfg, &structured),
		newConfigCmd(cfg),
		newInfoCmd(cfg, &structured),
		newStudentCmd(cfg, &structured),
		newFacultyCmd(cfg, &structured),
		newAvatarCmd(cfg, &structured),
	)

	return cmd
}
