package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func requireExactlyArgs(count int, message string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != count {
			return errors.New(message)
		}
		return nil
	}
}

func requireStudentID(cmd *cobra.Command, args []string) error {
	return requireExactlyArgs(1, "student id is required")(cmd, args)
}

func requireFacultyID(cmd *cobra.Command, args []string) error {
	return requireExactlyArgs(1, "faculty id is required")(cmd, args)
}

// parseID parses a positive numeric record id.
func parseID(kind, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, raw)
	}
	return id, nil
}
