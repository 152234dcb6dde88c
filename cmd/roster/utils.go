package main

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// setIntIfChanged copies an int flag into values only when the user set it.
func setIntIfChanged(cmd *cobra.Command, values url.Values, flag, key string, value int) {
	if !cmd.Flags().Changed(flag) {
		return
	}
	values.Set(key, strconv.Itoa(value))
}

// int64FlagPtr returns nil unless the flag was given.
func int64FlagPtr(cmd *cobra.Command, flag string, value int64) *int64 {
	if !cmd.Flags().Changed(flag) {
		return nil
	}
	return &value
}
