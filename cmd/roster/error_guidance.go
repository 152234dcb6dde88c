package main

import (
	"context"
	"errors"
	"net"
	"os"

	"roster/internal/api"
	"roster/internal/server"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		lines = append(lines, apiErrorHints(apiErr)...)
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; check server health or increase ROSTER_HTTP_TIMEOUT.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: ensure a roster server is running at ROSTER_API_URL.",
			"hint: start local server manually with: roster srv",
			"hint: you can increase ROSTER_HTTP_TIMEOUT for slower environments.",
		)
		if snapHint := snapStartHint(); snapHint != "" {
			lines = append(lines, snapHint)
		}
	}

	return uniqueLines(lines)
}

func apiErrorHints(apiErr *api.APIError) []string {
	var hints []string
	if apiErr.Code == "" {
		hints = append(hints, "hint: verify ROSTER_API_URL points to a roster server.")
	}
	switch api.ErrorCodeOf(apiErr) {
	case server.ErrCodePayloadTooLarge:
		hints = append(hints, "hint: avatars are limited to 300 KiB; resize the image and retry.")
	case server.ErrCodeAvatarFileMissing:
		hints = append(hints, "hint: the avatar file is gone from ROSTER_AVATARS_DIR; use --preview or upload it again.")
	case server.ErrCodeUnknownFaculty:
		hints = append(hints, "hint: list faculty ids with: roster faculty list")
	}
	if apiErr.Status >= 500 {
		hints = append(hints, "hint: server returned an internal error; check server logs for details.")
	}
	return hints
}

func snapStartHint() string {
	if os.Getenv("SNAP") == "" && os.Getenv("SNAP_NAME") == "" {
		return ""
	}
	return "hint: in snap installs, start the daemon with: snap start roster.daemon"
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
