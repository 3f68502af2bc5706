// Package social gathers travel inspiration posts from YouTube and Google
// Custom Search and backfills them with generated placeholders.
package social

import (
	"errors"
	"strings"

	"google.golang.org/api/option"
)

// ErrNoKey is returned when a client was built without an API key.
var ErrNoKey = errors.New("missing api key")

// serviceOptions keys a Google API service. A non-empty endpoint replaces
// the service's default host.
func serviceOptions(key, endpoint string) []option.ClientOption {
	opts := []option.ClientOption{option.WithAPIKey(key)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimRight(endpoint, "/")+"/"))
	}
	return opts
}
