package cache

import (
	"net/url"
	"strings"
)

// Key identifies a cached API response.
type Key struct {
	// Endpoint is the API path (e.g., "/games")
	Endpoint string

	// Params are the query parameters sent with the request
	Params url.Values
}

// String generates a deterministic cache key string.
// Format: nfl:endpoint:encoded-query
//
// Example:
//
//	nfl:games:league=1&season=2023
//
// The query part is Params.Encode(): names sorted, names and values escaped,
// repeated values kept in order as separate pairs. A nil and an empty Params
// map yield the same key. Colons in the endpoint are escaped so the endpoint
// can never run into the query part.
func (k Key) String() string {
	key := "nfl"

	endpoint := strings.Trim(k.Endpoint, "/")
	endpoint = strings.ReplaceAll(endpoint, "%", "%25")
	endpoint = strings.ReplaceAll(endpoint, ":", "%3A")
	if endpoint != "" || len(k.Params) > 0 {
		key += ":" + endpoint
	}

	if len(k.Params) > 0 {
		key += ":" + k.Params.Encode()
	}

	return key
}
