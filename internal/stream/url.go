package stream

import (
	"net/url"
	"strconv"
	"strings"
)

// streamPath is the WebSocket upgrade endpoint, relative to the admin
// API base URL.
const streamPath = "/api/v1/logs/ws"

// StreamURL builds the WebSocket URL for tailing one log file.
//
// base is the admin API base URL; http maps to ws and https to wss.
// file and token are percent-encoded individually, so names containing
// '/', spaces, '+' or '=' produce syntactically valid URLs. The
// function performs no validation; a nonsense file name yields a
// well-formed URL the server will reject.
func StreamURL(base *url.URL, file, token string, historyLines int) string {
	u := *base
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + streamPath

	q := url.Values{}
	q.Set("file", file)
	q.Set("token", token)
	q.Set("history_lines", strconv.Itoa(historyLines))
	u.RawQuery = q.Encode()

	return u.String()
}
