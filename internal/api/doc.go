// Package api provides access to the game server's admin REST API.
//
// The client covers the endpoints the streaming tools need: server
// status, the list of tailable log files, and the short-lived token
// that authenticates a WebSocket log stream. Requests retry with
// jittered exponential backoff on transient failures (5xx, 429).
package api
