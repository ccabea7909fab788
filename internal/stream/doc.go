// Package stream implements the resilient log stream client.
//
// A Streamer owns one logical WebSocket connection to the game
// server's log stream endpoint. Each connection attempt requests a
// fresh short-lived token, dials the stream URL, and forwards raw log
// payloads to the consumer's callbacks. Server close codes are
// classified into terminal states (forbidden, not found, invalid
// request) or the recoverable path, which reconnects with capped
// exponential backoff and jitter.
//
// All state lives on a single run-loop goroutine; socket readers and
// the reconnect timer only send events tagged with a generation
// number, so anything from a superseded attempt is dropped. Callbacks
// fire sequentially from the run loop in transition order.
package stream
