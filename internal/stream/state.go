package stream

import "github.com/gorilla/websocket"

// ConnState is the observable state of the log stream connection.
type ConnState int

const (
	// StateDisconnected means no connection is open. The streamer may
	// still be waiting on a reconnect timer.
	StateDisconnected ConnState = iota

	// StateConnecting means a token request or WebSocket handshake is
	// in flight.
	StateConnecting

	// StateConnected means the stream is open and delivering lines.
	StateConnected

	// StateTokenError means the token request failed. No socket was
	// opened and no reconnect is scheduled.
	StateTokenError

	// StateForbidden means the server rejected the credential or the
	// caller lacks permission for this log file.
	StateForbidden

	// StateNotFound means the requested log file does not exist.
	StateNotFound

	// StateInvalid means the server rejected the stream request as
	// malformed.
	StateInvalid
)

// String returns the string representation of a ConnState.
func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateTokenError:
		return "token_error"
	case StateForbidden:
		return "forbidden"
	case StateNotFound:
		return "not_found"
	case StateInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Terminal reports whether the streamer will not attempt automatic
// recovery from this state. Manual Reconnect still works.
func (s ConnState) Terminal() bool {
	switch s {
	case StateTokenError, StateForbidden, StateNotFound, StateInvalid:
		return true
	}
	return false
}

// Application close codes sent by the log stream endpoint.
const (
	CloseUnauthorized   = 4001
	CloseForbidden      = 4003
	CloseNotFound       = 4004
	CloseInvalidRequest = 4005
)

// Classify maps a WebSocket close code to the resulting connection
// state and reports whether an automatic reconnect may follow.
func Classify(code int) (next ConnState, retry bool) {
	switch code {
	case websocket.CloseNormalClosure:
		return StateDisconnected, false
	case CloseUnauthorized, CloseForbidden:
		return StateForbidden, false
	case CloseNotFound:
		return StateNotFound, false
	case CloseInvalidRequest:
		return StateInvalid, false
	default:
		// Includes 1006 and any code the server invents later.
		return StateDisconnected, true
	}
}
