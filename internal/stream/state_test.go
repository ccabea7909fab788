package stream

import "testing"

func TestConnStateString(t *testing.T) {
	tests := []struct {
		state ConnState
		want  string
	}{
		{StateDisconnected, "disconnected"},
		{StateConnecting, "connecting"},
		{StateConnected, "connected"},
		{StateTokenError, "token_error"},
		{StateForbidden, "forbidden"},
		{StateNotFound, "not_found"},
		{StateInvalid, "invalid"},
		{ConnState(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("ConnState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestConnStateTerminal(t *testing.T) {
	terminal := []ConnState{StateTokenError, StateForbidden, StateNotFound, StateInvalid}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s.Terminal() = false, want true", s)
		}
	}

	nonTerminal := []ConnState{StateDisconnected, StateConnecting, StateConnected}
	for _, s := range nonTerminal {
		if s.Terminal() {
			t.Errorf("%s.Terminal() = true, want false", s)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		code      int
		wantState ConnState
		wantRetry bool
	}{
		{1000, StateDisconnected, false},
		{4001, StateForbidden, false},
		{4003, StateForbidden, false},
		{4004, StateNotFound, false},
		{4005, StateInvalid, false},
		{1006, StateDisconnected, true},
		{1011, StateDisconnected, true},
		{4999, StateDisconnected, true},
	}

	for _, tt := range tests {
		state, retry := Classify(tt.code)
		if state != tt.wantState || retry != tt.wantRetry {
			t.Errorf("Classify(%d) = (%s, %v), want (%s, %v)",
				tt.code, state, retry, tt.wantState, tt.wantRetry)
		}
	}
}
