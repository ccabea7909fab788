package stream

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Token is a short-lived credential for one connection attempt. It is
// owned by that attempt alone and never reused across reconnects.
type Token struct {
	Value     string
	ExpiresAt time.Time
	TTL       time.Duration
}

// TokenProvider issues stream tokens. Implementations typically wrap
// the admin API client's token endpoint.
type TokenProvider interface {
	StreamToken(ctx context.Context) (Token, error)
}

// TokenFunc adapts a function to the TokenProvider interface.
type TokenFunc func(ctx context.Context) (Token, error)

// StreamToken calls f.
func (f TokenFunc) StreamToken(ctx context.Context) (Token, error) {
	return f(ctx)
}

// CloseEvent describes a raw socket closure, delivered before the
// close code is classified. Dial failures surface as code 1006.
type CloseEvent struct {
	Code      int
	Reason    string
	AttemptID uuid.UUID
}

// Callbacks are the consumer's event sinks. All fields are optional.
// Callbacks fire sequentially from the streamer's run loop, in the
// order the transitions occur, and never after Close has begun. A
// callback may call SetTarget, SetCallbacks, Reconnect, or Disconnect,
// but not Close.
type Callbacks struct {
	OnState   func(ConnState)
	OnMessage func(data []byte)
	OnClose   func(ev CloseEvent)
}

// Config configures a Streamer. Zero values select the defaults; for
// HistoryLines and MaxRetries a value of -1 expresses an explicit
// zero, since the zero value already means "use the default".
type Config struct {
	BaseURL            *url.URL      // admin API base URL (http/https)
	HistoryLines       int           // lines of history to request on connect; -1 requests none
	ReconnectBaseDelay time.Duration // first retry delay
	ReconnectMaxDelay  time.Duration // retry delay ceiling
	MaxRetries         int           // consecutive failures before giving up; -1 disables automatic retries
	HandshakeTimeout   time.Duration // WebSocket dial deadline
	JitterMax          time.Duration // upper bound of the added jitter
}

// DefaultConfig returns sensible defaults for the given base URL.
func DefaultConfig(base *url.URL) Config {
	return Config{
		BaseURL:            base,
		HistoryLines:       100,
		ReconnectBaseDelay: time.Second,
		ReconnectMaxDelay:  30 * time.Second,
		MaxRetries:         10,
		HandshakeTimeout:   10 * time.Second,
		JitterMax:          time.Second,
	}
}

func (c *Config) applyDefaults() {
	if c.HistoryLines == 0 {
		c.HistoryLines = 100
	}
	if c.HistoryLines < 0 {
		c.HistoryLines = 0
	}
	if c.ReconnectBaseDelay == 0 {
		c.ReconnectBaseDelay = time.Second
	}
	if c.ReconnectMaxDelay == 0 {
		c.ReconnectMaxDelay = 30 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 10
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.JitterMax == 0 {
		c.JitterMax = time.Second
	}
}

type eventKind int

const (
	evTarget eventKind = iota
	evCallbacks
	evReconnect
	evDisconnect
	evTokenError
	evDialed
	evMessage
	evClosed
	evTimer
)

// event is the run loop's input. gen ties socket and timer events to
// the connection attempt that produced them; stale events are dropped.
type event struct {
	kind    eventKind
	gen     uint64
	file    string
	enabled bool
	cbs     Callbacks
	conn    *websocket.Conn
	data    []byte
	code    int
	reason  string
	attempt uuid.UUID
	err     error
}

// Streamer maintains one logical log stream connection: at most one
// live socket and at most one pending reconnect timer at any instant.
type Streamer struct {
	cfg    Config
	tokens TokenProvider
	logger *slog.Logger
	dialer *websocket.Dialer
	bo     backoff

	events *eventQueue
	quit   chan struct{}
	done   chan struct{}

	closeOnce sync.Once

	// Observable snapshot, written by the run loop.
	mu      sync.RWMutex
	state   ConnState
	retries int

	// Run-loop-owned. No other goroutine touches these.
	file          string
	enabled       bool
	cbs           Callbacks
	gen           uint64
	conn          *websocket.Conn
	cancelAttempt context.CancelFunc
	timer         *time.Timer
	auto          bool // automatic reconnects permitted
	closing       bool // Close has begun; suppress callbacks
}

// New creates a Streamer and starts its run loop. The stream stays
// idle until SetTarget enables it. A nil logger falls back to
// slog.Default().
func New(cfg Config, tokens TokenProvider, logger *slog.Logger) *Streamer {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()

	s := &Streamer{
		cfg:    cfg,
		tokens: tokens,
		logger: logger,
		dialer: &websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout},
		bo: backoff{
			base:   cfg.ReconnectBaseDelay,
			max:    cfg.ReconnectMaxDelay,
			jitter: cfg.JitterMax,
		},
		events: newEventQueue(),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		state:  StateDisconnected,
		auto:   true,
	}

	go s.run()
	return s
}

// SetTarget points the streamer at a log file and enables or disables
// it. Changing the target tears down the previous connection attempt
// first; setting the same target again is a no-op.
func (s *Streamer) SetTarget(file string, enabled bool) {
	s.send(event{kind: evTarget, file: file, enabled: enabled})
}

// SetCallbacks replaces the callback set. This never restarts the
// connection; the new callbacks simply apply from the next event on.
func (s *Streamer) SetCallbacks(cbs Callbacks) {
	s.send(event{kind: evCallbacks, cbs: cbs})
}

// Reconnect cancels any pending retry timer, resets the retry counter,
// and connects immediately, bypassing backoff.
func (s *Streamer) Reconnect() {
	s.send(event{kind: evReconnect})
}

// Disconnect closes the stream with a normal close code and suppresses
// automatic reconnects until the next SetTarget or Reconnect. Safe to
// call repeatedly.
func (s *Streamer) Disconnect() {
	s.send(event{kind: evDisconnect})
}

// Close tears everything down and stops the run loop. No callback
// fires after Close returns. Safe to call more than once, but must
// not be called from inside a callback.
func (s *Streamer) Close() {
	s.closeOnce.Do(func() { close(s.quit) })
	<-s.done
}

// State returns the current connection state.
func (s *Streamer) State() ConnState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// RetryCount returns the number of consecutive failed attempts since
// the last successful connection.
func (s *Streamer) RetryCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.retries
}

// Reconnecting reports whether the streamer is connecting again after
// at least one failure.
func (s *Streamer) Reconnecting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.retries > 0 && s.state == StateConnecting
}

// send delivers an event to the run loop, dropping it if the streamer
// already stopped. A dropped dial result must close its socket or the
// connection would leak.
func (s *Streamer) send(e event) {
	if !s.events.push(e) && e.conn != nil {
		e.conn.Close()
	}
}

func (s *Streamer) run() {
	defer close(s.done)

	for {
		select {
		case <-s.quit:
			s.shutdown()
			return
		default:
		}

		e, ok := s.events.pop()
		if !ok {
			select {
			case <-s.quit:
				s.shutdown()
				return
			case <-s.events.wake:
			}
			continue
		}
		s.handle(e)
	}
}

// shutdown runs on the loop goroutine once quit is observed. Sealing
// the queue makes later sends fail fast; sockets still buffered in it
// are released here.
func (s *Streamer) shutdown() {
	s.closing = true
	s.teardown()
	for _, e := range s.events.close() {
		if e.conn != nil {
			e.conn.Close()
		}
	}
}

func (s *Streamer) handle(e event) {
	// Socket and timer events carry the generation of the attempt that
	// produced them; anything from a superseded attempt is stale.
	switch e.kind {
	case evTokenError, evDialed, evMessage, evClosed, evTimer:
		if e.gen != s.gen {
			if e.conn != nil {
				e.conn.Close()
			}
			return
		}
	}

	switch e.kind {
	case evCallbacks:
		s.cbs = e.cbs

	case evTarget:
		if e.file == s.file && e.enabled == s.enabled {
			return
		}
		s.file, s.enabled = e.file, e.enabled
		s.teardown()
		s.setRetries(0)
		s.auto = true
		if s.enabled && s.file != "" {
			s.connect()
		} else {
			s.setState(StateDisconnected)
		}

	case evReconnect:
		s.teardown()
		s.setRetries(0)
		s.auto = true
		s.connect()

	case evDisconnect:
		s.teardown()
		s.auto = false
		s.setState(StateDisconnected)

	case evTokenError:
		s.logger.Warn("stream token request failed",
			"file", s.file,
			"attempt_id", e.attempt,
			"error", e.err,
		)
		s.cancelPending()
		s.setState(StateTokenError)

	case evDialed:
		s.cancelPending()
		s.conn = e.conn
		s.setRetries(0)
		s.setState(StateConnected)
		s.logger.Info("log stream connected", "file", s.file, "attempt_id", e.attempt)
		go s.readPump(e.gen, e.conn, e.attempt)

	case evMessage:
		if s.cbs.OnMessage != nil {
			s.cbs.OnMessage(e.data)
		}

	case evClosed:
		if s.conn != nil {
			s.conn.Close()
			s.conn = nil
		}
		s.cancelPending()

		if s.cbs.OnClose != nil {
			s.cbs.OnClose(CloseEvent{Code: e.code, Reason: e.reason, AttemptID: e.attempt})
		}

		next, retry := Classify(e.code)
		s.logger.Info("log stream closed",
			"file", s.file,
			"code", e.code,
			"reason", e.reason,
			"next_state", next.String(),
			"attempt_id", e.attempt,
		)
		s.setState(next)
		if retry && s.auto {
			s.scheduleRetry()
		}

	case evTimer:
		s.timer = nil
		s.setRetries(s.RetryCount() + 1)
		s.connect()
	}
}

// connect tears down whatever is active and starts a fresh attempt.
// No-op when the target is empty or streaming is disabled.
func (s *Streamer) connect() {
	s.teardown()

	if !s.enabled || s.file == "" {
		return
	}

	gen := s.gen
	attemptID := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelAttempt = cancel

	s.setState(StateConnecting)
	s.logger.Debug("connecting to log stream",
		"file", s.file,
		"history_lines", s.cfg.HistoryLines,
		"retry", s.RetryCount(),
		"attempt_id", attemptID,
	)

	go s.attempt(ctx, gen, s.file, attemptID)
}

// attempt runs off the loop: token request, then WebSocket dial. The
// result comes back as a single event tagged with gen.
func (s *Streamer) attempt(ctx context.Context, gen uint64, file string, attemptID uuid.UUID) {
	tok, err := s.tokens.StreamToken(ctx)
	if err != nil {
		s.send(event{kind: evTokenError, gen: gen, attempt: attemptID, err: err})
		return
	}

	u := StreamURL(s.cfg.BaseURL, file, tok.Value, s.cfg.HistoryLines)

	conn, resp, err := s.dialer.DialContext(ctx, u, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		// A failed handshake behaves like an abnormal closure and goes
		// through the same classify-and-retry path.
		s.send(event{
			kind:    evClosed,
			gen:     gen,
			attempt: attemptID,
			code:    websocket.CloseAbnormalClosure,
			reason:  err.Error(),
		})
		return
	}

	s.send(event{kind: evDialed, gen: gen, attempt: attemptID, conn: conn})
}

// readPump forwards socket messages to the run loop until the
// connection dies, then reports the close code.
func (s *Streamer) readPump(gen uint64, conn *websocket.Conn, attemptID uuid.UUID) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			code := websocket.CloseAbnormalClosure
			reason := ""
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				code = ce.Code
				reason = ce.Text
			}
			s.send(event{kind: evClosed, gen: gen, attempt: attemptID, code: code, reason: reason})
			return
		}
		s.send(event{kind: evMessage, gen: gen, data: data})
	}
}

// scheduleRetry arms the single reconnect timer, unless the retry
// ceiling is reached. The streamer then stays disconnected until a
// manual Reconnect.
func (s *Streamer) scheduleRetry() {
	attempt := s.RetryCount()
	if attempt >= s.cfg.MaxRetries {
		s.logger.Warn("reconnect attempts exhausted",
			"file", s.file,
			"attempts", attempt,
		)
		return
	}

	s.cancelTimer()
	delay := s.bo.delayFor(attempt)
	gen := s.gen
	s.logger.Info("scheduling reconnect",
		"file", s.file,
		"delay", delay,
		"attempt", attempt+1,
		"max_attempts", s.cfg.MaxRetries,
	)
	s.timer = time.AfterFunc(delay, func() {
		s.send(event{kind: evTimer, gen: gen})
	})
}

// teardown cancels the pending timer, aborts any in-flight attempt,
// and closes the live socket with a normal close code. Idempotent;
// bumps the generation so events from the old attempt are dropped.
func (s *Streamer) teardown() {
	s.cancelTimer()
	s.cancelPending()

	if s.conn != nil {
		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		s.conn.Close()
		s.conn = nil
	}

	s.gen++
}

// cancelPending releases the context of an attempt whose outcome has
// already been delivered.
func (s *Streamer) cancelPending() {
	if s.cancelAttempt != nil {
		s.cancelAttempt()
		s.cancelAttempt = nil
	}
}

func (s *Streamer) cancelTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// setState records the new state and notifies the consumer once per
// actual transition.
func (s *Streamer) setState(next ConnState) {
	s.mu.Lock()
	changed := s.state != next
	s.state = next
	s.mu.Unlock()

	if changed && !s.closing && s.cbs.OnState != nil {
		s.cbs.OnState(next)
	}
}

func (s *Streamer) setRetries(n int) {
	s.mu.Lock()
	s.retries = n
	s.mu.Unlock()
}
