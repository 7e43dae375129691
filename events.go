package unifi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"

	"github.com/mkraus/go-unifi-classic/internal/middleware"
	"github.com/mkraus/go-unifi-classic/observability"
)

const (
	// eventBuffer is the capacity of the delivery channel. When a
	// subscriber falls this far behind, further events are dropped with a
	// warning rather than stalling the read loop.
	eventBuffer = 64

	handshakeTimeout = 10 * time.Second
	closeGracePeriod = time.Second

	// batchedMessage marks the envelope variant whose data field is a
	// sequence of events, each named by its own key discriminator.
	batchedMessage = "events"
)

// EventKind identifies a known controller push event. New controller
// releases introduce event types at will; anything not in the catalog is
// EventUnknown, with the wire name preserved on the event.
type EventKind int

const (
	EventUnknown EventKind = iota

	EventWirelessUserConnected
	EventWirelessUserDisconnected
	EventWirelessUserRoam
	EventWirelessUserRoamRadio
	EventWirelessGuestConnected
	EventWirelessGuestDisconnected
	EventWirelessGuestRoam
	EventWirelessGuestRoamRadio
	EventLANUserConnected
	EventLANUserDisconnected
	EventLANGuestConnected
	EventLANGuestDisconnected

	EventDeviceSync
	EventClientSync
)

var eventKinds = map[string]EventKind{
	"EVT_WU_Connected":    EventWirelessUserConnected,
	"EVT_WU_Disconnected": EventWirelessUserDisconnected,
	"EVT_WU_Roam":         EventWirelessUserRoam,
	"EVT_WU_RoamRadio":    EventWirelessUserRoamRadio,
	"EVT_WG_Connected":    EventWirelessGuestConnected,
	"EVT_WG_Disconnected": EventWirelessGuestDisconnected,
	"EVT_WG_Roam":         EventWirelessGuestRoam,
	"EVT_WG_RoamRadio":    EventWirelessGuestRoamRadio,
	"EVT_LU_Connected":    EventLANUserConnected,
	"EVT_LU_Disconnected": EventLANUserDisconnected,
	"EVT_LG_Connected":    EventLANGuestConnected,
	"EVT_LG_Disconnected": EventLANGuestDisconnected,
	"device.sync":         EventDeviceSync,
	"sta.sync":            EventClientSync,
}

// StreamEvent is one named push event from the controller. Data is the raw
// payload and must be treated as read-only.
type StreamEvent struct {
	Kind EventKind
	Name string
	Data json.RawMessage
}

// envelope is the wire shape of every push frame. Data is either a sequence
// of events (meta.message == "events") or a single sync object.
type envelope struct {
	Meta struct {
		Message string `json:"message"`
	} `json:"meta"`
	Data json.RawMessage `json:"data"`
}

// EventStream is a live connection to the controller's push channel. Its
// lifetime is independent of any individual request; it ends only on Close
// or when the transport itself closes.
type EventStream struct {
	conn   *websocket.Conn
	events chan StreamEvent
	logger observability.Logger

	closeOnce sync.Once
	closeErr  error
}

// OpenEvents connects to the controller push channel for the configured
// site. It logs in first if no session credentials exist yet: the channel
// requires the session cookie at connect time. A successful return means the
// connection is established and the read loop is running.
//
// The stream does not reconnect on its own; when Events() is closed, callers
// decide whether to open a new stream.
func (c *Client) OpenEvents(ctx context.Context) (*EventStream, error) {
	if _, _, ok := c.session.credentials(); !ok {
		if err := c.Login(ctx); err != nil {
			return nil, err
		}
	}
	token, _, _ := c.session.credentials()

	wsURL, err := c.eventsURL()
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshakeTimeout,
	}
	if c.insecure {
		dialer.TLSClientConfig = middleware.InsecureSkipVerify()
	}

	header := http.Header{}
	if token != "" {
		header.Set("Cookie", sessionCookie+"="+token)
	}

	conn, resp, err := dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, classifyTransportError(err, "event stream dial failed")
	}

	s := &EventStream{
		conn:   conn,
		events: make(chan StreamEvent, eventBuffer),
		logger: c.logger.With(observability.Field{Key: "component", Value: "events"}),
	}
	go s.readLoop()

	c.logger.Info("event stream connected",
		observability.Field{Key: "site", Value: c.site},
	)
	return s, nil
}

// Events returns the delivery channel. It is closed when the stream ends,
// either by Close or by the transport closing underneath.
func (s *EventStream) Events() <-chan StreamEvent {
	return s.events
}

// Close shuts the stream down. It is safe to call more than once and safe
// to call concurrently with event delivery.
func (s *EventStream) Close() error {
	s.closeOnce.Do(func() {
		deadline := time.Now().Add(closeGracePeriod)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		s.closeErr = s.conn.Close()
	})
	if s.closeErr != nil {
		return errors.Wrap(s.closeErr, "failed to close event stream")
	}
	return nil
}

// readLoop decodes and dispatches inbound frames until the transport
// closes. Frame-level faults are contained here: a frame that cannot be
// decoded is logged and dropped, never surfaced and never fatal. A read
// error is terminal on a websocket connection, so it is treated as the
// transport's close signal.
func (s *EventStream) readLoop() {
	defer close(s.events)

	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
				errors.Is(err, net.ErrClosed) {
				s.logger.Debug("event stream closed")
			} else {
				s.logger.Warn("event stream transport error",
					observability.Field{Key: "error", Value: err.Error()},
				)
			}
			return
		}

		s.dispatch(frame)
	}
}

// dispatch classifies one frame and emits the resulting events.
func (s *EventStream) dispatch(frame []byte) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil || env.Meta.Message == "" {
		s.logger.Warn("dropping undecodable push frame",
			observability.Field{Key: "bytes", Value: len(frame)},
		)
		return
	}

	if env.Meta.Message != batchedMessage {
		s.emit(env.Meta.Message, env.Data)
		return
	}

	var items []json.RawMessage
	if err := json.Unmarshal(env.Data, &items); err != nil {
		s.logger.Warn("dropping malformed event batch",
			observability.Field{Key: "error", Value: err.Error()},
		)
		return
	}

	for _, item := range items {
		var disc struct {
			Key string `json:"key"`
		}
		if err := json.Unmarshal(item, &disc); err != nil || disc.Key == "" {
			s.logger.Warn("dropping batch element without key discriminator")
			continue
		}
		s.emit(disc.Key, item)
	}
}

func (s *EventStream) emit(name string, payload json.RawMessage) {
	ev := StreamEvent{
		Kind: eventKinds[name],
		Name: name,
		Data: payload,
	}

	select {
	case s.events <- ev:
	default:
		s.logger.Warn("subscriber lagging, dropping event",
			observability.Field{Key: "event", Value: name},
		)
	}
}

// eventsURL derives the push channel URL from the controller base URL,
// upgrading the scheme and scoping to the configured site.
func (c *Client) eventsURL() (string, error) {
	u := *c.baseURL
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", errors.Newf("cannot derive websocket scheme from %q", u.Scheme)
	}
	u.Path = "/wss/s/" + url.PathEscape(c.site) + "/events"
	return u.String(), nil
}
