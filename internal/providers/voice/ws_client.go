package voice

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	subBuffer    = 64
)

// WSClient talks to the voice-agent gateway over websockets. Each session gets
// its own connection and its own subscriber set; events from one session's
// call are never delivered to another session's subscribers.
type WSClient struct {
	cfg Config
	log *logrus.Logger

	mu    sync.Mutex
	conns map[string]*websocket.Conn
	subs  map[string]map[chan Event]struct{}
}

type Config struct {
	GatewayURL string
	Token      string
	WorkflowID string // question-authoring workflow for "generate" sessions
}

func ConfigFromEnv() Config {
	return Config{
		GatewayURL: os.Getenv("VOICE_GATEWAY_URL"),
		Token:      os.Getenv("VOICE_GATEWAY_TOKEN"),
		WorkflowID: os.Getenv("VOICE_WORKFLOW_ID"),
	}
}

func NewWSClient(cfg Config, log *logrus.Logger) *WSClient {
	if log == nil {
		log = logrus.New()
	}
	return &WSClient{
		cfg:   cfg,
		log:   log,
		conns: make(map[string]*websocket.Conn),
		subs:  make(map[string]map[chan Event]struct{}),
	}
}

func (c *WSClient) Configured() bool {
	return c.cfg.Token != "" && c.cfg.GatewayURL != ""
}

type launchFrame struct {
	Type       string            `json:"type"`
	SessionID  string            `json:"session_id"`
	Token      string            `json:"token"`
	WorkflowID string            `json:"workflow_id,omitempty"`
	Variables  map[string]string `json:"variables,omitempty"`
}

// Start dials the gateway and sends the launch frame for one session. Call
// establishment is signalled later by a call-start event, not by Start
// returning. Relaunching a session replaces only that session's connection.
func (c *WSClient) Start(ctx context.Context, p CallParams) error {
	if !c.Configured() {
		return errors.New("voice gateway is not configured")
	}
	if p.SessionID == "" {
		return errors.New("session id is required")
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.GatewayURL, nil)
	if err != nil {
		return err
	}

	frame := launchFrame{
		Type:      "launch",
		SessionID: p.SessionID,
		Token:     c.cfg.Token,
	}
	if p.Type == "generate" {
		if c.cfg.WorkflowID == "" {
			_ = conn.Close()
			return errors.New("voice workflow id is not configured")
		}
		frame.WorkflowID = c.cfg.WorkflowID
		frame.Variables = map[string]string{
			"username": p.UserName,
			"userid":   p.UserID,
		}
	} else {
		frame.Variables = map[string]string{
			"questions": formatQuestions(p.Questions),
		}
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(frame); err != nil {
		_ = conn.Close()
		return err
	}

	c.mu.Lock()
	if prev := c.conns[p.SessionID]; prev != nil {
		_ = prev.Close()
	}
	c.conns[p.SessionID] = conn
	c.mu.Unlock()

	go c.readLoop(p.SessionID, conn)
	return nil
}

// Stop requests teardown for one session best-effort and closes only that
// session's connection.
func (c *WSClient) Stop(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	conn := c.conns[sessionID]
	delete(c.conns, sessionID)
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	err := conn.WriteJSON(map[string]string{"type": "end"})
	_ = conn.Close()
	return err
}

// Subscribe returns an event feed carrying only the given session's events.
func (c *WSClient) Subscribe(sessionID string) *Subscription {
	ch := make(chan Event, subBuffer)

	c.mu.Lock()
	set := c.subs[sessionID]
	if set == nil {
		set = make(map[chan Event]struct{})
		c.subs[sessionID] = set
	}
	set[ch] = struct{}{}
	c.mu.Unlock()

	return NewSubscription(ch, func() {
		c.mu.Lock()
		if set, ok := c.subs[sessionID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
				if len(set) == 0 {
					delete(c.subs, sessionID)
				}
			}
		}
		c.mu.Unlock()
	})
}

func (c *WSClient) readLoop(sessionID string, conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			active := c.conns[sessionID] == conn
			if active {
				delete(c.conns, sessionID)
			}
			c.mu.Unlock()

			// a read failure on the session's live connection surfaces as an
			// error event; teardown after Stop or relaunch is silent
			if active {
				c.broadcast(sessionID, Event{Type: EventError, Message: err.Error()})
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			c.log.WithError(err).WithField("session_id", sessionID).Debug("discarding malformed gateway frame")
			continue
		}
		c.broadcast(sessionID, ev)
	}
}

func (c *WSClient) broadcast(sessionID string, ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subs[sessionID] {
		select {
		case ch <- ev:
		default:
			c.log.WithFields(logrus.Fields{
				"session_id": sessionID,
				"event":      ev.Type,
			}).Warn("dropping event for slow subscriber")
		}
	}
}

// formatQuestions renders the question list the way the agent prompt expects:
// one "- question" line each.
func formatQuestions(questions []string) string {
	lines := make([]string, 0, len(questions))
	for _, q := range questions {
		lines = append(lines, "- "+q)
	}
	return strings.Join(lines, "\n")
}
