package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/voxprep/backend/internal/utils"
)

// Manager owns at most one live session per owner. It is the re-entry guard
// the controller itself deliberately does not carry.
type Manager struct {
	cfg Config
	log *logrus.Logger

	mu        sync.Mutex
	byOwner   map[string]*Controller
	bySession map[string]*Controller
}

func NewManager(cfg Config) *Manager {
	log := cfg.Logger
	if log == nil {
		log = logrus.New()
	}
	return &Manager{
		cfg:       cfg,
		log:       log,
		byOwner:   make(map[string]*Controller),
		bySession: make(map[string]*Controller),
	}
}

// Start creates a controller for the owner and launches it in the background;
// launch failures are reflected in session state and only logged here. A
// second Start while the owner's session is CONNECTING or ACTIVE is rejected.
func (m *Manager) Start(p StartParams) (*Controller, error) {
	const op = "Manager.Start"

	if p.UserID == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "authenticated user is required", nil)
	}
	if p.SessionID == "" {
		p.SessionID = uuid.NewString()
	}

	m.mu.Lock()
	if existing := m.byOwner[p.UserID]; existing != nil {
		if !existing.Finished() && !existing.abandoned() {
			m.mu.Unlock()
			return nil, utils.E(utils.CodeConflict, op, "a call session is already in progress", nil)
		}
		existing.release()
		delete(m.bySession, existing.SessionID())
	}

	c := New(m.cfg, p)
	m.byOwner[p.UserID] = c
	m.bySession[p.SessionID] = c
	m.mu.Unlock()

	go func() {
		if err := c.Start(context.Background()); err != nil {
			m.log.WithError(err).WithField("session_id", p.SessionID).Error("call start failed")
		}
	}()

	return c, nil
}

func (m *Manager) Get(sessionID string) (*Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.bySession[sessionID]
	return c, ok
}

// Stop terminates the session manually after an ownership check.
func (m *Manager) Stop(ctx context.Context, sessionID, userID string) error {
	const op = "Manager.Stop"

	c, ok := m.Get(sessionID)
	if !ok {
		return utils.E(utils.CodeNotFound, op, "session not found", nil)
	}
	if c.OwnerID() != userID {
		return utils.E(utils.CodeForbidden, op, "forbidden", nil)
	}

	c.Stop(ctx)
	return nil
}

// release drops the subscription of a session that never reached FINISHED.
func (c *Controller) release() {
	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	c.mu.Unlock()
	if sub != nil {
		sub.Close()
	}
}
