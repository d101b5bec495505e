package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxprep/backend/internal/models"
	"github.com/voxprep/backend/internal/providers/voice"
	"github.com/voxprep/backend/internal/utils"
)

func newTestManager(provider *fakeVoice) *Manager {
	return NewManager(testConfig(provider, &fakeFeedback{}, nil))
}

func waitForStatus(t *testing.T, c *Controller, want Status) {
	t.Helper()
	require.Eventually(t, func() bool {
		return c.Status() == want
	}, time.Second, 5*time.Millisecond)
}

func TestManagerStartRequiresUser(t *testing.T) {
	m := newTestManager(&fakeVoice{})
	_, err := m.Start(StartParams{Type: "interview"})
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeUnauthorized))
}

func TestManagerGeneratesSessionID(t *testing.T) {
	m := newTestManager(&fakeVoice{})
	c, err := m.Start(StartParams{UserID: "user-1", Type: "interview"})
	require.NoError(t, err)
	assert.NotEmpty(t, c.SessionID())

	got, ok := m.Get(c.SessionID())
	require.True(t, ok)
	assert.Same(t, c, got)
}

func TestManagerRejectsConcurrentStart(t *testing.T) {
	m := newTestManager(&fakeVoice{})

	first, err := m.Start(StartParams{UserID: "user-1", Type: "interview"})
	require.NoError(t, err)
	waitForStatus(t, first, StatusConnecting)

	_, err = m.Start(StartParams{UserID: "user-1", Type: "interview"})
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeConflict))

	// A different owner is unaffected.
	_, err = m.Start(StartParams{UserID: "user-2", Type: "interview"})
	assert.NoError(t, err)
}

func TestManagerReplacesFinishedSession(t *testing.T) {
	m := newTestManager(&fakeVoice{})

	first, err := m.Start(StartParams{UserID: "user-1", Type: "interview"})
	require.NoError(t, err)
	waitForStatus(t, first, StatusConnecting)

	require.NoError(t, m.Stop(context.Background(), first.SessionID(), "user-1"))
	assert.Equal(t, StatusFinished, first.Status())

	second, err := m.Start(StartParams{UserID: "user-1", Type: "interview"})
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID(), second.SessionID())

	// The finished session is evicted from the lookup table.
	_, ok := m.Get(first.SessionID())
	assert.False(t, ok)
}

func TestManagerReplacesAbandonedSession(t *testing.T) {
	m := newTestManager(&fakeVoice{unconfigured: true})

	first, err := m.Start(StartParams{UserID: "user-1", Type: "interview"})
	require.NoError(t, err)
	waitForStatus(t, first, StatusError)

	second, err := m.Start(StartParams{UserID: "user-1", Type: "interview"})
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID(), second.SessionID())
}

func TestManagerIsolatesConcurrentOwners(t *testing.T) {
	provider := &fakeVoice{}
	m := newTestManager(provider)

	a, err := m.Start(StartParams{UserID: "owner-a", InterviewID: "iv-a", Type: "interview"})
	require.NoError(t, err)
	b, err := m.Start(StartParams{UserID: "owner-b", InterviewID: "iv-b", Type: "interview"})
	require.NoError(t, err)
	waitForStatus(t, a, StatusConnecting)
	waitForStatus(t, b, StatusConnecting)

	// B's call progresses; A must not see any of it.
	provider.emit(b.SessionID(), voice.Event{Type: voice.EventCallStart})
	provider.emit(b.SessionID(), voice.Event{Type: voice.EventTranscript, Role: models.RoleUser, Text: "owner B's answer", Final: true})
	waitForStatus(t, b, StatusActive)
	require.Eventually(t, func() bool {
		return b.TranscriptLen() == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, StatusConnecting, a.Status())
	assert.Equal(t, 0, a.TranscriptLen())

	provider.emit(b.SessionID(), voice.Event{Type: voice.EventCallEnd})
	waitForStatus(t, b, StatusFinished)
	assert.Equal(t, StatusConnecting, a.Status())
	assert.Equal(t, 0, a.TranscriptLen())

	// A's own call is still live and progresses independently.
	provider.emit(a.SessionID(), voice.Event{Type: voice.EventCallStart})
	waitForStatus(t, a, StatusActive)
	require.Len(t, a.Transcript(), 0)
}

func TestManagerStopOwnership(t *testing.T) {
	m := newTestManager(&fakeVoice{})

	c, err := m.Start(StartParams{UserID: "user-1", Type: "interview"})
	require.NoError(t, err)
	waitForStatus(t, c, StatusConnecting)

	err = m.Stop(context.Background(), c.SessionID(), "intruder")
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))
	assert.NotEqual(t, StatusFinished, c.Status())

	err = m.Stop(context.Background(), "no-such-session", "user-1")
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	require.NoError(t, m.Stop(context.Background(), c.SessionID(), "user-1"))
	assert.Equal(t, StatusFinished, c.Status())
}
