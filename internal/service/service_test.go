package service

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/linkedin-outreach/internal/config"
	"github.com/yourusername/linkedin-outreach/internal/outreach"
	"github.com/yourusername/linkedin-outreach/internal/storage"
)

// deadPage fails every driver call with a session error.
type deadPage struct{}

func (deadPage) Navigate(string) error { return &outreach.SessionError{Err: errors.New("gone")} }
func (deadPage) WaitLoad() error       { return &outreach.SessionError{Err: errors.New("gone")} }
func (deadPage) URL() string           { return "" }
func (deadPage) Element(string, time.Duration) (outreach.Element, error) {
	return nil, &outreach.SessionError{Err: errors.New("gone")}
}
func (deadPage) ElementMatching(string, string, time.Duration) (outreach.Element, error) {
	return nil, &outreach.SessionError{Err: errors.New("gone")}
}
func (deadPage) Has(string) (bool, error) {
	return false, &outreach.SessionError{Err: errors.New("gone")}
}
func (deadPage) PressEscape() error { return nil }
func (deadPage) ScrollTop() error   { return nil }

// emptyPage loads fine but contains nothing.
type emptyPage struct{}

func (emptyPage) Navigate(string) error { return nil }
func (emptyPage) WaitLoad() error       { return nil }
func (emptyPage) URL() string           { return "" }
func (emptyPage) Element(sel string, _ time.Duration) (outreach.Element, error) {
	return nil, &outreach.StructuralError{Target: sel}
}
func (emptyPage) ElementMatching(sel, _ string, _ time.Duration) (outreach.Element, error) {
	return nil, &outreach.StructuralError{Target: sel}
}
func (emptyPage) Has(string) (bool, error) { return false, nil }
func (emptyPage) PressEscape() error       { return nil }
func (emptyPage) ScrollTop() error         { return nil }

type fakeSessions struct {
	page        outreach.Page
	acquireErr  error
	acquired    int
	invalidated int
	closed      bool
}

func (f *fakeSessions) Acquire() (outreach.Page, error) {
	f.acquired++
	return f.page, f.acquireErr
}

func (f *fakeSessions) Invalidate()    { f.invalidated++ }
func (f *fakeSessions) Login() error   { return nil }
func (f *fakeSessions) LoggedIn() bool { return f.page != nil }
func (f *fakeSessions) Close()         { f.closed = true }

func newTestService(t *testing.T, sessions *fakeSessions, dailyLimit int) (*Service, *storage.Store) {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{}
	cfg.Outreach.DailyLimit = dailyLimit
	cfg.Outreach.HourlyLimit = dailyLimit

	svc := New(cfg, sessions, store)
	svc.timing = outreach.Timing{}
	return svc, store
}

func TestSendConnectionRecordsOutcome(t *testing.T) {
	sessions := &fakeSessions{page: emptyPage{}}
	svc, store := newTestService(t, sessions, 10)

	out, err := svc.SendConnection(ConnectionRequest{
		ActionID:   "a1",
		ProspectID: "p1",
		ProfileURL: "https://www.linkedin.com/in/jane",
	})
	require.NoError(t, err)

	// Blank profile offers nothing; the outcome is a recorded failure.
	assert.False(t, out.Success)
	assert.Equal(t, outreach.ActionNone, out.ActionTaken)

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats["total_outcomes"])
	assert.Zero(t, sessions.invalidated)
}

func TestSendConnectionEnforcesDailyLimit(t *testing.T) {
	sessions := &fakeSessions{page: emptyPage{}}
	svc, store := newTestService(t, sessions, 1)

	require.NoError(t, store.RecordOutcome(storage.OutcomeRecord{
		ActionID:    "prev",
		ProspectID:  "p0",
		ProfileURL:  "https://www.linkedin.com/in/joe",
		ActionTaken: "connection_request",
		Success:     true,
	}))

	_, err := svc.SendConnection(ConnectionRequest{
		ActionID:   "a1",
		ProspectID: "p1",
		ProfileURL: "https://www.linkedin.com/in/jane",
	})
	assert.ErrorIs(t, err, ErrDailyLimitReached)
	assert.Zero(t, sessions.acquired, "a refused request must not touch the browser")
}

func TestSendConnectionEnforcesHourlyLimit(t *testing.T) {
	sessions := &fakeSessions{page: emptyPage{}}
	svc, store := newTestService(t, sessions, 10)
	svc.cfg.Outreach.HourlyLimit = 1

	require.NoError(t, store.RecordAction("connection_request"))

	_, err := svc.SendConnection(ConnectionRequest{
		ActionID:   "a1",
		ProspectID: "p1",
		ProfileURL: "https://www.linkedin.com/in/jane",
	})
	assert.ErrorIs(t, err, ErrHourlyLimitReached)
	assert.Zero(t, sessions.acquired)
}

func TestSendConnectionSkipsAlreadyAttemptedProfile(t *testing.T) {
	sessions := &fakeSessions{page: emptyPage{}}
	svc, store := newTestService(t, sessions, 10)

	require.NoError(t, store.RecordOutcome(storage.OutcomeRecord{
		ActionID:    "prev",
		ProspectID:  "p1",
		ProfileURL:  "https://www.linkedin.com/in/jane",
		ActionTaken: "connection_request",
		Success:     true,
	}))

	out, err := svc.SendConnection(ConnectionRequest{
		ActionID:   "a2",
		ProspectID: "p1",
		ProfileURL: "https://www.linkedin.com/in/jane",
	})
	require.NoError(t, err)

	assert.True(t, out.Success)
	assert.Equal(t, outreach.ActionAlreadyPending, out.ActionTaken)
	assert.Zero(t, sessions.acquired, "a recorded duplicate must not touch the browser")
}

func TestSendConnectionInvalidatesLostSession(t *testing.T) {
	sessions := &fakeSessions{page: deadPage{}}
	svc, _ := newTestService(t, sessions, 10)

	out, err := svc.SendConnection(ConnectionRequest{
		ActionID:   "a1",
		ProspectID: "p1",
		ProfileURL: "https://www.linkedin.com/in/jane",
	})
	require.NoError(t, err)

	assert.False(t, out.Success)
	assert.Equal(t, 1, sessions.invalidated)
}

func TestVisitRecordsEngagement(t *testing.T) {
	sessions := &fakeSessions{page: emptyPage{}}
	svc, store := newTestService(t, sessions, 10)

	require.NoError(t, svc.Visit("https://www.linkedin.com/in/jane"))

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats["total_engagements"])
}

func TestCloseShutsSessionDown(t *testing.T) {
	sessions := &fakeSessions{}
	svc, _ := newTestService(t, sessions, 10)

	svc.Close()
	assert.True(t, sessions.closed)
}
