// Package service orchestrates outreach actions. Every browser-touching
// call funnels through one mutex so the single session is never driven
// by two requests at once.
package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yourusername/linkedin-outreach/internal/config"
	"github.com/yourusername/linkedin-outreach/internal/engage"
	"github.com/yourusername/linkedin-outreach/internal/logger"
	"github.com/yourusername/linkedin-outreach/internal/messaging"
	"github.com/yourusername/linkedin-outreach/internal/outreach"
	"github.com/yourusername/linkedin-outreach/internal/stealth"
	"github.com/yourusername/linkedin-outreach/internal/storage"
)

// ErrDailyLimitReached is returned when today's connection request
// budget is spent.
var (
	ErrDailyLimitReached  = errors.New("daily connection request limit reached")
	ErrHourlyLimitReached = errors.New("hourly connection request limit reached")
)

// SessionProvider hands out the logged-in browser page.
// *session.Manager is the production implementation.
type SessionProvider interface {
	Acquire() (outreach.Page, error)
	Invalidate()
	Login() error
	LoggedIn() bool
	Close()
}

// ConnectionRequest is a caller-issued order to connect with a profile.
type ConnectionRequest struct {
	ActionID   string
	ProspectID string
	ProfileURL string
	Note       string
}

// Service drives the browser session against caller requests.
type Service struct {
	mu       sync.Mutex
	cfg      *config.Config
	sessions SessionProvider
	store    *storage.Store
	timing   outreach.Timing
}

func New(cfg *config.Config, sessions SessionProvider, store *storage.Store) *Service {
	return &Service{
		cfg:      cfg,
		sessions: sessions,
		store:    store,
		timing:   outreach.DefaultTiming(),
	}
}

// SendConnection dispatches a connection request and records the
// outcome. Failures come back inside the Outcome rather than as an
// error; the error return covers pre-dispatch refusals only (limits,
// session bring-up).
func (s *Service) SendConnection(req ConnectionRequest) (outreach.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sent, err := s.store.ConnectionRequestsToday()
	if err != nil {
		return outreach.Outcome{}, fmt.Errorf("failed to check daily limit: %w", err)
	}
	if sent >= s.cfg.Outreach.DailyLimit {
		logger.Warn("Daily connection limit reached", "sent", sent, "limit", s.cfg.Outreach.DailyLimit)
		return outreach.Outcome{}, ErrDailyLimitReached
	}

	lastHour, err := s.store.ActionsInLastHour(string(outreach.ActionConnectionRequest))
	if err != nil {
		return outreach.Outcome{}, fmt.Errorf("failed to check hourly limit: %w", err)
	}
	if lastHour >= s.cfg.Outreach.HourlyLimit {
		logger.Warn("Hourly connection burst cap reached", "sent", lastHour, "limit", s.cfg.Outreach.HourlyLimit)
		return outreach.Outcome{}, ErrHourlyLimitReached
	}

	// A profile we already connected with successfully never gets a
	// second attempt, even before the page-level status check.
	if attempted, err := s.store.AlreadyAttempted(req.ProfileURL); err == nil && attempted {
		logger.Info("Connection request already recorded for profile", "profile_url", req.ProfileURL)
		out := outreach.Outcome{
			Success:     true,
			ActionTaken: outreach.ActionAlreadyPending,
			ProfileURL:  req.ProfileURL,
			Detail:      "a successful connection request is already recorded for this profile",
		}
		s.record(req, out)
		return out, nil
	}

	page, err := s.sessions.Acquire()
	if err != nil {
		return outreach.Outcome{}, fmt.Errorf("failed to acquire session: %w", err)
	}

	d := outreach.NewDispatcher(page, logger.With("action_id", req.ActionID), s.timing)
	out := d.Dispatch(outreach.Request{ProfileURL: req.ProfileURL, Note: req.Note})

	if out.SessionLost {
		s.sessions.Invalidate()
	}

	s.record(req, out)
	s.pause()

	return out, nil
}

// SendMessage messages an already-connected profile.
func (s *Service) SendMessage(profileURL, prospectID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	page, err := s.sessions.Acquire()
	if err != nil {
		return fmt.Errorf("failed to acquire session: %w", err)
	}

	err = messaging.SendMessage(page, profileURL, message, s.timing)
	s.noteSessionLoss(err)

	if recErr := s.store.RecordEngagement(storage.EngagementRecord{
		ProfileURL: profileURL,
		Kind:       "message",
		Payload:    message,
		Success:    err == nil,
	}); recErr != nil {
		logger.Error("Failed to record message", "error", recErr)
	}
	if err == nil {
		s.countAction("message_sent")
	}

	s.pause()
	return err
}

// Visit opens a profile so the owner sees the view.
func (s *Service) Visit(profileURL string) error {
	return s.engagement("visit", profileURL, "", func(p outreach.Page) error {
		return engage.Visit(p, profileURL, s.timing)
	})
}

// React likes a post.
func (s *Service) React(postURL string) error {
	return s.engagement("reaction", postURL, "", func(p outreach.Page) error {
		return engage.React(p, postURL, s.timing)
	})
}

// Comment posts a comment under a post.
func (s *Service) Comment(postURL, text string) error {
	return s.engagement("comment", postURL, text, func(p outreach.Page) error {
		return engage.Comment(p, postURL, text, s.timing)
	})
}

func (s *Service) engagement(kind, url, payload string, fn func(outreach.Page) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	page, err := s.sessions.Acquire()
	if err != nil {
		return fmt.Errorf("failed to acquire session: %w", err)
	}

	err = fn(page)
	s.noteSessionLoss(err)

	if recErr := s.store.RecordEngagement(storage.EngagementRecord{
		ProfileURL: url,
		Kind:       kind,
		Payload:    payload,
		Success:    err == nil,
	}); recErr != nil {
		logger.Error("Failed to record engagement", "kind", kind, "error", recErr)
	}
	if err == nil {
		s.countAction(kind)
	}

	s.pause()
	return err
}

// Login forces a fresh browser session.
func (s *Service) Login() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Login()
}

// LoggedIn reports whether a live session exists.
func (s *Service) LoggedIn() bool {
	return s.sessions.LoggedIn()
}

// Stats returns aggregate outreach counters.
func (s *Service) Stats() (map[string]int, error) {
	return s.store.Stats()
}

// Close tears the browser session down.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions.Close()
}

func (s *Service) record(req ConnectionRequest, out outreach.Outcome) {
	if err := s.store.RecordOutcome(storage.OutcomeRecord{
		ActionID:    req.ActionID,
		ProspectID:  req.ProspectID,
		ProfileURL:  out.ProfileURL,
		ActionTaken: string(out.ActionTaken),
		Success:     out.Success,
		MessageSent: out.MessageSent,
		Detail:      firstNonEmpty(out.Detail, out.Error),
		AttemptedAt: time.Now(),
	}); err != nil {
		logger.Error("Failed to record outcome", "action_id", req.ActionID, "error", err)
	}

	if out.Success {
		s.countAction(string(out.ActionTaken))
	}
}

func (s *Service) countAction(actionType string) {
	if err := s.store.RecordAction(actionType); err != nil {
		logger.Error("Failed to record action", "type", actionType, "error", err)
	}
}

// noteSessionLoss tears the session down when an action died on the
// driver connection rather than on page structure.
func (s *Service) noteSessionLoss(err error) {
	if err == nil {
		return
	}
	var sessionErr *outreach.SessionError
	if errors.As(err, &sessionErr) {
		s.sessions.Invalidate()
	}
}

// pause spaces actions out so the account does not fire at machine
// cadence.
func (s *Service) pause() {
	min, max := s.cfg.GetMinDelay(), s.cfg.GetMaxDelay()
	if max <= 0 {
		return
	}
	time.Sleep(stealth.RandomDelay(min, max))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
