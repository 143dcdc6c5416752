package outreach

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Dispatcher runs one outreach attempt against a loaded profile page:
// status detection first, then Connect-visible, Connect-in-More-menu
// and Follow strategies in that order. At most one outbound action is
// taken per call, and every failure path is normalized into the
// Outcome; nothing escapes as a raw fault.
type Dispatcher struct {
	page Page
	log  *zap.SugaredLogger
	t    Timing
}

func NewDispatcher(page Page, log *zap.SugaredLogger, t Timing) *Dispatcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Dispatcher{page: page, log: log, t: t}
}

// Dispatch performs the outreach attempt described by req and returns
// its outcome. A relationship detected up front short-circuits the call
// with zero mutating actions: repeating a connection attempt against a
// profile that is already pending is the one mistake this engine must
// never make.
func (d *Dispatcher) Dispatch(req Request) (out Outcome) {
	out = Outcome{ProfileURL: req.ProfileURL, ActionTaken: ActionNone}

	defer func() {
		if r := recover(); r != nil {
			d.log.Errorw("dispatch panicked", "profile_url", req.ProfileURL, "panic", r)
			out = d.failed(out, fmt.Errorf("dispatch panicked: %v", r))
		}
	}()

	if err := d.openProfile(req.ProfileURL); err != nil {
		return d.failed(out, err)
	}

	state, err := DetectRelationship(d.page, d.t)
	if err != nil {
		return d.failed(out, err)
	}
	d.log.Infow("relationship status detected", "profile_url", req.ProfileURL, "state", state)

	switch state {
	case StatePending:
		out.Success = true
		out.ActionTaken = ActionAlreadyPending
		out.Detail = "connection request already sent (pending)"
		return out
	case StateConnected:
		out.Success = true
		out.ActionTaken = ActionAlreadyConnected
		out.Detail = "already connected to this profile"
		return out
	case StateFollowing:
		out.Success = true
		out.ActionTaken = ActionAlreadyFollowing
		out.Detail = "already following this profile"
		return out
	}

	err = connectVisible(d.page, d.t)
	if err != nil {
		if !recoverable(err) {
			return d.failed(out, err)
		}
		d.log.Debugw("no usable visible Connect button, trying More menu", "error", err)
		err = connectViaDropdown(d.page, d.t)
	}

	if err == nil {
		return d.finishConnect(out, req)
	}
	if !recoverable(err) {
		return d.failed(out, err)
	}
	d.log.Debugw("no Connect option anywhere, trying Follow", "error", err)

	if err := follow(d.page, d.t); err != nil {
		if !recoverable(err) {
			return d.failed(out, err)
		}
		out.Error = "no outreach action available on this profile"
		return out
	}
	out.Success = true
	out.ActionTaken = ActionFollow
	out.Detail = "profile only offers Follow; followed instead of connecting"
	return out
}

// finishConnect runs once a Connect click has opened the invite dialog:
// compose the note best-effort, then submit and verify.
func (d *Dispatcher) finishConnect(out Outcome, req Request) Outcome {
	noteAdded := false
	if strings.TrimSpace(req.Note) != "" {
		res := ComposeNote(d.page, req.Note, d.t)
		if res.Err != nil && isSessionError(res.Err) {
			return d.failed(out, res.Err)
		}
		noteAdded = res.Success
		if res.Success {
			d.log.Infow("note composed", "method", res.Method)
		} else {
			d.log.Warnw("could not compose note, sending without one", "error", res.Err)
		}
	}

	if err := SubmitAndVerify(d.page, noteAdded, d.t); err != nil {
		return d.failed(out, err)
	}

	out.Success = true
	out.ActionTaken = ActionConnectionRequest
	out.MessageSent = noteAdded
	return out
}

func (d *Dispatcher) openProfile(url string) error {
	if err := d.page.Navigate(url); err != nil {
		return err
	}
	if err := d.page.WaitLoad(); err != nil {
		return err
	}
	d.t.settle()
	// A logged-out session never reaches the profile; LinkedIn bounces
	// it to the authwall instead.
	if landed := d.page.URL(); strings.Contains(landed, "/authwall") || strings.Contains(landed, "/login") {
		return &SessionError{Err: fmt.Errorf("redirected to %s instead of the profile", landed)}
	}
	// The action bar sits at the top; undo any scroll the load left.
	if err := d.page.ScrollTop(); err != nil && isSessionError(err) {
		return err
	}
	return nil
}

func (d *Dispatcher) failed(out Outcome, err error) Outcome {
	out.Success = false
	out.Error = err.Error()
	out.SessionLost = isSessionError(err)
	d.log.Errorw("dispatch failed", "profile_url", out.ProfileURL, "error", err, "session_lost", out.SessionLost)
	return out
}
