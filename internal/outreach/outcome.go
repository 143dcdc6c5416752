package outreach

// Action identifies what a dispatch call did (or found already done).
type Action string

const (
	ActionConnectionRequest Action = "connection_request"
	ActionFollow            Action = "follow"
	ActionAlreadyPending    Action = "already_pending"
	ActionAlreadyConnected  Action = "already_connected"
	ActionAlreadyFollowing  Action = "already_following"
	ActionNone              Action = "none"
)

// RelationshipState is the caller's current connection status with a
// profile as exposed by the page.
type RelationshipState string

const (
	StatePending   RelationshipState = "pending"
	StateConnected RelationshipState = "connected"
	StateFollowing RelationshipState = "following"
	StateNone      RelationshipState = "none"
)

// Request is one outreach attempt against a profile.
type Request struct {
	ProfileURL string
	// Note is the optional connection message; clamped to the
	// platform's 300 character limit before use.
	Note string
}

// Outcome is the immutable result of a single dispatch call, returned
// to the caller verbatim.
type Outcome struct {
	Success     bool   `json:"success"`
	ActionTaken Action `json:"action_taken"`
	MessageSent bool   `json:"message_sent"`
	ProfileURL  string `json:"profile_url"`
	Detail      string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`

	// SessionLost tells the owner of the browser session to tear it
	// down and recreate lazily. Not part of the wire result.
	SessionLost bool `json:"-"`
}
