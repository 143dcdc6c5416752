package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/linkedin-outreach/internal/outreach"
	"github.com/yourusername/linkedin-outreach/internal/service"
)

type stubService struct {
	outcome  outreach.Outcome
	sendErr  error
	lastReq  service.ConnectionRequest
	visited  []string
	messaged bool
	loggedIn bool
	closed   bool
}

func (s *stubService) SendConnection(req service.ConnectionRequest) (outreach.Outcome, error) {
	s.lastReq = req
	return s.outcome, s.sendErr
}

func (s *stubService) SendMessage(profileURL, prospectID, message string) error {
	s.messaged = true
	return nil
}

func (s *stubService) Visit(profileURL string) error {
	s.visited = append(s.visited, profileURL)
	return nil
}

func (s *stubService) React(postURL string) error         { return nil }
func (s *stubService) Comment(postURL, text string) error { return nil }
func (s *stubService) Login() error                       { return nil }
func (s *stubService) LoggedIn() bool                     { return s.loggedIn }
func (s *stubService) Stats() (map[string]int, error) {
	return map[string]int{"total_outcomes": 3}, nil
}
func (s *stubService) Close() { s.closed = true }

func post(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSendConnectionSuccess(t *testing.T) {
	stub := &stubService{outcome: outreach.Outcome{
		Success:     true,
		ActionTaken: outreach.ActionConnectionRequest,
		MessageSent: true,
		ProfileURL:  "https://www.linkedin.com/in/jane",
	}}
	handler := New(stub).Router()

	rec := post(t, handler, "/send-connection", `{
		"linkedin_url": "https://www.linkedin.com/in/jane",
		"connection_note": "Hi Jane",
		"prospect_id": "p-42"
	}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "connection_request", resp["action_taken"])
	assert.Equal(t, true, resp["message_sent"])
	assert.Equal(t, "p-42", resp["prospect_id"])
	assert.NotEmpty(t, resp["action_id"], "server should mint an action id when the caller omits one")
	assert.NotEmpty(t, resp["timestamp"])

	assert.Equal(t, "Hi Jane", stub.lastReq.Note)
	assert.Equal(t, "p-42", stub.lastReq.ProspectID)
}

func TestSendConnectionKeepsCallerActionID(t *testing.T) {
	stub := &stubService{outcome: outreach.Outcome{Success: true, ActionTaken: outreach.ActionFollow}}
	handler := New(stub).Router()

	rec := post(t, handler, "/send-connection", `{
		"linkedin_url": "https://www.linkedin.com/in/jane",
		"prospect_id": "p-1",
		"action_id": "act-7"
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "act-7", stub.lastReq.ActionID)
}

func TestSendConnectionValidation(t *testing.T) {
	handler := New(&stubService{}).Router()

	rec := post(t, handler, "/send-connection", `{"prospect_id": "p-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, handler, "/send-connection", `{"linkedin_url": "https://www.linkedin.com/in/jane"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, handler, "/send-connection", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendConnectionFailureReturns500WithOutcome(t *testing.T) {
	stub := &stubService{outcome: outreach.Outcome{
		Success:     false,
		ActionTaken: outreach.ActionNone,
		ProfileURL:  "https://www.linkedin.com/in/jane",
		Error:       "no outreach action available on this profile",
	}}
	handler := New(stub).Router()

	rec := post(t, handler, "/send-connection", `{
		"linkedin_url": "https://www.linkedin.com/in/jane",
		"prospect_id": "p-1"
	}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "none", resp["action_taken"])
	assert.Contains(t, resp["error"], "no outreach action")
}

func TestSendConnectionDailyLimit(t *testing.T) {
	stub := &stubService{sendErr: service.ErrDailyLimitReached}
	handler := New(stub).Router()

	rec := post(t, handler, "/send-connection", `{
		"linkedin_url": "https://www.linkedin.com/in/jane",
		"prospect_id": "p-1"
	}`)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestVisitRequiresURL(t *testing.T) {
	stub := &stubService{}
	handler := New(stub).Router()

	rec := post(t, handler, "/visit", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, handler, "/visit", `{"linkedin_url": "https://www.linkedin.com/in/jane"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"https://www.linkedin.com/in/jane"}, stub.visited)
}

func TestCommentRequiresText(t *testing.T) {
	handler := New(&stubService{}).Router()

	rec := post(t, handler, "/comment", `{"post_url": "https://www.linkedin.com/posts/x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, handler, "/comment", `{"post_url": "https://www.linkedin.com/posts/x", "text": "Great point"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth(t *testing.T) {
	stub := &stubService{loggedIn: true}
	handler := New(stub).Router()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, true, resp["logged_in"])
}

func TestClose(t *testing.T) {
	stub := &stubService{}
	handler := New(stub).Router()

	rec := post(t, handler, "/close", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, stub.closed)
}
