package authsdk

import (
	"context"
	"net/http"
)

// Session holds a bearer token issued by login, registration or Google
// sign-in. Tokens are not refreshed; once expired, sign in again.
type Session struct {
	client *SDKClient
	token  string
	user   *User
}

func newSession(c *SDKClient, token string, user User) *Session {
	return &Session{client: c, token: token, user: &user}
}

// Token returns the raw session token.
func (s *Session) Token() string { return s.token }

// User returns the account the session was issued for, or nil when the
// session was built from a bare token.
func (s *Session) User() *User { return s.user }

// Me fetches the account behind the session token from the server.
func (s *Session) Me(ctx context.Context) (*MeResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/auth/me", nil, nil)
	if err != nil {
		return nil, err
	}

	var me MeResponse
	if err := decodeJSON(resp, &me, http.StatusOK); err != nil {
		return nil, err
	}
	s.user = &me.User

	return &me, nil
}
