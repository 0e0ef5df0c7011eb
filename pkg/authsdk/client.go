package authsdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the campus authentication service. It covers
// the unauthenticated endpoints and hands out a Session once a call returns
// a token.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewSession wraps a token obtained elsewhere, for example one persisted by
// a frontend between page loads.
func (c *SDKClient) NewSession(token string) *Session {
	return &Session{client: c, token: token}
}
