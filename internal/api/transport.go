package api

import "net/http"

// TokenSource supplies the current access token at dispatch time.
// An empty string means unauthenticated.
type TokenSource interface {
	AccessToken() string
}

// authTransport injects the bearer credential on every outgoing request and
// observes every response for the global authorization-failure reaction.
type authTransport struct {
	base           http.RoundTripper
	tokens         TokenSource
	onUnauthorized func()
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens != nil && req.Header.Get("Authorization") == "" {
		if tok := t.tokens.AccessToken(); tok != "" {
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	// The 401 reaction is unconditional and independent of the operation
	// that triggered the call.
	if resp.StatusCode == http.StatusUnauthorized && t.onUnauthorized != nil {
		t.onUnauthorized()
	}
	return resp, nil
}
