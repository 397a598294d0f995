package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// refreshBuffer is how close to expiry a token may get before it is
// treated as expired and refreshed.
const refreshBuffer = 60 * time.Second

// TokenSource is an oauth2.TokenSource that persists refreshed tokens.
// Strava access tokens last six hours, so a long session will refresh
// mid-flight; onRefresh stores the replacement so the next run can skip
// the browser flow.
type TokenSource struct {
	config    *oauth2.Config
	token     *oauth2.Token
	onRefresh func(*oauth2.Token) error
	mu        sync.Mutex
}

// NewTokenSource wraps token so it is refreshed through cfg when near
// expiry. onRefresh may be nil to skip persistence.
func NewTokenSource(cfg *oauth2.Config, token *oauth2.Token, onRefresh func(*oauth2.Token) error) *TokenSource {
	return &TokenSource{
		config:    cfg,
		token:     token,
		onRefresh: onRefresh,
	}
}

// Token returns a valid token, refreshing and persisting first if the
// current one is within refreshBuffer of expiry.
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if time.Until(ts.token.Expiry) > refreshBuffer {
		return ts.token, nil
	}

	src := ts.config.TokenSource(context.Background(), ts.token)
	fresh, err := src.Token()
	if err != nil {
		return nil, err
	}

	if ts.onRefresh != nil {
		if err := ts.onRefresh(fresh); err != nil {
			return nil, err
		}
	}

	ts.token = fresh
	return fresh, nil
}

// IsExpired reports whether the current token is inside the refresh buffer.
func (ts *TokenSource) IsExpired() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return time.Until(ts.token.Expiry) <= refreshBuffer
}

// CurrentToken returns the held token as-is, without refreshing.
func (ts *TokenSource) CurrentToken() *oauth2.Token {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.token
}
