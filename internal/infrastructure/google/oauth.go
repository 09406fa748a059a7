// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

// Package google integrates with the Google Calendar API: it manages the
// per-user OAuth credentials and provisions calendar events with Meet
// conferencing for meetings.
package google

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/relaycrm/scheduling-service/internal/domain"
	"github.com/relaycrm/scheduling-service/internal/domain/models"
	"github.com/relaycrm/scheduling-service/internal/logging"
)

// tokenRefreshWindow is how close to expiry an access token may get before
// the manager refreshes it ahead of use.
const tokenRefreshWindow = 5 * time.Minute

// NewOAuthConfig builds the OAuth2 configuration for the Google Calendar
// integration. It is a pure factory: no globals, no environment reads.
func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     googleoauth.Endpoint,
		Scopes:       []string{calendar.CalendarEventsScope},
	}
}

// TokenManager loads stored credentials, silently refreshes access tokens
// that are about to expire, and hands out ready-to-use Calendar API clients.
// All of its collaborators are injected; it never reaches into ambient state.
type TokenManager struct {
	oauthConfig   *oauth2.Config
	credentials   domain.CredentialRepository
	clientOptions []option.ClientOption
}

var _ domain.CalendarConnector = (*TokenManager)(nil)

// NewTokenManager creates a new TokenManager. Extra client options are
// forwarded to every Calendar service it builds, which lets tests point the
// client at a local server.
func NewTokenManager(oauthConfig *oauth2.Config, credentials domain.CredentialRepository, opts ...option.ClientOption) *TokenManager {
	return &TokenManager{
		oauthConfig:   oauthConfig,
		credentials:   credentials,
		clientOptions: opts,
	}
}

// ConsentURL returns the Google consent page URL for the connect flow. The
// state round-trips through the provider and identifies the connecting user
// on the callback.
func (m *TokenManager) ConsentURL(state string) string {
	return m.oauthConfig.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange redeems an authorization code from the OAuth callback and stores
// the resulting token pair for the user.
func (m *TokenManager) Exchange(ctx context.Context, userUID, code string) error {
	token, err := m.oauthConfig.Exchange(ctx, code)
	if err != nil {
		slog.ErrorContext(ctx, "error exchanging authorization code", logging.ErrKey, err, "user_uid", userUID)
		return domain.NewUnavailableError("calendar provider rejected the authorization code", err)
	}
	return m.persist(ctx, userUID, token, "")
}

// Connected reports whether the user has a stored calendar credential.
func (m *TokenManager) Connected(ctx context.Context, userUID string) bool {
	_, err := m.credentials.Get(ctx, userUID)
	return err == nil
}

// ClientFor returns a Calendar API client acting as the given user, or nil
// when the user never connected a calendar. Nil is the common degraded path,
// not an error: callers skip external sync and move on.
//
// When the stored access token expires within tokenRefreshWindow, the token
// is refreshed before the client is built. A failed refresh is logged and the
// stale token is used as-is; the provider call that follows will surface the
// failure as a degraded result.
func (m *TokenManager) ClientFor(ctx context.Context, userUID string) *calendar.Service {
	credential, err := m.credentials.Get(ctx, userUID)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			slog.DebugContext(ctx, "user has no connected calendar", "user_uid", userUID)
		} else {
			slog.ErrorContext(ctx, "error loading calendar credential", logging.ErrKey, err, "user_uid", userUID)
		}
		return nil
	}

	token := &oauth2.Token{
		AccessToken:  credential.AccessToken,
		RefreshToken: credential.RefreshToken,
		Expiry:       credential.Expiry,
		TokenType:    "Bearer",
	}

	if credential.ExpiresWithin(time.Now(), tokenRefreshWindow) && credential.RefreshToken != "" {
		// Presenting only the refresh token forces an immediate exchange;
		// the oauth2 layer would otherwise keep serving a token that is
		// about to expire mid-request.
		fresh, err := m.oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: credential.RefreshToken}).Token()
		if err != nil {
			slog.WarnContext(ctx, "token refresh failed; continuing with stored token",
				logging.ErrKey, err, "user_uid", userUID)
		} else {
			if fresh.RefreshToken == "" {
				fresh.RefreshToken = token.RefreshToken
			}
			if err := m.persist(ctx, userUID, fresh, credential.RefreshToken); err != nil {
				slog.ErrorContext(ctx, "error persisting refreshed token", logging.ErrKey, err, "user_uid", userUID)
			}
			token = fresh
		}
	}

	source := &persistingTokenSource{
		manager:      m,
		userUID:      userUID,
		refreshToken: token.RefreshToken,
		lastAccess:   token.AccessToken,
		inner:        oauth2.ReuseTokenSource(token, m.oauthConfig.TokenSource(ctx, token)),
		ctx:          ctx,
	}

	opts := append([]option.ClientOption{option.WithTokenSource(source)}, m.clientOptions...)
	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		slog.ErrorContext(ctx, "error building calendar client", logging.ErrKey, err, "user_uid", userUID)
		return nil
	}
	return service
}

func (m *TokenManager) persist(ctx context.Context, userUID string, token *oauth2.Token, fallbackRefresh string) error {
	refreshToken := token.RefreshToken
	if refreshToken == "" {
		// Google omits the refresh token on refresh responses; carry the
		// stored one forward so the connection survives.
		refreshToken = fallbackRefresh
	}
	credential := &models.Credential{
		UserUID:      userUID,
		AccessToken:  token.AccessToken,
		RefreshToken: refreshToken,
		Expiry:       token.Expiry,
	}
	if err := m.credentials.Put(ctx, credential); err != nil {
		return fmt.Errorf("storing calendar credential: %w", err)
	}
	slog.DebugContext(ctx, "stored calendar credential", "user_uid", userUID, "expiry", token.Expiry)
	return nil
}

// persistingTokenSource wraps a ReuseTokenSource and writes every rotated
// access token back to the credential store, so a refresh performed deep
// inside an API call survives the process.
type persistingTokenSource struct {
	manager      *TokenManager
	userUID      string
	refreshToken string
	ctx          context.Context

	mu         sync.Mutex
	lastAccess string
	inner      oauth2.TokenSource
}

var _ oauth2.TokenSource = (*persistingTokenSource)(nil)

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.inner.Token()
	if err != nil {
		return nil, err
	}
	if token.AccessToken != s.lastAccess {
		if err := s.manager.persist(s.ctx, s.userUID, token, s.refreshToken); err != nil {
			slog.ErrorContext(s.ctx, "error persisting rotated token", logging.ErrKey, err, "user_uid", s.userUID)
		}
		s.lastAccess = token.AccessToken
	}
	return token, nil
}
