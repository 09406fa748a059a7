// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

// Package auth validates the bearer tokens minted by the API gateway and
// extracts the authenticated principal.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
)

// Default configuration values for the JWT validation.
const (
	defaultJWKSURL  = "http://heimdall:4457/.well-known/jwks"
	defaultAudience = "scheduling-service"
	defaultIssuer   = "heimdall"

	jwksCacheTTL = 5 * time.Minute
)

// IJWTAuth parses a bearer token into the principal it was issued for.
type IJWTAuth interface {
	ParsePrincipal(ctx context.Context, bearerToken string, logger *slog.Logger) (string, error)
}

// JWTAuthConfig configures the JWT validator.
type JWTAuthConfig struct {
	// JWKSURL is the URL of the JWKS endpoint of the token issuer.
	JWKSURL string
	// Audience is the expected audience claim.
	Audience string
	// Issuer is the expected issuer claim.
	Issuer string
	// MockLocalPrincipal, when set, bypasses validation and returns the
	// given principal. Only for local development.
	MockLocalPrincipal string
}

// HeimdallClaims are the custom claims the gateway puts into the token.
type HeimdallClaims struct {
	Principal string `json:"principal"`
	Email     string `json:"email,omitempty"`
}

// Validate checks that the claims carry a principal.
func (c *HeimdallClaims) Validate(_ context.Context) error {
	if c.Principal == "" {
		return errors.New("principal must be provided")
	}
	return nil
}

// JWTAuth is the JWKS-backed implementation of IJWTAuth.
type JWTAuth struct {
	config    JWTAuthConfig
	validator *validator.Validator
}

var _ IJWTAuth = (*JWTAuth)(nil)

// NewJWTAuth creates a new JWTAuth from the given configuration.
func NewJWTAuth(config JWTAuthConfig) (*JWTAuth, error) {
	if config.JWKSURL == "" {
		config.JWKSURL = defaultJWKSURL
	}
	if config.Audience == "" {
		config.Audience = defaultAudience
	}
	if config.Issuer == "" {
		config.Issuer = defaultIssuer
	}

	jwksURL, err := url.Parse(config.JWKSURL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWKS URL %q: %w", config.JWKSURL, err)
	}

	issuerURL, err := url.Parse(config.Issuer)
	if err != nil {
		return nil, fmt.Errorf("invalid issuer %q: %w", config.Issuer, err)
	}

	provider := jwks.NewCachingProvider(issuerURL, jwksCacheTTL, jwks.WithCustomJWKSURI(jwksURL))

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		config.Issuer,
		[]string{config.Audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &HeimdallClaims{}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up JWT validator: %w", err)
	}

	return &JWTAuth{
		config:    config,
		validator: jwtValidator,
	}, nil
}

// ParsePrincipal validates the bearer token and returns the principal claim.
func (a *JWTAuth) ParsePrincipal(ctx context.Context, bearerToken string, logger *slog.Logger) (string, error) {
	if a.config.MockLocalPrincipal != "" {
		logger.WarnContext(ctx, "using mock local principal; do not use in production",
			"principal", a.config.MockLocalPrincipal)
		return a.config.MockLocalPrincipal, nil
	}

	token := strings.TrimSpace(bearerToken)
	token = strings.TrimPrefix(token, "Bearer ")
	token = strings.TrimPrefix(token, "bearer ")
	if token == "" {
		return "", errors.New("missing bearer token")
	}

	parsed, err := a.validator.ValidateToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("token validation failed: %w", err)
	}

	claims, ok := parsed.(*validator.ValidatedClaims)
	if !ok {
		return "", errors.New("unexpected claims type")
	}

	custom, ok := claims.CustomClaims.(*HeimdallClaims)
	if !ok || custom.Principal == "" {
		return "", errors.New("token carries no principal")
	}

	return custom.Principal, nil
}

// MockJWTAuth is a test double for IJWTAuth.
type MockJWTAuth struct {
	Principal string
	Err       error
}

var _ IJWTAuth = (*MockJWTAuth)(nil)

// ParsePrincipal returns the configured principal or error.
func (m *MockJWTAuth) ParsePrincipal(_ context.Context, _ string, _ *slog.Logger) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Principal, nil
}
