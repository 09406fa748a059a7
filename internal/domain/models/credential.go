// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// Credential is the stored OAuth token pair for one user's connection to the
// external calendar provider. Absence of a credential means "not connected";
// credentials are never deleted automatically.
type Credential struct {
	UserUID      string     `json:"user_uid"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	Expiry       time.Time  `json:"expiry"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// ExpiresWithin reports whether the access token expires within d of now.
func (c *Credential) ExpiresWithin(now time.Time, d time.Duration) bool {
	return c.Expiry.Sub(now) < d
}
