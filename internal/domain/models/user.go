// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package models

// User is the read-only projection of a CRM user that the scheduling service
// needs: enough to resolve attendee emails and display names.
type User struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}
