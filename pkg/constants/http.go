// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

// Package constants holds shared header names, context keys and NATS subjects.
package constants

// Constants for the HTTP request headers
const (
	// AuthorizationHeader is the header name for the authorization
	AuthorizationHeader string = "authorization"

	// RequestIDHeader is the header name for the request ID
	RequestIDHeader string = "X-REQUEST-ID"
)

// contextRequestID is the type for the request ID context key
type contextRequestID string

// RequestIDContextID is the context ID for the request ID
const RequestIDContextID contextRequestID = "X-REQUEST-ID"

// contextPrincipal is the type for the authenticated principal context key
type contextPrincipal string

// PrincipalContextID is the context ID for the authenticated principal
const PrincipalContextID contextPrincipal = "principal"
