// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

// Package service holds the scheduling domain logic: timestamp resolution,
// roster reconciliation and the meeting lifecycle coordinator that ties the
// row store, the external calendar and the notification fan-out together.
package service

// ServiceConfig is the configuration for the scheduling services.
type ServiceConfig struct {
	// NotificationWorkers bounds the concurrent notification sends per
	// request.
	NotificationWorkers int
}
