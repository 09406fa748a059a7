// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

// Package main is the scheduling service API: a RESTful API for managing
// meetings with Google Calendar synchronization and Meet conferencing.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/relaycrm/scheduling-service/internal/api"
	"github.com/relaycrm/scheduling-service/internal/infrastructure/google"
	"github.com/relaycrm/scheduling-service/internal/infrastructure/messaging"
	"github.com/relaycrm/scheduling-service/internal/logging"
	"github.com/relaycrm/scheduling-service/internal/service"
)

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	jwtAuth, err := setupJWTAuth()
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up JWT authentication")
		os.Exit(1)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	natsConn, err := setupNATS(env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	repos, err := getKeyValueStores(ctx, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error getting key-value stores")
		return
	}

	// Google Calendar integration
	oauthConfig := google.NewOAuthConfig(env.Google.ClientID, env.Google.ClientSecret, env.Google.RedirectURL)
	tokenManager := google.NewTokenManager(oauthConfig, repos.Credential)
	provisioner := google.NewProvisioner(tokenManager)

	// Services
	serviceConfig := service.ServiceConfig{
		NotificationWorkers: env.NotificationWorkers,
	}
	notificationPublisher := messaging.NewNotificationPublisher(natsConn)
	meetingService := service.NewMeetingService(
		repos.Meeting,
		repos.Participant,
		repos.Notification,
		notificationPublisher,
		provisioner,
		service.NewDateTimeResolver(),
		service.NewParticipantReconciler(repos.User),
		serviceConfig,
	)
	calendarService := service.NewCalendarService(tokenManager)

	app := api.NewServer(jwtAuth, meetingService, calendarService)

	bind := flags.Bind
	if bind == "*" {
		bind = ""
	}
	addr := bind + ":" + flags.Port

	gracefulCloseWG.Add(1)
	go func() {
		defer gracefulCloseWG.Done()
		slog.With("addr", addr).Info("scheduling service listening")
		if err := app.Listen(addr); err != nil {
			slog.With(logging.ErrKey, err).Error("HTTP server stopped")
			done <- os.Interrupt
		}
	}()

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	slog.Info("shutting down")
	if err := app.ShutdownWithTimeout(25 * time.Second); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down HTTP server")
	}
	if err := natsConn.Drain(); err != nil {
		slog.With(logging.ErrKey, err).Error("error draining NATS connection")
	}
	cancel()
	gracefulCloseWG.Wait()
}
