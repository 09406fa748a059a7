// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"os"
	"strconv"

	"github.com/relaycrm/scheduling-service/internal/logging"
)

// flags are the command line flags for the scheduling service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the scheduling service.
type environment struct {
	Port                string
	NatsURL             string
	NotificationWorkers int
	Google              googleConfig
}

// googleConfig holds the Google Calendar OAuth application credentials.
type googleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// parseFlags parses command line flags for the scheduling service.
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the scheduling service.
func parseEnv() environment {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://nats:4222"
	}

	notificationWorkers := 5
	if raw := os.Getenv("NOTIFICATION_WORKERS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			slog.With("value", raw).Warn("invalid NOTIFICATION_WORKERS, using default")
		} else {
			notificationWorkers = parsed
		}
	}

	return environment{
		Port:                port,
		NatsURL:             natsURL,
		NotificationWorkers: notificationWorkers,
		Google: googleConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		},
	}
}
