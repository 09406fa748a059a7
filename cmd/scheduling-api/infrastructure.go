// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/relaycrm/scheduling-service/internal/infrastructure/auth"
	"github.com/relaycrm/scheduling-service/internal/infrastructure/store"
	"github.com/relaycrm/scheduling-service/internal/logging"
)

// setupJWTAuth configures JWT authentication for the service.
func setupJWTAuth() (*auth.JWTAuth, error) {
	jwtAuthConfig := auth.JWTAuthConfig{
		JWKSURL:            os.Getenv("JWKS_URL"),
		Audience:           os.Getenv("JWT_AUDIENCE"),
		Issuer:             os.Getenv("JWT_ISSUER"),
		MockLocalPrincipal: os.Getenv("JWT_AUTH_DISABLED_MOCK_LOCAL_PRINCIPAL"),
	}
	return auth.NewJWTAuth(jwtAuthConfig)
}

// setupNATS connects to the NATS server. The connection participates in
// graceful shutdown: a server-initiated close signals the main goroutine to
// exit.
func setupNATS(env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	gracefulCloseWG.Add(1)
	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.DrainTimeout(25*time.Second),
		nats.ConnectHandler(func(_ *nats.Conn) {
			slog.With("nats_url", env.NatsURL).Info("NATS connection established")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				slog.With(logging.ErrKey, err, "subject", s.Subject, "queue", s.Queue).Error("async NATS error")
			} else {
				slog.With(logging.ErrKey, err).Error("async NATS error outside subscription")
			}
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			slog.Info("NATS connection closed")
			gracefulCloseWG.Done()
			done <- os.Interrupt
		}),
	)
	if err != nil {
		gracefulCloseWG.Done()
		return nil, err
	}
	return natsConn, nil
}

// repositories are the key-value backed stores the services depend on.
type repositories struct {
	Meeting      *store.NatsMeetingRepository
	Participant  *store.NatsParticipantRepository
	Credential   *store.NatsCredentialRepository
	User         *store.NatsUserRepository
	Notification *store.NatsNotificationRepository
}

// getKeyValueStores binds the JetStream KV buckets, creating any that do not
// exist yet.
func getKeyValueStores(ctx context.Context, natsConn *nats.Conn) (*repositories, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, err
	}

	buckets := map[string]jetstream.KeyValue{}
	for _, bucket := range []string{
		store.KVStoreNameMeetings,
		store.KVStoreNameMeetingParticipants,
		store.KVStoreNameCalendarCredentials,
		store.KVStoreNameUsers,
		store.KVStoreNameNotifications,
	} {
		kv, err := js.KeyValue(ctx, bucket)
		if errors.Is(err, jetstream.ErrBucketNotFound) {
			kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: bucket})
		}
		if err != nil {
			return nil, err
		}
		buckets[bucket] = kv
	}

	return &repositories{
		Meeting:      store.NewNatsMeetingRepository(buckets[store.KVStoreNameMeetings]),
		Participant:  store.NewNatsParticipantRepository(buckets[store.KVStoreNameMeetingParticipants]),
		Credential:   store.NewNatsCredentialRepository(buckets[store.KVStoreNameCalendarCredentials]),
		User:         store.NewNatsUserRepository(buckets[store.KVStoreNameUsers]),
		Notification: store.NewNatsNotificationRepository(buckets[store.KVStoreNameNotifications]),
	}, nil
}
