// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/relaycrm/scheduling-service/internal/domain/models"
	"github.com/relaycrm/scheduling-service/pkg/constants"
)

type fakeNatsConn struct {
	connected bool
	published map[string][][]byte
	err       error
}

func newFakeNatsConn() *fakeNatsConn {
	return &fakeNatsConn{connected: true, published: map[string][][]byte{}}
}

func (f *fakeNatsConn) IsConnected() bool { return f.connected }

func (f *fakeNatsConn) Publish(subj string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.published[subj] = append(f.published[subj], data)
	return nil
}

func TestSendNotificationPublishesMsgpack(t *testing.T) {
	conn := newFakeNatsConn()
	publisher := NewNotificationPublisher(conn)

	notification := &models.Notification{
		UID:        "notif-1",
		UserUID:    "user-2",
		Message:    `You have been invited to "Quarterly review"`,
		Type:       models.NotificationTypeMeetingInvite,
		RelatedUID: "meeting-1",
	}

	require.NoError(t, publisher.SendNotification(context.Background(), notification))

	payloads := conn.published[constants.NotificationSendSubject]
	require.Len(t, payloads, 1)

	var message models.NotificationMessage
	require.NoError(t, msgpack.Unmarshal(payloads[0], &message))
	assert.Equal(t, "notif-1", message.UID)
	assert.Equal(t, "user-2", message.UserUID)
	assert.Equal(t, string(models.NotificationTypeMeetingInvite), message.Type)
	assert.Equal(t, "meeting-1", message.RelatedUID)
	assert.NotZero(t, message.SentAt)
}

func TestSendNotificationPublishError(t *testing.T) {
	conn := newFakeNatsConn()
	conn.err = errors.New("connection draining")
	publisher := NewNotificationPublisher(conn)

	err := publisher.SendNotification(context.Background(), &models.Notification{UID: "notif-1"})
	require.Error(t, err)
}
