package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBroker struct {
	bodies       [][]byte
	contentTypes []string
	err          error
}

func (f *fakeBroker) PublishWithRetry(_ context.Context, body []byte, contentType string) error {
	if f.err != nil {
		return f.err
	}
	f.bodies = append(f.bodies, body)
	f.contentTypes = append(f.contentTypes, contentType)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublish(t *testing.T) {
	broker := &fakeBroker{}
	publisher := NewPublisher(broker, discardLogger())

	err := publisher.Publish(context.Background(), Event{
		Kind:         EventRequestAccepted,
		PostID:       "post-1",
		RequestID:    "req-1",
		JobID:        "job-1",
		ActorID:      "contractor-1",
		TargetUserID: "sub-1",
	})
	require.NoError(t, err)

	require.Len(t, broker.bodies, 1)
	assert.Equal(t, "application/json", broker.contentTypes[0])

	var decoded Event
	require.NoError(t, json.Unmarshal(broker.bodies[0], &decoded))
	assert.Equal(t, EventRequestAccepted, decoded.Kind)
	assert.Equal(t, "sub-1", decoded.TargetUserID)
	// OccurredAt is stamped when the caller leaves it zero.
	assert.False(t, decoded.OccurredAt.IsZero())
}

func TestPublish_BrokerFailure(t *testing.T) {
	broker := &fakeBroker{err: assert.AnError}
	publisher := NewPublisher(broker, discardLogger())

	err := publisher.Publish(context.Background(), Event{Kind: EventJobCancelled})
	require.Error(t, err)
	assert.Contains(t, err.Error(), EventJobCancelled)
}
