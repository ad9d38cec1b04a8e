package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorwise/signal-analytics/internal/dto"
)

func TestNewSignalMessage_OmitsEmptyOptionalFields(t *testing.T) {
	req := &dto.PublishEventRequest{
		EventType:  "view",
		TargetType: "article",
		TargetID:   "gcse-maths",
		OccurredAt: "not-a-time",
	}

	b, err := json.Marshal(NewSignalMessage(req, "evt-1"))
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(b, &body))

	assert.Equal(t, "evt-1", body["event_id"])
	assert.Equal(t, "not-a-time", body["occurred_at"])
	assert.NotContains(t, body, "signal_id")
	assert.NotContains(t, body, "distribution_id")
}
