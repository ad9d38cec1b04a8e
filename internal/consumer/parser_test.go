package consumer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONEventParser_Parse_Success(t *testing.T) {
	received := time.Date(2026, 3, 1, 10, 16, 0, 0, time.UTC)
	parser := NewJSONEventParser()
	parser.now = func() time.Time { return received }

	body := []byte(`{"event_id":"evt-1","signal_id":"dist_campaign_42","event_type":"view","target_type":"article","target_id":"gcse-maths","source_component":"blog","distribution_id":"campaign_42","occurred_at":"2026-03-01T10:15:00Z"}`)

	event, err := parser.Parse(body)
	require.NoError(t, err)

	assert.Equal(t, "evt-1", event.EventID)
	require.NotNil(t, event.SignalID)
	assert.Equal(t, "dist_campaign_42", *event.SignalID)
	require.NotNil(t, event.DistributionID)
	assert.Equal(t, "campaign_42", *event.DistributionID)
	assert.Equal(t, "view", event.EventType)
	assert.Equal(t, "2026-03-01T10:15:00Z", event.OccurredAt)
	assert.Equal(t, received, event.ReceivedAt)
	assert.Equal(t, uint64(received.UnixNano()), event.Version)
}

func TestJSONEventParser_Parse_KeepsInvalidFieldsForReconstruction(t *testing.T) {
	parser := NewJSONEventParser()

	event, err := parser.Parse([]byte(`{"event_id":"evt-2","event_type":"scroll","target_type":"article","target_id":"a1","occurred_at":"last tuesday"}`))
	require.NoError(t, err)

	assert.Nil(t, event.SignalID)
	assert.Nil(t, event.DistributionID)
	assert.Equal(t, "scroll", event.EventType)
	assert.Equal(t, "last tuesday", event.OccurredAt)
}

func TestJSONEventParser_Parse_MissingEventID(t *testing.T) {
	parser := NewJSONEventParser()

	event, err := parser.Parse([]byte(`{"signal_id":"session_a","event_type":"view"}`))

	assert.Nil(t, event)
	assert.ErrorIs(t, err, ErrMissingEventID)
}

func TestJSONEventParser_Parse_InvalidJSON(t *testing.T) {
	parser := NewJSONEventParser()

	event, err := parser.Parse([]byte(`{invalid}`))

	assert.Nil(t, event)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal message body")
}
