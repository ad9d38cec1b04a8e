package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutorwise/signal-analytics/internal/dto"
	"github.com/tutorwise/signal-analytics/internal/queue"
)

// MockAPI is a mock implementation of the SQS SDK surface
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) SendMessage(ctx context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.SendMessageOutput), args.Error(1)
}

func (m *MockAPI) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.ReceiveMessageOutput), args.Error(1)
}

func (m *MockAPI) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.DeleteMessageOutput), args.Error(1)
}

func testEvent() *dto.PublishEventRequest {
	return &dto.PublishEventRequest{
		SignalID:        "session_abc",
		EventType:       "save",
		TargetType:      "article",
		TargetID:        "gcse-maths",
		SourceComponent: "blog",
		OccurredAt:      "2026-03-01T10:15:00Z",
	}
}

func TestClient_PublishEvent_StandardQueue(t *testing.T) {
	mockAPI := new(MockAPI)
	client := newClient(mockAPI, "http://localhost:9324/000000000000/signal-events", zap.NewNop())

	var sent *sqs.SendMessageInput
	mockAPI.On("SendMessage", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*sqs.SendMessageInput) }).
		Return(&sqs.SendMessageOutput{}, nil)

	err := client.PublishEvent(context.Background(), testEvent(), "evt-1")

	require.NoError(t, err)
	require.NotNil(t, sent)
	assert.Nil(t, sent.MessageGroupId)
	assert.Nil(t, sent.MessageDeduplicationId)
	assert.Equal(t, "save", aws.ToString(sent.MessageAttributes["EventType"].StringValue))
	assert.Equal(t, "article", aws.ToString(sent.MessageAttributes["TargetType"].StringValue))

	var body queue.SignalMessage
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(sent.MessageBody)), &body))
	assert.Equal(t, "evt-1", body.EventID)
	assert.Equal(t, "session_abc", body.SignalID)
	assert.Equal(t, "2026-03-01T10:15:00Z", body.OccurredAt)
}

func TestClient_PublishEvent_FIFOGroupsBySignal(t *testing.T) {
	mockAPI := new(MockAPI)
	client := newClient(mockAPI, "https://sqs.eu-west-2.amazonaws.com/123/signal-events.fifo", zap.NewNop())

	mockAPI.On("SendMessage", mock.Anything, mock.MatchedBy(func(in *sqs.SendMessageInput) bool {
		return aws.ToString(in.MessageGroupId) == "session_abc" &&
			aws.ToString(in.MessageDeduplicationId) == "evt-1"
	})).Return(&sqs.SendMessageOutput{}, nil).Once()

	require.NoError(t, client.PublishEvent(context.Background(), testEvent(), "evt-1"))
	mockAPI.AssertExpectations(t)
}

func TestClient_PublishEvent_FIFOWithoutSignal(t *testing.T) {
	mockAPI := new(MockAPI)
	client := newClient(mockAPI, "https://sqs.eu-west-2.amazonaws.com/123/signal-events.fifo", zap.NewNop())

	event := testEvent()
	event.SignalID = ""

	mockAPI.On("SendMessage", mock.Anything, mock.MatchedBy(func(in *sqs.SendMessageInput) bool {
		return aws.ToString(in.MessageGroupId) == unattributedGroup
	})).Return(&sqs.SendMessageOutput{}, nil).Once()

	require.NoError(t, client.PublishEvent(context.Background(), event, "evt-2"))
	mockAPI.AssertExpectations(t)
}

func TestClient_PublishEvent_SendError(t *testing.T) {
	mockAPI := new(MockAPI)
	client := newClient(mockAPI, "http://localhost:9324/000000000000/signal-events", zap.NewNop())

	sendErr := errors.New("AWS.SimpleQueueService.NonExistentQueue")
	mockAPI.On("SendMessage", mock.Anything, mock.Anything).Return(nil, sendErr)

	err := client.PublishEvent(context.Background(), testEvent(), "evt-1")

	assert.ErrorIs(t, err, sendErr)
	assert.Contains(t, err.Error(), "failed to send message to SQS")
}

func TestClient_QueueURL(t *testing.T) {
	client := newClient(new(MockAPI), "https://sqs.eu-west-2.amazonaws.com/123/signal-events.fifo", zap.NewNop())

	assert.Equal(t, "https://sqs.eu-west-2.amazonaws.com/123/signal-events.fifo", client.QueueURL())
	assert.True(t, client.fifo)
}
