package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	envConfig "github.com/tutorwise/signal-analytics/internal/config"
	"github.com/tutorwise/signal-analytics/internal/dto"
	"github.com/tutorwise/signal-analytics/internal/queue"
)

// unattributedGroup orders events that carry no signal id on a FIFO queue
const unattributedGroup = "unattributed"

// api is the part of the SQS SDK client the service uses
type api interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Client publishes signal events to SQS and receives them for the consumer.
// On a FIFO queue messages are grouped per signal so one journey is
// delivered in publish order, and the event id doubles as the SQS
// de-duplication id.
type Client struct {
	api      api
	queueURL string
	fifo     bool
	log      *zap.Logger
}

// NewClient creates a new SQS client. A non-empty Endpoint targets a local
// ElasticMQ with static credentials.
func NewClient(ctx context.Context, sqsConfig envConfig.SQS, log *zap.Logger) (*Client, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(sqsConfig.Region),
	}

	var clientOpts []func(*sqs.Options)
	if sqsConfig.Endpoint != "" {
		log.Info("Using local SQS endpoint", zap.String("endpoint", sqsConfig.Endpoint))
		loadOpts = append(loadOpts,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")))
		clientOpts = append(clientOpts, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(sqsConfig.Endpoint)
		})
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	c := newClient(sqs.NewFromConfig(awsCfg, clientOpts...), sqsConfig.QueueURL, log)

	log.Info("SQS client created",
		zap.String("region", sqsConfig.Region),
		zap.String("queue_url", c.queueURL),
		zap.Bool("fifo", c.fifo))

	return c, nil
}

func newClient(a api, queueURL string, log *zap.Logger) *Client {
	return &Client{
		api:      a,
		queueURL: queueURL,
		fifo:     strings.HasSuffix(queueURL, ".fifo"),
		log:      log,
	}
}

// ReceiveMessages receives messages from SQS
func (c *Client) ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error) {
	return c.api.ReceiveMessage(ctx, input)
}

// DeleteMessage deletes a message from SQS
func (c *Client) DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error) {
	return c.api.DeleteMessage(ctx, input)
}

// QueueURL returns the configured queue URL
func (c *Client) QueueURL() string {
	return c.queueURL
}

// PublishEvent publishes one accepted signal event
func (c *Client) PublishEvent(ctx context.Context, event *dto.PublishEventRequest, eventID string) error {
	input, err := c.sendInput(queue.NewSignalMessage(event, eventID))
	if err != nil {
		return err
	}

	if _, err := c.api.SendMessage(ctx, input); err != nil {
		c.log.Error("Failed to send signal event to SQS",
			zap.String("event_id", eventID),
			zap.String("signal_id", event.SignalID),
			zap.Error(err))
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	c.log.Debug("Signal event published",
		zap.String("event_id", eventID),
		zap.String("event_type", event.EventType))

	return nil
}

func (c *Client) sendInput(msg queue.SignalMessage) (*sqs.SendMessageInput, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal signal message: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(c.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"EventType":  stringAttribute(msg.EventType),
			"TargetType": stringAttribute(msg.TargetType),
		},
	}

	if c.fifo {
		group := msg.SignalID
		if group == "" {
			group = unattributedGroup
		}
		input.MessageGroupId = aws.String(group)
		input.MessageDeduplicationId = aws.String(msg.EventID)
	}

	return input, nil
}

func stringAttribute(v string) types.MessageAttributeValue {
	return types.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(v),
	}
}
