package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"example.com/warehouse/services/arrivals/config"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/rs/zerolog/log"
)

// MessageHandler processes one received Service Bus message
type MessageHandler func(ctx context.Context, message *azservicebus.ReceivedMessage) error

// AzureServiceBus wraps the queue that carries delivery-note feeds from the
// SCM system
type AzureServiceBus struct {
	client    *azservicebus.Client
	sender    *azservicebus.Sender
	queueName string
}

// NewAzureServiceBus creates a new Azure Service Bus client for the
// delivery-note queue
func NewAzureServiceBus(cfg config.AzureConfig) (*AzureServiceBus, error) {
	if cfg.QueueConnStr == "" {
		return nil, fmt.Errorf("Azure Service Bus connection string is empty")
	}

	client, err := azservicebus.NewClientFromConnectionString(cfg.QueueConnStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Service Bus client: %w", err)
	}

	sender, err := client.NewSender(cfg.QueueName, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Service Bus sender: %w", err)
	}

	return &AzureServiceBus{
		client:    client,
		sender:    sender,
		queueName: cfg.QueueName,
	}, nil
}

// SendMessage sends a message to the queue
func (s *AzureServiceBus) SendMessage(ctx context.Context, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal message body: %w", err)
	}

	msg := &azservicebus.Message{
		Body: data,
		ApplicationProperties: map[string]interface{}{
			"source": "arrivals",
			"time":   time.Now().UTC().Format(time.RFC3339),
		},
	}

	return s.sender.SendMessage(ctx, msg, nil)
}

// ProcessMessages receives messages from the queue and dispatches them to
// the handler until the context is cancelled. A handler error abandons the
// message so the queue redelivers it.
func (s *AzureServiceBus) ProcessMessages(ctx context.Context, handler MessageHandler) error {
	receiver, err := s.client.NewReceiverForQueue(s.queueName, nil)
	if err != nil {
		return fmt.Errorf("failed to create Service Bus receiver: %w", err)
	}
	defer receiver.Close(context.Background())

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		messages, err := receiver.ReceiveMessages(ctx, 10, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to receive messages: %w", err)
		}

		for _, message := range messages {
			if err := handler(ctx, message); err != nil {
				log.Error().Err(err).Str("message_id", message.MessageID).Msg("Failed to process message, abandoning")
				if abandonErr := receiver.AbandonMessage(ctx, message, nil); abandonErr != nil {
					log.Error().Err(abandonErr).Str("message_id", message.MessageID).Msg("Failed to abandon message")
				}
				continue
			}

			if err := receiver.CompleteMessage(ctx, message, nil); err != nil {
				log.Error().Err(err).Str("message_id", message.MessageID).Msg("Failed to complete message")
			}
		}
	}
}

// Close closes the Service Bus client
func (s *AzureServiceBus) Close() error {
	if s.sender != nil {
		if err := s.sender.Close(context.Background()); err != nil {
			return err
		}
	}

	if s.client != nil {
		return s.client.Close(context.Background())
	}

	return nil
}
