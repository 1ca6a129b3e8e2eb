package rabbitmq

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"

	"gerador/internal/logger"
)

var customLog = logger.NewLogger()

// Event types published on the exchange. They double as routing keys.
const (
	EventFormCreated       = "form.created"
	EventFormUpdated       = "form.updated"
	EventFormDeleted       = "form.deleted"
	EventResponseSubmitted = "response.submitted"
)

// NotificationQueue receives submitted-response events for owner notifications.
const NotificationQueue = "form_notifications"

// Event is the JSON body of every message published by the API.
type Event struct {
	ID                string    `json:"id"`
	Type              string    `json:"type"`
	FormID            uint      `json:"form_id"`
	ResponseID        uint      `json:"response_id,omitempty"`
	OwnerID           uint      `json:"owner_id"`
	NotificationEmail *string   `json:"notification_email,omitempty"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// NewEvent stamps a new event with a fresh id and the current time.
func NewEvent(eventType string, formID, ownerID uint) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		FormID:     formID,
		OwnerID:    ownerID,
		OccurredAt: time.Now().UTC(),
	}
}

// DecodeEvent parses a message body published by Publish.
func DecodeEvent(body []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	if event.Type == "" {
		return Event{}, fmt.Errorf("event %q has no type", event.ID)
	}
	return event, nil
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	mu       sync.Mutex // amqp.Channel is not safe for concurrent publishing
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL      string
	Exchange string
}

// NewClient connects to RabbitMQ, declares the topic exchange and binds the
// notification queue to submitted-response events.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch, cfg.Exchange); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	customLog.Infof("RabbitMQ client connected, exchange %q declared", cfg.Exchange)

	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
	}, nil
}

func declareTopology(ch *amqp.Channel, exchange string) error {
	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	if _, err := ch.QueueDeclare(
		NotificationQueue, // name
		true,              // durable
		false,             // delete when unused
		false,             // exclusive
		false,             // no-wait
		nil,               // arguments
	); err != nil {
		return fmt.Errorf("failed to declare %s: %w", NotificationQueue, err)
	}

	if err := ch.QueueBind(NotificationQueue, EventResponseSubmitted, exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind %s: %w", NotificationQueue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Publish sends event to the exchange using its type as routing key.
func (c *Client) Publish(event Event) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event to JSON: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err = c.channel.Publish(
		c.exchange, // exchange
		event.Type, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    event.ID,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	customLog.Debugf("Sent %s event %s for form %d", event.Type, event.ID, event.FormID)
	return nil
}

// ConsumeNotifications starts a goroutine delivering notification events to
// handler. Messages are acked when handler succeeds; undecodable messages are
// dropped and failed ones requeued.
func (c *Client) ConsumeNotifications(handler func(Event) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		NotificationQueue, // queue
		"",                // consumer tag
		false,             // auto-ack
		false,             // exclusive
		false,             // no-local
		false,             // no-wait
		nil,               // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			handleDelivery(msg, handler)
		}
	}()
	return nil
}

func handleDelivery(msg amqp.Delivery, handler func(Event) error) {
	event, err := DecodeEvent(msg.Body)
	if err != nil {
		customLog.Errorf("Dropping message %d: %v", msg.DeliveryTag, err)
		if nackErr := msg.Nack(false, false); nackErr != nil {
			customLog.Errorf("Error nacking message %d: %v", msg.DeliveryTag, nackErr)
		}
		return
	}

	if err := handler(event); err != nil {
		customLog.Errorf("Error processing event %s: %v", event.ID, err)
		if nackErr := msg.Nack(false, true); nackErr != nil {
			customLog.Errorf("Error nacking message %d: %v", msg.DeliveryTag, nackErr)
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		customLog.Errorf("Error acking message %d: %v", msg.DeliveryTag, ackErr)
	}
}

// LogNotification is the default notification handler: it records that the
// owner of a form has a new response to look at.
func LogNotification(event Event) error {
	entry := customLog.WithFields(logrus.Fields{
		"event_id":    event.ID,
		"form_id":     event.FormID,
		"response_id": event.ResponseID,
		"owner_id":    event.OwnerID,
	})
	if event.NotificationEmail != nil {
		entry = entry.WithField("notify", *event.NotificationEmail)
	}
	entry.Info("New form response")
	return nil
}
