package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/event-ticketing/internal/queue"
)

// Publisher emits domain events after a change has been persisted.
// Publishing is best effort: services log a failure and carry on.
type Publisher interface {
	Publish(ctx context.Context, ev queue.TicketingEvent) error
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.TicketingEvent) error { return nil }

// AMQPPublisher publishes events to the durable ticketing queue.  It dials a
// fresh connection per event; traffic is a handful of events per request.
type AMQPPublisher struct {
	url    string
	logger *log.Logger
}

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url string, logger *log.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, logger: logger}
}

// Publish declares the queue (idempotent) and sends ev as a persistent JSON
// message on the default exchange.  Errors are logged and returned.
func (p *AMQPPublisher) Publish(ctx context.Context, ev queue.TicketingEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Warnf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warnf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queue.QueueName, // name
		true,            // durable
		false,           // autoDelete
		false,           // exclusive
		false,           // noWait
		nil,             // args
	); err != nil {
		p.logger.Warnf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		p.logger.Warnf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.QueueName, false, false, pub); err != nil {
		p.logger.Warnf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

// publish stamps ev and hands it to p, logging rather than returning a
// failure.
func publish(ctx context.Context, p Publisher, logger *log.Logger, ev queue.TicketingEvent) {
	if p == nil {
		return
	}
	if ev.OccurredAt == "" {
		ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	}
	if err := p.Publish(ctx, ev); err != nil {
		logger.Warnf("event %s not published: %v", ev.Type, err)
	}
}
