package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "bazaar_alerts"
	ExchangeType = "topic"
)

// AMQPPublisher fans low-stock alerts out to a topic exchange; delivery
// workers route on the seller id.
type AMQPPublisher struct {
	ch *amqp.Channel
}

func NewAMQPPublisher(ch *amqp.Channel) *AMQPPublisher { return &AMQPPublisher{ch: ch} }

func (p *AMQPPublisher) PublishLowStock(ctx context.Context, alert LowStockAlert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("could not marshal alert: %w", err)
	}

	// Routing key: stock.low.<sellerId>
	routingKey := fmt.Sprintf("stock.low.%s", alert.SellerID)

	return p.ch.PublishWithContext(ctx,
		ExchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// SetupConn dials the broker and declares the alert exchange.
func SetupConn(url string) (*amqp.Connection, *amqp.Channel, error) {
	var conn *amqp.Connection
	var err error

	// Simple retry for broker startup ordering
	for i := 0; i < 5; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		log.Printf("failed to connect to RabbitMQ (attempt %d): %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("could not open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		ExchangeName,
		ExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, nil, fmt.Errorf("could not declare exchange: %w", err)
	}

	return conn, ch, nil
}

// LogPublisher is the fallback when no broker is configured; alerts land in
// the application log only.
type LogPublisher struct{}

func (LogPublisher) PublishLowStock(_ context.Context, alert LowStockAlert) error {
	log.Printf("[alert] low stock: %s has only %d pieces left", alert.Name, alert.Quantity)
	return nil
}
