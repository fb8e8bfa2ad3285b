// Package relay exchanges admitted orders, settlements, and sealed chart
// buckets with peer operators over RabbitMQ.
package relay

import (
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Routing key prefixes. The pair ID is appended, e.g. "order.7".
const (
	OrderKeyPrefix      = "order."
	SettlementKeyPrefix = "settlement."
	CandleKeyPrefix     = "candle."
)

// Dial connects to the broker, retrying up to attempts times with delay
// between tries. Brokers commonly come up after the node in containerized
// deployments. Non-positive values fall back to 5 attempts, 2 seconds apart.
func Dial(url string, attempts int, delay time.Duration) (*amqp091.Connection, error) {
	if attempts <= 0 {
		attempts = 5
	}
	if delay <= 0 {
		delay = 2 * time.Second
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			time.Sleep(delay)
		}
		conn, err := amqp091.Dial(url)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("relay connection failed after %d attempts: %w", attempts, lastErr)
}

// DeclareExchange declares the shared topic exchange all operators publish to.
func DeclareExchange(ch *amqp091.Channel, name string) error {
	return ch.ExchangeDeclare(name, "topic", true, false, false, false, nil)
}
