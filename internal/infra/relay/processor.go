package relay

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/rabbitmq/amqp091-go"
)

type ParserFunc[T any] func([]byte) (*T, error)
type HandlerFunc[T any] func(context.Context, *T)

// Processor consumes one queue and hands each parsed message to a handler.
// Unparseable messages are rejected without requeue.
type Processor[T any] struct {
	parser  ParserFunc[T]
	handler HandlerFunc[T]
}

// NewProcessor creates a processor from a parser and a handler.
func NewProcessor[T any](parser ParserFunc[T], handler HandlerFunc[T]) Processor[T] {
	return Processor[T]{parser: parser, handler: handler}
}

// JSONParser is the default parser for relay messages.
func JSONParser[T any](body []byte) (*T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Consume binds a queue to the exchange for one routing key and processes
// deliveries until ctx is cancelled.
func (p *Processor[T]) Consume(ctx context.Context, ch *amqp091.Channel, exchange, queue, rk string) error {
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return err
	}
	if err := ch.QueueBind(q.Name, rk, exchange, false, nil); err != nil {
		return err
	}

	deliveries, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-deliveries:
				if !ok {
					slog.Warn("relay delivery channel closed", slog.String("queue", queue))
					return
				}
				p.processMessage(ctx, msg)
			}
		}
	}()
	return nil
}

func (p *Processor[T]) processMessage(ctx context.Context, msg amqp091.Delivery) {
	body, err := p.parser(msg.Body)
	if err != nil {
		msg.Nack(false, false)
		return
	}

	msg.Ack(false)
	p.handler(ctx, body)
}
