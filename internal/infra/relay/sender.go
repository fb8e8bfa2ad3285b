package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"github.com/CryptoBia/Infinex/internal/domain"
)

// Sender publishes admitted records to the shared topic exchange. It
// implements domain.Relay.
type Sender struct {
	channel  *amqp091.Channel
	exchange string
}

// NewSender wraps a channel for publishing. The channel is closed when ctx
// is cancelled.
func NewSender(ctx context.Context, channel *amqp091.Channel, exchange string) *Sender {
	s := &Sender{channel: channel, exchange: exchange}
	go s.handleGraceful(ctx)
	return s
}

func (s *Sender) publish(rk string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return s.channel.PublishWithContext(context.Background(), s.exchange, rk, false, false,
		amqp091.Publishing{
			ContentType: "application/json",
			MessageId:   uuid.NewString(),
			Timestamp:   time.Now(),
			Body:        body,
		})
}

// BroadcastOrder publishes an admitted order to peers.
func (s *Sender) BroadcastOrder(o *domain.Order) {
	rk := fmt.Sprintf("%s%d", OrderKeyPrefix, o.PairID)
	if err := s.publish(rk, o); err != nil {
		slog.Error("failed to broadcast order",
			slog.Int64("order_id", o.OrderID), slog.Any("error", err))
	}
}

// BroadcastSettlement publishes a generated settlement to peers.
func (s *Sender) BroadcastSettlement(rec *domain.Settlement) {
	rk := fmt.Sprintf("%s%d", SettlementKeyPrefix, rec.PairID)
	if err := s.publish(rk, rec); err != nil {
		slog.Error("failed to broadcast settlement",
			slog.Int64("settlement_id", rec.SettlementID), slog.Any("error", err))
	}
}

// BroadcastCandle publishes a sealed chart bucket to peers.
func (s *Sender) BroadcastCandle(c *domain.Candle) {
	rk := fmt.Sprintf("%s%d", CandleKeyPrefix, c.PairID)
	if err := s.publish(rk, c); err != nil {
		slog.Error("failed to broadcast candle",
			slog.Int64("start_time", c.StartTime), slog.Any("error", err))
	}
}

func (s *Sender) handleGraceful(ctx context.Context) {
	<-ctx.Done()
	s.channel.Close()
}
