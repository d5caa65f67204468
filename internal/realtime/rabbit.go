package realtime

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// RabbitMQのtopic exchangeで変更通知を配る実装。
// routing keyは「<table>.<event>」。
type RabbitFeed struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewRabbitFeed(url, exchange string) (*RabbitFeed, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &RabbitFeed{conn: conn, ch: ch, exchange: exchange}, nil
}

func (f *RabbitFeed) Close() {
	if f.ch != nil {
		_ = f.ch.Close()
	}
	if f.conn != nil {
		_ = f.conn.Close()
	}
}

func (f *RabbitFeed) Publish(ctx context.Context, c Change) error {
	body, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return f.ch.PublishWithContext(ctx, f.exchange, c.Table+"."+string(c.Event), false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

func (f *RabbitFeed) Subscribe(channel string, tables []string, h Handler) (*Subscription, error) {
	//購読ごとに専用チャネル。解除＝チャネルを閉じるだけで済む。
	ch, err := f.conn.Channel()
	if err != nil {
		return nil, err
	}

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	for _, table := range tables {
		if err := ch.QueueBind(q.Name, table+".*", f.exchange, false, nil); err != nil {
			_ = ch.Close()
			return nil, err
		}
	}

	tag := channel + "-" + uuid.NewString()
	msgs, err := ch.Consume(q.Name, tag, true, true, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}

	go func() {
		for d := range msgs {
			var c Change
			if err := json.Unmarshal(d.Body, &c); err != nil {
				log.Warn().Err(err).Str("channel", channel).Msg("realtime: bad change payload")
				continue
			}
			h(c)
		}
		log.Debug().Str("channel", channel).Msg("realtime: consumer stopped")
	}()

	return newSubscription(func() {
		_ = ch.Close()
	}), nil
}
