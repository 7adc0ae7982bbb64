package queue

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/sksmith/bunnyq"
	"github.com/sksmith/fulfilment/core/catalog"
	"github.com/streadway/amqp"
)

type StreamFunc func(ctx context.Context, queue string, handler func(delivery amqp.Delivery))

func BunnyStreamer(bq *bunnyq.BunnyQ) StreamFunc {
	return func(ctx context.Context, queue string, handler func(delivery amqp.Delivery)) {
		bq.Stream(ctx, queue, handler, bunnyq.StreamOpAutoAck)
	}
}

type CatalogHandler interface {
	HandleEvent(ctx context.Context, event catalog.Event) error
}

// CatalogQueue keeps the local store and product replica up to date.
// Messages that cannot be read or applied are written to the dead letter
// exchange.
type CatalogQueue struct {
	stream      StreamFunc
	publish     PublishFunc
	queue       string
	dltExchange string
}

func NewCatalogQueue(stream StreamFunc, publish PublishFunc, queue, dltExchange string) *CatalogQueue {
	return &CatalogQueue{stream: stream, publish: publish, queue: queue, dltExchange: dltExchange}
}

func (c *CatalogQueue) Consume(ctx context.Context, handler CatalogHandler) {
	log.Info().Str("queue", c.queue).Msg("consuming catalog updates")
	c.stream(ctx, c.queue, func(delivery amqp.Delivery) {
		c.Handle(ctx, handler, delivery)
	})
}

func (c *CatalogQueue) Handle(ctx context.Context, handler CatalogHandler, delivery amqp.Delivery) {
	event := catalog.Event{}
	if err := json.Unmarshal(delivery.Body, &event); err != nil {
		log.Error().Err(err).Msg("error unmarshalling catalog event, writing to dlt")
		c.sendToDlt(ctx, delivery.Body)
		return
	}

	if err := handler.HandleEvent(ctx, event); err != nil {
		log.Error().
			Err(err).
			Str("type", string(event.Type)).
			Int64("id", event.ID).
			Msg("error handling catalog event, writing to dlt")
		c.sendToDlt(ctx, delivery.Body)
	}
}

func (c *CatalogQueue) sendToDlt(ctx context.Context, data []byte) {
	if err := c.publish(ctx, c.dltExchange, data); err != nil {
		log.Error().Err(err).Msg("error writing to dlt")
	}
}
