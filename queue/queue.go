package queue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/bunnyq"
	"github.com/sksmith/fulfilment/core/fulfilment"
	"github.com/sksmith/fulfilment/core/warehouse"
)

const defaultBufferSize = 256

var (
	ErrQueueFull   = errors.New("event queue is full")
	ErrQueueClosed = errors.New("event queue is closed")
)

// PublishFunc sends body to the named exchange.
type PublishFunc func(ctx context.Context, exchange string, body []byte) error

func BunnyPublisher(bq *bunnyq.BunnyQ) PublishFunc {
	return func(ctx context.Context, exchange string, body []byte) error {
		return bq.Publish(ctx, exchange, body)
	}
}

// Envelope wraps every event sent to the broker.
type Envelope struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

type message struct {
	id       string
	exchange string
	body     []byte
}

// EventQueue hands events to a background worker so that callers never wait
// on the broker. Delivery failures are logged and dropped.
type EventQueue struct {
	publish            PublishFunc
	warehouseExchange  string
	fulfilmentExchange string

	mu       sync.RWMutex
	closed   bool
	messages chan message
	wg       sync.WaitGroup
}

func NewEventQueue(publish PublishFunc, warehouseExchange, fulfilmentExchange string, bufferSize int) *EventQueue {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	q := &EventQueue{
		publish:            publish,
		warehouseExchange:  warehouseExchange,
		fulfilmentExchange: fulfilmentExchange,
		messages:           make(chan message, bufferSize),
	}
	q.wg.Add(1)
	go q.run()
	return q
}

func (q *EventQueue) PublishWarehouse(ctx context.Context, event warehouse.Event) error {
	return q.enqueue(q.warehouseExchange, string(event.Type), event)
}

func (q *EventQueue) PublishFulfilment(ctx context.Context, event fulfilment.Event) error {
	return q.enqueue(q.fulfilmentExchange, string(event.Type), event)
}

// Close stops accepting events and waits for queued ones to be sent.
func (q *EventQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.messages)
	q.mu.Unlock()

	q.wg.Wait()
}

func (q *EventQueue) enqueue(exchange, eventType string, payload interface{}) error {
	env := Envelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return errors.WithMessage(err, "failed to serialize message for queue")
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.messages <- message{id: env.ID, exchange: exchange, body: body}:
		return nil
	default:
		return errors.WithMessagef(ErrQueueFull, "dropping %s event %s", eventType, env.ID)
	}
}

func (q *EventQueue) run() {
	defer q.wg.Done()
	for m := range q.messages {
		if err := q.publish(context.Background(), m.exchange, m.body); err != nil {
			log.Error().
				Err(err).
				Str("id", m.id).
				Str("exchange", m.exchange).
				Msg("failed to send event to queue")
			continue
		}
		log.Debug().Str("id", m.id).Str("exchange", m.exchange).Msg("event sent")
	}
}
