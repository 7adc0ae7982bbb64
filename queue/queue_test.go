package queue_test

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/sksmith/fulfilment/core/catalog"
	"github.com/sksmith/fulfilment/core/fulfilment"
	"github.com/sksmith/fulfilment/core/warehouse"
	"github.com/sksmith/fulfilment/queue"
	"github.com/sksmith/fulfilment/test"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	test.ConfigLogging()
	os.Exit(m.Run())
}

type sent struct {
	exchange string
	body     []byte
}

type recorder struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (r *recorder) publish(_ context.Context, exchange string, body []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{exchange: exchange, body: body})
	return r.err
}

func TestEventQueueRoutesByExchange(t *testing.T) {
	rec := &recorder{}
	q := queue.NewEventQueue(rec.publish, "wh.exchange", "ful.exchange", 4)

	require.NoError(t, q.PublishWarehouse(context.Background(), warehouse.Event{
		Type:      warehouse.Created,
		Warehouse: warehouse.Warehouse{ID: 1, BusinessUnitCode: "W1"},
	}))
	require.NoError(t, q.PublishFulfilment(context.Background(), fulfilment.Event{
		Type:       fulfilment.Assigned,
		Assignment: fulfilment.Assignment{ID: 2, StoreID: 1, ProductID: 1, WarehouseID: 1},
	}))
	q.Close()

	require.Len(t, rec.sent, 2)
	assert.Equal(t, "wh.exchange", rec.sent[0].exchange)
	assert.Equal(t, "ful.exchange", rec.sent[1].exchange)

	env := struct {
		ID      string          `json:"id"`
		Type    string          `json:"type"`
		Payload warehouse.Event `json:"payload"`
	}{}
	require.NoError(t, json.Unmarshal(rec.sent[0].body, &env))
	assert.NotEmpty(t, env.ID)
	assert.Equal(t, string(warehouse.Created), env.Type)
	assert.Equal(t, "W1", env.Payload.Warehouse.BusinessUnitCode)
}

func TestEventQueueDeliveryFailureIsNotReturned(t *testing.T) {
	rec := &recorder{err: errors.New("broker unavailable")}
	q := queue.NewEventQueue(rec.publish, "wh.exchange", "ful.exchange", 4)

	assert.NoError(t, q.PublishWarehouse(context.Background(), warehouse.Event{Type: warehouse.Archived}))
	q.Close()

	assert.Len(t, rec.sent, 1)
}

func TestEventQueueRejectsAfterClose(t *testing.T) {
	q := queue.NewEventQueue((&recorder{}).publish, "wh.exchange", "ful.exchange", 4)
	q.Close()
	q.Close()

	err := q.PublishFulfilment(context.Background(), fulfilment.Event{Type: fulfilment.Unassigned})
	assert.ErrorIs(t, err, queue.ErrQueueClosed)
}

func TestEventQueueFull(t *testing.T) {
	release := make(chan struct{})
	blocked := func(ctx context.Context, exchange string, body []byte) error {
		<-release
		return nil
	}
	q := queue.NewEventQueue(blocked, "wh.exchange", "ful.exchange", 1)

	var full error
	for i := 0; i < 3 && full == nil; i++ {
		full = q.PublishWarehouse(context.Background(), warehouse.Event{Type: warehouse.Created})
	}
	assert.ErrorIs(t, full, queue.ErrQueueFull)

	close(release)
	q.Close()
}

type handler struct {
	events []catalog.Event
	err    error
}

func (h *handler) HandleEvent(_ context.Context, event catalog.Event) error {
	h.events = append(h.events, event)
	return h.err
}

func TestCatalogQueueHandle(t *testing.T) {
	tests := []struct {
		name string

		body       string
		handlerErr error

		wantHandled int
		wantDlt     int
	}{
		{
			name:        "store update is applied",
			body:        `{"type":"store","id":4,"name":"TONSTAD"}`,
			wantHandled: 1,
		},
		{
			name:    "unreadable message goes to dlt",
			body:    `not json`,
			wantDlt: 1,
		},
		{
			name:        "rejected message goes to dlt",
			body:        `{"type":"shelf","id":4}`,
			handlerErr:  errors.New("unrecognized catalog entity type"),
			wantHandled: 1,
			wantDlt:     1,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := &recorder{}
			h := &handler{err: test.handlerErr}
			c := queue.NewCatalogQueue(nil, rec.publish, "catalog.queue", "catalog.dlt")

			c.Handle(context.Background(), h, amqp.Delivery{Body: []byte(test.body)})

			assert.Len(t, h.events, test.wantHandled)
			assert.Len(t, rec.sent, test.wantDlt)
			for _, s := range rec.sent {
				assert.Equal(t, "catalog.dlt", s.exchange)
				assert.Equal(t, test.body, string(s.body))
			}
		})
	}
}

func TestCatalogQueueConsume(t *testing.T) {
	stream := func(ctx context.Context, q string, fn func(delivery amqp.Delivery)) {
		assert.Equal(t, "catalog.queue", q)
		fn(amqp.Delivery{Body: []byte(`{"type":"product","id":1,"name":"KALLAX"}`)})
		fn(amqp.Delivery{Body: []byte(`{"type":"store","id":2,"name":"TONSTAD"}`)})
	}
	h := &handler{}
	c := queue.NewCatalogQueue(stream, (&recorder{}).publish, "catalog.queue", "catalog.dlt")

	c.Consume(context.Background(), h)

	require.Len(t, h.events, 2)
	assert.Equal(t, catalog.ProductEntity, h.events[0].Type)
	assert.Equal(t, int64(2), h.events[1].ID)
}
