package realtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryFeed_PublishReachesMatchingTables(t *testing.T) {
	f := NewMemoryFeed()

	var got []Change
	_, err := f.Subscribe("orders", []string{"orders"}, func(c Change) {
		got = append(got, c)
	})
	assert.NoError(t, err)

	assert.NoError(t, f.Publish(context.Background(), Change{Table: "orders", Event: EventInsert, RowID: "o1"}))
	//購読していないテーブルは届かない
	assert.NoError(t, f.Publish(context.Background(), Change{Table: "cart_items", Event: EventUpdate}))

	if assert.Len(t, got, 1) {
		assert.Equal(t, "o1", got[0].RowID)
	}
}

func TestMemoryFeed_MultipleTables(t *testing.T) {
	f := NewMemoryFeed()

	count := 0
	_, err := f.Subscribe("orders", []string{"orders", "order_status_events"}, func(Change) {
		count++
	})
	assert.NoError(t, err)

	assert.NoError(t, f.Publish(context.Background(), Change{Table: "orders", Event: EventInsert}))
	assert.NoError(t, f.Publish(context.Background(), Change{Table: "order_status_events", Event: EventInsert}))

	assert.Equal(t, 2, count)
}

func TestSubscription_UnsubscribeStopsDelivery(t *testing.T) {
	f := NewMemoryFeed()

	count := 0
	sub, err := f.Subscribe("orders", []string{"orders"}, func(Change) {
		count++
	})
	assert.NoError(t, err)

	assert.NoError(t, f.Publish(context.Background(), Change{Table: "orders", Event: EventInsert}))
	sub.Unsubscribe()
	assert.NoError(t, f.Publish(context.Background(), Change{Table: "orders", Event: EventInsert}))

	assert.Equal(t, 1, count)
}

func TestSubscription_UnsubscribeIdempotent(t *testing.T) {
	f := NewMemoryFeed()

	sub, err := f.Subscribe("orders", []string{"orders"}, func(Change) {})
	assert.NoError(t, err)

	//何回呼んでも落ちない
	sub.Unsubscribe()
	sub.Unsubscribe()
	sub.Unsubscribe()

	//nilでも安全
	var nilSub *Subscription
	nilSub.Unsubscribe()
}
