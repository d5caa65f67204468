package usecase

import (
	"context"
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/realtime"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestTracker(orders *OrderRepoMock, events *StatusEventRepoMock, feed realtime.Feed) *OrderTracker {
	tm := &TxManagerStub{repos: &txReposStub{orders, new(OrderItemRepoMock), events}}
	return NewOrderTracker(orders, events, tm, feed)
}

func anyListFilter() interface{} {
	return mock.AnythingOfType("repository.OrderListFilter")
}

// =====================
// Subscribe / Refresh
// =====================

func TestTracker_Subscribe_RefreshesOnFeedChange(t *testing.T) {
	orders := new(OrderRepoMock)
	events := new(StatusEventRepoMock)
	feed := realtime.NewMemoryFeed()
	tracker := newTestTracker(orders, events, feed)

	orders.On("ListWithDetails", mock.Anything, anyListFilter()).
		Return([]model.Order{{ID: "o1", Status: model.OrderStatusPending}}, int64(1), nil).Once()

	assert.NoError(t, tracker.Subscribe(context.Background()))
	defer tracker.Close()

	assert.Len(t, tracker.Snapshot(), 1)

	//通知が来たら全件取り直してキャッシュを差し替える
	orders.On("ListWithDetails", mock.Anything, anyListFilter()).
		Return([]model.Order{
			{ID: "o1", Status: model.OrderStatusPreparing},
			{ID: "o2", Status: model.OrderStatusPending},
		}, int64(2), nil)

	assert.NoError(t, feed.Publish(context.Background(), realtime.Change{
		Table: "order_status_events",
		Event: realtime.EventInsert,
	}))

	snap := tracker.Snapshot()
	assert.Len(t, snap, 2)
	assert.Equal(t, model.OrderStatusPreparing, snap[0].Status)
}

func TestTracker_Subscribe_Idempotent(t *testing.T) {
	orders := new(OrderRepoMock)
	feed := realtime.NewMemoryFeed()
	tracker := newTestTracker(orders, new(StatusEventRepoMock), feed)

	orders.On("ListWithDetails", mock.Anything, anyListFilter()).
		Return([]model.Order{}, int64(0), nil).Once()

	assert.NoError(t, tracker.Subscribe(context.Background()))
	//2回目は初回ロードをやり直さない
	assert.NoError(t, tracker.Subscribe(context.Background()))

	tracker.Close()
	//Closeも何回呼んでも安全
	tracker.Close()

	orders.AssertExpectations(t)
}

func TestTracker_SnapshotByStatus(t *testing.T) {
	orders := new(OrderRepoMock)
	feed := realtime.NewMemoryFeed()
	tracker := newTestTracker(orders, new(StatusEventRepoMock), feed)

	orders.On("ListWithDetails", mock.Anything, anyListFilter()).
		Return([]model.Order{
			{ID: "o1", Status: model.OrderStatusPending},
			{ID: "o2", Status: model.OrderStatusPreparing},
			{ID: "o3", Status: model.OrderStatusPending},
		}, int64(3), nil)

	assert.NoError(t, tracker.Refresh(context.Background()))

	pending := tracker.SnapshotByStatus(model.OrderStatusPending)
	assert.Len(t, pending, 2)
	assert.Empty(t, tracker.SnapshotByStatus(model.OrderStatusCompleted))
}

// =====================
// UpdateStatus
// =====================

func TestTracker_UpdateStatus_InvalidTransition(t *testing.T) {
	orders := new(OrderRepoMock)
	tracker := newTestTracker(orders, new(StatusEventRepoMock), realtime.NewMemoryFeed())

	//持ち帰り注文はpreparingからcancelledへは行けない
	orders.On("FindByID", mock.Anything, "o1").
		Return(model.Order{ID: "o1", OrderType: model.OrderTypePickup, Status: model.OrderStatusPreparing}, nil)

	_, err := tracker.UpdateStatus(context.Background(), "admin1", "o1", UpdateStatusInput{Status: "cancelled"})
	assertErrContains(t, err, "invalid status transition")
}

func TestTracker_UpdateStatus_UnknownStatus(t *testing.T) {
	tracker := newTestTracker(new(OrderRepoMock), new(StatusEventRepoMock), realtime.NewMemoryFeed())

	_, err := tracker.UpdateStatus(context.Background(), "admin1", "o1", UpdateStatusInput{Status: "shipped"})
	assertErrContains(t, err, "invalid status")
}

func TestTracker_UpdateStatus_SameStatusIsNoop(t *testing.T) {
	orders := new(OrderRepoMock)
	tracker := newTestTracker(orders, new(StatusEventRepoMock), realtime.NewMemoryFeed())

	orders.On("FindByID", mock.Anything, "o1").
		Return(model.Order{ID: "o1", OrderType: model.OrderTypePickup, Status: model.OrderStatusPreparing}, nil)

	out, err := tracker.UpdateStatus(context.Background(), "admin1", "o1", UpdateStatusInput{Status: "preparing"})
	assert.NoError(t, err)
	assert.Equal(t, model.OrderStatusPreparing, out.Status)

	//書き込みは発生しない
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestTracker_UpdateStatus_Success(t *testing.T) {
	orders := new(OrderRepoMock)
	events := new(StatusEventRepoMock)
	feed := realtime.NewMemoryFeed()
	tracker := newTestTracker(orders, events, feed)

	var published []realtime.Change
	_, err := feed.Subscribe("test", []string{"orders"}, func(c realtime.Change) {
		published = append(published, c)
	})
	assert.NoError(t, err)

	orders.On("FindByID", mock.Anything, "o1").
		Return(model.Order{ID: "o1", OrderType: model.OrderTypePickup, Status: model.OrderStatusPreparing}, nil).Once()

	orders.On("UpdateStatus", mock.Anything, "o1", model.OrderStatusReady).Return(nil)

	//noteを省略するとデフォルト文言が入る
	events.On("Append", mock.Anything, mock.MatchedBy(func(e model.OrderStatusEvent) bool {
		return e.OrderID == "o1" &&
			e.Status == model.OrderStatusReady &&
			e.Note == "Status changed to ready" &&
			e.ChangedBy != nil && *e.ChangedBy == "admin1"
	})).Return(nil)

	orders.On("FindByID", mock.Anything, "o1").
		Return(model.Order{ID: "o1", OrderType: model.OrderTypePickup, Status: model.OrderStatusReady}, nil)

	out, uerr := tracker.UpdateStatus(context.Background(), "admin1", "o1", UpdateStatusInput{Status: "ready"})
	assert.NoError(t, uerr)
	assert.Equal(t, model.OrderStatusReady, out.Status)

	if assert.Len(t, published, 1) {
		assert.Equal(t, realtime.EventUpdate, published[0].Event)
	}

	orders.AssertExpectations(t)
	events.AssertExpectations(t)
}

// =====================
// StatsForToday
// =====================

func TestTracker_StatsForToday_ExcludesCancelledRevenue(t *testing.T) {
	orders := new(OrderRepoMock)
	tracker := newTestTracker(orders, new(StatusEventRepoMock), realtime.NewMemoryFeed())

	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	tracker.now = func() time.Time { return now }

	midnight := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	orders.On("ListWithDetails", mock.Anything, mock.MatchedBy(func(f repo.OrderListFilter) bool {
		return f.From != nil && f.From.Equal(midnight)
	})).Return([]model.Order{
		{ID: "o1", Status: model.OrderStatusCompleted, TotalAmount: 290},
		{ID: "o2", Status: model.OrderStatusPending, TotalAmount: 120},
		{ID: "o3", Status: model.OrderStatusCancelled, TotalAmount: 999},
	}, int64(3), nil)

	stats, err := tracker.StatsForToday(context.Background(), "admin1")
	assert.NoError(t, err)

	//キャンセルは件数に入るが売上には入らない
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, int64(410), stats.TotalRevenue)
	assert.Equal(t, 1, stats.PendingOrders)
	assert.Equal(t, 1, stats.CompletedOrders)
}

// =====================
// AdminListOrders
// =====================

func TestTracker_AdminListOrders_InvalidStatus(t *testing.T) {
	tracker := newTestTracker(new(OrderRepoMock), new(StatusEventRepoMock), realtime.NewMemoryFeed())

	_, err := tracker.AdminListOrders(context.Background(), "admin1", AdminListOrdersInput{Page: 1, Limit: 20, Status: "shipped"})
	assertErrContains(t, err, "invalid status")
}

func TestTracker_AdminListOrders_Unauthorized(t *testing.T) {
	tracker := newTestTracker(new(OrderRepoMock), new(StatusEventRepoMock), realtime.NewMemoryFeed())

	_, err := tracker.AdminListOrders(context.Background(), "", AdminListOrdersInput{Page: 1, Limit: 20})
	assertErrContains(t, err, "unauthorized")
}
