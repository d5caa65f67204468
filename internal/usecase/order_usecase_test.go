package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"app/internal/cart"
	"app/internal/domain/model"
	"app/internal/realtime"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks（衝突回避の命名）
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListWithDetails(ctx context.Context, f repo.OrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (model.Order, error) {
	args := m.Called(ctx, order)
	created, _ := args.Get(0).(model.Order)
	return created, args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type StatusEventRepoMock struct{ mock.Mock }

func (m *StatusEventRepoMock) Append(ctx context.Context, event model.OrderStatusEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *StatusEventRepoMock) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderStatusEvent, error) {
	args := m.Called(ctx, orderID)
	events, _ := args.Get(0).([]model.OrderStatusEvent)
	return events, args.Error(1)
}

// トランザクションをそのまま実行するTransactionManager。
type txReposStub struct {
	orders *OrderRepoMock
	items  *OrderItemRepoMock
	events *StatusEventRepoMock
}

func (r *txReposStub) Orders() repo.OrderRepository                  { return r.orders }
func (r *txReposStub) OrderItems() repo.OrderItemRepository          { return r.items }
func (r *txReposStub) StatusEvents() repo.OrderStatusEventRepository { return r.events }
func (r *txReposStub) CartItems() repo.CartItemRepository            { panic("not used") }
func (r *txReposStub) FoodItems() repo.FoodItemRepository            { panic("not used") }

type TxManagerStub struct {
	repos *txReposStub
	err   error
	calls int
}

func (tm *TxManagerStub) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	tm.calls++
	if tm.err != nil {
		return tm.err
	}
	return fn(tm.repos)
}

// カートストアのフェイク
type cartStoreStub struct {
	lines      []model.CartLine
	clearCalls int
}

func (s *cartStoreStub) Load(ctx context.Context) ([]model.CartLine, error) {
	out := make([]model.CartLine, len(s.lines))
	copy(out, s.lines)
	return out, nil
}

func (s *cartStoreStub) Replace(ctx context.Context, lines []model.CartLine) error {
	s.lines = lines
	return nil
}

func (s *cartStoreStub) Clear(ctx context.Context) error {
	s.clearCalls++
	s.lines = nil
	return nil
}

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

func loadedReconciler(t *testing.T, store *cartStoreStub) *cart.Reconciler {
	t.Helper()
	rec := cart.NewReconciler(nil, func(userID string) cart.Store { return store })
	assert.NoError(t, rec.LoadForIdentity(context.Background(), cart.ForUser("u1", model.RoleCustomer)))
	return rec
}

func validPlaceInput() PlaceOrderInput {
	return PlaceOrderInput{
		CustomerName:  "Juan Dela Cruz",
		CustomerPhone: "09170000000",
		OrderType:     "pickup",
		PaymentMethod: "cash",
	}
}

// =====================
// PlaceOrder
// =====================

func TestPlaceOrder_EmptyCart(t *testing.T) {
	tm := &TxManagerStub{repos: &txReposStub{new(OrderRepoMock), new(OrderItemRepoMock), new(StatusEventRepoMock)}}
	uc := NewOrderUsecase(new(OrderRepoMock), new(OrderItemRepoMock), tm, realtime.NewMemoryFeed(), nil)

	rec := loadedReconciler(t, &cartStoreStub{})

	_, err := uc.PlaceOrder(context.Background(), rec, validPlaceInput())
	assertErrContains(t, err, "cart empty")

	//空カートではストアに触らない
	assert.Zero(t, tm.calls)
}

func TestPlaceOrder_AnonymousRejected(t *testing.T) {
	tm := &TxManagerStub{repos: &txReposStub{new(OrderRepoMock), new(OrderItemRepoMock), new(StatusEventRepoMock)}}
	uc := NewOrderUsecase(new(OrderRepoMock), new(OrderItemRepoMock), tm, realtime.NewMemoryFeed(), nil)

	rec := cart.NewReconciler(nil, func(string) cart.Store { return &cartStoreStub{} })
	assert.NoError(t, rec.LoadForIdentity(context.Background(), cart.Anonymous()))

	_, err := uc.PlaceOrder(context.Background(), rec, validPlaceInput())
	assertErrContains(t, err, "unauthorized")
}

func TestPlaceOrder_DeliveryRequiresAddress(t *testing.T) {
	tm := &TxManagerStub{repos: &txReposStub{new(OrderRepoMock), new(OrderItemRepoMock), new(StatusEventRepoMock)}}
	uc := NewOrderUsecase(new(OrderRepoMock), new(OrderItemRepoMock), tm, realtime.NewMemoryFeed(), nil)

	store := &cartStoreStub{lines: []model.CartLine{{FoodItemID: "f1", Name: "Rice Bowl", Price: 120, Quantity: 1}}}
	rec := loadedReconciler(t, store)

	in := validPlaceInput()
	in.OrderType = "delivery"

	_, err := uc.PlaceOrder(context.Background(), rec, in)
	assertErrContains(t, err, "address required")
}

func TestPlaceOrder_InvalidOrderType(t *testing.T) {
	tm := &TxManagerStub{repos: &txReposStub{new(OrderRepoMock), new(OrderItemRepoMock), new(StatusEventRepoMock)}}
	uc := NewOrderUsecase(new(OrderRepoMock), new(OrderItemRepoMock), tm, realtime.NewMemoryFeed(), nil)

	store := &cartStoreStub{lines: []model.CartLine{{FoodItemID: "f1", Price: 120, Quantity: 1}}}
	rec := loadedReconciler(t, store)

	in := validPlaceInput()
	in.OrderType = "dine_in"

	_, err := uc.PlaceOrder(context.Background(), rec, in)
	assertErrContains(t, err, "invalid order type")
}

func TestPlaceOrder_Success(t *testing.T) {
	ctx := context.Background()

	orders := new(OrderRepoMock)
	items := new(OrderItemRepoMock)
	events := new(StatusEventRepoMock)
	tm := &TxManagerStub{repos: &txReposStub{orders, items, events}}

	feed := realtime.NewMemoryFeed()
	var published []realtime.Change
	_, err := feed.Subscribe("test", []string{"orders"}, func(c realtime.Change) {
		published = append(published, c)
	})
	assert.NoError(t, err)

	uc := NewOrderUsecase(orders, items, tm, feed, nil)

	store := &cartStoreStub{lines: []model.CartLine{
		{FoodItemID: "f1", Name: "Rice Bowl", Price: 120, Quantity: 2},
		{FoodItemID: "f2", Name: "Iced Tea", Price: 50, Quantity: 1},
	}}
	rec := loadedReconciler(t, store)

	orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.Status == model.OrderStatusPending &&
			o.TotalAmount == 290 &&
			o.UserID != nil && *o.UserID == "u1"
	})).Return(model.Order{ID: "o1", Status: model.OrderStatusPending, TotalAmount: 290, OrderType: model.OrderTypePickup}, nil)

	items.On("CreateBulk", mock.Anything, "o1", mock.MatchedBy(func(is []model.OrderItem) bool {
		return len(is) == 2 && is[0].TotalPrice == 240 && is[1].TotalPrice == 50
	})).Return(nil)

	events.On("Append", mock.Anything, mock.MatchedBy(func(e model.OrderStatusEvent) bool {
		return e.OrderID == "o1" && e.Status == model.OrderStatusPending
	})).Return(nil)

	out, err := uc.PlaceOrder(ctx, rec, validPlaceInput())
	assert.NoError(t, err)
	assert.Equal(t, "o1", out.Order.ID)
	assert.Equal(t, "15-20 minutes", out.EstimatedTime)

	//カートは空になり、フィードにINSERTが流れる
	assert.Empty(t, rec.Lines())
	assert.Equal(t, 1, store.clearCalls)
	if assert.Len(t, published, 1) {
		assert.Equal(t, realtime.EventInsert, published[0].Event)
		assert.Equal(t, "o1", published[0].RowID)
	}

	orders.AssertExpectations(t)
	items.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestPlaceOrder_TxFailureLeavesCart(t *testing.T) {
	tm := &TxManagerStub{
		repos: &txReposStub{new(OrderRepoMock), new(OrderItemRepoMock), new(StatusEventRepoMock)},
		err:   errors.New("db down"),
	}
	uc := NewOrderUsecase(new(OrderRepoMock), new(OrderItemRepoMock), tm, realtime.NewMemoryFeed(), nil)

	store := &cartStoreStub{lines: []model.CartLine{{FoodItemID: "f1", Price: 120, Quantity: 1}}}
	rec := loadedReconciler(t, store)

	_, err := uc.PlaceOrder(context.Background(), rec, validPlaceInput())
	assertErrContains(t, err, "failed to place order")

	//失敗した注文はカートを消さない
	assert.Len(t, rec.Lines(), 1)
	assert.Zero(t, store.clearCalls)
}

// =====================
// ListMyOrders / GetMyOrderDetail
// =====================

func TestListMyOrders_FiltersByUser(t *testing.T) {
	orders := new(OrderRepoMock)
	uc := NewOrderUsecase(orders, new(OrderItemRepoMock), &TxManagerStub{}, realtime.NewMemoryFeed(), nil)

	userID := "u1"
	orders.On("ListWithDetails", mock.Anything, mock.MatchedBy(func(f repo.OrderListFilter) bool {
		return f.UserID != nil && *f.UserID == userID && f.Page == 1 && f.Limit == 20
	})).Return([]model.Order{{ID: "o1"}}, int64(1), nil)

	out, err := uc.ListMyOrders(context.Background(), userID, 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	orders.AssertExpectations(t)
}

func TestGetMyOrderDetail_OtherUsersOrderHidden(t *testing.T) {
	orders := new(OrderRepoMock)
	uc := NewOrderUsecase(orders, new(OrderItemRepoMock), &TxManagerStub{}, realtime.NewMemoryFeed(), nil)

	other := "u2"
	orders.On("FindByID", mock.Anything, "o1").Return(model.Order{ID: "o1", UserID: &other}, nil)

	_, err := uc.GetMyOrderDetail(context.Background(), "u1", "o1")
	assertErrContains(t, err, "not found")
}

func TestGetMyOrderDetail_NotFound(t *testing.T) {
	orders := new(OrderRepoMock)
	uc := NewOrderUsecase(orders, new(OrderItemRepoMock), &TxManagerStub{}, realtime.NewMemoryFeed(), nil)

	orders.On("FindByID", mock.Anything, "missing").Return(model.Order{}, repo.ErrNotFound)

	_, err := uc.GetMyOrderDetail(context.Background(), "u1", "missing")
	assertErrContains(t, err, "not found")
}
