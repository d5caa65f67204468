package usecase

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"app/internal/domain/model"
	"app/internal/realtime"
	repo "app/internal/repository"

	"github.com/rs/zerolog/log"
)

// 管理画面が一度に見る注文数の上限
const trackerCacheLimit = 200

// OrderTrackerは注文一覧の生きたスナップショットを持つ。
// フィードから orders / order_status_events の変更通知を受けるたびに
// 全件を取り直してキャッシュを丸ごと差し替える（行パッチはしない）。
type OrderTracker struct {
	orders    repo.OrderRepository
	events    repo.OrderStatusEventRepository
	txManager repo.TransactionManager
	feed      realtime.Feed

	mu    sync.RWMutex
	cache []model.Order

	subMu sync.Mutex
	sub   *realtime.Subscription

	now func() time.Time
}

// DI
func NewOrderTracker(
	orders repo.OrderRepository,
	events repo.OrderStatusEventRepository,
	txManager repo.TransactionManager,
	feed realtime.Feed,
) *OrderTracker {
	return &OrderTracker{
		orders:    orders,
		events:    events,
		txManager: txManager,
		feed:      feed,
		cache:     []model.Order{},
		now:       time.Now,
	}
}

// フィードの購読を開始し、初回ロードを行う。
// 2回目以降の呼び出しは何もしない。
func (t *OrderTracker) Subscribe(ctx context.Context) error {
	t.subMu.Lock()
	defer t.subMu.Unlock()

	if t.sub != nil {
		return nil
	}

	if err := t.Refresh(ctx); err != nil {
		return err
	}

	sub, err := t.feed.Subscribe("orders", []string{"orders", "order_status_events"}, func(c realtime.Change) {
		if err := t.Refresh(context.Background()); err != nil {
			log.Warn().Err(err).Str("table", c.Table).Msg("tracker: refresh failed")
		}
	})
	if err != nil {
		return err
	}

	t.sub = sub
	return nil
}

// 購読を解除する。何回呼んでも安全。
func (t *OrderTracker) Close() {
	t.subMu.Lock()
	defer t.subMu.Unlock()

	t.sub.Unsubscribe()
	t.sub = nil
}

// ストアから取り直してキャッシュを差し替える。
func (t *OrderTracker) Refresh(ctx context.Context) error {
	orders, _, err := t.orders.ListWithDetails(ctx, repo.OrderListFilter{
		Page:  1,
		Limit: trackerCacheLimit,
	})
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.cache = orders
	t.mu.Unlock()
	return nil
}

// キャッシュのコピー（作成日時の降順）
func (t *OrderTracker) Snapshot() []model.Order {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]model.Order, len(t.cache))
	copy(out, t.cache)
	return out
}

// ステータスで絞ったキャッシュのコピー
func (t *OrderTracker) SnapshotByStatus(status model.OrderStatus) []model.Order {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]model.Order, 0)
	for _, o := range t.cache {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

type AdminListOrdersInput struct {
	Page   int
	Limit  int
	Status string
}

type AdminOrderListOutput struct {
	Items []model.Order `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// 管理画面のページング付き一覧。キャッシュではなくストアを見る。
func (t *OrderTracker) AdminListOrders(ctx context.Context, adminUserID string, in AdminListOrdersInput) (AdminOrderListOutput, error) {
	if adminUserID == "" {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Page < 1 {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.Status != "" {
		if _, ok := model.ParseOrderStatus(in.Status); !ok {
			return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
		}
	}

	orders, total, err := t.orders.ListWithDetails(ctx, repo.OrderListFilter{
		Page:   in.Page,
		Limit:  in.Limit,
		Status: in.Status,
	})
	if err != nil {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return AdminOrderListOutput{
		Items: orders,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (t *OrderTracker) AdminGetOrder(ctx context.Context, adminUserID string, orderID string) (model.Order, error) {
	if adminUserID == "" {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, err := t.orders.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return order, nil
}

type UpdateStatusInput struct {
	Status string
	Note   string
}

// ステータス遷移。遷移表で弾いてから、注文本体の更新と履歴の追記を
// 1トランザクションで書く。同じステータスへの変更は黙って成功扱い。
func (t *OrderTracker) UpdateStatus(ctx context.Context, adminUserID string, orderID string, in UpdateStatusInput) (model.Order, error) {
	if adminUserID == "" {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	next, ok := model.ParseOrderStatus(in.Status)
	if !ok {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	order, err := t.orders.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if order.Status == next {
		return order, nil
	}

	if !model.CanTransition(order.OrderType, order.Status, next) {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid status transition")
	}

	note := in.Note
	if note == "" {
		note = fmt.Sprintf("Status changed to %s", next)
	}

	err = t.txManager.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Orders().UpdateStatus(ctx, orderID, next); err != nil {
			return err
		}
		return r.StatusEvents().Append(ctx, model.OrderStatusEvent{
			OrderID:   orderID,
			Status:    next,
			ChangedBy: &adminUserID,
			Note:      note,
		})
	})
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "failed to update status")
	}

	if perr := t.feed.Publish(ctx, realtime.Change{
		Table: "orders",
		Event: realtime.EventUpdate,
		RowID: orderID,
	}); perr != nil {
		log.Warn().Err(perr).Str("order_id", orderID).Msg("tracker: publish failed")
	}

	order, err = t.orders.FindByID(ctx, orderID)
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return order, nil
}

// 注文のステータス履歴（古い順）
func (t *OrderTracker) StatusHistory(ctx context.Context, adminUserID string, orderID string) ([]model.OrderStatusEvent, error) {
	if adminUserID == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	if _, err := t.orders.FindByID(ctx, orderID); err == repo.ErrNotFound {
		return nil, NewHTTPError(http.StatusNotFound, "not found")
	} else if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	events, err := t.events.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return events, nil
}

type TodayStats struct {
	TotalOrders     int   `json:"total_orders"`
	TotalRevenue    int64 `json:"total_revenue"`
	PendingOrders   int   `json:"pending_orders"`
	CompletedOrders int   `json:"completed_orders"`
}

// 今日の売上集計。キャンセルは件数には入るが売上には入れない。
func (t *OrderTracker) StatsForToday(ctx context.Context, adminUserID string) (TodayStats, error) {
	if adminUserID == "" {
		return TodayStats{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	now := t.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	orders, _, err := t.orders.ListWithDetails(ctx, repo.OrderListFilter{
		Page:  1,
		Limit: trackerCacheLimit,
		From:  &from,
	})
	if err != nil {
		return TodayStats{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var stats TodayStats
	for _, o := range orders {
		stats.TotalOrders++
		if o.Status != model.OrderStatusCancelled {
			stats.TotalRevenue += o.TotalAmount
		}
		switch o.Status {
		case model.OrderStatusPending:
			stats.PendingOrders++
		case model.OrderStatusCompleted:
			stats.CompletedOrders++
		}
	}
	return stats, nil
}
