package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/cart"
	"app/internal/domain/model"
	"app/internal/infra/localstore"
	"app/internal/realtime"
	"app/internal/receipt"
	repo "app/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// 配達・持ち帰りの目安時間
const (
	estimatedTimeDelivery = "30-45 minutes"
	estimatedTimePickup   = "15-20 minutes"
)

type OrderUsecase struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	txManager  repo.TransactionManager
	feed       realtime.Feed

	//端末の注文控え。API経路ではnil。
	snapshots *localstore.Store

	now func() time.Time
}

// DI
func NewOrderUsecase(
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	txManager repo.TransactionManager,
	feed realtime.Feed,
	snapshots *localstore.Store,
) *OrderUsecase {
	return &OrderUsecase{
		orders:     orders,
		orderItems: orderItems,
		txManager:  txManager,
		feed:       feed,
		snapshots:  snapshots,
		now:        time.Now,
	}
}

type PlaceOrderInput struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerAddress string
	OrderType       string
	PaymentMethod   string
	Notes           string
}

type PlaceOrderOutput struct {
	Order         model.Order `json:"order"`
	EstimatedTime string      `json:"estimated_time"`
}

// 注文確定。カートの行をスナップショットへ落とし、
// ヘッダ・明細・初回ステータスイベントを1トランザクションで書く。
// 途中で失敗したら何も残らない。成功して初めてカートを空にする。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, rec *cart.Reconciler, in PlaceOrderInput) (PlaceOrderOutput, error) {
	id := rec.Identity()
	if id.IsAnonymous() {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//空カートはストアに触る前に弾く
	lines := rec.Lines()
	if len(lines) == 0 {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	if strings.TrimSpace(in.CustomerName) == "" {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "customer name required")
	}
	if strings.TrimSpace(in.CustomerPhone) == "" {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "customer phone required")
	}

	orderType := model.OrderType(in.OrderType)
	switch orderType {
	case model.OrderTypeDelivery, model.OrderTypePickup:
	default:
		return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order type")
	}
	if orderType == model.OrderTypeDelivery && strings.TrimSpace(in.CustomerAddress) == "" {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "address required for delivery")
	}

	payment := model.PaymentMethod(in.PaymentMethod)
	switch payment {
	case model.PaymentMethodCash, model.PaymentMethodCard, model.PaymentMethodOnline:
	default:
		return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment method")
	}

	var total int64
	items := make([]model.OrderItem, 0, len(lines))
	for _, l := range lines {
		total += l.LineTotal()
		items = append(items, model.OrderItem{
			FoodItemID:     l.FoodItemID,
			NameSnapshot:   l.Name,
			Quantity:       l.Quantity,
			UnitPrice:      l.Price,
			TotalPrice:     l.LineTotal(),
			SizeOptionID:   l.SizeOptionID,
			SizeName:       l.SizeName,
			SizeMultiplier: l.SizeMultiplier,
		})
	}

	var userID *string
	if id.Role != model.RoleKiosk {
		uid := id.UserID
		userID = &uid
	}

	order := model.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CustomerEmail:   strings.TrimSpace(in.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(in.CustomerPhone),
		CustomerAddress: strings.TrimSpace(in.CustomerAddress),
		OrderType:       orderType,
		PaymentMethod:   payment,
		Status:          model.OrderStatusPending,
		TotalAmount:     total,
		Notes:           in.Notes,
	}

	err := u.txManager.WithinTx(ctx, func(r repo.TxRepos) error {
		created, err := r.Orders().Create(ctx, order)
		if err != nil {
			return err
		}
		order = created

		if err := r.OrderItems().CreateBulk(ctx, order.ID, items); err != nil {
			return err
		}

		return r.StatusEvents().Append(ctx, model.OrderStatusEvent{
			OrderID: order.ID,
			Status:  model.OrderStatusPending,
			Note:    "Order placed",
		})
	})
	if err != nil {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "failed to place order")
	}

	order.Items = items

	//確定後のカート消去は注文の成立に影響しない
	if cerr := rec.Clear(ctx); cerr != nil {
		log.Warn().Err(cerr).Str("order_id", order.ID).Msg("order: cart clear after placement failed")
	}

	estimated := estimatedTimePickup
	if orderType == model.OrderTypeDelivery {
		estimated = estimatedTimeDelivery
	}

	if u.snapshots != nil {
		snap := localstore.LastOrder{
			ID:            order.ID,
			Items:         lines,
			Total:         total,
			Status:        string(order.Status),
			CustomerName:  order.CustomerName,
			CustomerPhone: order.CustomerPhone,
			OrderType:     string(order.OrderType),
			PaymentMethod: string(order.PaymentMethod),
			CreatedAt:     u.now().Format(time.RFC3339),
			EstimatedTime: estimated,
		}
		if serr := u.snapshots.SaveLastOrder(ctx, snap); serr != nil {
			log.Warn().Err(serr).Msg("order: last order snapshot failed")
		}
	}

	if u.feed != nil {
		if perr := u.feed.Publish(ctx, realtime.Change{
			Table: "orders",
			Event: realtime.EventInsert,
			RowID: order.ID,
		}); perr != nil {
			log.Warn().Err(perr).Str("order_id", order.ID).Msg("order: publish failed")
		}
	}

	return PlaceOrderOutput{Order: order, EstimatedTime: estimated}, nil
}

type MyOrderListOutput struct {
	Items []model.Order `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID string, page int, limit int) (MyOrderListOutput, error) {
	if userID == "" {
		return MyOrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		return MyOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return MyOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	orders, total, err := u.orders.ListWithDetails(ctx, repo.OrderListFilter{
		Page:   page,
		Limit:  limit,
		UserID: &userID,
	})
	if err != nil {
		return MyOrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return MyOrderListOutput{
		Items: orders,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID string, orderID string) (model.Order, error) {
	if userID == "" {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, err := u.orders.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//他人の注文は存在ごと隠す
	if order.UserID == nil || *order.UserID != userID {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	return order, nil
}

// 自分の注文のレシートをテキストで返す。
func (u *OrderUsecase) GetMyReceipt(ctx context.Context, userID string, orderID string) (string, error) {
	order, err := u.GetMyOrderDetail(ctx, userID, orderID)
	if err != nil {
		return "", err
	}

	items := order.Items
	if len(items) == 0 {
		items, err = u.orderItems.ListByOrderID(ctx, orderID)
		if err != nil {
			return "", NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	number := receipt.GenerateOrderNumber(order.CreatedAt)
	return receipt.FormatText(receipt.FromOrder(order, items, number, order.CreatedAt)), nil
}
