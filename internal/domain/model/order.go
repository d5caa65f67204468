package model

import "time"

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusReady          OrderStatus = "ready"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypePickup   OrderType = "pickup"
)

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodOnline PaymentMethod = "online"
)

type Order struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	//ゲスト・キオスク注文はnil
	UserID *string `gorm:"type:uuid;index" json:"user_id"`

	CustomerName    string `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail   string `gorm:"type:varchar(255)" json:"customer_email"`
	CustomerPhone   string `gorm:"type:varchar(30);not null" json:"customer_phone"`
	CustomerAddress string `gorm:"type:text" json:"customer_address"`

	OrderType     OrderType     `gorm:"type:varchar(20);not null" json:"order_type"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	Status        OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`

	//確定時点の明細合計。メニュー価格が後で変わっても再計算しない。
	TotalAmount int64 `gorm:"not null" json:"total_amount"`

	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`

	//一覧取得時にまとめて読む
	Items         []OrderItem        `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	StatusHistory []OrderStatusEvent `gorm:"foreignKey:OrderID" json:"status_history,omitempty"`
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusReady,
		OrderStatusOutForDelivery, OrderStatusCompleted, OrderStatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusPreparing,
		OrderStatusReady,
		OrderStatusOutForDelivery,
		OrderStatusCompleted,
		OrderStatusCancelled,
	}
}

// ステータス遷移表。
//
//	pending   → preparing / cancelled
//	preparing → out_for_delivery（配達）/ ready（持ち帰り）
//	ready / out_for_delivery → completed
//
// completed・cancelled は終端。キャンセルはpendingからのみ。
func CanTransition(orderType OrderType, from OrderStatus, to OrderStatus) bool {
	switch from {
	case OrderStatusPending:
		return to == OrderStatusPreparing || to == OrderStatusCancelled
	case OrderStatusPreparing:
		if to == OrderStatusOutForDelivery {
			return orderType == OrderTypeDelivery
		}
		if to == OrderStatusReady {
			return orderType == OrderTypePickup
		}
		return false
	case OrderStatusReady, OrderStatusOutForDelivery:
		return to == OrderStatusCompleted
	default:
		return false
	}
}
