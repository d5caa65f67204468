package model

import "time"

// 注文ステータスの監査ログ（追記専用）。
// 「いつ」「誰が」「どのステータスに」変えたかを残す。
// orders.status は常に最新イベントのステータスと一致する。
type OrderStatusEvent struct {
	ID      int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID string      `gorm:"type:uuid;not null;index" json:"order_id"`
	Status  OrderStatus `gorm:"type:varchar(20);not null" json:"status"`

	//システムによる遷移はnil
	ChangedBy *string `gorm:"type:uuid" json:"changed_by"`

	Note      string    `gorm:"type:text" json:"note"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
}
