package model

import "time"

// 注文明細。確定時点のスナップショットで、作成後は不変。
type OrderItem struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    string `gorm:"type:uuid;not null;index" json:"order_id"`
	FoodItemID string `gorm:"type:uuid;index" json:"food_item_id"`

	NameSnapshot string `gorm:"type:varchar(255);not null" json:"name_snapshot"`
	Quantity     int64  `gorm:"not null" json:"quantity"`
	UnitPrice    int64  `gorm:"not null" json:"unit_price"`
	TotalPrice   int64  `gorm:"not null" json:"total_price"`

	SizeOptionID   string  `gorm:"type:varchar(36)" json:"size_option_id"`
	SizeName       string  `gorm:"type:varchar(100)" json:"size_name"`
	SizeMultiplier float64 `gorm:"not null;default:1" json:"size_multiplier"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
