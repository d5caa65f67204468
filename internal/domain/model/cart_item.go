package model

import "time"

// ログインユーザーのカート明細（リモート側の永続形）。
// 追加時点の実効価格（サイズ倍率込み）を必ず保存する。
type CartItem struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     string `gorm:"type:uuid;not null;index" json:"user_id"`
	FoodItemID string `gorm:"type:uuid;not null;index" json:"food_item_id"`
	Quantity   int64  `gorm:"not null" json:"quantity"`

	UnitPriceSnapshot int64 `gorm:"not null;column:unit_price_snapshot" json:"unit_price_snapshot"`

	//サイズ未選択なら空文字・倍率1
	SizeOptionID   string  `gorm:"type:varchar(36)" json:"size_option_id"`
	SizeName       string  `gorm:"type:varchar(100)" json:"size_name"`
	SizeMultiplier float64 `gorm:"not null;default:1" json:"size_multiplier"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`

	//表示用のメニュー情報
	FoodItem *FoodItem `gorm:"foreignKey:FoodItemID" json:"food_item,omitempty"`
}
