package model

import (
	"time"

	"gorm.io/gorm"
)

// メニュー1品。Priceは基本サイズのペソ建て価格。
type FoodItem struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Price       int64  `gorm:"not null" json:"price"`
	ImageURL    string `gorm:"type:text" json:"image_url"`
	CategoryID  string `gorm:"type:uuid;index" json:"category_id"`

	IsFeatured  bool `gorm:"not null;default:false" json:"is_featured"`
	IsAvailable bool `gorm:"not null;default:true" json:"is_available"`

	//調理目安（分）
	PreparationTime int `gorm:"not null;default:15" json:"preparation_time"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
