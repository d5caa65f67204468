package model

import (
	"math"
	"time"
)

// サイズ（Regular / Large など）。価格は倍率で決まる。
type SizeOption struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(100);not null" json:"name"`
	Multiplier float64   `gorm:"not null;default:1" json:"multiplier"`
	SortOrder  int       `gorm:"not null;default:0" json:"sort_order"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 基本価格×倍率をペソ単位に丸めた実効価格
func EffectivePrice(basePrice int64, multiplier float64) int64 {
	if multiplier <= 0 {
		return basePrice
	}
	return int64(math.Round(float64(basePrice) * multiplier))
}
