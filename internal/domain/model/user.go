package model

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
	//店内キオスク端末の固定アカウント
	RoleKiosk Role = "kiosk"
)

type User struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'customer'"`

	//管理画面の「顧客」一覧で使う連絡先
	FullName string `gorm:"type:varchar(255)"`
	Phone    string `gorm:"type:varchar(30)"`
	Address  string `gorm:"type:text"`

	TokenVersion int  `gorm:"not null;default:0"`
	IsActive     bool `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
