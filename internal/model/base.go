package model

import "time"

// Timestamps 通用时间字段
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Versioned 乐观锁版本号
type Versioned struct {
	Version int `gorm:"not null;default:1" json:"version"`
}
