package models

import (
	"time"
)

// ReadCursor 用户在某个节点上最后查看评论的时间
type ReadCursor struct {
	UserID   string    `gorm:"primaryKey;size:16" json:"user_id"`
	NodeID   string    `gorm:"primaryKey;size:16" json:"node_id"`
	ViewedAt time.Time `gorm:"not null" json:"viewed_at"`
}
