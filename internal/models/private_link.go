package models

import (
	"time"
)

// PrivateLink 私密分享链接 (view_only key). Anonymous links mask author identities.
type PrivateLink struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Key         string    `gorm:"uniqueIndex;size:64;not null" json:"key"`
	NodeID      string    `gorm:"size:16;not null;index" json:"node_id"`
	Name        string    `json:"name"`
	Anonymous   bool      `gorm:"default:false" json:"anonymous"`
	IsDeleted   bool      `gorm:"default:false" json:"is_deleted"`
	DateCreated time.Time `gorm:"column:date_created" json:"date_created"`
}
