package models

import (
	"time"
)

type WikiPage struct {
	ID          string    `gorm:"primaryKey;size:16" json:"id"`
	NodeID      string    `gorm:"size:16;not null;uniqueIndex:idx_wiki_node_page_version" json:"node_id"`
	PageName    string    `gorm:"not null;uniqueIndex:idx_wiki_node_page_version" json:"page_name"`
	Version     int       `gorm:"not null;default:1;uniqueIndex:idx_wiki_node_page_version" json:"version"`
	Content     string    `gorm:"type:text" json:"content"`
	DateCreated time.Time `gorm:"column:date_created" json:"date_created"`
}
